package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo historial de reposiciones sobre PostgreSQL.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx.
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create registra un movimiento de entrada.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_movements (id, product_code, quantity, unit_cost, provider, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.ProductCode, m.Quantity, m.UnitCost, m.Provider, m.CreatedBy, m.CreatedAt,
	)
	return mapError("insert stock movement", err)
}

// ListByProduct movimientos de un producto, más recientes primero.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productCode string, limit, offset int) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, product_code, quantity, unit_cost, provider, created_by, created_at
		FROM stock_movements WHERE product_code = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		productCode, limit, offset,
	)
	if err != nil {
		return nil, mapError("list stock movements", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(&m.ID, &m.ProductCode, &m.Quantity, &m.UnitCost, &m.Provider, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, mapError("iterate stock movements", rows.Err())
}
