package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// saleNumberLockKey clave del advisory lock que serializa la numeración de ventas.
const saleNumberLockKey int64 = 0x50565f53414c45 // "PV_SALE"

const saleLineColumns = `id, sale_number, product_code, quantity, unit_price_at_sale, cashier_id, created_at`

// SaleRepo libro de ventas sobre PostgreSQL. Solo inserta y lee.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. NextSaleNumber requiere que q sea una tx.
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// NextSaleNumber toma un advisory lock de transacción y devuelve max(sale_number)+1.
// El lock se libera con el commit/rollback, así dos checkouts nunca obtienen el mismo número
// y un rollback no consume número.
func (r *SaleRepo) NextSaleNumber(ctx context.Context) (int64, error) {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, saleNumberLockKey); err != nil {
		return 0, mapError("lock sale number", err)
	}
	var next int64
	err := r.q.QueryRow(ctx, `SELECT COALESCE(MAX(sale_number), 0) + 1 FROM sale_lines`).Scan(&next)
	if err != nil {
		return 0, mapError("next sale number", err)
	}
	return next, nil
}

// AppendLine inserta una línea en el libro.
func (r *SaleRepo) AppendLine(ctx context.Context, line *entity.SaleLineItem) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sale_lines (`+saleLineColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		line.ID, line.SaleNumber, line.ProductCode, line.Quantity, line.UnitPriceAtSale,
		line.CashierID, line.Timestamp,
	)
	return mapError("append sale line", err)
}

// GetBySaleNumber devuelve la venta con sus líneas en el orden registrado. (nil, nil) si no existe.
func (r *SaleRepo) GetBySaleNumber(ctx context.Context, saleNumber int64) (*entity.Sale, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+saleLineColumns+` FROM sale_lines WHERE sale_number = $1 ORDER BY seq`,
		saleNumber,
	)
	if err != nil {
		return nil, mapError("get sale", err)
	}
	sales, err := collectSales(rows)
	if err != nil {
		return nil, err
	}
	if len(sales) == 0 {
		return nil, nil
	}
	return sales[0], nil
}

// ListByDateRange ventas con líneas en [from, to), por número ascendente.
func (r *SaleRepo) ListByDateRange(ctx context.Context, from, to time.Time) ([]*entity.Sale, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+saleLineColumns+` FROM sale_lines
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY sale_number, seq`,
		from, to,
	)
	if err != nil {
		return nil, mapError("list sales", err)
	}
	return collectSales(rows)
}

// DailySummary agrega ventas, unidades e ingresos por día (UTC) en [from, to).
func (r *SaleRepo) DailySummary(ctx context.Context, from, to time.Time) ([]entity.DailySales, error) {
	rows, err := r.q.Query(ctx, `
		SELECT (created_at AT TIME ZONE 'UTC')::date AS day,
		       COUNT(DISTINCT sale_number),
		       COALESCE(SUM(quantity), 0),
		       COALESCE(SUM(quantity * unit_price_at_sale), 0)
		FROM sale_lines
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY day
		ORDER BY day`,
		from, to,
	)
	if err != nil {
		return nil, mapError("daily summary", err)
	}
	defer rows.Close()
	var out []entity.DailySales
	for rows.Next() {
		var d entity.DailySales
		if err := rows.Scan(&d.Day, &d.SaleCount, &d.Units, &d.Revenue); err != nil {
			return nil, fmt.Errorf("scan daily summary: %w", err)
		}
		out = append(out, d)
	}
	return out, mapError("iterate daily summary", rows.Err())
}

// TopProducts ranking por ingreso. El nombre y costo salen del catálogo actual; un producto
// eliminado conserva sus ventas con nombre vacío y costo cero.
func (r *SaleRepo) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]entity.ProductSales, error) {
	rows, err := r.q.Query(ctx, `
		SELECT l.product_code,
		       COALESCE(p.name, ''),
		       SUM(l.quantity),
		       SUM(l.quantity * l.unit_price_at_sale) AS revenue,
		       COALESCE(p.cost, 0)
		FROM sale_lines l
		LEFT JOIN products p ON p.code = l.product_code
		WHERE l.created_at >= $1 AND l.created_at < $2
		GROUP BY l.product_code, p.name, p.cost
		ORDER BY revenue DESC, l.product_code
		LIMIT $3`,
		from, to, limit,
	)
	if err != nil {
		return nil, mapError("top products", err)
	}
	defer rows.Close()
	var out []entity.ProductSales
	for rows.Next() {
		var ps entity.ProductSales
		if err := rows.Scan(&ps.Code, &ps.Name, &ps.Units, &ps.Revenue, &ps.Cost); err != nil {
			return nil, fmt.Errorf("scan top products: %w", err)
		}
		out = append(out, ps)
	}
	return out, mapError("iterate top products", rows.Err())
}

// collectSales agrupa líneas consecutivas con el mismo sale_number.
func collectSales(rows pgx.Rows) ([]*entity.Sale, error) {
	defer rows.Close()
	var sales []*entity.Sale
	var current *entity.Sale
	for rows.Next() {
		var l entity.SaleLineItem
		if err := rows.Scan(
			&l.ID, &l.SaleNumber, &l.ProductCode, &l.Quantity, &l.UnitPriceAtSale,
			&l.CashierID, &l.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan sale line: %w", err)
		}
		if current == nil || current.Number != l.SaleNumber {
			current = &entity.Sale{Number: l.SaleNumber, CashierID: l.CashierID, Date: l.Timestamp}
			sales = append(sales, current)
		}
		line := l
		current.Lines = append(current.Lines, &line)
	}
	return sales, mapError("iterate sale lines", rows.Err())
}
