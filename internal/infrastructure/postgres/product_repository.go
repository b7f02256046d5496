package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `code, name, unit_price, cost, stock, reorder_threshold, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		product.Code, product.Name, product.UnitPrice, product.Cost, product.Stock,
		product.ReorderThreshold, product.CreatedAt, product.UpdatedAt,
	)
	return mapError("insert product", err)
}

// GetByCode obtiene un producto por código. (nil, nil) si no existe.
func (r *ProductRepo) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	return r.get(ctx, `SELECT `+productColumns+` FROM products WHERE code = $1`, code)
}

// GetByCodeForUpdate igual que GetByCode pero bloquea la fila hasta el fin de la tx.
func (r *ProductRepo) GetByCodeForUpdate(ctx context.Context, code string) (*entity.Product, error) {
	return r.get(ctx, `SELECT `+productColumns+` FROM products WHERE code = $1 FOR UPDATE`, code)
}

func (r *ProductRepo) get(ctx context.Context, query, code string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get product", err)
	}
	return p, nil
}

// Update actualiza nombre, precio y umbral. Stock y costo tienen sus propios métodos.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET name = $2, unit_price = $3, reorder_threshold = $4, updated_at = $5
		WHERE code = $1`
	tag, err := r.q.Exec(ctx, query,
		product.Code, product.Name, product.UnitPrice, product.ReorderThreshold, product.UpdatedAt,
	)
	if err != nil {
		return mapError("update product", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// UpdateStock fija la cantidad en stock. El CHECK de la tabla rechaza valores negativos.
func (r *ProductRepo) UpdateStock(ctx context.Context, code string, stock int) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE products SET stock = $2, updated_at = $3 WHERE code = $1`,
		code, stock, time.Now(),
	)
	if err != nil {
		return mapError("update stock", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// UpdateCost fija el costo promedio ponderado.
func (r *ProductRepo) UpdateCost(ctx context.Context, code string, cost decimal.Decimal) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE products SET cost = $2, updated_at = $3 WHERE code = $1`,
		code, cost, time.Now(),
	)
	if err != nil {
		return mapError("update cost", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// List lista productos por código con paginación.
func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY code LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, mapError("list products", err)
	}
	return collectProducts(rows)
}

// ListBelowReorder productos con stock < umbral, mayor déficit primero.
func (r *ProductRepo) ListBelowReorder(ctx context.Context) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE stock < reorder_threshold
		ORDER BY (reorder_threshold - stock) DESC, code`)
	if err != nil {
		return nil, mapError("list below reorder", err)
	}
	return collectProducts(rows)
}

// Delete elimina un producto por código. El libro de ventas conserva sus líneas.
func (r *ProductRepo) Delete(ctx context.Context, code string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM products WHERE code = $1`, code)
	if err != nil {
		return mapError("delete product", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.Code, &p.Name, &p.UnitPrice, &p.Cost, &p.Stock, &p.ReorderThreshold,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectProducts(rows pgx.Rows) ([]*entity.Product, error) {
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, mapError("iterate products", rows.Err())
}
