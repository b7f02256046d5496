package repository

import (
	"context"

	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductRepository define el puerto de persistencia para Product (inventario).
// Las implementaciones se pueden atar al pool o a una transacción.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
	// GetByCodeForUpdate lee el producto bloqueando la fila hasta el fin de la transacción
	// (SELECT ... FOR UPDATE). Devuelve (nil, nil) si no existe.
	GetByCodeForUpdate(ctx context.Context, code string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	UpdateStock(ctx context.Context, code string, stock int) error
	UpdateCost(ctx context.Context, code string, cost decimal.Decimal) error
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	// ListBelowReorder devuelve productos con stock < umbral, mayor déficit primero.
	ListBelowReorder(ctx context.Context) ([]*entity.Product, error)
	Delete(ctx context.Context, code string) error
}
