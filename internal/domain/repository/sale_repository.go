package repository

import (
	"context"
	"time"

	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
)

// SaleRepository puerto del libro de ventas (append-only: no hay Update ni Delete).
type SaleRepository interface {
	// NextSaleNumber reserva max(sale_number)+1 (1 si está vacío). Debe llamarse dentro de
	// una transacción y queda serializado con cualquier otra reserva hasta el commit/rollback.
	NextSaleNumber(ctx context.Context) (int64, error)
	AppendLine(ctx context.Context, line *entity.SaleLineItem) error
	// GetBySaleNumber devuelve (nil, nil) si la venta no existe.
	GetBySaleNumber(ctx context.Context, saleNumber int64) (*entity.Sale, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]*entity.Sale, error)
	DailySummary(ctx context.Context, from, to time.Time) ([]entity.DailySales, error)
	// TopProducts productos con mayor ingreso en [from, to), máximo limit.
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]entity.ProductSales, error)
}
