package inventory

import (
	"context"

	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para la reposición (costo + stock + movimiento).
type TxRunner interface {
	RunInventory(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
	) error) error
}

// LowStockReport datos del reporte PDF de reposición.
type LowStockReport struct {
	StoreName   string
	GeneratedAt string
	Items       []ReportItem
}

// ReportItem fila del reporte.
type ReportItem struct {
	Product           *entity.Product
	SuggestedOrderQty int
	Priority          int
}

// LowStockPDFGenerator genera el PDF del reporte de productos bajo el umbral de reorden.
type LowStockPDFGenerator interface {
	GenerateLowStockPDF(ctx context.Context, report LowStockReport) ([]byte, error)
}
