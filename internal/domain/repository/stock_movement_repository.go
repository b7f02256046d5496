package repository

import (
	"context"

	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
)

// StockMovementRepository puerto para el historial de reposiciones.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	ListByProduct(ctx context.Context, productCode string, limit, offset int) ([]*entity.StockMovement, error)
}
