package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/PuntoVenta-api/internal/application/dto"
	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/inventory"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
	"github.com/jhoicas/PuntoVenta-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// RestockUseCase registra entradas de mercancía de forma transaccional con bloqueo de fila
// (SELECT FOR UPDATE): recalcula el costo promedio ponderado, suma stock y deja el movimiento.
type RestockUseCase struct {
	txRunner     TxRunner
	movementRepo repository.StockMovementRepository
	log          *logger.Logger
	now          func() time.Time
}

// NewRestockUseCase construye el caso de uso. movementRepo se usa para el historial (fuera de tx).
func NewRestockUseCase(txRunner TxRunner, movementRepo repository.StockMovementRepository, log *logger.Logger) *RestockUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &RestockUseCase{
		txRunner:     txRunner,
		movementRepo: movementRepo,
		log:          log,
		now:          time.Now,
	}
}

// RestockInput entrada de una reposición.
type RestockInput struct {
	ProductCode string
	Quantity    int
	UnitCost    decimal.Decimal
	Provider    string
	UserID      string
}

// Restock bloquea el producto, aplica costo promedio y stock y registra el movimiento, todo o nada.
func (uc *RestockUseCase) Restock(ctx context.Context, in RestockInput) (*dto.RestockResponse, error) {
	code := strings.TrimSpace(in.ProductCode)
	if code == "" || in.Quantity <= 0 || in.UnitCost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if in.UserID == "" {
		return nil, domain.ErrUnauthorized
	}

	var resp *dto.RestockResponse
	err := uc.txRunner.RunInventory(ctx, func(
		productRepo repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
	) error {
		product, err := productRepo.GetByCodeForUpdate(ctx, code)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrProductNotFound
		}

		newCost := inventory.CostCalculator(product.Stock, product.Cost, in.Quantity, in.UnitCost)
		newStock := product.Stock + in.Quantity
		if err := productRepo.UpdateCost(ctx, code, newCost); err != nil {
			return err
		}
		if err := productRepo.UpdateStock(ctx, code, newStock); err != nil {
			return err
		}

		movement := &entity.StockMovement{
			ID:          uuid.New().String(),
			ProductCode: code,
			Quantity:    in.Quantity,
			UnitCost:    in.UnitCost,
			Provider:    strings.TrimSpace(in.Provider),
			CreatedAt:   uc.now(),
			CreatedBy:   in.UserID,
		}
		if err := movementRepo.Create(ctx, movement); err != nil {
			return fmt.Errorf("restock: registrar movimiento: %w", err)
		}
		resp = &dto.RestockResponse{Code: code, Stock: newStock, Cost: newCost, Movement: movement.ID}
		return nil
	})
	if err != nil {
		uc.log.Warn().Str("product_code", code).Int("quantity", in.Quantity).Err(err).Msg("reposición fallida")
		return nil, err
	}
	uc.log.Info().
		Str("product_code", code).
		Int("quantity", in.Quantity).
		Int("stock", resp.Stock).
		Str("cost", resp.Cost.String()).
		Msg("reposición registrada")
	return resp, nil
}

// RestockFromRequest adapta el request HTTP al caso de uso.
func (uc *RestockUseCase) RestockFromRequest(ctx context.Context, userID string, in dto.RestockRequest) (*dto.RestockResponse, error) {
	return uc.Restock(ctx, RestockInput{
		ProductCode: in.Code,
		Quantity:    in.Quantity,
		UnitCost:    in.UnitCost,
		Provider:    in.Provider,
		UserID:      userID,
	})
}

// ListMovements historial de reposiciones de un producto (más recientes primero).
func (uc *RestockUseCase) ListMovements(ctx context.Context, code string, page dto.PageRequest) ([]dto.StockMovementResponse, error) {
	page.Normalize()
	list, err := uc.movementRepo.ListByProduct(ctx, strings.TrimSpace(code), page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.StockMovementResponse{
			ID:        m.ID,
			Code:      m.ProductCode,
			Quantity:  m.Quantity,
			UnitCost:  m.UnitCost,
			Provider:  m.Provider,
			CreatedBy: m.CreatedBy,
			CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}
