package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/inventory"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
	"github.com/jhoicas/PuntoVenta-api/pkg/logger"
	"github.com/shopspring/decimal"
)

const maxProductCodeLen = 64

// BasketItem una línea de la canasta: código de producto y cantidad solicitada.
type BasketItem struct {
	ProductCode string
	Quantity    int
}

// CheckoutInput entrada del checkout. CashierID viene de la sesión autenticada.
type CheckoutInput struct {
	Items     []BasketItem
	CashierID string
}

// LowStockItem producto que quedó por debajo de su umbral de reorden tras la venta.
type LowStockItem struct {
	ProductCode      string `json:"code"`
	Name             string `json:"name"`
	Stock            int    `json:"stock"`
	ReorderThreshold int    `json:"reorderThreshold"`
}

// CheckoutResult resultado de un checkout confirmado.
type CheckoutResult struct {
	SaleNumber int64
	CashierID  string
	Date       time.Time
	Lines      []*entity.SaleLineItem
	LowStock   []LowStockItem
	Total      decimal.Decimal
}

// LineError falla de una línea concreta de la canasta. Aborta toda la venta.
// Unwrap devuelve domain.ErrProductNotFound o domain.ErrInsufficientStock.
type LineError struct {
	Line        int // 1-based, en el orden enviado
	ProductCode string
	Err         error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("línea %d (%s): %v", e.Line, e.ProductCode, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// CheckoutUseCase convierte una canasta en una venta: descuenta inventario y agrega líneas al
// libro de ventas en una sola transacción (todo o nada), con bloqueo de fila por producto.
type CheckoutUseCase struct {
	txRunner CheckoutTxRunner
	users    repository.UserRepository
	notifier Notifier
	log      *logger.Logger
	now      func() time.Time
}

// NewCheckoutUseCase construye el caso de uso. notifier y log pueden ser nil.
func NewCheckoutUseCase(txRunner CheckoutTxRunner, notifier Notifier, log *logger.Logger) *CheckoutUseCase {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CheckoutUseCase{
		txRunner: txRunner,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// WithUserRepository hace que cada checkout verifique que el cajero exista y siga activo,
// de modo que un token emitido antes de desactivarlo deja de servir para vender.
func (uc *CheckoutUseCase) WithUserRepository(users repository.UserRepository) *CheckoutUseCase {
	uc.users = users
	return uc
}

// Checkout valida la canasta, reserva el número de venta y procesa cada línea en el orden
// enviado dentro de una transacción:
//
//   - producto inexistente  -> *LineError{ErrProductNotFound}, rollback completo
//   - cantidad > stock      -> *LineError{ErrInsufficientStock}, rollback completo
//   - ok                    -> línea en el libro + stock descontado + detección de bajo stock
//
// Errores previos a abrir la transacción: domain.ErrUnauthorized (sin cajero, o cajero inexistente o
// inactivo si hay repositorio de usuarios) y
// domain.ErrInvalidInput (canasta vacía, cantidad <= 0, código inválido). Cualquier otro fallo
// se devuelve envuelto en domain.ErrStorage y es seguro reintentar el checkout completo.
func (uc *CheckoutUseCase) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	cashierID := strings.TrimSpace(in.CashierID)
	if cashierID == "" {
		return nil, domain.ErrUnauthorized
	}
	items, err := normalizeBasket(in.Items)
	if err != nil {
		return nil, err
	}
	if err := uc.checkSession(ctx, cashierID); err != nil {
		return nil, err
	}

	now := uc.now()
	var result *CheckoutResult

	err = uc.txRunner.RunCheckout(ctx, func(
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error {
		// 1) Número de venta: serializado con otros checkouts hasta commit/rollback
		saleNumber, err := saleRepo.NextSaleNumber(ctx)
		if err != nil {
			return err
		}
		res := &CheckoutResult{
			SaleNumber: saleNumber,
			CashierID:  cashierID,
			Date:       now,
			Lines:      make([]*entity.SaleLineItem, 0, len(items)),
			Total:      decimal.Zero,
		}
		lowIdx := make(map[string]int)

		// 2) Líneas en orden; la primera que falla aborta todo
		for i, item := range items {
			product, err := productRepo.GetByCodeForUpdate(ctx, item.ProductCode)
			if err != nil {
				return err
			}
			if product == nil {
				return &LineError{Line: i + 1, ProductCode: item.ProductCode, Err: domain.ErrProductNotFound}
			}
			if item.Quantity > product.Stock {
				return &LineError{Line: i + 1, ProductCode: item.ProductCode, Err: domain.ErrInsufficientStock}
			}

			line := &entity.SaleLineItem{
				ID:              uuid.New().String(),
				SaleNumber:      saleNumber,
				ProductCode:     product.Code,
				Quantity:        item.Quantity,
				UnitPriceAtSale: product.UnitPrice,
				Timestamp:       now,
				CashierID:       cashierID,
			}
			if err := saleRepo.AppendLine(ctx, line); err != nil {
				return err
			}
			newStock := product.Stock - item.Quantity
			if err := productRepo.UpdateStock(ctx, product.Code, newStock); err != nil {
				if errors.Is(err, domain.ErrInsufficientStock) {
					return &LineError{Line: i + 1, ProductCode: item.ProductCode, Err: err}
				}
				return err
			}
			res.Lines = append(res.Lines, line)
			res.Total = res.Total.Add(line.Subtotal())

			// 3) Bajo stock con la cantidad ya escrita (misma tx)
			if inventory.IsLowStock(newStock, product.ReorderThreshold) {
				low := LowStockItem{
					ProductCode:      product.Code,
					Name:             product.Name,
					Stock:            newStock,
					ReorderThreshold: product.ReorderThreshold,
				}
				if idx, ok := lowIdx[product.Code]; ok {
					res.LowStock[idx] = low
				} else {
					lowIdx[product.Code] = len(res.LowStock)
					res.LowStock = append(res.LowStock, low)
				}
			}
		}
		result = res
		return nil
	})
	if err != nil {
		err = classifyCheckoutError(err)
		uc.logFailure(cashierID, len(items), err)
		return nil, err
	}

	uc.log.Info().
		Int64("sale_number", result.SaleNumber).
		Str("cashier_id", cashierID).
		Int("lines", len(result.Lines)).
		Str("total", result.Total.StringFixed(2)).
		Int("low_stock", len(result.LowStock)).
		Msg("venta registrada")

	uc.notifier.Publish(Event{
		Type:       EventSaleCompleted,
		SaleNumber: result.SaleNumber,
		CashierID:  cashierID,
		At:         now,
	})
	if len(result.LowStock) > 0 {
		uc.notifier.Publish(Event{
			Type:       EventStockLow,
			SaleNumber: result.SaleNumber,
			LowStock:   result.LowStock,
			At:         now,
		})
	}
	return result, nil
}

// checkSession sin repositorio de usuarios confía en el token.
func (uc *CheckoutUseCase) checkSession(ctx context.Context, cashierID string) error {
	if uc.users == nil {
		return nil
	}
	user, err := uc.users.GetByID(ctx, cashierID)
	if err != nil {
		return classifyCheckoutError(err)
	}
	if user == nil || user.Status != entity.UserStatusActive {
		uc.log.Warn().Str("cashier_id", cashierID).Msg("checkout rechazado: sesión inactiva")
		return domain.ErrUnauthorized
	}
	return nil
}

func (uc *CheckoutUseCase) logFailure(cashierID string, lines int, err error) {
	var lineErr *LineError
	if errors.As(err, &lineErr) {
		uc.log.Warn().
			Str("cashier_id", cashierID).
			Int("line", lineErr.Line).
			Str("product_code", lineErr.ProductCode).
			Err(lineErr.Err).
			Msg("checkout abortado")
		return
	}
	uc.log.Error().
		Str("cashier_id", cashierID).
		Int("lines", lines).
		Err(err).
		Msg("checkout fallido por almacenamiento")
}

// classifyCheckoutError deja pasar fallos de línea y envuelve todo lo demás en ErrStorage.
func classifyCheckoutError(err error) error {
	var lineErr *LineError
	switch {
	case errors.As(err, &lineErr):
		return err
	case errors.Is(err, domain.ErrStorage):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
}

// normalizeBasket valida la canasta antes de abrir la transacción.
func normalizeBasket(items []BasketItem) ([]BasketItem, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: canasta vacía", domain.ErrInvalidInput)
	}
	out := make([]BasketItem, 0, len(items))
	for i, item := range items {
		code := strings.TrimSpace(item.ProductCode)
		if !validProductCode(code) {
			return nil, fmt.Errorf("%w: línea %d: código de producto inválido", domain.ErrInvalidInput, i+1)
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: línea %d: la cantidad debe ser mayor a cero", domain.ErrInvalidInput, i+1)
		}
		out = append(out, BasketItem{ProductCode: code, Quantity: item.Quantity})
	}
	return out, nil
}

func validProductCode(code string) bool {
	if code == "" || len(code) > maxProductCodeLen {
		return false
	}
	for _, r := range code {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}
