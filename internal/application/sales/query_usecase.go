package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/PuntoVenta-api/internal/application/dto"
	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
)

// maxRangeDays límite del rango de fechas en consultas de ventas.
const maxRangeDays = 366

// QueryUseCase consultas de solo lectura sobre ventas confirmadas.
type QueryUseCase struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
}

// NewQueryUseCase construye el caso de uso de consultas.
func NewQueryUseCase(saleRepo repository.SaleRepository, productRepo repository.ProductRepository) *QueryUseCase {
	return &QueryUseCase{saleRepo: saleRepo, productRepo: productRepo}
}

// GetSale devuelve una venta por número con nombres de producto.
func (uc *QueryUseCase) GetSale(ctx context.Context, saleNumber int64) (*dto.SaleResponse, error) {
	if saleNumber <= 0 {
		return nil, domain.ErrInvalidInput
	}
	sale, err := uc.saleRepo.GetBySaleNumber(ctx, saleNumber)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrSaleNotFound
	}
	lines, err := enrichLines(ctx, uc.productRepo, sale)
	if err != nil {
		return nil, err
	}
	return ToSaleResponse(sale, lines), nil
}

// ListSales lista las ventas en [from, to).
func (uc *QueryUseCase) ListSales(ctx context.Context, from, to time.Time) ([]dto.SaleResponse, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	list, err := uc.saleRepo.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *ToSaleResponse(s, nil))
	}
	return out, nil
}

// DailySummary ventas agregadas por día en [from, to).
func (uc *QueryUseCase) DailySummary(ctx context.Context, from, to time.Time) (*dto.SalesSummaryResponse, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	days, err := uc.saleRepo.DailySummary(ctx, from, to)
	if err != nil {
		return nil, err
	}
	resp := &dto.SalesSummaryResponse{
		From: from.Format("2006-01-02"),
		To:   to.Format("2006-01-02"),
		Days: make([]dto.DailySalesDTO, 0, len(days)),
	}
	for _, d := range days {
		resp.Days = append(resp.Days, dto.DailySalesDTO{
			Day:       d.Day.Format("2006-01-02"),
			SaleCount: d.SaleCount,
			Units:     d.Units,
			Revenue:   d.Revenue,
		})
		resp.SaleCount += d.SaleCount
		resp.Units += d.Units
		resp.Revenue = resp.Revenue.Add(d.Revenue)
	}
	return resp, nil
}

func validateRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() || !to.After(from) {
		return fmt.Errorf("%w: rango de fechas inválido", domain.ErrInvalidInput)
	}
	if to.Sub(from) > maxRangeDays*24*time.Hour {
		return fmt.Errorf("%w: el rango no puede superar %d días", domain.ErrInvalidInput, maxRangeDays)
	}
	return nil
}

// enrichLines agrega el nombre del producto a cada línea (fallback: el código).
func enrichLines(ctx context.Context, productRepo repository.ProductRepository, sale *entity.Sale) ([]SaleLineForReceipt, error) {
	names := make(map[string]string)
	out := make([]SaleLineForReceipt, 0, len(sale.Lines))
	for _, l := range sale.Lines {
		name, ok := names[l.ProductCode]
		if !ok {
			name = "Producto " + l.ProductCode
			p, err := productRepo.GetByCode(ctx, l.ProductCode)
			if err != nil {
				return nil, err
			}
			if p != nil {
				name = p.Name
			}
			names[l.ProductCode] = name
		}
		out = append(out, SaleLineForReceipt{SaleLineItem: *l, ProductName: name})
	}
	return out, nil
}

// ToSaleResponse mapea una venta a su DTO. lines puede ser nil (sin nombres de producto).
func ToSaleResponse(sale *entity.Sale, lines []SaleLineForReceipt) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		SaleNumber: sale.Number,
		CashierID:  sale.CashierID,
		Date:       sale.Date,
		Total:      sale.Total(),
		Items:      make([]dto.SaleLineResponse, 0, len(sale.Lines)),
	}
	for i, l := range sale.Lines {
		item := dto.SaleLineResponse{
			ProductCode: l.ProductCode,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPriceAtSale,
			Subtotal:    l.Subtotal(),
		}
		if lines != nil {
			item.ProductName = lines[i].ProductName
		}
		resp.Items = append(resp.Items, item)
	}
	return resp
}
