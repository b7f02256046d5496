package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/PuntoVenta-api/internal/application/dto"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/inventory"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ReplenishmentUseCase genera la lista de reposición: productos con stock bajo el umbral,
// cantidad sugerida para volver a 1.5x el umbral y prioridad por déficit.
type ReplenishmentUseCase struct {
	productRepo repository.ProductRepository
	pdf         LowStockPDFGenerator
	storeName   string
}

// NewReplenishmentUseCase construye el caso de uso de reposición. pdf puede ser nil si no se expone el reporte.
func NewReplenishmentUseCase(productRepo repository.ProductRepository, pdf LowStockPDFGenerator, storeName string) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{productRepo: productRepo, pdf: pdf, storeName: storeName}
}

// GenerateReplenishmentList devuelve los productos bajo su umbral, el de mayor déficit primero
// (prioridad 1). El repositorio ya los entrega ordenados.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.ReplenishmentSuggestionDTO, error) {
	products, err := uc.productRepo.ListBelowReorder(ctx)
	if err != nil {
		return nil, err
	}
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(products))
	for i, p := range products {
		qty := inventory.SuggestedOrderQty(p.Stock, p.ReorderThreshold)
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			Code:               p.Code,
			Name:               p.Name,
			CurrentStock:       p.Stock,
			ReorderThreshold:   p.ReorderThreshold,
			SuggestedOrderQty:  qty,
			UnitCost:           p.Cost,
			EstimatedOrderCost: p.Cost.Mul(decimal.NewFromInt(int64(qty))),
			Priority:           i + 1,
		})
	}
	return suggestions, nil
}

// LowStockPDF genera el reporte PDF y su nombre de archivo.
func (uc *ReplenishmentUseCase) LowStockPDF(ctx context.Context) ([]byte, string, error) {
	if uc.pdf == nil {
		return nil, "", fmt.Errorf("replenishment: generador pdf no configurado")
	}
	products, err := uc.productRepo.ListBelowReorder(ctx)
	if err != nil {
		return nil, "", err
	}
	now := time.Now()
	report := LowStockReport{
		StoreName:   uc.storeName,
		GeneratedAt: now.Format("2006-01-02 15:04"),
		Items:       make([]ReportItem, 0, len(products)),
	}
	for i, p := range products {
		report.Items = append(report.Items, ReportItem{
			Product:           p,
			SuggestedOrderQty: inventory.SuggestedOrderQty(p.Stock, p.ReorderThreshold),
			Priority:          i + 1,
		})
	}
	body, err := uc.pdf.GenerateLowStockPDF(ctx, report)
	if err != nil {
		return nil, "", fmt.Errorf("replenishment: generar pdf: %w", err)
	}
	return body, fmt.Sprintf("reposicion_%s.pdf", now.Format("20060102")), nil
}
