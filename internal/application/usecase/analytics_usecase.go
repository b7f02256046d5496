package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/PuntoVenta-api/internal/application/dto"
	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

const (
	defaultTopN     = 20
	maxTopN         = 200
	paretoThreshold = 80 // el top 20% de productos genera ~80% del ingreso
)

var (
	hundred  = decimal.NewFromInt(100)
	pareto80 = decimal.NewFromInt(paretoThreshold)
)

// AnalyticsUseCase rentabilidad por producto sobre el libro de ventas:
// ranking por ingreso, margen bruto con el costo promedio vigente y corte Pareto.
type AnalyticsUseCase struct {
	saleRepo repository.SaleRepository
}

// NewAnalyticsUseCase construye el caso de uso.
func NewAnalyticsUseCase(saleRepo repository.SaleRepository) *AnalyticsUseCase {
	return &AnalyticsUseCase{saleRepo: saleRepo}
}

// TopProducts ranking de los topN productos con más ingreso en [from, to).
// to es exclusivo; el período del reporte lo muestra inclusive.
func (uc *AnalyticsUseCase) TopProducts(ctx context.Context, from, to time.Time, topN int) (*dto.TopProductsReportDTO, error) {
	if from.IsZero() || to.IsZero() || !to.After(from) {
		return nil, fmt.Errorf("%w: rango de fechas inválido", domain.ErrInvalidInput)
	}
	if topN <= 0 {
		topN = defaultTopN
	}
	if topN > maxTopN {
		topN = maxTopN
	}

	// 1) Ranking y total del período en paralelo (consultas independientes)
	type topResult struct {
		rows []entity.ProductSales
		err  error
	}
	type totalResult struct {
		days []entity.DailySales
		err  error
	}
	topChan := make(chan topResult, 1)
	totalChan := make(chan totalResult, 1)

	go func() {
		rows, err := uc.saleRepo.TopProducts(ctx, from, to, topN)
		topChan <- topResult{rows, err}
	}()
	go func() {
		days, err := uc.saleRepo.DailySummary(ctx, from, to)
		totalChan <- totalResult{days, err}
	}()

	topRes := <-topChan
	totalRes := <-totalChan
	if topRes.err != nil {
		return nil, fmt.Errorf("analytics: ranking: %w", topRes.err)
	}
	if totalRes.err != nil {
		return nil, fmt.Errorf("analytics: total: %w", totalRes.err)
	}

	totalRevenue := decimal.Zero
	for _, d := range totalRes.days {
		totalRevenue = totalRevenue.Add(d.Revenue)
	}

	// 2) Ranking con Pareto
	ranking := buildProductRanking(topRes.rows, totalRevenue)
	paretoProducts := make([]dto.ProductRankingDTO, 0, len(ranking))
	for _, p := range ranking {
		if p.IsTopPareto {
			paretoProducts = append(paretoProducts, p)
		}
	}

	return &dto.TopProductsReportDTO{
		Period: dto.PeriodDTO{
			StartDate: from.Format("2006-01-02"),
			EndDate:   to.AddDate(0, 0, -1).Format("2006-01-02"),
		},
		TotalRevenue:   totalRevenue.Round(2),
		Ranking:        ranking,
		ParetoProducts: paretoProducts,
	}, nil
}

// buildProductRanking arma el ranking con MarginPct, RevenuePct sobre el total del período,
// el acumulado y la marca Pareto (incluye el producto que cruza el 80%).
func buildProductRanking(rows []entity.ProductSales, totalRevenue decimal.Decimal) []dto.ProductRankingDTO {
	ranking := make([]dto.ProductRankingDTO, 0, len(rows))
	cumulative := decimal.Zero

	for i, r := range rows {
		cogs := r.Cost.Mul(decimal.NewFromInt(int64(r.Units)))
		profit := r.Revenue.Sub(cogs)
		marginPct := decimal.Zero
		if r.Revenue.IsPositive() {
			marginPct = profit.Div(r.Revenue).Mul(hundred).Round(2)
		}
		revenuePct := decimal.Zero
		if totalRevenue.IsPositive() {
			revenuePct = r.Revenue.Div(totalRevenue).Mul(hundred).Round(2)
		}

		previous := cumulative
		cumulative = cumulative.Add(revenuePct)
		isPareto := previous.LessThan(pareto80) || i == 0

		name := r.Name
		if name == "" {
			name = "Producto " + r.Code
		}
		ranking = append(ranking, dto.ProductRankingDTO{
			Rank:             i + 1,
			Code:             r.Code,
			Name:             name,
			UnitsSold:        r.Units,
			GrossRevenue:     r.Revenue.Round(2),
			TotalCOGS:        cogs.Round(2),
			GrossProfit:      profit.Round(2),
			MarginPct:        marginPct,
			RevenuePct:       revenuePct,
			CumulativeRevPct: cumulative.Round(2),
			IsTopPareto:      isPareto,
		})
	}
	return ranking
}
