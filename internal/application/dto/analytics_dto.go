package dto

import "github.com/shopspring/decimal"

// PeriodDTO rango de fechas del reporte (YYYY-MM-DD, ambos inclusive).
type PeriodDTO struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// ProductRankingDTO un producto en el ranking por ingreso.
type ProductRankingDTO struct {
	Rank             int             `json:"rank"`
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	UnitsSold        int             `json:"unitsSold"`
	GrossRevenue     decimal.Decimal `json:"grossRevenue"`
	TotalCOGS        decimal.Decimal `json:"totalCogs"`   // unidades * costo promedio vigente
	GrossProfit      decimal.Decimal `json:"grossProfit"` // ingreso - COGS
	MarginPct        decimal.Decimal `json:"marginPct"`
	RevenuePct       decimal.Decimal `json:"revenuePct"` // sobre el ingreso total del período
	CumulativeRevPct decimal.Decimal `json:"cumulativeRevenuePct"`
	IsTopPareto      bool            `json:"isTopPareto"`
}

// TopProductsReportDTO ranking de productos del período con el corte Pareto 80/20.
type TopProductsReportDTO struct {
	Period         PeriodDTO           `json:"period"`
	TotalRevenue   decimal.Decimal     `json:"totalRevenue"`
	Ranking        []ProductRankingDTO `json:"ranking"`
	ParetoProducts []ProductRankingDTO `json:"paretoProducts"`
}
