package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleLineItem es una línea del libro de ventas (append-only).
// Las líneas con el mismo SaleNumber forman una venta.
type SaleLineItem struct {
	ID              string
	SaleNumber      int64
	ProductCode     string
	Quantity        int
	UnitPriceAtSale decimal.Decimal // precio cobrado, capturado al momento de la venta
	Timestamp       time.Time
	CashierID       string
}

// Subtotal devuelve Quantity * UnitPriceAtSale.
func (l *SaleLineItem) Subtotal() decimal.Decimal {
	return l.UnitPriceAtSale.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Sale agrupa las líneas de un mismo checkout (modelo de lectura).
type Sale struct {
	Number    int64
	CashierID string
	Date      time.Time
	Lines     []*SaleLineItem
}

// Total suma los subtotales de todas las líneas.
func (s *Sale) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// ProductSales ventas acumuladas de un producto en un período.
// Cost es el costo promedio vigente del producto (cero si ya no existe).
type ProductSales struct {
	Code    string
	Name    string
	Units   int
	Revenue decimal.Decimal
	Cost    decimal.Decimal
}

// DailySales resumen de ventas por día.
type DailySales struct {
	Day       time.Time
	SaleCount int
	Units     int
	Revenue   decimal.Decimal
}
