package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto (SKU) del punto de venta.
// Stock solo cambia por checkout (resta) o reposición (suma); nunca queda negativo.
type Product struct {
	Code             string // código único, inmutable una vez creado
	Name             string
	UnitPrice        decimal.Decimal // precio de venta vigente
	Cost             decimal.Decimal // costo promedio ponderado (inicia en 0)
	Stock            int
	ReorderThreshold int // Stock < ReorderThreshold => bajo stock
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsLowStock indica si el producto está por debajo de su umbral de reorden.
func (p *Product) IsLowStock() bool {
	return p.Stock < p.ReorderThreshold
}
