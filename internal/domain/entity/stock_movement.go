package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockMovement registra una reposición de inventario (entrada de mercancía).
type StockMovement struct {
	ID          string
	ProductCode string
	Quantity    int // siempre positivo
	UnitCost    decimal.Decimal
	Provider    string // proveedor en texto libre
	CreatedAt   time.Time
	CreatedBy   string // UserID
}
