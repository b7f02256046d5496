package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutItemRequest una línea de la canasta. "cantidad" se conserva del cliente existente.
type CheckoutItemRequest struct {
	Code     string `json:"code" validate:"required,max=64"`
	Cantidad int    `json:"cantidad" validate:"gt=0"`
}

// CheckoutRequest body para POST /api/sales/checkout.
// CashierID es opcional: el cajero se toma del token; si viene, debe coincidir.
type CheckoutRequest struct {
	Items     []CheckoutItemRequest `json:"items" validate:"required,min=1,dive"`
	CashierID string                `json:"cashierId,omitempty"`
}

// LowStockItemDTO producto bajo su umbral de reorden tras la venta.
type LowStockItemDTO struct {
	Code             string `json:"code"`
	Name             string `json:"name"`
	Stock            int    `json:"stock"`
	ReorderThreshold int    `json:"reorderThreshold"`
}

// CheckoutResponse respuesta del checkout: status "success" o "failure".
type CheckoutResponse struct {
	Status      string             `json:"status"`
	SaleNumber  int64              `json:"saleNumber,omitempty"`
	LowStock    []LowStockItemDTO  `json:"lowStock,omitempty"`
	Items       []SaleLineResponse `json:"items,omitempty"`
	Total       *decimal.Decimal   `json:"total,omitempty"`
	Error       *ErrorResponse     `json:"error,omitempty"`
	ProductCode string             `json:"productCode,omitempty"`
	Retryable   bool               `json:"retryable,omitempty"`
}

// SaleLineResponse línea de una venta.
type SaleLineResponse struct {
	ProductCode string          `json:"code"`
	ProductName string          `json:"name,omitempty"`
	Quantity    int             `json:"cantidad"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SaleResponse venta confirmada.
type SaleResponse struct {
	SaleNumber int64              `json:"saleNumber"`
	CashierID  string             `json:"cashierId"`
	Date       time.Time          `json:"date"`
	Total      decimal.Decimal    `json:"total"`
	Items      []SaleLineResponse `json:"items"`
}

// DailySalesDTO ventas de un día.
type DailySalesDTO struct {
	Day       string          `json:"day"`
	SaleCount int             `json:"saleCount"`
	Units     int             `json:"units"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// SalesSummaryResponse resumen diario de ventas en un rango.
type SalesSummaryResponse struct {
	From      string          `json:"from"`
	To        string          `json:"to"`
	SaleCount int             `json:"saleCount"`
	Units     int             `json:"units"`
	Revenue   decimal.Decimal `json:"revenue"`
	Days      []DailySalesDTO `json:"days"`
}
