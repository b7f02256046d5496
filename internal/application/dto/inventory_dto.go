package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RestockRequest body para POST /api/inventory/restock.
type RestockRequest struct {
	Code     string          `json:"code" validate:"required,max=64,product_code"`
	Quantity int             `json:"quantity" validate:"gt=0"`
	UnitCost decimal.Decimal `json:"unitCost" validate:"gte=0"`
	Provider string          `json:"provider" validate:"max=200"`
}

// RestockResponse resultado de una reposición.
type RestockResponse struct {
	Code     string          `json:"code"`
	Stock    int             `json:"stock"`
	Cost     decimal.Decimal `json:"cost"`
	Movement string          `json:"movementId"`
}

// StockMovementResponse un movimiento de reposición.
type StockMovementResponse struct {
	ID        string          `json:"id"`
	Code      string          `json:"code"`
	Quantity  int             `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unitCost"`
	Provider  string          `json:"provider"`
	CreatedBy string          `json:"createdBy"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ReplenishmentSuggestionDTO representa una sugerencia de reposición para un producto
// que se encuentra por debajo de su umbral de reorden.
type ReplenishmentSuggestionDTO struct {
	Code               string          `json:"code"`
	Name               string          `json:"name"`
	CurrentStock       int             `json:"currentStock"`
	ReorderThreshold   int             `json:"reorderThreshold"`
	SuggestedOrderQty  int             `json:"suggestedOrderQty"`  // ceil(umbral*1.5) - stock
	UnitCost           decimal.Decimal `json:"unitCost"`           // costo promedio ponderado
	EstimatedOrderCost decimal.Decimal `json:"estimatedOrderCost"` // SuggestedOrderQty * UnitCost
	Priority           int             `json:"priority"`           // 1 = más urgente
}
