package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	Code             string          `json:"code" validate:"required,max=64,product_code"`
	Name             string          `json:"name" validate:"required,min=1,max=200"`
	UnitPrice        decimal.Decimal `json:"unitPrice" validate:"gte=0"`
	Stock            int             `json:"stock" validate:"min=0"`
	ReorderThreshold int             `json:"reorderThreshold" validate:"min=0"`
}

// UpdateProductRequest entrada para actualizar un producto (sin Stock ni Cost).
type UpdateProductRequest struct {
	Name             *string          `json:"name" validate:"omitempty,min=1,max=200"`
	UnitPrice        *decimal.Decimal `json:"unitPrice" validate:"omitempty,gte=0"`
	ReorderThreshold *int             `json:"reorderThreshold" validate:"omitempty,min=0"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	Cost             decimal.Decimal `json:"cost"`
	Stock            int             `json:"stock"`
	ReorderThreshold int             `json:"reorderThreshold"`
	LowStock         bool            `json:"lowStock"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
