package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para criar um produto.
type CreateProductRequest struct {
	Name         string          `json:"name" validate:"required,min=1,max=200"`
	Description  string          `json:"description" validate:"max=1000"`
	SalePrice    decimal.Decimal `json:"sale_price"`
	MeasureUnit  string          `json:"measure_unit" validate:"required,oneof=kg unidade litro caixa saco duzia"`
	MinimumStock decimal.Decimal `json:"minimum_stock"`
}

// UpdateProductRequest atualização parcial de produto.
type UpdateProductRequest struct {
	Name         *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description  *string          `json:"description" validate:"omitempty,max=1000"`
	SalePrice    *decimal.Decimal `json:"sale_price"`
	MeasureUnit  *string          `json:"measure_unit" validate:"omitempty,oneof=kg unidade litro caixa saco duzia"`
	MinimumStock *decimal.Decimal `json:"minimum_stock"`
	Active       *bool            `json:"active"`
}

// ProductFilterRequest filtros de GET /products.
type ProductFilterRequest struct {
	PageRequest
	Search     string `query:"search"`
	ActiveOnly bool   `query:"active_only"`
}

// ProductResponse saída de um produto.
type ProductResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	SalePrice    decimal.Decimal `json:"sale_price"`
	MeasureUnit  string          `json:"measure_unit"`
	MinimumStock decimal.Decimal `json:"minimum_stock"`
	Active       bool            `json:"active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de produtos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
