package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleLineRequest item de uma venda.
type SaleLineRequest struct {
	ProductID   string           `json:"product_id" validate:"required"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	MeasureUnit string           `json:"measure_unit" validate:"omitempty,oneof=kg unidade litro caixa saco duzia"`
}

// CreateSaleRequest body de POST /sales.
type CreateSaleRequest struct {
	CustomerID string            `json:"customer_id" validate:"required"`
	Notes      string            `json:"notes" validate:"max=1000"`
	Lines      []SaleLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// QuickSaleRequest body de POST /sales/quick: venda de balcão já separada e paga.
type QuickSaleRequest struct {
	CustomerID *string           `json:"customer_id"`
	Notes      string            `json:"notes" validate:"max=1000"`
	Lines      []SaleLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// PickLineRequest quantidade efetivamente separada de um produto.
type PickLineRequest struct {
	ProductID      string          `json:"product_id" validate:"required"`
	ActualQuantity decimal.Decimal `json:"actual_quantity"`
}

// PickRequest body de PUT /sales/:id/pick. Produtos omitidos usam a quantidade pedida.
type PickRequest struct {
	Lines []PickLineRequest `json:"lines" validate:"dive"`
}

// SaleFilterRequest filtros de GET /sales.
type SaleFilterRequest struct {
	PageRequest
	CustomerID    string `query:"customer_id"`
	PickingStatus string `query:"picking_status" validate:"omitempty,oneof=AWAITING_PICKING PICKED"`
	PaymentStatus string `query:"payment_status" validate:"omitempty,oneof=PENDING PAID"`
}

// SaleLineResponse item de venda.
type SaleLineResponse struct {
	ID                string           `json:"id"`
	ProductID         string           `json:"product_id"`
	MeasureUnit       string           `json:"measure_unit"`
	RequestedQuantity decimal.Decimal  `json:"requested_quantity"`
	FulfilledQuantity *decimal.Decimal `json:"fulfilled_quantity"`
	UnitPrice         decimal.Decimal  `json:"unit_price"`
	LineTotal         decimal.Decimal  `json:"line_total"`
}

// SaleResponse saída de uma venda.
type SaleResponse struct {
	ID            string              `json:"id"`
	CustomerID    *string             `json:"customer_id"`
	CustomerName  string              `json:"customer_name"`
	CreatedBy     string              `json:"created_by"`
	PickedBy      *string             `json:"picked_by"`
	Total         decimal.Decimal     `json:"total"`
	PickingStatus string              `json:"picking_status"`
	PaymentStatus string              `json:"payment_status"`
	Notes         string              `json:"notes,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	PickedAt      *time.Time          `json:"picked_at"`
	PaidAt        *time.Time          `json:"paid_at"`
	Lines         []SaleLineResponse  `json:"lines"`
	Profit        *SaleProfitResponse `json:"profit,omitempty"`
}

// Status do cálculo de lucro de uma venda.
const (
	ProfitNotPicked      = "nao_separado"
	ProfitComputedFIFO   = "calculado_fifo"
	ProfitPickedNoRecord = "separado_sem_calculo"
)

// SaleProfitResponse lucro bruto de uma venda, somado dos registros FIFO.
type SaleProfitResponse struct {
	Status        string                `json:"status"`
	Revenue       decimal.Decimal       `json:"revenue"`
	Cost          decimal.Decimal       `json:"cost"`
	GrossProfit   decimal.Decimal       `json:"gross_profit"`
	MarginPercent decimal.Decimal       `json:"margin_percent"`
	Approximated  bool                  `json:"approximated"`
	Details       []ProductProfitDetail `json:"details,omitempty"`
}

// ProductProfitDetail lucro de um produto dentro de uma venda.
type ProductProfitDetail struct {
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name"`
	QuantitySold  decimal.Decimal `json:"quantity_sold"`
	Revenue       decimal.Decimal `json:"revenue"`
	Cost          decimal.Decimal `json:"cost"`
	GrossProfit   decimal.Decimal `json:"gross_profit"`
	MarginPercent decimal.Decimal `json:"margin_percent"`
	Approximated  bool            `json:"approximated"`
}

// SaleListResponse lista paginada de vendas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
