package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterReceiptRequest body de POST /stock/receipts.
type RegisterReceiptRequest struct {
	ProductID  string          `json:"product_id" validate:"required"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	Supplier   string          `json:"supplier" validate:"max=200"`
	Notes      string          `json:"notes" validate:"max=1000"`
	ReceivedAt *time.Time      `json:"received_at"`
}

// ReceiptFilterRequest filtros de GET /stock/receipts.
type ReceiptFilterRequest struct {
	PageRequest
	ProductID string     `query:"product_id"`
	From      *time.Time `query:"from"`
	To        *time.Time `query:"to"`
}

// ReceiptResponse saída de uma entrada de estoque.
type ReceiptResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	MeasureUnit string          `json:"measure_unit"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	TotalValue  decimal.Decimal `json:"total_value"`
	Supplier    string          `json:"supplier,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	ReceivedAt  time.Time       `json:"received_at"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ReceiptListResponse lista paginada de entradas.
type ReceiptListResponse struct {
	Items []ReceiptResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// RegisterReceiptResponse entrada gravada com o lote criado e o inventário resultante.
type RegisterReceiptResponse struct {
	Receipt   ReceiptResponse   `json:"receipt"`
	Lot       LotResponse       `json:"lot"`
	Inventory InventoryResponse `json:"inventory"`
}

// LotResponse estado de um lote FIFO.
type LotResponse struct {
	ID                string          `json:"id"`
	ReceiptID         string          `json:"receipt_id"`
	OriginalQuantity  decimal.Decimal `json:"original_quantity"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	ConsumedQuantity  decimal.Decimal `json:"consumed_quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	ReceivedAt        time.Time       `json:"received_at"`
	Exhausted         bool            `json:"exhausted"`
}

// DeletionStatusResponse diz se a entrada ainda pode ser excluída e por quê.
type DeletionStatusResponse struct {
	ReceiptID string       `json:"receipt_id"`
	Deletable bool         `json:"deletable"`
	Reason    string       `json:"reason"`
	Lot       *LotResponse `json:"lot,omitempty"`
}

// InventoryResponse snapshot de inventário de um produto.
type InventoryResponse struct {
	ProductID      string          `json:"product_id"`
	ProductName    string          `json:"product_name,omitempty"`
	MeasureUnit    string          `json:"measure_unit,omitempty"`
	QuantityOnHand decimal.Decimal `json:"quantity_on_hand"`
	UnitValue      decimal.Decimal `json:"unit_value"`
	TotalValue     decimal.Decimal `json:"total_value"`
	MinimumStock   decimal.Decimal `json:"minimum_stock"`
	LowStock       bool            `json:"low_stock"`
	Notes          string          `json:"notes,omitempty"`
	LastUpdatedAt  time.Time       `json:"last_updated_at"`
}

// InventoryFilterRequest filtros de GET /stock/inventory.
type InventoryFilterRequest struct {
	PageRequest
	LowStockOnly bool `query:"low_stock_only"`
}

// InventoryListResponse lista paginada do inventário.
type InventoryListResponse struct {
	Items []InventoryResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// SetInventoryRequest body de PUT /stock/inventory/:product_id. UnitCost só é usado ao aumentar.
type SetInventoryRequest struct {
	Quantity decimal.Decimal  `json:"quantity"`
	UnitCost *decimal.Decimal `json:"unit_cost"`
	Notes    string           `json:"notes" validate:"max=1000"`
}

// StockDetailResponse visão de estoque de um produto.
type StockDetailResponse struct {
	Product           ProductResponse    `json:"product"`
	Inventory         *InventoryResponse `json:"inventory"`
	Lots              []LotResponse      `json:"lots"`
	RecentReceipts    []ReceiptResponse  `json:"recent_receipts"`
	ReceivedThisMonth decimal.Decimal    `json:"received_this_month"`
	LowStock          bool               `json:"low_stock"`
}

// StockAlertsResponse produtos abaixo do mínimo e produtos sem inventário.
type StockAlertsResponse struct {
	LowStock         []InventoryResponse `json:"low_stock"`
	WithoutInventory []ProductResponse   `json:"without_inventory"`
	Total            int                 `json:"total"`
}
