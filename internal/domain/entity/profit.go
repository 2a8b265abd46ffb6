package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProfitRecord é o lucro bruto de um produto numa venda separada.
type ProfitRecord struct {
	ID               string
	SaleID           string
	ProductID        string
	QuantitySold     decimal.Decimal
	CostTotal        decimal.Decimal
	RevenueTotal     decimal.Decimal
	GrossProfit      decimal.Decimal
	MarginPercent    decimal.Decimal
	CostApproximated bool // parte do custo veio do último custo conhecido, não de lotes FIFO
	ComputedAt       time.Time
}
