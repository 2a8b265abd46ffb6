package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventorySnapshot posição desnormalizada de estoque por produto.
// QuantityOnHand acompanha a soma dos lotes não esgotados.
type InventorySnapshot struct {
	ProductID      string
	QuantityOnHand decimal.Decimal
	UnitValue      decimal.Decimal
	TotalValue     decimal.Decimal
	Notes          string
	LastUpdatedAt  time.Time
}
