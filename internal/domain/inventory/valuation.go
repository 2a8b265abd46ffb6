package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ceasa-api/internal/domain/entity"
)

// Valuate calcula a posição FIFO do produto a partir dos lotes abertos:
// quantidade = Σ restante, valor = Σ restante × custo, unitário = valor / quantidade.
func Valuate(productID string, lots []*entity.Lot, at time.Time) entity.InventorySnapshot {
	qty := decimal.Zero
	value := decimal.Zero
	for _, l := range lots {
		if l.Exhausted {
			continue
		}
		qty = qty.Add(l.RemainingQuantity)
		value = value.Add(l.RemainingQuantity.Mul(l.UnitCost))
	}
	unit := decimal.Zero
	if qty.IsPositive() {
		unit = value.DivRound(qty, 4)
	}
	return entity.InventorySnapshot{
		ProductID:      productID,
		QuantityOnHand: qty,
		UnitValue:      unit,
		TotalValue:     value,
		LastUpdatedAt:  at,
	}
}
