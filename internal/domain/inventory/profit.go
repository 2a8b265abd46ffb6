package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ceasa-api/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// Margin lucro / receita × 100; zero quando a receita não é positiva.
func Margin(profit, revenue decimal.Decimal) decimal.Decimal {
	if !revenue.IsPositive() {
		return decimal.Zero
	}
	return profit.Div(revenue).Mul(hundred)
}

// NewProfitRecord monta o lucro bruto de uma linha separada a partir do consumo FIFO.
func NewProfitRecord(id, saleID, productID string, qty, unitPrice decimal.Decimal, c Consumption, at time.Time) entity.ProfitRecord {
	cost := c.CostTotal()
	revenue := qty.Mul(unitPrice)
	profit := revenue.Sub(cost)
	return entity.ProfitRecord{
		ID:               id,
		SaleID:           saleID,
		ProductID:        productID,
		QuantitySold:     qty,
		CostTotal:        cost,
		RevenueTotal:     revenue,
		GrossProfit:      profit,
		MarginPercent:    Margin(profit, revenue),
		CostApproximated: c.Approximated(),
		ComputedAt:       at,
	}
}

// AverageUnitCost custo médio do registro; usado para precificar ajustes de reversão.
func AverageUnitCost(r *entity.ProfitRecord) decimal.Decimal {
	if !r.QuantitySold.IsPositive() {
		return decimal.Zero
	}
	return r.CostTotal.DivRound(r.QuantitySold, 4)
}
