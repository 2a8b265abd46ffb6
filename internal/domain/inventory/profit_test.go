package inventory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/ceasa-api/internal/domain/entity"
	"github.com/jhoicas/ceasa-api/internal/domain/inventory"
)

func TestNewProfitRecord_Arithmetic(t *testing.T) {
	l := lot("a", 1, t0, "50", "3.00")
	c := inventory.Consume([]*entity.Lot{l}, d("10"))

	rec := inventory.NewProfitRecord("pr1", "s1", "p1", d("10"), d("5.00"), c, t0)

	assert.True(t, rec.CostTotal.Equal(d("30.00")))
	assert.True(t, rec.RevenueTotal.Equal(d("50.00")))
	assert.True(t, rec.GrossProfit.Equal(d("20.00")))
	assert.True(t, rec.MarginPercent.Equal(d("40")), rec.MarginPercent.String())
	assert.False(t, rec.CostApproximated)
}

func TestNewProfitRecord_EndToEndScenario(t *testing.T) {
	a := lot("A", 1, t0, "100", "2.00")
	b := lot("B", 2, t0.Add(24*time.Hour), "50", "2.50")
	c := inventory.Consume([]*entity.Lot{a, b}, d("120"))

	rec := inventory.NewProfitRecord("pr1", "s1", "p1", d("120"), d("4.00"), c, t0)

	assert.True(t, rec.CostTotal.Equal(d("250.00")))
	assert.True(t, rec.RevenueTotal.Equal(d("480.00")))
	assert.True(t, rec.GrossProfit.Equal(d("230.00")))
	assert.True(t, rec.MarginPercent.Round(4).Equal(d("47.9167")), rec.MarginPercent.String())
	assert.True(t, a.Exhausted)
	assert.True(t, a.RemainingQuantity.IsZero())
	assert.False(t, b.Exhausted)
	assert.True(t, b.RemainingQuantity.Equal(d("30")))
}

func TestNewProfitRecord_FlagsApproximation(t *testing.T) {
	l := lot("a", 1, t0, "2", "3.00")
	c := inventory.Consume([]*entity.Lot{l}, d("3"))

	rec := inventory.NewProfitRecord("pr1", "s1", "p1", d("3"), d("5.00"), c, t0)

	assert.True(t, rec.CostApproximated)
	assert.True(t, rec.CostTotal.Equal(d("9.00")))
}

func TestMargin(t *testing.T) {
	cases := []struct {
		name    string
		profit  string
		revenue string
		want    string
	}{
		{"positivo", "20", "50", "40"},
		{"prejuízo", "-10", "50", "-20"},
		{"receita zero", "-5", "0", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, inventory.Margin(d(tc.profit), d(tc.revenue)).Equal(d(tc.want)))
		})
	}
}

func TestAverageUnitCost(t *testing.T) {
	rec := &entity.ProfitRecord{QuantitySold: d("120"), CostTotal: d("250")}
	assert.True(t, inventory.AverageUnitCost(rec).Equal(d("2.0833")))
	assert.True(t, inventory.AverageUnitCost(&entity.ProfitRecord{}).IsZero())
}
