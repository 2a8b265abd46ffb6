package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ceasa-api/internal/application/dto"
	"github.com/jhoicas/ceasa-api/internal/application/inventory"
	"github.com/jhoicas/ceasa-api/internal/application/ledger"
	"github.com/jhoicas/ceasa-api/internal/application/memstore"
	"github.com/jhoicas/ceasa-api/internal/domain"
	"github.com/jhoicas/ceasa-api/internal/domain/entity"
	"github.com/jhoicas/ceasa-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

var now = time.Date(2025, 8, 15, 9, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type countingCache struct {
	invalidations int
}

func (c *countingCache) Get(context.Context, string, any) bool { return false }

func (c *countingCache) Set(context.Context, string, any, time.Duration) {}

func (c *countingCache) Invalidate(context.Context) { c.invalidations++ }

type env struct {
	store    *memstore.Store
	receipts *inventory.ReceiptUseCase
	stock    *inventory.StockUseCase
	cache    *countingCache
	led      *ledger.Ledger
}

func newEnv(t *testing.T) *env {
	t.Helper()
	st := memstore.New()
	led := ledger.New(zerolog.Nop(), ledger.WithClock(func() time.Time { return now }))
	cache := &countingCache{}
	e := &env{
		store:    st,
		receipts: inventory.NewReceiptUseCase(st, st.Repos(), led, cache),
		stock:    inventory.NewStockUseCase(st, st.Repos(), led, cache),
		cache:    cache,
		led:      led,
	}
	for _, p := range []entity.Product{
		{ID: "banana", Name: "Banana prata", MeasureUnit: entity.MeasureKg, MinimumStock: d("20"), Active: true},
		{ID: "ovo", Name: "Ovo branco", MeasureUnit: entity.MeasureDuzia, MinimumStock: d("5"), Active: true},
	} {
		p := p
		require.NoError(t, st.Repos().Products.Create(context.Background(), &p))
	}
	return e
}

func (e *env) register(t *testing.T, product, qty, cost string, at time.Time) *dto.RegisterReceiptResponse {
	t.Helper()
	out, err := e.receipts.Register(context.Background(), dto.RegisterReceiptRequest{
		ProductID: product, Quantity: d(qty), UnitCost: d(cost), ReceivedAt: &at,
	})
	require.NoError(t, err)
	return out
}

func (e *env) sell(t *testing.T, product, qty string) {
	t.Helper()
	calc := ledger.NewCalculator(e.led)
	q := d(qty)
	sale := &entity.Sale{ID: "v-" + product}
	line := &entity.SaleLine{ID: "l1", ProductID: product, FulfilledQuantity: &q, UnitPrice: d("5")}
	require.NoError(t, e.store.Run(context.Background(), func(ctx context.Context, tx repository.Tx) error {
		_, err := calc.ComputeForLine(ctx, tx, sale, line)
		return err
	}))
}

// ──────────────────────────────────────────────────────────────────────────────
// Receipts
// ──────────────────────────────────────────────────────────────────────────────

func TestRegister_ReturnsLotAndInventory(t *testing.T) {
	e := newEnv(t)

	out := e.register(t, "banana", "40", "1.50", now.Add(-time.Hour))

	assert.Equal(t, entity.MeasureKg, out.Receipt.MeasureUnit)
	assert.True(t, out.Receipt.TotalValue.Equal(d("60.00")))
	assert.True(t, out.Lot.RemainingQuantity.Equal(d("40")))
	assert.True(t, out.Inventory.QuantityOnHand.Equal(d("40")))
	assert.Equal(t, 1, e.cache.invalidations)
}

func TestRegister_UnknownProduct(t *testing.T) {
	e := newEnv(t)
	_, err := e.receipts.Register(context.Background(), dto.RegisterReceiptRequest{
		ProductID: "manga", Quantity: d("1"), UnitCost: d("1"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, e.cache.invalidations)
}

func TestDelete_GuardedByConsumption(t *testing.T) {
	e := newEnv(t)
	first := e.register(t, "banana", "10", "1.00", now.Add(-2*time.Hour))
	second := e.register(t, "banana", "10", "1.20", now.Add(-time.Hour))
	e.sell(t, "banana", "4")

	status, err := e.receipts.DeletionStatus(context.Background(), first.Receipt.ID)
	require.NoError(t, err)
	assert.False(t, status.Deletable)
	require.NotNil(t, status.Lot)
	assert.True(t, status.Lot.ConsumedQuantity.Equal(d("4")))

	err = e.receipts.Delete(context.Background(), first.Receipt.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	deletable, err := e.receipts.ListDeletable(context.Background(), dto.ReceiptFilterRequest{})
	require.NoError(t, err)
	require.Len(t, deletable.Items, 1)
	assert.Equal(t, second.Receipt.ID, deletable.Items[0].ID)

	require.NoError(t, e.receipts.Delete(context.Background(), second.Receipt.ID))
	detail, err := e.stock.GetStock(context.Background(), "banana")
	require.NoError(t, err)
	require.NotNil(t, detail.Inventory)
	assert.True(t, detail.Inventory.QuantityOnHand.Equal(d("6")))
}

func TestList_PaginatesNewestFirst(t *testing.T) {
	e := newEnv(t)
	for i := range 3 {
		e.register(t, "banana", "1", "1", now.Add(-time.Duration(3-i)*time.Hour))
	}

	out, err := e.receipts.List(context.Background(), dto.ReceiptFilterRequest{PageRequest: dto.PageRequest{Limit: 2}})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Page.Total)
	require.Len(t, out.Items, 2)
	assert.True(t, out.Items[0].ReceivedAt.After(out.Items[1].ReceivedAt))
}

// ──────────────────────────────────────────────────────────────────────────────
// Stock
// ──────────────────────────────────────────────────────────────────────────────

func TestGetStock_MonthToDateAndLowStock(t *testing.T) {
	e := newEnv(t)
	e.register(t, "banana", "8", "1.00", time.Date(2025, 7, 30, 6, 0, 0, 0, time.UTC))
	e.register(t, "banana", "7", "1.10", time.Date(2025, 8, 2, 6, 0, 0, 0, time.UTC))

	out, err := e.stock.GetStock(context.Background(), "banana")
	require.NoError(t, err)

	assert.True(t, out.ReceivedThisMonth.Equal(d("7")))
	assert.True(t, out.LowStock, "15 < mínimo 20")
	assert.Len(t, out.Lots, 2)
	assert.Len(t, out.RecentReceipts, 2)
}

func TestSetInventory_Lowering(t *testing.T) {
	e := newEnv(t)
	e.register(t, "banana", "10", "1.00", now.Add(-2*time.Hour))
	e.register(t, "banana", "10", "2.00", now.Add(-time.Hour))

	out, err := e.stock.SetInventory(context.Background(), "banana", dto.SetInventoryRequest{Quantity: d("5"), Notes: "perda"})
	require.NoError(t, err)

	assert.True(t, out.QuantityOnHand.Equal(d("5")))
	assert.True(t, out.TotalValue.Equal(d("10.00")))
	assert.Equal(t, "perda", out.Notes)

	var adj *entity.Movement
	for _, m := range e.store.Movements() {
		if m.Kind == entity.MovementAdjustment {
			m := m
			adj = &m
		}
	}
	require.NotNil(t, adj)
	assert.True(t, adj.Quantity.Equal(d("15")))
	// 10×1 + 5×2 = 20 → 1,3333 por unidade
	assert.True(t, adj.UnitPrice.Equal(d("1.3333")), adj.UnitPrice.String())
}

func TestSetInventory_RaisingUsesLastLotCost(t *testing.T) {
	e := newEnv(t)
	e.register(t, "ovo", "10", "6.00", now.Add(-time.Hour))

	out, err := e.stock.SetInventory(context.Background(), "ovo", dto.SetInventoryRequest{Quantity: d("12")})
	require.NoError(t, err)
	assert.True(t, out.QuantityOnHand.Equal(d("12")))

	list, err := e.receipts.List(context.Background(), dto.ReceiptFilterRequest{ProductID: "ovo"})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	var adj dto.ReceiptResponse
	for _, r := range list.Items {
		if r.Supplier == inventory.AdjustmentSupplier {
			adj = r
		}
	}
	assert.True(t, adj.Quantity.Equal(d("2")))
	assert.True(t, adj.UnitCost.Equal(d("6.00")))
}

func TestSetInventory_RaisingWithoutCostIsRejected(t *testing.T) {
	e := newEnv(t)
	_, err := e.stock.SetInventory(context.Background(), "ovo", dto.SetInventoryRequest{Quantity: d("3")})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "unit_cost", verr.Field)
	assert.Empty(t, e.store.Lots("ovo"))
}

func TestSetInventory_Validation(t *testing.T) {
	e := newEnv(t)
	neg := d("-1")
	cases := []struct {
		name string
		in   dto.SetInventoryRequest
	}{
		{"quantidade negativa", dto.SetInventoryRequest{Quantity: d("-2")}},
		{"custo negativo", dto.SetInventoryRequest{Quantity: d("2"), UnitCost: &neg}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.stock.SetInventory(context.Background(), "ovo", tc.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestAlerts(t *testing.T) {
	e := newEnv(t)
	e.register(t, "banana", "12", "1.00", now.Add(-time.Hour))

	out, err := e.stock.Alerts(context.Background())
	require.NoError(t, err)

	require.Len(t, out.LowStock, 1)
	assert.Equal(t, "banana", out.LowStock[0].ProductID)
	require.Len(t, out.WithoutInventory, 1)
	assert.Equal(t, "ovo", out.WithoutInventory[0].ID)
	assert.Equal(t, 2, out.Total)
}
