package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ceasa-api/internal/application/ledger"
	"github.com/jhoicas/ceasa-api/internal/application/memstore"
	"github.com/jhoicas/ceasa-api/internal/domain"
	"github.com/jhoicas/ceasa-api/internal/domain/entity"
	"github.com/jhoicas/ceasa-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

var day0 = time.Date(2025, 8, 1, 6, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	store *memstore.Store
	led   *ledger.Ledger
	calc  *ledger.Calculator
	clock time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: memstore.New(), clock: day0}
	seq := 0
	f.led = ledger.New(zerolog.Nop(),
		ledger.WithClock(func() time.Time { return f.clock }),
		ledger.WithIDGenerator(func() string { seq++; return fmt.Sprintf("id-%03d", seq) }),
	)
	f.calc = ledger.NewCalculator(f.led)
	require.NoError(t, f.store.Repos().Products.Create(context.Background(), &entity.Product{
		ID: "tomate", Name: "Tomate", MeasureUnit: entity.MeasureKg, SalePrice: d("4.00"), Active: true,
	}))
	return f
}

func (f *fixture) run(t *testing.T, fn func(ctx context.Context, tx repository.Tx) error) error {
	t.Helper()
	return f.store.Run(context.Background(), fn)
}

func (f *fixture) receive(t *testing.T, qty, cost string, at time.Time) *entity.Receipt {
	t.Helper()
	r := &entity.Receipt{ProductID: "tomate", Quantity: d(qty), UnitCost: d(cost), ReceivedAt: at, Supplier: "Sítio Boa Vista"}
	require.NoError(t, f.run(t, func(ctx context.Context, tx repository.Tx) error {
		_, _, err := f.led.RecordReceipt(ctx, tx, r)
		return err
	}))
	return r
}

func (f *fixture) snapshot(t *testing.T) *entity.InventorySnapshot {
	t.Helper()
	s, err := f.store.Repos().Inventory.Get(context.Background(), "tomate")
	require.NoError(t, err)
	return s
}

func (f *fixture) assertSnapshotMatchesLots(t *testing.T) {
	t.Helper()
	total := decimal.Zero
	for _, l := range f.store.Lots("tomate") {
		total = total.Add(l.RemainingQuantity)
		assert.False(t, l.RemainingQuantity.IsNegative())
		assert.True(t, l.RemainingQuantity.LessThanOrEqual(l.OriginalQuantity))
	}
	s := f.snapshot(t)
	require.NotNil(t, s)
	assert.True(t, s.QuantityOnHand.Equal(total), "inventário %s, lotes %s", s.QuantityOnHand, total)
}

func pickedSale(id string, qty, price string) (*entity.Sale, *entity.SaleLine) {
	q := d(qty)
	line := entity.SaleLine{ID: id + "-l1", SaleID: id, ProductID: "tomate", RequestedQuantity: q, FulfilledQuantity: &q, UnitPrice: d(price)}
	s := &entity.Sale{ID: id, CustomerName: "Mercado Central", Lines: []entity.SaleLine{line}}
	return s, &s.Lines[0]
}

// ──────────────────────────────────────────────────────────────────────────────
// RecordReceipt
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordReceipt_CreatesLotInflowAndSnapshot(t *testing.T) {
	f := newFixture(t)
	r := f.receive(t, "100", "2.00", day0)

	lots := f.store.Lots("tomate")
	require.Len(t, lots, 1)
	assert.Equal(t, r.ID, lots[0].ReceiptID)
	assert.True(t, lots[0].RemainingQuantity.Equal(d("100")))
	assert.True(t, r.TotalValue.Equal(d("200.00")))
	assert.Equal(t, entity.MeasureKg, r.MeasureUnit)

	movs := f.store.Movements()
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementInflow, movs[0].Kind)
	assert.True(t, movs[0].TotalValue.Equal(d("200.00")))
	assert.Equal(t, "Entrada de estoque - Sítio Boa Vista", movs[0].Note)

	s := f.snapshot(t)
	assert.True(t, s.QuantityOnHand.Equal(d("100")))
	assert.True(t, s.UnitValue.Equal(d("2.00")))
}

func TestRecordReceipt_Validation(t *testing.T) {
	cases := []struct {
		name, product, qty, cost string
		want                     error
	}{
		{"quantidade zero", "tomate", "0", "2", domain.ErrInvalidInput},
		{"custo negativo", "tomate", "5", "-1", domain.ErrInvalidInput},
		{"produto inexistente", "alface", "5", "1", domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			err := f.run(t, func(ctx context.Context, tx repository.Tx) error {
				_, _, err := f.led.RecordReceipt(ctx, tx, &entity.Receipt{ProductID: tc.product, Quantity: d(tc.qty), UnitCost: d(tc.cost)})
				return err
			})
			assert.ErrorIs(t, err, tc.want)
			assert.Empty(t, f.store.Movements())
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Cenário completo: entrada, venda, reversão
// ──────────────────────────────────────────────────────────────────────────────

func TestLedger_ReceiveSellReverse(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "100", "2.00", day0)
	f.receive(t, "50", "2.50", day0.Add(24*time.Hour))
	sale, line := pickedSale("v1", "120", "4.00")

	var rec *entity.ProfitRecord
	require.NoError(t, f.run(t, func(ctx context.Context, tx repository.Tx) error {
		var err error
		rec, err = f.calc.ComputeForLine(ctx, tx, sale, line)
		return err
	}))

	assert.True(t, rec.CostTotal.Equal(d("250.00")))
	assert.True(t, rec.RevenueTotal.Equal(d("480.00")))
	assert.True(t, rec.GrossProfit.Equal(d("230.00")))
	assert.True(t, rec.MarginPercent.Round(4).Equal(d("47.9167")))
	assert.False(t, rec.CostApproximated)

	lots := f.store.Lots("tomate")
	assert.True(t, lots[0].Exhausted)
	assert.True(t, lots[1].RemainingQuantity.Equal(d("30")))
	assert.True(t, f.snapshot(t).QuantityOnHand.Equal(d("30")))
	f.assertSnapshotMatchesLots(t)

	movs := f.store.Movements()
	require.Len(t, movs, 3)
	out := movs[2]
	assert.Equal(t, entity.MovementOutflow, out.Kind)
	assert.True(t, out.TotalValue.Equal(d("480.00")))
	assert.Equal(t, "Venda #v1 - Cliente: Mercado Central", out.Note)

	require.NoError(t, f.run(t, func(ctx context.Context, tx repository.Tx) error {
		_, err := f.calc.ReverseForSale(ctx, tx, sale)
		return err
	}))

	lots = f.store.Lots("tomate")
	assert.True(t, lots[0].RemainingQuantity.Equal(d("100")))
	assert.False(t, lots[0].Exhausted)
	assert.True(t, lots[1].RemainingQuantity.Equal(d("50")))
	assert.True(t, f.snapshot(t).QuantityOnHand.Equal(d("150")))
	assert.Len(t, f.store.Movements(), 2)
	recs, err := f.store.Repos().Profits.ListBySale(context.Background(), "v1")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestComputeForLine_WithoutLotsIsApproximated(t *testing.T) {
	f := newFixture(t)
	sale, line := pickedSale("v1", "3", "4.00")

	var rec *entity.ProfitRecord
	require.NoError(t, f.run(t, func(ctx context.Context, tx repository.Tx) error {
		var err error
		rec, err = f.calc.ComputeForLine(ctx, tx, sale, line)
		return err
	}))

	assert.True(t, rec.CostApproximated)
	assert.True(t, rec.CostTotal.IsZero())
	assert.True(t, rec.GrossProfit.Equal(d("12.00")))
}

func TestComputeForLine_RequiresFulfilledQuantity(t *testing.T) {
	f := newFixture(t)
	sale, line := pickedSale("v1", "3", "4.00")
	line.FulfilledQuantity = nil

	err := f.run(t, func(ctx context.Context, tx repository.Tx) error {
		_, err := f.calc.ComputeForLine(ctx, tx, sale, line)
		return err
	})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestReverseForSale_ExcessBecomesAdjustment(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "10", "2.00", day0)
	sale, line := pickedSale("v1", "6", "4.00")

	require.NoError(t, f.run(t, func(ctx context.Context, tx repository.Tx) error {
		_, err := f.calc.ComputeForLine(ctx, tx, sale, line)
		return err
	}))
	// Registro de lucro inflado: o lote só comporta 6 de volta.
	require.NoError(t, f.run(t, func(ctx context.Context, tx repository.Tx) error {
		_, err := f.led.Restore(ctx, tx, "tomate", d("8"), &entity.ProfitRecord{SaleID: "v1", QuantitySold: d("8"), CostTotal: d("16")})
		return err
	}))

	lots := f.store.Lots("tomate")
	assert.True(t, lots[0].RemainingQuantity.Equal(d("10")))
	f.assertSnapshotMatchesLots(t)

	var adj []entity.Movement
	for _, m := range f.store.Movements() {
		if m.Kind == entity.MovementAdjustment {
			adj = append(adj, m)
		}
	}
	require.Len(t, adj, 1)
	assert.True(t, adj[0].Quantity.Equal(d("2")))
	assert.True(t, adj[0].UnitPrice.Equal(d("2")))
	assert.True(t, adj[0].Origin.IsNone())
}

// ──────────────────────────────────────────────────────────────────────────────
// RemoveReceipt
// ──────────────────────────────────────────────────────────────────────────────

func TestRemoveReceipt_IntactLot(t *testing.T) {
	f := newFixture(t)
	r := f.receive(t, "10", "2.00", day0)

	require.NoError(t, f.run(t, func(ctx context.Context, tx repository.Tx) error {
		return f.led.RemoveReceipt(ctx, tx, r.ID)
	}))

	assert.Empty(t, f.store.Lots("tomate"))
	assert.Empty(t, f.store.Movements())
	assert.Nil(t, f.snapshot(t), "sem entradas restantes o inventário é removido")
}

func TestRemoveReceipt_KeepsSnapshotWhenOtherReceiptsExist(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "10", "2.00", day0)
	r2 := f.receive(t, "5", "3.00", day0.Add(time.Hour))

	require.NoError(t, f.run(t, func(ctx context.Context, tx repository.Tx) error {
		return f.led.RemoveReceipt(ctx, tx, r2.ID)
	}))

	s := f.snapshot(t)
	require.NotNil(t, s)
	assert.True(t, s.QuantityOnHand.Equal(d("10")))
}

func TestRemoveReceipt_ConsumedLotIsConflict(t *testing.T) {
	f := newFixture(t)
	r := f.receive(t, "10", "2.00", day0)
	sale, line := pickedSale("v1", "1", "4.00")
	require.NoError(t, f.run(t, func(ctx context.Context, tx repository.Tx) error {
		_, err := f.calc.ComputeForLine(ctx, tx, sale, line)
		return err
	}))

	err := f.run(t, func(ctx context.Context, tx repository.Tx) error {
		return f.led.RemoveReceipt(ctx, tx, r.ID)
	})

	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Len(t, f.store.Lots("tomate"), 1)
}

func TestRemoveReceipt_Unknown(t *testing.T) {
	f := newFixture(t)
	err := f.run(t, func(ctx context.Context, tx repository.Tx) error {
		return f.led.RemoveReceipt(ctx, tx, "nao-existe")
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Atomicidade e consulta
// ──────────────────────────────────────────────────────────────────────────────

func TestComputeForLine_FailureRollsBackLots(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "10", "2.00", day0)
	sale, line := pickedSale("v1", "4", "4.00")
	f.store.FailOn("Profits.Create", errors.New("disco cheio"))

	err := f.run(t, func(ctx context.Context, tx repository.Tx) error {
		_, err := f.calc.ComputeForLine(ctx, tx, sale, line)
		return err
	})

	require.Error(t, err)
	assert.True(t, f.store.Lots("tomate")[0].RemainingQuantity.Equal(d("10")))
	assert.True(t, f.snapshot(t).QuantityOnHand.Equal(d("10")))
	assert.Len(t, f.store.Movements(), 1)
}

func TestQuery_FiltersAndRestarts(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "10", "2.00", day0)
	f.receive(t, "5", "3.00", day0.Add(48*time.Hour))
	from := day0.Add(24 * time.Hour)

	seq := ledger.Query(context.Background(), f.store.Repos().Movements, repository.MovementFilter{From: &from})

	for range 2 {
		var got []entity.Movement
		for m, err := range seq {
			require.NoError(t, err)
			got = append(got, m)
		}
		require.Len(t, got, 1)
		assert.True(t, got[0].TotalValue.Equal(d("15.00")))
	}
}

func TestQuery_StopsEarly(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "10", "2.00", day0)
	f.receive(t, "5", "3.00", day0.Add(time.Hour))

	n := 0
	for _, err := range ledger.Query(context.Background(), f.store.Repos().Movements, repository.MovementFilter{}) {
		require.NoError(t, err)
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestQuery_PropagatesError(t *testing.T) {
	f := newFixture(t)
	f.store.FailOn("Movements.Each", errors.New("conexão perdida"))

	var errs []error
	for _, err := range ledger.Query(context.Background(), f.store.Repos().Movements, repository.MovementFilter{}) {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.EqualError(t, errs[0], "conexão perdida")
}
