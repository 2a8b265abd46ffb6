package sales_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ceasa-api/internal/application/dto"
	"github.com/jhoicas/ceasa-api/internal/application/ledger"
	"github.com/jhoicas/ceasa-api/internal/application/memstore"
	"github.com/jhoicas/ceasa-api/internal/application/sales"
	"github.com/jhoicas/ceasa-api/internal/domain"
	"github.com/jhoicas/ceasa-api/internal/domain/entity"
	"github.com/jhoicas/ceasa-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

type env struct {
	store       *memstore.Store
	led         *ledger.Ledger
	fulfillment *sales.FulfillmentUseCase
	sales       *sales.SaleUseCase
	clock       time.Time
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{store: memstore.New(), clock: time.Date(2025, 8, 1, 6, 0, 0, 0, time.UTC)}
	seq := 0
	e.led = ledger.New(zerolog.Nop(),
		ledger.WithClock(func() time.Time { return e.clock }),
		ledger.WithIDGenerator(func() string { seq++; return fmt.Sprintf("id-%03d", seq) }),
	)
	e.fulfillment = sales.NewFulfillmentUseCase(e.store, e.led, nil, 0, zerolog.Nop())
	e.sales = sales.NewSaleUseCase(e.store, e.store.Repos(), e.led, nil, nil)

	ctx := context.Background()
	repos := e.store.Repos()
	for _, p := range []entity.Product{
		{ID: "alface", Name: "Alface crespa", MeasureUnit: entity.MeasureUnidade, SalePrice: d("2.50"), Active: true},
		{ID: "tomate", Name: "Tomate", MeasureUnit: entity.MeasureKg, SalePrice: d("4.00"), Active: true},
	} {
		require.NoError(t, repos.Products.Create(ctx, &p))
	}
	require.NoError(t, repos.Customers.Create(ctx, &entity.Customer{ID: "c1", Name: "Mercado Central", Document: "12345678000199", Active: true}))
	return e
}

func (e *env) receive(t *testing.T, product, qty, cost string) {
	t.Helper()
	require.NoError(t, e.store.Run(context.Background(), func(ctx context.Context, tx repository.Tx) error {
		_, _, err := e.led.RecordReceipt(ctx, tx, &entity.Receipt{ProductID: product, Quantity: d(qty), UnitCost: d(cost)})
		return err
	}))
	e.clock = e.clock.Add(time.Hour)
}

func (e *env) createSale(t *testing.T, lines ...sales.NewLine) *entity.Sale {
	t.Helper()
	s, err := e.sales.Create(context.Background(), sales.NewSale{CustomerID: ptr("c1"), CreatedBy: "u-admin", Lines: lines})
	require.NoError(t, err)
	return s
}

func line(product, qty, price string) sales.NewLine {
	return sales.NewLine{ProductID: product, Quantity: d(qty), UnitPrice: ptr(d(price))}
}

func (e *env) onHand(t *testing.T, product string) decimal.Decimal {
	t.Helper()
	s, err := e.store.Repos().Inventory.Get(context.Background(), product)
	require.NoError(t, err)
	if s == nil {
		return decimal.Zero
	}
	return s.QuantityOnHand
}

func (e *env) remaining(t *testing.T, product string) []string {
	t.Helper()
	var out []string
	for _, l := range e.store.Lots(product) {
		out = append(out, l.RemainingQuantity.String())
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Pick
// ──────────────────────────────────────────────────────────────────────────────

func TestPick_EndToEndFIFO(t *testing.T) {
	e := newEnv(t)
	e.receive(t, "tomate", "100", "2.00")
	e.receive(t, "tomate", "50", "2.50")
	sale := e.createSale(t, line("tomate", "130", "4.00"))

	picked, err := e.fulfillment.Pick(context.Background(), sale.ID,
		[]sales.LineUpdate{{ProductID: "tomate", ActualQuantity: d("120")}}, "u-separador")
	require.NoError(t, err)

	assert.Equal(t, entity.PickingPicked, picked.PickingStatus)
	assert.Equal(t, "u-separador", *picked.PickedBy)
	assert.NotNil(t, picked.PickedAt)
	assert.True(t, picked.Total.Equal(d("480.00")))
	assert.Equal(t, []string{"0", "30"}, e.remaining(t, "tomate"))
	assert.True(t, e.onHand(t, "tomate").Equal(d("30")))

	got, err := e.sales.Get(context.Background(), sale.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Profit)
	assert.Equal(t, dto.ProfitComputedFIFO, got.Profit.Status)
	assert.True(t, got.Profit.Cost.Equal(d("250.00")))
	assert.True(t, got.Profit.GrossProfit.Equal(d("230.00")))
	assert.True(t, got.Profit.MarginPercent.Equal(d("47.92")))
	require.Len(t, got.Profit.Details, 1)
	assert.Equal(t, "Tomate", got.Profit.Details[0].ProductName)
}

func TestPick_UnnamedLinesUseRequestedQuantity(t *testing.T) {
	e := newEnv(t)
	e.receive(t, "tomate", "20", "2.00")
	e.receive(t, "alface", "30", "1.00")
	sale := e.createSale(t, line("tomate", "10", "4.00"), line("alface", "12", "2.50"))

	picked, err := e.fulfillment.Pick(context.Background(), sale.ID,
		[]sales.LineUpdate{{ProductID: "tomate", ActualQuantity: d("9.5")}}, "u1")
	require.NoError(t, err)

	for _, l := range picked.Lines {
		require.NotNil(t, l.FulfilledQuantity)
		switch l.ProductID {
		case "tomate":
			assert.True(t, l.FulfilledQuantity.Equal(d("9.5")))
		case "alface":
			assert.True(t, l.FulfilledQuantity.Equal(d("12")))
		}
	}
	assert.True(t, picked.Total.Equal(d("68.00")), picked.Total.String())
	assert.True(t, e.onHand(t, "alface").Equal(d("18")))
}

func TestPick_InsufficientStockIsAllOrNothing(t *testing.T) {
	e := newEnv(t)
	e.receive(t, "tomate", "50", "2.00")
	e.receive(t, "alface", "3", "1.00")
	sale := e.createSale(t, line("tomate", "10", "4.00"), line("alface", "5", "2.50"))
	movementsBefore := len(e.store.Movements())

	_, err := e.fulfillment.Pick(context.Background(), sale.ID, nil, "u1")

	var short *domain.InsufficientStockError
	require.ErrorAs(t, err, &short)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	require.Len(t, short.Items, 1)
	assert.Equal(t, "alface", short.Items[0].ProductID)
	assert.Equal(t, "Alface crespa", short.Items[0].ProductName)
	assert.True(t, short.Items[0].Requested.Equal(d("5")))
	assert.True(t, short.Items[0].Available.Equal(d("3")))

	assert.Equal(t, []string{"50"}, e.remaining(t, "tomate"))
	assert.Len(t, e.store.Movements(), movementsBefore)
	got, err := e.sales.Get(context.Background(), sale.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PickingAwaiting, got.PickingStatus)
	assert.Equal(t, dto.ProfitNotPicked, got.Profit.Status)
}

func TestPick_ListsEveryShortProduct(t *testing.T) {
	e := newEnv(t)
	sale := e.createSale(t, line("tomate", "1", "4.00"), line("alface", "1", "2.50"))

	_, err := e.fulfillment.Pick(context.Background(), sale.ID, nil, "u1")

	var short *domain.InsufficientStockError
	require.ErrorAs(t, err, &short)
	require.Len(t, short.Items, 2)
	assert.Equal(t, "alface", short.Items[0].ProductID, "ordem crescente de id")
	assert.Equal(t, "tomate", short.Items[1].ProductID)
}

func TestPick_Rejections(t *testing.T) {
	cases := []struct {
		name    string
		updates []sales.LineUpdate
		want    error
	}{
		{"quantidade zero", []sales.LineUpdate{{ProductID: "tomate", ActualQuantity: decimal.Zero}}, domain.ErrInvalidInput},
		{"quantidade negativa", []sales.LineUpdate{{ProductID: "tomate", ActualQuantity: d("-1")}}, domain.ErrInvalidInput},
		{"produto fora da venda", []sales.LineUpdate{{ProductID: "alface", ActualQuantity: d("1")}}, domain.ErrInvalidInput},
		{"produto repetido", []sales.LineUpdate{
			{ProductID: "tomate", ActualQuantity: d("1")},
			{ProductID: "tomate", ActualQuantity: d("2")},
		}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)
			e.receive(t, "tomate", "10", "2.00")
			sale := e.createSale(t, line("tomate", "5", "4.00"))

			_, err := e.fulfillment.Pick(context.Background(), sale.ID, tc.updates, "u1")
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, []string{"10"}, e.remaining(t, "tomate"))
		})
	}
}

func TestPick_AlreadyPickedIsConflict(t *testing.T) {
	e := newEnv(t)
	e.receive(t, "tomate", "10", "2.00")
	sale := e.createSale(t, line("tomate", "5", "4.00"))
	_, err := e.fulfillment.Pick(context.Background(), sale.ID, nil, "u1")
	require.NoError(t, err)

	_, err = e.fulfillment.Pick(context.Background(), sale.ID, nil, "u1")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, []string{"5"}, e.remaining(t, "tomate"))
}

func TestPick_UnknownSale(t *testing.T) {
	e := newEnv(t)
	_, err := e.fulfillment.Pick(context.Background(), "nao-existe", nil, "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// CancelPick
// ──────────────────────────────────────────────────────────────────────────────

func TestCancelPick_RestoresLotsAndTotals(t *testing.T) {
	e := newEnv(t)
	e.receive(t, "tomate", "100", "2.00")
	e.receive(t, "tomate", "50", "2.50")
	sale := e.createSale(t, line("tomate", "130", "4.00"))
	_, err := e.fulfillment.Pick(context.Background(), sale.ID,
		[]sales.LineUpdate{{ProductID: "tomate", ActualQuantity: d("120")}}, "u1")
	require.NoError(t, err)

	got, err := e.fulfillment.CancelPick(context.Background(), sale.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.PickingAwaiting, got.PickingStatus)
	assert.Nil(t, got.PickedBy)
	assert.Nil(t, got.PickedAt)
	assert.Nil(t, got.Lines[0].FulfilledQuantity)
	assert.True(t, got.Total.Equal(d("520.00")))
	assert.Equal(t, []string{"100", "50"}, e.remaining(t, "tomate"))
	assert.True(t, e.onHand(t, "tomate").Equal(d("150")))
	for _, m := range e.store.Movements() {
		assert.NotEqual(t, entity.MovementOutflow, m.Kind)
	}
}

func TestCancelPick_Conflicts(t *testing.T) {
	e := newEnv(t)
	e.receive(t, "tomate", "10", "2.00")
	sale := e.createSale(t, line("tomate", "5", "4.00"))

	_, err := e.fulfillment.CancelPick(context.Background(), sale.ID)
	assert.ErrorIs(t, err, domain.ErrConflict, "não separada")

	_, err = e.fulfillment.Pick(context.Background(), sale.ID, nil, "u1")
	require.NoError(t, err)
	_, err = e.sales.MarkPaid(context.Background(), sale.ID)
	require.NoError(t, err)

	_, err = e.fulfillment.CancelPick(context.Background(), sale.ID)
	assert.ErrorIs(t, err, domain.ErrConflict, "já paga")
	assert.Equal(t, []string{"5"}, e.remaining(t, "tomate"))
}

// ──────────────────────────────────────────────────────────────────────────────
// DeleteSale
// ──────────────────────────────────────────────────────────────────────────────

func TestDeleteSale_PickedRestoresStock(t *testing.T) {
	e := newEnv(t)
	e.receive(t, "tomate", "10", "2.00")
	sale := e.createSale(t, line("tomate", "4", "4.00"))
	_, err := e.fulfillment.Pick(context.Background(), sale.ID, nil, "u1")
	require.NoError(t, err)

	require.NoError(t, e.fulfillment.DeleteSale(context.Background(), sale.ID))

	assert.Equal(t, []string{"10"}, e.remaining(t, "tomate"))
	assert.True(t, e.onHand(t, "tomate").Equal(d("10")))
	_, err = e.sales.Get(context.Background(), sale.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	for _, m := range e.store.Movements() {
		_, fromSale := m.Origin.SaleID()
		assert.False(t, fromSale)
	}
}

func TestDeleteSale_UnpickedHasNoInventoryEffect(t *testing.T) {
	e := newEnv(t)
	e.receive(t, "tomate", "10", "2.00")
	sale := e.createSale(t, line("tomate", "4", "4.00"))

	require.NoError(t, e.fulfillment.DeleteSale(context.Background(), sale.ID))
	assert.Equal(t, []string{"10"}, e.remaining(t, "tomate"))
}

func TestDeleteSale_OutsideWindow(t *testing.T) {
	e := newEnv(t)
	sale := e.createSale(t, line("tomate", "4", "4.00"))
	e.clock = e.clock.Add(25 * time.Hour)

	err := e.fulfillment.DeleteSale(context.Background(), sale.ID)

	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Reason, "24 horas")
	_, err = e.sales.Get(context.Background(), sale.ID)
	assert.NoError(t, err)
}

func TestDeleteSale_ConfigurableWindow(t *testing.T) {
	e := newEnv(t)
	uc := sales.NewFulfillmentUseCase(e.store, e.led, nil, 48*time.Hour, zerolog.Nop())
	sale := e.createSale(t, line("tomate", "4", "4.00"))
	e.clock = e.clock.Add(30 * time.Hour)

	assert.NoError(t, uc.DeleteSale(context.Background(), sale.ID))
}

// ──────────────────────────────────────────────────────────────────────────────
// QuickSale, Create, MarkPaid
// ──────────────────────────────────────────────────────────────────────────────

func TestQuickSale_CounterSaleIsPickedAndPaid(t *testing.T) {
	e := newEnv(t)
	e.receive(t, "alface", "20", "1.00")

	sale, err := e.fulfillment.QuickSale(context.Background(), sales.NewSale{
		CreatedBy: "u1",
		Lines:     []sales.NewLine{{ProductID: "alface", Quantity: d("6")}},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.PickingPicked, sale.PickingStatus)
	assert.Equal(t, entity.PaymentPaid, sale.PaymentStatus)
	assert.NotNil(t, sale.PaidAt)
	assert.Nil(t, sale.CustomerID)
	assert.True(t, sale.Total.Equal(d("15.00")), "preço de venda do produto")
	assert.True(t, e.onHand(t, "alface").Equal(d("14")))

	var note string
	for _, m := range e.store.Movements() {
		if m.Kind == entity.MovementOutflow {
			note = m.Note
		}
	}
	assert.Equal(t, fmt.Sprintf("Venda #%s - Cliente: Balcão", sale.ID), note)
}

func TestQuickSale_InsufficientCreatesNothing(t *testing.T) {
	e := newEnv(t)
	e.receive(t, "alface", "2", "1.00")

	_, err := e.fulfillment.QuickSale(context.Background(), sales.NewSale{
		CreatedBy: "u1",
		Lines:     []sales.NewLine{{ProductID: "alface", Quantity: d("6")}},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	list, err := e.sales.List(context.Background(), dto.SaleFilterRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

func TestQuickSale_RepeatedProductIsRejected(t *testing.T) {
	e := newEnv(t)
	e.receive(t, "tomate", "100", "2.00")

	_, err := e.fulfillment.QuickSale(context.Background(), sales.NewSale{
		CreatedBy: "u1",
		Lines:     []sales.NewLine{line("tomate", "10", "4.00"), line("tomate", "5", "4.00")},
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "lines", verr.Field)

	assert.Equal(t, []string{"100"}, e.remaining(t, "tomate"))
	records, err := e.store.Repos().Profits.List(context.Background(), repository.ProfitFilter{ProductID: "tomate"})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCreate_Validation(t *testing.T) {
	cases := []struct {
		name string
		in   sales.NewSale
		want error
	}{
		{"sem cliente", sales.NewSale{Lines: []sales.NewLine{line("tomate", "1", "4")}}, domain.ErrInvalidInput},
		{"cliente inexistente", sales.NewSale{CustomerID: ptr("c9"), Lines: []sales.NewLine{line("tomate", "1", "4")}}, domain.ErrNotFound},
		{"produto inexistente", sales.NewSale{CustomerID: ptr("c1"), Lines: []sales.NewLine{line("manga", "1", "4")}}, domain.ErrNotFound},
		{"sem itens", sales.NewSale{CustomerID: ptr("c1")}, domain.ErrInvalidInput},
		{"quantidade zero", sales.NewSale{CustomerID: ptr("c1"), Lines: []sales.NewLine{line("tomate", "0", "4")}}, domain.ErrInvalidInput},
		{"preço zero", sales.NewSale{CustomerID: ptr("c1"), Lines: []sales.NewLine{line("tomate", "1", "0")}}, domain.ErrInvalidInput},
		{"produto repetido", sales.NewSale{CustomerID: ptr("c1"), Lines: []sales.NewLine{line("tomate", "10", "4"), line("tomate", "5", "4")}}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)
			_, err := e.sales.Create(context.Background(), tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreate_TotalsFromRequestedQuantities(t *testing.T) {
	e := newEnv(t)
	sale := e.createSale(t, line("tomate", "2.5", "4.00"), line("alface", "3", "2.00"))

	assert.True(t, sale.Total.Equal(d("16.00")))
	assert.Equal(t, "Mercado Central", sale.CustomerName)
	assert.Equal(t, entity.PaymentPending, sale.PaymentStatus)
	assert.Equal(t, entity.MeasureKg, sale.Lines[0].MeasureUnit)
}

func TestMarkPaid_Twice(t *testing.T) {
	e := newEnv(t)
	sale := e.createSale(t, line("tomate", "1", "4.00"))

	paid, err := e.sales.MarkPaid(context.Background(), sale.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentPaid, paid.PaymentStatus)
	require.NotNil(t, paid.PaidAt)

	_, err = e.sales.MarkPaid(context.Background(), sale.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestList_FiltersByStatus(t *testing.T) {
	e := newEnv(t)
	e.receive(t, "tomate", "10", "2.00")
	s1 := e.createSale(t, line("tomate", "1", "4.00"))
	e.createSale(t, line("tomate", "1", "4.00"))
	_, err := e.fulfillment.Pick(context.Background(), s1.ID, nil, "u1")
	require.NoError(t, err)

	out, err := e.sales.List(context.Background(), dto.SaleFilterRequest{PickingStatus: entity.PickingPicked})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, s1.ID, out.Items[0].ID)
	assert.Equal(t, 1, out.Page.Total)
}
