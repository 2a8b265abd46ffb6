package reports_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ceasa-api/internal/application/dto"
	"github.com/jhoicas/ceasa-api/internal/application/ledger"
	"github.com/jhoicas/ceasa-api/internal/application/memstore"
	"github.com/jhoicas/ceasa-api/internal/application/ports"
	"github.com/jhoicas/ceasa-api/internal/application/reports"
	"github.com/jhoicas/ceasa-api/internal/application/sales"
	"github.com/jhoicas/ceasa-api/internal/domain"
	"github.com/jhoicas/ceasa-api/internal/domain/entity"
	"github.com/jhoicas/ceasa-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
}

func (c *mapCache) Get(_ context.Context, key string, dst any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false
	}
	c.hits++
	return json.Unmarshal(raw, dst) == nil
}

func (c *mapCache) Set(_ context.Context, key string, value any, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, _ := json.Marshal(value)
	c.data[key] = raw
}

func (c *mapCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = map[string][]byte{}
}

var _ ports.ReportCache = (*mapCache)(nil)

type env struct {
	store   *memstore.Store
	clock   time.Time
	led     *ledger.Ledger
	reports *reports.ReportUseCase
	sales   *sales.SaleUseCase
	fulfill *sales.FulfillmentUseCase
	cache   *mapCache
	picked  *entity.Sale // c1, 120 kg, separada e pendente
	open    *entity.Sale // c2, aguardando separação
	quick   *entity.Sale // balcão, paga
}

// newEnv monta o cenário: 100 kg a 2,00 e 50 kg a 2,50 de tomate; uma venda separada de 120 kg
// a 4,00 para Mercado Central, uma venda aberta de 10 kg a 5,00 para Quitanda da Praça e uma
// venda de balcão de 5 kg a 4,00.
func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{store: memstore.New(), clock: time.Date(2025, 8, 1, 6, 0, 0, 0, time.UTC), cache: &mapCache{data: map[string][]byte{}}}
	seq := 0
	e.led = ledger.New(zerolog.Nop(),
		ledger.WithClock(func() time.Time { return e.clock }),
		ledger.WithIDGenerator(func() string { seq++; return fmt.Sprintf("id-%03d", seq) }),
	)
	e.reports = reports.NewReportUseCase(e.store.Repos(), e.store.Reports(), e.led, e.cache, 0, zerolog.Nop())
	e.sales = sales.NewSaleUseCase(e.store, e.store.Repos(), e.led, e.cache, nil)
	e.fulfill = sales.NewFulfillmentUseCase(e.store, e.led, e.cache, 0, zerolog.Nop())

	ctx := context.Background()
	repos := e.store.Repos()
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "tomate", Name: "Tomate", MeasureUnit: entity.MeasureKg, SalePrice: d("4.00"), Active: true}))
	require.NoError(t, repos.Customers.Create(ctx, &entity.Customer{ID: "c1", Name: "Mercado Central", Document: "1", Email: "compras@central.com.br", Phone1: "61 99999-0000", Active: true}))
	require.NoError(t, repos.Customers.Create(ctx, &entity.Customer{ID: "c2", Name: "Quitanda da Praça", Document: "2", Active: true}))

	for _, r := range [][2]string{{"100", "2.00"}, {"50", "2.50"}} {
		require.NoError(t, e.store.Run(ctx, func(ctx context.Context, tx repository.Tx) error {
			_, _, err := e.led.RecordReceipt(ctx, tx, &entity.Receipt{ProductID: "tomate", Quantity: d(r[0]), UnitCost: d(r[1])})
			return err
		}))
		e.clock = e.clock.Add(time.Hour)
	}

	var err error
	e.picked, err = e.sales.Create(ctx, sales.NewSale{CustomerID: ptr("c1"), Lines: []sales.NewLine{{ProductID: "tomate", Quantity: d("120"), UnitPrice: ptr(d("4.00"))}}})
	require.NoError(t, err)
	_, err = e.fulfill.Pick(ctx, e.picked.ID, nil, "u1")
	require.NoError(t, err)
	e.open, err = e.sales.Create(ctx, sales.NewSale{CustomerID: ptr("c2"), Lines: []sales.NewLine{{ProductID: "tomate", Quantity: d("10"), UnitPrice: ptr(d("5.00"))}}})
	require.NoError(t, err)
	e.quick, err = e.fulfill.QuickSale(ctx, sales.NewSale{Lines: []sales.NewLine{{ProductID: "tomate", Quantity: d("5")}}})
	require.NoError(t, err)
	return e
}

// ──────────────────────────────────────────────────────────────────────────────
// CashFlow / Profitability
// ──────────────────────────────────────────────────────────────────────────────

func TestCashFlow_Totals(t *testing.T) {
	e := newEnv(t)

	got, err := e.reports.CashFlow(context.Background(), dto.PeriodRequest{})
	require.NoError(t, err)

	assert.True(t, got.TotalInflow.Equal(d("325.00")), got.TotalInflow.String())
	assert.True(t, got.TotalOutflow.Equal(d("500.00")), got.TotalOutflow.String())
	assert.True(t, got.Balance.Equal(d("175.00")))
	assert.True(t, got.TotalAdjustments.IsZero())
	assert.Equal(t, 2, got.SaleCount)
	assert.Len(t, got.Entries, 4)
	// 230 + (20 − 12,50)
	assert.True(t, got.GrossProfit.Equal(d("237.50")), got.GrossProfit.String())
	// média de 47,9167% e 37,5%
	assert.True(t, got.MeanMargin.Equal(d("42.71")), got.MeanMargin.String())
}

func TestCashFlow_WindowAndProduct(t *testing.T) {
	e := newEnv(t)
	from := time.Date(2025, 8, 1, 7, 30, 0, 0, time.UTC)

	got, err := e.reports.CashFlow(context.Background(), dto.PeriodRequest{From: &from})
	require.NoError(t, err)
	assert.True(t, got.TotalInflow.IsZero(), "entradas às 06h e 07h ficam fora")
	assert.Equal(t, 2, got.SaleCount)

	got, err = e.reports.CashFlow(context.Background(), dto.PeriodRequest{ProductID: "alface"})
	require.NoError(t, err)
	assert.Empty(t, got.Entries)
	assert.True(t, got.MeanMargin.IsZero())
}

func TestCashFlow_PropagatesReadError(t *testing.T) {
	e := newEnv(t)
	e.store.FailOn("Movements.Each", errors.New("conexão perdida"))

	_, err := e.reports.CashFlow(context.Background(), dto.PeriodRequest{})
	assert.ErrorContains(t, err, "conexão perdida")
}

func TestCashFlow_CachedUntilLedgerWrite(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	first, err := e.reports.CashFlow(ctx, dto.PeriodRequest{})
	require.NoError(t, err)
	second, err := e.reports.CashFlow(ctx, dto.PeriodRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, e.cache.hits)
	assert.True(t, second.Balance.Equal(first.Balance))
	assert.Len(t, second.Entries, 4)

	_, err = e.reports.CashFlow(ctx, dto.PeriodRequest{ProductID: "tomate"})
	require.NoError(t, err)
	assert.Equal(t, 1, e.cache.hits, "filtro diferente usa outra chave")

	_, err = e.fulfill.CancelPick(ctx, e.picked.ID)
	require.NoError(t, err)

	got, err := e.reports.CashFlow(ctx, dto.PeriodRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, e.cache.hits)
	assert.Equal(t, 1, got.SaleCount)
	assert.True(t, got.TotalOutflow.Equal(d("20.00")), got.TotalOutflow.String())
}

func TestProfitability_PerProductAndSummary(t *testing.T) {
	e := newEnv(t)

	got, err := e.reports.Profitability(context.Background(), dto.PeriodRequest{})
	require.NoError(t, err)

	require.Len(t, got.Products, 1)
	p := got.Products[0]
	assert.Equal(t, "Tomate", p.ProductName)
	assert.True(t, p.QuantitySold.Equal(d("125")))
	assert.True(t, p.Revenue.Equal(d("500.00")))
	assert.True(t, p.Cost.Equal(d("262.50")))
	assert.True(t, p.GrossProfit.Equal(d("237.50")))
	assert.True(t, p.MarginPercent.Equal(d("47.5")))
	assert.Equal(t, 2, p.Records)
	assert.Equal(t, 1, got.Summary.Products)
	assert.True(t, got.Summary.MarginPercent.Equal(d("47.5")))
}

func TestProfitability_CachedUntilLedgerWrite(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.reports.Profitability(ctx, dto.PeriodRequest{})
	require.NoError(t, err)
	_, err = e.reports.Profitability(ctx, dto.PeriodRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, e.cache.hits)

	_, err = e.fulfill.CancelPick(ctx, e.picked.ID)
	require.NoError(t, err)

	got, err := e.reports.Profitability(ctx, dto.PeriodRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, e.cache.hits)
	assert.Equal(t, 1, got.Products[0].Records)
}

// ──────────────────────────────────────────────────────────────────────────────
// Dashboard
// ──────────────────────────────────────────────────────────────────────────────

func TestDashboard_Today(t *testing.T) {
	e := newEnv(t)

	got, err := e.reports.Dashboard(context.Background(), dto.DashboardRequest{})
	require.NoError(t, err)

	assert.Equal(t, "Hoje", got.Period.Description)
	assert.Equal(t, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), got.Period.From)
	assert.Equal(t, 3, got.Sales.Count)
	assert.True(t, got.Sales.Total.Equal(d("550.00")), got.Sales.Total.String())
	assert.True(t, got.Sales.GrossProfit.Equal(d("237.50")))
	assert.True(t, got.Sales.AverageTicket.Equal(d("183.33")))
	assert.Equal(t, dto.DashboardCustomers{Total: 2, Active: 2, Inactive: 0}, got.Customers)

	require.Len(t, got.Monthly, 12)
	assert.Equal(t, "09/2024", got.Monthly[0].Label)
	assert.Equal(t, "08/2025", got.Monthly[11].Label)
	assert.Equal(t, 3, got.Monthly[11].Count)
	assert.Zero(t, got.Monthly[0].Count)

	assert.Equal(t, 2, got.Pending.Count)
	assert.True(t, got.Pending.Total.Equal(d("530.00")))
	require.Len(t, got.TopCustomers, 2)
	assert.Equal(t, "Mercado Central", got.TopCustomers[0].Name)
}

func TestDashboard_FromDateOutsidePeriod(t *testing.T) {
	e := newEnv(t)
	e.clock = e.clock.Add(48 * time.Hour)
	from := time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC)

	got, err := e.reports.Dashboard(context.Background(), dto.DashboardRequest{From: &from})
	require.NoError(t, err)
	assert.Equal(t, "Desde 02/08/2025", got.Period.Description)
	assert.Zero(t, got.Sales.Count)
	assert.True(t, got.Sales.AverageTicket.IsZero())
	assert.Equal(t, 2, got.Pending.Count)
	assert.Equal(t, 2, got.Pending.Sales[0].DaysPending)
}

func TestDashboard_WrapsQueryError(t *testing.T) {
	e := newEnv(t)
	e.store.FailOn("Reports.TopCustomers", errors.New("timeout"))

	_, err := e.reports.Dashboard(context.Background(), dto.DashboardRequest{})
	assert.ErrorContains(t, err, "ranking de clientes")
	assert.ErrorContains(t, err, "timeout")
}

func TestSalesDashboard_KPIsRankingsAndPickers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.store.Users().Create(ctx, &entity.User{ID: "u1", Name: "Separador", Email: "separador@ceasa.com.br", Role: entity.RoleEmployee, Active: true}))

	got, err := e.reports.SalesDashboard(ctx, dto.SalesDashboardRequest{})
	require.NoError(t, err)

	k := got.KPIs
	assert.Equal(t, 3, k.SalesCount)
	assert.True(t, k.Revenue.Equal(d("550")), k.Revenue.String())
	assert.True(t, k.TotalPaid.Equal(d("20")), k.TotalPaid.String())
	assert.True(t, k.TotalPending.Equal(d("530")), k.TotalPending.String())
	assert.True(t, k.AverageTicket.Equal(d("183.33")), k.AverageTicket.String())
	assert.True(t, k.DelinquencyRate.Equal(d("96.36")), k.DelinquencyRate.String())
	assert.Equal(t, 2, k.PickedCount)
	assert.Equal(t, 1, k.AwaitingCount)
	assert.True(t, k.PickingRate.Equal(d("66.67")), k.PickingRate.String())

	require.Len(t, got.TopCustomers, 2, "venda de balcão fica fora do ranking")
	assert.Equal(t, "Mercado Central", got.TopCustomers[0].Name)
	assert.True(t, got.TopCustomers[0].Pending.Equal(d("480")))
	assert.Equal(t, "Quitanda da Praça", got.TopCustomers[1].Name)

	require.Len(t, got.TopProducts, 1)
	assert.Equal(t, "Tomate", got.TopProducts[0].ProductName)
	assert.True(t, got.TopProducts[0].Quantity.Equal(d("135")), got.TopProducts[0].Quantity.String())
	assert.True(t, got.TopProducts[0].Revenue.Equal(d("550")))

	require.Len(t, got.Pickers, 1)
	assert.Equal(t, "separador@ceasa.com.br", got.Pickers[0].Email)
	assert.Equal(t, 1, got.Pickers[0].PickedCount)
	assert.True(t, got.Pickers[0].PickedTotal.Equal(d("480")))
}

func TestSalesDashboard_EmptyPeriod(t *testing.T) {
	e := newEnv(t)
	from := time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC)

	got, err := e.reports.SalesDashboard(context.Background(), dto.SalesDashboardRequest{From: &from})
	require.NoError(t, err)
	assert.Zero(t, got.KPIs.SalesCount)
	assert.True(t, got.KPIs.DelinquencyRate.IsZero())
	assert.True(t, got.KPIs.PickingRate.IsZero())
	assert.True(t, got.KPIs.AverageTicket.IsZero())
	assert.NotNil(t, got.TopCustomers)
	assert.Empty(t, got.TopCustomers)
	assert.Empty(t, got.TopProducts)
	assert.Empty(t, got.Pickers)
	assert.Equal(t, &from, got.Period.From)
}

func TestSalesDashboard_WrapsQueryError(t *testing.T) {
	e := newEnv(t)
	e.store.FailOn("Reports.PickerPerformance", errors.New("timeout"))

	_, err := e.reports.SalesDashboard(context.Background(), dto.SalesDashboardRequest{})
	assert.ErrorContains(t, err, "separações")
	assert.ErrorContains(t, err, "timeout")
}

// ──────────────────────────────────────────────────────────────────────────────
// Clientes
// ──────────────────────────────────────────────────────────────────────────────

func TestPendingPayments_GroupedByCustomer(t *testing.T) {
	e := newEnv(t)

	got, err := e.reports.PendingPayments(context.Background(), dto.PendingPaymentsRequest{OrderBy: "valor_asc"})
	require.NoError(t, err)

	assert.Equal(t, 2, got.CustomerCount)
	assert.Equal(t, 2, got.SaleCount)
	assert.True(t, got.TotalPending.Equal(d("530.00")))
	require.Len(t, got.Customers, 2)
	assert.Equal(t, "Quitanda da Praça", got.Customers[0].Customer.Name)
	assert.Equal(t, "Mercado Central", got.Customers[1].Customer.Name)
	assert.Equal(t, "compras@central.com.br", got.Customers[1].Customer.Email)
	assert.Equal(t, entity.PickingPicked, got.Customers[1].Sales[0].PickingStatus)
}

func TestPendingPayments_FilterByCustomer(t *testing.T) {
	e := newEnv(t)

	got, err := e.reports.PendingPayments(context.Background(), dto.PendingPaymentsRequest{CustomerID: "c2"})
	require.NoError(t, err)
	require.Len(t, got.Customers, 1)
	assert.Equal(t, e.open.ID, got.Customers[0].Sales[0].SaleID)
}

func TestCustomerSummary(t *testing.T) {
	e := newEnv(t)

	got, err := e.reports.CustomerSummary(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, "Mercado Central", got.Customer.Name)
	assert.True(t, got.Active)
	assert.Equal(t, 1, got.Stats.SalesCount)
	assert.True(t, got.Stats.TotalPending.Equal(d("480.00")))
	assert.True(t, got.Stats.AverageTicket.Equal(d("480.00")))
	assert.True(t, got.Stats.DelinquencyRate.Equal(d("100")))
	assert.True(t, got.Stats.GrossProfit.Equal(d("230.00")))
	require.Len(t, got.FavoriteProducts, 1)
	assert.Equal(t, "Tomate", got.FavoriteProducts[0].ProductName)
	assert.True(t, got.FavoriteProducts[0].Quantity.Equal(d("120")))
	require.Len(t, got.RecentPending, 1)
}

func TestCustomerHistory(t *testing.T) {
	e := newEnv(t)

	got, err := e.reports.CustomerHistory(context.Background(), "c2", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, got.Sales, 1)
	assert.Equal(t, 1, got.Page.Total)
	assert.Equal(t, 20, got.Page.Limit)
	assert.True(t, got.Stats.TotalSold.Equal(d("50.00")))

	_, err = e.reports.CustomerHistory(context.Background(), "c9", dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelinquents(t *testing.T) {
	cases := []struct {
		name    string
		advance time.Duration
		in      dto.DelinquentsRequest
		want    []string
	}{
		{"dentro do prazo", 10 * 24 * time.Hour, dto.DelinquentsRequest{}, []string{}},
		{"prazo padrão de 30 dias", 40 * 24 * time.Hour, dto.DelinquentsRequest{}, []string{"Mercado Central", "Quitanda da Praça"}},
		{"valor crescente", 40 * 24 * time.Hour, dto.DelinquentsRequest{OrderBy: "valor_asc"}, []string{"Quitanda da Praça", "Mercado Central"}},
		{"valor mínimo", 40 * 24 * time.Hour, dto.DelinquentsRequest{MinValue: ptr(d("100"))}, []string{"Mercado Central"}},
		{"prazo informado", 10 * 24 * time.Hour, dto.DelinquentsRequest{MinDays: 7}, []string{"Mercado Central", "Quitanda da Praça"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)
			e.clock = e.clock.Add(tc.advance)

			got, err := e.reports.Delinquents(context.Background(), tc.in)
			require.NoError(t, err)

			names := []string{}
			for _, c := range got.Customers {
				names = append(names, c.Customer.Name)
			}
			assert.Equal(t, tc.want, names)
			if len(got.Customers) > 0 {
				assert.Equal(t, int(tc.advance.Hours()/24), got.Customers[0].MaxDaysOverdue)
			}
		})
	}
}
