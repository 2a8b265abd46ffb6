package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ceasa-api/internal/application/dto"
	"github.com/jhoicas/ceasa-api/internal/domain/repository"
)

const (
	dashboardTopCustomers = 5  // clientes no ranking do dashboard
	dashboardPendingSales = 10 // vendas pendentes listadas
	dashboardMonths       = 12

	salesDashboardTop = 10 // clientes e produtos no dashboard gerencial
)

// Dashboard monta o resumo de vendas do período (hoje, se From for nil).
//
// Cinco consultas em paralelo:
//  1. SalesSummary(período)   → Sales
//  2. Customers.Count         → Customers
//  3. MonthlySales(12 meses)  → Monthly
//  4. PendingSales            → Pending
//  5. TopCustomers(5)         → TopCustomers
func (uc *ReportUseCase) Dashboard(ctx context.Context, in dto.DashboardRequest) (*dto.DashboardResponse, error) {
	now := uc.ledger.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	from, description := todayStart, "Hoje"
	if in.From != nil {
		from = *in.From
		description = "Desde " + from.Format("02/01/2006")
	}
	monthsFrom := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(dashboardMonths - 1), 0)

	key := "dashboard:" + from.UTC().Format(time.RFC3339) + ":" + todayStart.Format("2006-01-02")
	var cached dto.DashboardResponse
	if uc.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	type summaryResult struct {
		row repository.SalesSummaryRow
		err error
	}
	type countResult struct {
		total, active int
		err           error
	}
	type monthlyResult struct {
		rows []repository.MonthlySalesRow
		err  error
	}
	type pendingResult struct {
		rows []repository.PendingSaleRow
		err  error
	}
	type topResult struct {
		rows []repository.CustomerRankRow
		err  error
	}

	summaryCh := make(chan summaryResult, 1)
	countCh := make(chan countResult, 1)
	monthlyCh := make(chan monthlyResult, 1)
	pendingCh := make(chan pendingResult, 1)
	topCh := make(chan topResult, 1)

	go func() {
		row, err := uc.reports.SalesSummary(ctx, from, now)
		summaryCh <- summaryResult{row, err}
	}()
	go func() {
		total, active, err := uc.repos.Customers.Count(ctx)
		countCh <- countResult{total, active, err}
	}()
	go func() {
		rows, err := uc.reports.MonthlySales(ctx, monthsFrom)
		monthlyCh <- monthlyResult{rows, err}
	}()
	go func() {
		rows, err := uc.reports.PendingSales(ctx, repository.PendingFilter{OrderBy: "data_desc"})
		pendingCh <- pendingResult{rows, err}
	}()
	go func() {
		rows, err := uc.reports.TopCustomers(ctx, repository.SalesPeriod{}, dashboardTopCustomers)
		topCh <- topResult{rows, err}
	}()

	summary := <-summaryCh
	counts := <-countCh
	monthly := <-monthlyCh
	pending := <-pendingCh
	top := <-topCh

	if summary.err != nil {
		return nil, fmt.Errorf("dashboard: vendas do período: %w", summary.err)
	}
	if counts.err != nil {
		return nil, fmt.Errorf("dashboard: clientes: %w", counts.err)
	}
	if monthly.err != nil {
		return nil, fmt.Errorf("dashboard: vendas mensais: %w", monthly.err)
	}
	if pending.err != nil {
		return nil, fmt.Errorf("dashboard: pendências: %w", pending.err)
	}
	if top.err != nil {
		return nil, fmt.Errorf("dashboard: ranking de clientes: %w", top.err)
	}

	out := &dto.DashboardResponse{
		Period: dto.DashboardPeriod{From: from, To: now, Description: description},
		Sales: dto.DashboardSales{
			Count:       summary.row.Count,
			Total:       summary.row.Total.Round(2),
			GrossProfit: summary.row.GrossProfit.Round(2),
		},
		Customers: dto.DashboardCustomers{
			Total:    counts.total,
			Active:   counts.active,
			Inactive: counts.total - counts.active,
		},
		Monthly:      fillMonths(monthsFrom, monthly.rows),
		Pending:      dto.DashboardPending{Sales: []dto.PendingSaleResponse{}},
		TopCustomers: make([]dto.TopCustomerDTO, 0, len(top.rows)),
	}
	if summary.row.Count > 0 {
		out.Sales.AverageTicket = summary.row.Total.Div(decimal.NewFromInt(int64(summary.row.Count))).Round(2)
	}
	for i, r := range pending.rows {
		out.Pending.Count++
		out.Pending.Total = out.Pending.Total.Add(r.Total)
		if i < dashboardPendingSales {
			out.Pending.Sales = append(out.Pending.Sales, pendingSale(r, now))
		}
	}
	for _, r := range top.rows {
		out.TopCustomers = append(out.TopCustomers, topCustomer(r))
	}

	uc.cache.Set(ctx, key, out, uc.ttl)
	return out, nil
}

// SalesDashboard visão gerencial de [From, To]: KPIs, 10 melhores clientes e produtos e as
// separações por funcionário (filtradas pela data da separação). Quatro consultas em paralelo.
func (uc *ReportUseCase) SalesDashboard(ctx context.Context, in dto.SalesDashboardRequest) (*dto.SalesDashboardResponse, error) {
	key := "sales-dashboard:" + timeKey(in.From) + ":" + timeKey(in.To)
	var cached dto.SalesDashboardResponse
	if uc.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}
	period := repository.SalesPeriod{From: in.From, To: in.To}

	type kpiResult struct {
		row repository.SalesKPIRow
		err error
	}
	type customersResult struct {
		rows []repository.CustomerRankRow
		err  error
	}
	type productsResult struct {
		rows []repository.TopProductRow
		err  error
	}
	type pickersResult struct {
		rows []repository.PickerPerformanceRow
		err  error
	}

	kpiCh := make(chan kpiResult, 1)
	customersCh := make(chan customersResult, 1)
	productsCh := make(chan productsResult, 1)
	pickersCh := make(chan pickersResult, 1)

	go func() {
		row, err := uc.reports.SalesKPIs(ctx, period)
		kpiCh <- kpiResult{row, err}
	}()
	go func() {
		rows, err := uc.reports.TopCustomers(ctx, period, salesDashboardTop)
		customersCh <- customersResult{rows, err}
	}()
	go func() {
		rows, err := uc.reports.TopProducts(ctx, period, salesDashboardTop)
		productsCh <- productsResult{rows, err}
	}()
	go func() {
		rows, err := uc.reports.PickerPerformance(ctx, period)
		pickersCh <- pickersResult{rows, err}
	}()

	kpi := <-kpiCh
	customers := <-customersCh
	products := <-productsCh
	pickers := <-pickersCh

	if kpi.err != nil {
		return nil, fmt.Errorf("dashboard de vendas: indicadores: %w", kpi.err)
	}
	if customers.err != nil {
		return nil, fmt.Errorf("dashboard de vendas: ranking de clientes: %w", customers.err)
	}
	if products.err != nil {
		return nil, fmt.Errorf("dashboard de vendas: ranking de produtos: %w", products.err)
	}
	if pickers.err != nil {
		return nil, fmt.Errorf("dashboard de vendas: separações: %w", pickers.err)
	}

	k := kpi.row
	out := &dto.SalesDashboardResponse{
		Period: dto.SalesDashboardPeriod{From: in.From, To: in.To, GeneratedAt: uc.ledger.Now()},
		KPIs: dto.SalesKPIs{
			Revenue:         k.Total.Round(2),
			SalesCount:      k.Count,
			TotalPaid:       k.TotalPaid.Round(2),
			TotalPending:    k.TotalPending.Round(2),
			DelinquencyRate: percent(k.TotalPending, k.Total),
			PickedCount:     k.PickedCount,
			AwaitingCount:   k.AwaitingCount,
			PickingRate:     percent(decimal.NewFromInt(int64(k.PickedCount)), decimal.NewFromInt(int64(k.Count))),
		},
		TopCustomers: make([]dto.TopCustomerDTO, 0, len(customers.rows)),
		TopProducts:  make([]dto.TopProductDTO, 0, len(products.rows)),
		Pickers:      make([]dto.PickerDTO, 0, len(pickers.rows)),
	}
	if k.Count > 0 {
		out.KPIs.AverageTicket = k.Total.Div(decimal.NewFromInt(int64(k.Count))).Round(2)
	}
	for _, r := range customers.rows {
		out.TopCustomers = append(out.TopCustomers, topCustomer(r))
	}
	for _, r := range products.rows {
		out.TopProducts = append(out.TopProducts, dto.TopProductDTO{
			ProductID:   r.ProductID,
			ProductName: r.ProductName,
			Quantity:    r.Quantity,
			Revenue:     r.Total,
		})
	}
	for _, r := range pickers.rows {
		out.Pickers = append(out.Pickers, dto.PickerDTO{
			UserID:      r.UserID,
			Name:        r.Name,
			Email:       r.Email,
			PickedCount: r.PickedCount,
			PickedTotal: r.PickedTotal,
		})
	}

	uc.cache.Set(ctx, key, out, uc.ttl)
	return out, nil
}

func topCustomer(r repository.CustomerRankRow) dto.TopCustomerDTO {
	return dto.TopCustomerDTO{
		Name:        r.CustomerName,
		TradeName:   deref(r.TradeName),
		SalesCount:  r.SalesCount,
		Total:       r.Total,
		Pending:     r.Pending,
		GrossProfit: r.GrossProfit,
	}
}

// percent part/whole×100 com duas casas; 0 quando whole é 0.
func percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(2)
}

// fillMonths devolve os 12 meses a partir de from, com zero nos meses sem venda.
func fillMonths(from time.Time, rows []repository.MonthlySalesRow) []dto.MonthlySalesDTO {
	type key struct{ year, month int }
	byMonth := make(map[key]repository.MonthlySalesRow, len(rows))
	for _, r := range rows {
		byMonth[key{r.Year, r.Month}] = r
	}
	out := make([]dto.MonthlySalesDTO, 0, dashboardMonths)
	for i := range dashboardMonths {
		m := from.AddDate(0, i, 0)
		r := byMonth[key{m.Year(), int(m.Month())}]
		out = append(out, dto.MonthlySalesDTO{
			Label:       monthLabel(m),
			Count:       r.Count,
			Total:       r.Total,
			GrossProfit: r.GrossProfit,
		})
	}
	return out
}

// monthLabel devolve o rótulo "MM/AAAA".
func monthLabel(t time.Time) string {
	return fmt.Sprintf("%02d/%d", int(t.Month()), t.Year())
}
