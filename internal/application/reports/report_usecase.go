// Package reports contém os casos de uso de leitura: fluxo de caixa, rentabilidade,
// dashboard e relatórios de clientes.
package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ceasa-api/internal/application/dto"
	"github.com/jhoicas/ceasa-api/internal/application/ledger"
	"github.com/jhoicas/ceasa-api/internal/application/ports"
	"github.com/jhoicas/ceasa-api/internal/domain"
	"github.com/jhoicas/ceasa-api/internal/domain/entity"
	"github.com/jhoicas/ceasa-api/internal/domain/inventory"
	"github.com/jhoicas/ceasa-api/internal/domain/repository"
)

const (
	// DefaultDelinquentDays prazo padrão para considerar uma venda em atraso.
	DefaultDelinquentDays = 30
	// DefaultCacheTTL validade padrão dos relatórios em cache.
	DefaultCacheTTL = 5 * time.Minute

	favoriteProductsLimit = 5
	recentPendingLimit    = 5
)

var hundred = decimal.NewFromInt(100)

// ReportUseCase consultas agregadas sobre o razão e as vendas. Não altera estado.
type ReportUseCase struct {
	repos   repository.Tx
	reports repository.ReportRepository
	ledger  *ledger.Ledger
	cache   ports.ReportCache
	ttl     time.Duration
	log     zerolog.Logger
}

// NewReportUseCase constrói o caso de uso. cache nil desativa o cache; ttl <= 0 usa DefaultCacheTTL.
func NewReportUseCase(repos repository.Tx, reports repository.ReportRepository, l *ledger.Ledger, cache ports.ReportCache, ttl time.Duration, log zerolog.Logger) *ReportUseCase {
	if cache == nil {
		cache = ports.NopCache{}
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ReportUseCase{
		repos:   repos,
		reports: reports,
		ledger:  l,
		cache:   cache,
		ttl:     ttl,
		log:     log.With().Str("component", "reports").Logger(),
	}
}

// CashFlow soma as movimentações do período. Saldo = saídas − entradas.
func (uc *ReportUseCase) CashFlow(ctx context.Context, in dto.PeriodRequest) (*dto.CashFlowResponse, error) {
	key := "cashflow:" + in.ProductID + ":" + timeKey(in.From) + ":" + timeKey(in.To)
	var cached dto.CashFlowResponse
	if uc.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	out := &dto.CashFlowResponse{Entries: []dto.MovementResponse{}}
	filter := repository.MovementFilter{ProductID: in.ProductID, From: in.From, To: in.To}
	for m, err := range ledger.Query(ctx, uc.repos.Movements, filter) {
		if err != nil {
			return nil, fmt.Errorf("fluxo de caixa: %w", err)
		}
		switch m.Kind {
		case entity.MovementInflow:
			out.TotalInflow = out.TotalInflow.Add(m.TotalValue)
		case entity.MovementOutflow:
			out.TotalOutflow = out.TotalOutflow.Add(m.TotalValue)
			out.SaleCount++
		case entity.MovementAdjustment:
			out.TotalAdjustments = out.TotalAdjustments.Add(m.TotalValue)
		}
		out.Entries = append(out.Entries, dto.MovementFromEntity(&m))
	}
	out.Balance = out.TotalOutflow.Sub(out.TotalInflow)

	records, err := uc.repos.Profits.List(ctx, repository.ProfitFilter{ProductID: in.ProductID, From: in.From, To: in.To})
	if err != nil {
		return nil, fmt.Errorf("fluxo de caixa: lucros: %w", err)
	}
	margins := decimal.Zero
	for _, r := range records {
		out.GrossProfit = out.GrossProfit.Add(r.GrossProfit)
		margins = margins.Add(r.MarginPercent)
	}
	if len(records) > 0 {
		out.MeanMargin = margins.Div(decimal.NewFromInt(int64(len(records)))).Round(2)
	}

	uc.cache.Set(ctx, key, out, uc.ttl)
	return out, nil
}

// Profitability lucro bruto por produto, do mais lucrativo ao menos.
func (uc *ReportUseCase) Profitability(ctx context.Context, in dto.PeriodRequest) (*dto.ProfitabilityResponse, error) {
	key := "profitability:" + in.ProductID + ":" + timeKey(in.From) + ":" + timeKey(in.To)
	var cached dto.ProfitabilityResponse
	if uc.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	rows, err := uc.reports.ProductProfitability(ctx, repository.ProfitFilter{ProductID: in.ProductID, From: in.From, To: in.To})
	if err != nil {
		return nil, fmt.Errorf("rentabilidade: %w", err)
	}
	out := &dto.ProfitabilityResponse{Products: make([]dto.ProductProfitResponse, 0, len(rows))}
	for _, r := range rows {
		out.Products = append(out.Products, dto.ProductProfitResponse{
			ProductID:     r.ProductID,
			ProductName:   r.ProductName,
			QuantitySold:  r.QuantitySold,
			Revenue:       r.Revenue,
			Cost:          r.Cost,
			GrossProfit:   r.GrossProfit,
			MarginPercent: inventory.Margin(r.GrossProfit, r.Revenue).Round(2),
			Records:       r.Records,
		})
		out.Summary.Revenue = out.Summary.Revenue.Add(r.Revenue)
		out.Summary.Cost = out.Summary.Cost.Add(r.Cost)
		out.Summary.GrossProfit = out.Summary.GrossProfit.Add(r.GrossProfit)
	}
	out.Summary.MarginPercent = inventory.Margin(out.Summary.GrossProfit, out.Summary.Revenue).Round(2)
	out.Summary.Products = len(rows)

	uc.cache.Set(ctx, key, out, uc.ttl)
	return out, nil
}

// PendingPayments vendas não pagas agrupadas por cliente. Vendas de balcão formam um grupo próprio.
func (uc *ReportUseCase) PendingPayments(ctx context.Context, in dto.PendingPaymentsRequest) (*dto.PendingPaymentsResponse, error) {
	orderBy := in.OrderBy
	if orderBy == "" {
		orderBy = "data_desc"
	}
	rows, err := uc.reports.PendingSales(ctx, repository.PendingFilter{CustomerID: in.CustomerID, OrderBy: orderBy})
	if err != nil {
		return nil, fmt.Errorf("pagamentos pendentes: %w", err)
	}

	now := uc.ledger.Now()
	out := &dto.PendingPaymentsResponse{Customers: []dto.PendingCustomerGroup{}}
	index := map[string]int{}
	for _, r := range rows {
		key := deref(r.CustomerID)
		i, ok := index[key]
		if !ok {
			i = len(out.Customers)
			index[key] = i
			out.Customers = append(out.Customers, dto.PendingCustomerGroup{Customer: customerRef(r), Sales: []dto.PendingSaleResponse{}})
		}
		g := &out.Customers[i]
		g.Sales = append(g.Sales, pendingSale(r, now))
		g.TotalPending = g.TotalPending.Add(r.Total)
		g.SaleCount++
		out.TotalPending = out.TotalPending.Add(r.Total)
		out.SaleCount++
	}
	switch orderBy {
	case "valor_desc":
		sort.SliceStable(out.Customers, func(i, j int) bool {
			return out.Customers[i].TotalPending.GreaterThan(out.Customers[j].TotalPending)
		})
	case "valor_asc":
		sort.SliceStable(out.Customers, func(i, j int) bool {
			return out.Customers[i].TotalPending.LessThan(out.Customers[j].TotalPending)
		})
	}
	out.CustomerCount = len(out.Customers)
	return out, nil
}

// CustomerHistory vendas do cliente, paginadas, com estatísticas gerais.
func (uc *ReportUseCase) CustomerHistory(ctx context.Context, customerID string, page dto.PageRequest) (*dto.CustomerHistoryResponse, error) {
	c, err := uc.customer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, total, err := uc.repos.Sales.List(ctx, repository.SaleFilter{CustomerID: customerID, Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, fmt.Errorf("histórico do cliente: %w", err)
	}
	summary, err := uc.reports.CustomerSummary(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("histórico do cliente: resumo: %w", err)
	}
	out := &dto.CustomerHistoryResponse{
		Customer: customerRefFromEntity(c),
		Sales:    make([]dto.SaleResponse, 0, len(list)),
		Stats:    stats(summary),
		Page:     dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}
	for i := range list {
		out.Sales = append(out.Sales, dto.SaleFromEntity(&list[i]))
	}
	return out, nil
}

// CustomerSummary estatísticas, produtos favoritos e pendências recentes do cliente.
func (uc *ReportUseCase) CustomerSummary(ctx context.Context, customerID string) (*dto.CustomerSummaryResponse, error) {
	c, err := uc.customer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	summary, err := uc.reports.CustomerSummary(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("resumo do cliente: %w", err)
	}
	favorites, err := uc.reports.FavoriteProducts(ctx, customerID, favoriteProductsLimit)
	if err != nil {
		return nil, fmt.Errorf("resumo do cliente: produtos favoritos: %w", err)
	}
	pending, err := uc.reports.PendingSales(ctx, repository.PendingFilter{CustomerID: customerID, OrderBy: "data_desc"})
	if err != nil {
		return nil, fmt.Errorf("resumo do cliente: pendências: %w", err)
	}

	now := uc.ledger.Now()
	out := &dto.CustomerSummaryResponse{
		Customer:         customerRefFromEntity(c),
		Active:           c.Active,
		Stats:            stats(summary),
		FavoriteProducts: make([]dto.FavoriteProductResponse, 0, len(favorites)),
		RecentPending:    make([]dto.PendingSaleResponse, 0, recentPendingLimit),
	}
	for _, f := range favorites {
		out.FavoriteProducts = append(out.FavoriteProducts, dto.FavoriteProductResponse(f))
	}
	for i, r := range pending {
		if i == recentPendingLimit {
			break
		}
		out.RecentPending = append(out.RecentPending, pendingSale(r, now))
	}
	return out, nil
}

// Delinquents clientes com vendas não pagas há mais de MinDays dias.
func (uc *ReportUseCase) Delinquents(ctx context.Context, in dto.DelinquentsRequest) (*dto.DelinquentsResponse, error) {
	if in.MinDays <= 0 {
		in.MinDays = DefaultDelinquentDays
	}
	if in.OrderBy == "" {
		in.OrderBy = "valor_desc"
	}
	now := uc.ledger.Now()
	rows, err := uc.reports.Delinquents(ctx, repository.DelinquentFilter{
		MinDays:  in.MinDays,
		MinValue: in.MinValue,
		OrderBy:  in.OrderBy,
		Now:      now,
	})
	if err != nil {
		return nil, fmt.Errorf("inadimplentes: %w", err)
	}
	out := &dto.DelinquentsResponse{
		Customers: make([]dto.DelinquentResponse, 0, len(rows)),
		MinDays:   in.MinDays,
		MinValue:  in.MinValue,
		OrderBy:   in.OrderBy,
	}
	for _, r := range rows {
		out.Customers = append(out.Customers, dto.DelinquentResponse{
			Customer: dto.CustomerRef{
				ID:        r.CustomerID,
				Name:      r.CustomerName,
				TradeName: deref(r.TradeName),
				Email:     deref(r.Email),
				Phone:     r.Phone,
			},
			TotalDue:       r.TotalDue,
			PendingSales:   r.PendingSales,
			OldestSale:     r.OldestSale,
			NewestSale:     r.NewestSale,
			MaxDaysOverdue: daysBetween(r.OldestSale, now),
		})
		out.TotalDue = out.TotalDue.Add(r.TotalDue)
	}
	return out, nil
}

func (uc *ReportUseCase) customer(ctx context.Context, id string) (*entity.Customer, error) {
	c, err := uc.repos.Customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func stats(r repository.CustomerSummaryRow) dto.CustomerStats {
	out := dto.CustomerStats{
		SalesCount:   r.SalesCount,
		TotalSold:    r.TotalSold,
		TotalPaid:    r.TotalPaid,
		TotalPending: r.TotalPending,
		PendingCount: r.PendingCount,
		GrossProfit:  r.GrossProfit,
		FirstSaleAt:  r.FirstSaleAt,
		LastSaleAt:   r.LastSaleAt,
	}
	if r.SalesCount > 0 {
		out.AverageTicket = r.TotalSold.Div(decimal.NewFromInt(int64(r.SalesCount))).Round(2)
	}
	if r.TotalSold.IsPositive() {
		out.DelinquencyRate = r.TotalPending.Div(r.TotalSold).Mul(hundred).Round(2)
	}
	return out
}

func pendingSale(r repository.PendingSaleRow, now time.Time) dto.PendingSaleResponse {
	return dto.PendingSaleResponse{
		SaleID:        r.SaleID,
		CustomerName:  deref(r.CustomerName),
		Total:         r.Total,
		PickingStatus: r.PickingStatus,
		Notes:         r.Notes,
		CreatedAt:     r.CreatedAt,
		DaysPending:   daysBetween(r.CreatedAt, now),
	}
}

func customerRef(r repository.PendingSaleRow) dto.CustomerRef {
	if r.CustomerID == nil {
		return dto.CustomerRef{Name: ledger.CounterCustomer}
	}
	return dto.CustomerRef{
		ID:        *r.CustomerID,
		Name:      deref(r.CustomerName),
		TradeName: deref(r.TradeName),
		Email:     deref(r.Email),
		Phone:     deref(r.Phone),
	}
}

func customerRefFromEntity(c *entity.Customer) dto.CustomerRef {
	return dto.CustomerRef{ID: c.ID, Name: c.Name, TradeName: c.TradeName, Email: c.Email, Phone: c.Phone1}
}

func daysBetween(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours() / 24)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func timeKey(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
