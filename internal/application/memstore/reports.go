package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ceasa-api/internal/domain/repository"
)

// Reports repositório de relatórios sobre o estado em memória.
func (s *Store) Reports() repository.ReportRepository { return &reportRepo{view{s, false}} }

var _ repository.ReportRepository = (*reportRepo)(nil)

type reportRepo struct{ view }

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func saleProfit(st *state, saleID string) decimal.Decimal {
	total := decimal.Zero
	for _, p := range st.profits {
		if p.SaleID == saleID {
			total = total.Add(p.GrossProfit)
		}
	}
	return total
}

func (r *reportRepo) ProductProfitability(_ context.Context, f repository.ProfitFilter) ([]repository.ProductProfitRow, error) {
	byProduct := map[string]*repository.ProductProfitRow{}
	err := r.do("Reports.ProductProfitability", func(st *state) error {
		for _, p := range st.profits {
			if f.ProductID != "" && p.ProductID != f.ProductID {
				continue
			}
			if f.From != nil && p.ComputedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && p.ComputedAt.After(*f.To) {
				continue
			}
			row, ok := byProduct[p.ProductID]
			if !ok {
				row = &repository.ProductProfitRow{ProductID: p.ProductID, ProductName: st.products[p.ProductID].Name}
				byProduct[p.ProductID] = row
			}
			row.QuantitySold = row.QuantitySold.Add(p.QuantitySold)
			row.Revenue = row.Revenue.Add(p.RevenueTotal)
			row.Cost = row.Cost.Add(p.CostTotal)
			row.GrossProfit = row.GrossProfit.Add(p.GrossProfit)
			row.Records++
		}
		return nil
	})
	out := make([]repository.ProductProfitRow, 0, len(byProduct))
	for _, row := range byProduct {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GrossProfit.GreaterThan(out[j].GrossProfit) })
	return out, err
}

func (r *reportRepo) SalesSummary(_ context.Context, from, to time.Time) (repository.SalesSummaryRow, error) {
	var out repository.SalesSummaryRow
	err := r.do("Reports.SalesSummary", func(st *state) error {
		for _, s := range st.sales {
			if s.CreatedAt.Before(from) || s.CreatedAt.After(to) {
				continue
			}
			out.Count++
			out.Total = out.Total.Add(s.Total)
			out.GrossProfit = out.GrossProfit.Add(saleProfit(st, s.ID))
		}
		return nil
	})
	return out, err
}

func (r *reportRepo) MonthlySales(_ context.Context, from time.Time) ([]repository.MonthlySalesRow, error) {
	type key struct{ year, month int }
	byMonth := map[key]*repository.MonthlySalesRow{}
	err := r.do("Reports.MonthlySales", func(st *state) error {
		for _, s := range st.sales {
			if s.CreatedAt.Before(from) {
				continue
			}
			k := key{s.CreatedAt.Year(), int(s.CreatedAt.Month())}
			row, ok := byMonth[k]
			if !ok {
				row = &repository.MonthlySalesRow{Year: k.year, Month: k.month}
				byMonth[k] = row
			}
			row.Count++
			row.Total = row.Total.Add(s.Total)
			row.GrossProfit = row.GrossProfit.Add(saleProfit(st, s.ID))
		}
		return nil
	})
	out := make([]repository.MonthlySalesRow, 0, len(byMonth))
	for _, row := range byMonth {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out, err
}

func (r *reportRepo) PendingSales(_ context.Context, f repository.PendingFilter) ([]repository.PendingSaleRow, error) {
	var out []repository.PendingSaleRow
	err := r.do("Reports.PendingSales", func(st *state) error {
		for _, s := range st.sales {
			if s.Paid() {
				continue
			}
			if f.CustomerID != "" && (s.CustomerID == nil || *s.CustomerID != f.CustomerID) {
				continue
			}
			row := repository.PendingSaleRow{
				SaleID:        s.ID,
				Total:         s.Total,
				PickingStatus: s.PickingStatus,
				Notes:         s.Notes,
				CreatedAt:     s.CreatedAt,
			}
			if s.CustomerID != nil {
				c := st.customers[*s.CustomerID]
				row.CustomerID = optional(c.ID)
				row.CustomerName = optional(c.Name)
				row.TradeName = optional(c.TradeName)
				row.Email = optional(c.Email)
				row.Phone = optional(c.Phone1)
			}
			out = append(out, row)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		switch f.OrderBy {
		case "valor_desc":
			return out[i].Total.GreaterThan(out[j].Total)
		case "valor_asc":
			return out[i].Total.LessThan(out[j].Total)
		case "data_asc":
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, err
}

func inPeriod(p repository.SalesPeriod, at time.Time) bool {
	if p.From != nil && at.Before(*p.From) {
		return false
	}
	return p.To == nil || !at.After(*p.To)
}

func (r *reportRepo) TopCustomers(_ context.Context, p repository.SalesPeriod, limit int) ([]repository.CustomerRankRow, error) {
	byCustomer := map[string]*repository.CustomerRankRow{}
	err := r.do("Reports.TopCustomers", func(st *state) error {
		for _, s := range st.sales {
			if s.CustomerID == nil || !inPeriod(p, s.CreatedAt) {
				continue
			}
			row, ok := byCustomer[*s.CustomerID]
			if !ok {
				c := st.customers[*s.CustomerID]
				row = &repository.CustomerRankRow{CustomerName: c.Name, TradeName: optional(c.TradeName)}
				byCustomer[*s.CustomerID] = row
			}
			row.SalesCount++
			row.Total = row.Total.Add(s.Total)
			if !s.Paid() {
				row.Pending = row.Pending.Add(s.Total)
			}
			row.GrossProfit = row.GrossProfit.Add(saleProfit(st, s.ID))
		}
		return nil
	})
	out := make([]repository.CustomerRankRow, 0, len(byCustomer))
	for _, row := range byCustomer {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Total.GreaterThan(out[j].Total) })
	return page(out, limit, 0), err
}

func (r *reportRepo) SalesKPIs(_ context.Context, p repository.SalesPeriod) (repository.SalesKPIRow, error) {
	var out repository.SalesKPIRow
	err := r.do("Reports.SalesKPIs", func(st *state) error {
		for _, s := range st.sales {
			if !inPeriod(p, s.CreatedAt) {
				continue
			}
			out.Count++
			out.Total = out.Total.Add(s.Total)
			if s.Paid() {
				out.TotalPaid = out.TotalPaid.Add(s.Total)
			} else {
				out.TotalPending = out.TotalPending.Add(s.Total)
			}
			if s.Picked() {
				out.PickedCount++
			} else {
				out.AwaitingCount++
			}
		}
		return nil
	})
	return out, err
}

func (r *reportRepo) TopProducts(_ context.Context, p repository.SalesPeriod, limit int) ([]repository.TopProductRow, error) {
	byProduct := map[string]*repository.TopProductRow{}
	err := r.do("Reports.TopProducts", func(st *state) error {
		for _, s := range st.sales {
			if !inPeriod(p, s.CreatedAt) {
				continue
			}
			for _, l := range s.Lines {
				row, ok := byProduct[l.ProductID]
				if !ok {
					row = &repository.TopProductRow{ProductID: l.ProductID, ProductName: st.products[l.ProductID].Name}
					byProduct[l.ProductID] = row
				}
				row.Quantity = row.Quantity.Add(l.EffectiveQuantity())
				row.Total = row.Total.Add(l.LineTotal)
			}
		}
		return nil
	})
	out := make([]repository.TopProductRow, 0, len(byProduct))
	for _, row := range byProduct {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Total.GreaterThan(out[j].Total) })
	return page(out, limit, 0), err
}

func (r *reportRepo) PickerPerformance(_ context.Context, p repository.SalesPeriod) ([]repository.PickerPerformanceRow, error) {
	byUser := map[string]*repository.PickerPerformanceRow{}
	err := r.do("Reports.PickerPerformance", func(st *state) error {
		for _, s := range st.sales {
			if s.PickedBy == nil || s.PickedAt == nil || !inPeriod(p, *s.PickedAt) {
				continue
			}
			u, ok := st.users[*s.PickedBy]
			if !ok {
				continue
			}
			row, ok := byUser[u.ID]
			if !ok {
				row = &repository.PickerPerformanceRow{UserID: u.ID, Name: u.Name, Email: u.Email}
				byUser[u.ID] = row
			}
			row.PickedCount++
			row.PickedTotal = row.PickedTotal.Add(s.Total)
		}
		return nil
	})
	out := make([]repository.PickerPerformanceRow, 0, len(byUser))
	for _, row := range byUser {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PickedCount != out[j].PickedCount {
			return out[i].PickedCount > out[j].PickedCount
		}
		return out[i].Name < out[j].Name
	})
	return out, err
}

func (r *reportRepo) CustomerSummary(_ context.Context, customerID string) (repository.CustomerSummaryRow, error) {
	var out repository.CustomerSummaryRow
	err := r.do("Reports.CustomerSummary", func(st *state) error {
		for _, s := range st.sales {
			if s.CustomerID == nil || *s.CustomerID != customerID {
				continue
			}
			out.SalesCount++
			out.TotalSold = out.TotalSold.Add(s.Total)
			if s.Paid() {
				out.TotalPaid = out.TotalPaid.Add(s.Total)
			} else {
				out.TotalPending = out.TotalPending.Add(s.Total)
				out.PendingCount++
			}
			out.GrossProfit = out.GrossProfit.Add(saleProfit(st, s.ID))
			at := s.CreatedAt
			if out.FirstSaleAt == nil || at.Before(*out.FirstSaleAt) {
				out.FirstSaleAt = &at
			}
			if out.LastSaleAt == nil || at.After(*out.LastSaleAt) {
				out.LastSaleAt = &at
			}
		}
		return nil
	})
	return out, err
}

func (r *reportRepo) FavoriteProducts(_ context.Context, customerID string, limit int) ([]repository.FavoriteProductRow, error) {
	byProduct := map[string]*repository.FavoriteProductRow{}
	err := r.do("Reports.FavoriteProducts", func(st *state) error {
		for _, s := range st.sales {
			if s.CustomerID == nil || *s.CustomerID != customerID {
				continue
			}
			seen := map[string]bool{}
			for _, l := range s.Lines {
				row, ok := byProduct[l.ProductID]
				if !ok {
					row = &repository.FavoriteProductRow{ProductID: l.ProductID, ProductName: st.products[l.ProductID].Name}
					byProduct[l.ProductID] = row
				}
				row.Quantity = row.Quantity.Add(l.EffectiveQuantity())
				row.Total = row.Total.Add(l.LineTotal)
				if !seen[l.ProductID] {
					row.TimesBought++
					seen[l.ProductID] = true
				}
			}
		}
		return nil
	})
	out := make([]repository.FavoriteProductRow, 0, len(byProduct))
	for _, row := range byProduct {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TimesBought != out[j].TimesBought {
			return out[i].TimesBought > out[j].TimesBought
		}
		return out[i].Total.GreaterThan(out[j].Total)
	})
	return page(out, limit, 0), err
}

func (r *reportRepo) Delinquents(_ context.Context, f repository.DelinquentFilter) ([]repository.DelinquentRow, error) {
	cutoff := f.Now.AddDate(0, 0, -f.MinDays)
	byCustomer := map[string]*repository.DelinquentRow{}
	err := r.do("Reports.Delinquents", func(st *state) error {
		for _, s := range st.sales {
			if s.Paid() || s.CustomerID == nil || s.CreatedAt.After(cutoff) {
				continue
			}
			row, ok := byCustomer[*s.CustomerID]
			if !ok {
				c := st.customers[*s.CustomerID]
				row = &repository.DelinquentRow{
					CustomerID:   c.ID,
					CustomerName: c.Name,
					TradeName:    optional(c.TradeName),
					Email:        optional(c.Email),
					Phone:        c.Phone1,
					OldestSale:   s.CreatedAt,
					NewestSale:   s.CreatedAt,
				}
				byCustomer[*s.CustomerID] = row
			}
			row.TotalDue = row.TotalDue.Add(s.Total)
			row.PendingSales++
			if s.CreatedAt.Before(row.OldestSale) {
				row.OldestSale = s.CreatedAt
			}
			if s.CreatedAt.After(row.NewestSale) {
				row.NewestSale = s.CreatedAt
			}
		}
		return nil
	})
	out := make([]repository.DelinquentRow, 0, len(byCustomer))
	for _, row := range byCustomer {
		if f.MinValue != nil && row.TotalDue.LessThan(*f.MinValue) {
			continue
		}
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		switch f.OrderBy {
		case "valor_asc":
			return out[i].TotalDue.LessThan(out[j].TotalDue)
		case "dias_desc":
			return out[i].OldestSale.Before(out[j].OldestSale)
		case "dias_asc":
			return out[i].OldestSale.After(out[j].OldestSale)
		}
		return out[i].TotalDue.GreaterThan(out[j].TotalDue)
	})
	return out, err
}
