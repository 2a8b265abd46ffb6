package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardRequest query de GET /sales/dashboard. Sem From o período é o dia de hoje.
type DashboardRequest struct {
	From *time.Time `query:"from"`
}

// DashboardResponse KPIs do período, clientes, últimos 12 meses, pendências e ranking.
type DashboardResponse struct {
	Period       DashboardPeriod    `json:"period"`
	Sales        DashboardSales     `json:"sales"`
	Customers    DashboardCustomers `json:"customers"`
	Monthly      []MonthlySalesDTO  `json:"monthly"`
	Pending      DashboardPending   `json:"pending"`
	TopCustomers []TopCustomerDTO   `json:"top_customers"`
}

// DashboardPeriod janela considerada.
type DashboardPeriod struct {
	From        time.Time `json:"from"`
	To          time.Time `json:"to"`
	Description string    `json:"description"`
}

// DashboardSales vendas do período.
type DashboardSales struct {
	Count         int             `json:"count"`
	Total         decimal.Decimal `json:"total"`
	GrossProfit   decimal.Decimal `json:"gross_profit"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
}

// DashboardCustomers contagem de clientes.
type DashboardCustomers struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// MonthlySalesDTO totais de um mês, rótulo "MM/AAAA".
type MonthlySalesDTO struct {
	Label       string          `json:"label"`
	Count       int             `json:"count"`
	Total       decimal.Decimal `json:"total"`
	GrossProfit decimal.Decimal `json:"gross_profit"`
}

// DashboardPending pagamentos em aberto.
type DashboardPending struct {
	Count int                   `json:"count"`
	Total decimal.Decimal       `json:"total"`
	Sales []PendingSaleResponse `json:"sales"`
}

// TopCustomerDTO cliente no ranking por valor comprado.
type TopCustomerDTO struct {
	Name        string          `json:"name"`
	TradeName   string          `json:"trade_name,omitempty"`
	SalesCount  int             `json:"sales_count"`
	Total       decimal.Decimal `json:"total"`
	Pending     decimal.Decimal `json:"pending"`
	GrossProfit decimal.Decimal `json:"gross_profit"`
}

// SalesDashboardRequest query de GET /reports/sales-dashboard. Sem datas considera todas as vendas.
type SalesDashboardRequest struct {
	From *time.Time `query:"from"`
	To   *time.Time `query:"to"`
}

// SalesDashboardResponse visão gerencial do período: KPIs, melhores clientes e produtos, separações por funcionário.
type SalesDashboardResponse struct {
	Period       SalesDashboardPeriod `json:"period"`
	KPIs         SalesKPIs            `json:"kpis"`
	TopCustomers []TopCustomerDTO     `json:"top_customers"`
	TopProducts  []TopProductDTO      `json:"top_products"`
	Pickers      []PickerDTO          `json:"pickers"`
}

// SalesDashboardPeriod janela pedida e momento do cálculo.
type SalesDashboardPeriod struct {
	From        *time.Time `json:"from,omitempty"`
	To          *time.Time `json:"to,omitempty"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// SalesKPIs indicadores do período. Taxas em percentual, duas casas.
type SalesKPIs struct {
	Revenue         decimal.Decimal `json:"revenue"`
	AverageTicket   decimal.Decimal `json:"average_ticket"`
	SalesCount      int             `json:"sales_count"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	TotalPending    decimal.Decimal `json:"total_pending"`
	DelinquencyRate decimal.Decimal `json:"delinquency_rate"`
	PickedCount     int             `json:"picked_count"`
	AwaitingCount   int             `json:"awaiting_count"`
	PickingRate     decimal.Decimal `json:"picking_rate"`
}

// TopProductDTO produto no ranking por valor vendido.
type TopProductDTO struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// PickerDTO separações de um funcionário no período.
type PickerDTO struct {
	UserID      string          `json:"user_id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	PickedCount int             `json:"picked_count"`
	PickedTotal decimal.Decimal `json:"picked_total"`
}
