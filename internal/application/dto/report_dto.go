package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodRequest janela de datas opcional dos relatórios.
type PeriodRequest struct {
	ProductID string     `query:"product_id"`
	From      *time.Time `query:"from"`
	To        *time.Time `query:"to"`
}

// MovementResponse lançamento do fluxo de caixa.
type MovementResponse struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"product_id"`
	Kind       string          `json:"kind"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalValue decimal.Decimal `json:"total_value"`
	ReceiptID  string          `json:"receipt_id,omitempty"`
	SaleID     string          `json:"sale_id,omitempty"`
	Note       string          `json:"note"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// CashFlowResponse resumo do fluxo de caixa. Balance = saídas (vendas) − entradas (compras).
type CashFlowResponse struct {
	TotalInflow      decimal.Decimal    `json:"total_inflow"`
	TotalOutflow     decimal.Decimal    `json:"total_outflow"`
	TotalAdjustments decimal.Decimal    `json:"total_adjustments"`
	Balance          decimal.Decimal    `json:"balance"`
	GrossProfit      decimal.Decimal    `json:"gross_profit"`
	MeanMargin       decimal.Decimal    `json:"mean_margin"`
	SaleCount        int                `json:"sale_count"`
	Entries          []MovementResponse `json:"entries"`
}

// ProductProfitResponse rentabilidade de um produto.
type ProductProfitResponse struct {
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name"`
	QuantitySold  decimal.Decimal `json:"quantity_sold"`
	Revenue       decimal.Decimal `json:"revenue"`
	Cost          decimal.Decimal `json:"cost"`
	GrossProfit   decimal.Decimal `json:"gross_profit"`
	MarginPercent decimal.Decimal `json:"margin_percent"`
	Records       int             `json:"records"`
}

// ProfitabilityResponse rentabilidade por produto e total geral.
type ProfitabilityResponse struct {
	Products []ProductProfitResponse `json:"products"`
	Summary  ProfitSummary           `json:"summary"`
}

// ProfitSummary totais da rentabilidade.
type ProfitSummary struct {
	Revenue       decimal.Decimal `json:"revenue"`
	Cost          decimal.Decimal `json:"cost"`
	GrossProfit   decimal.Decimal `json:"gross_profit"`
	MarginPercent decimal.Decimal `json:"margin_percent"`
	Products      int             `json:"products"`
}

// CustomerRef dados de contato de um cliente nos relatórios.
type CustomerRef struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	TradeName string `json:"trade_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// PendingSaleResponse venda com pagamento em aberto.
type PendingSaleResponse struct {
	SaleID        string          `json:"sale_id"`
	CustomerName  string          `json:"customer_name,omitempty"`
	Total         decimal.Decimal `json:"total"`
	PickingStatus string          `json:"picking_status"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	DaysPending   int             `json:"days_pending"`
}

// PendingCustomerGroup vendas pendentes de um cliente.
type PendingCustomerGroup struct {
	Customer     CustomerRef           `json:"customer"`
	Sales        []PendingSaleResponse `json:"sales"`
	TotalPending decimal.Decimal       `json:"total_pending"`
	SaleCount    int                   `json:"sale_count"`
}

// PendingPaymentsRequest filtros de GET /reports/pending-payments.
type PendingPaymentsRequest struct {
	CustomerID string `query:"customer_id"`
	OrderBy    string `query:"order_by" validate:"omitempty,oneof=valor_desc valor_asc data_desc data_asc"`
}

// PendingPaymentsResponse pagamentos pendentes agrupados por cliente.
type PendingPaymentsResponse struct {
	Customers     []PendingCustomerGroup `json:"customers"`
	TotalPending  decimal.Decimal        `json:"total_pending"`
	CustomerCount int                    `json:"customer_count"`
	SaleCount     int                    `json:"sale_count"`
}

// CustomerStats estatísticas de compras de um cliente.
type CustomerStats struct {
	SalesCount      int             `json:"sales_count"`
	TotalSold       decimal.Decimal `json:"total_sold"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	TotalPending    decimal.Decimal `json:"total_pending"`
	PendingCount    int             `json:"pending_count"`
	AverageTicket   decimal.Decimal `json:"average_ticket"`
	GrossProfit     decimal.Decimal `json:"gross_profit"`
	DelinquencyRate decimal.Decimal `json:"delinquency_rate"`
	FirstSaleAt     *time.Time      `json:"first_sale_at"`
	LastSaleAt      *time.Time      `json:"last_sale_at"`
}

// CustomerHistoryResponse vendas paginadas de um cliente com estatísticas.
type CustomerHistoryResponse struct {
	Customer CustomerRef    `json:"customer"`
	Sales    []SaleResponse `json:"sales"`
	Stats    CustomerStats  `json:"stats"`
	Page     PageResponse   `json:"page"`
}

// FavoriteProductResponse produto mais comprado por um cliente.
type FavoriteProductResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Total       decimal.Decimal `json:"total"`
	TimesBought int             `json:"times_bought"`
}

// CustomerSummaryResponse resumo financeiro de um cliente.
type CustomerSummaryResponse struct {
	Customer         CustomerRef               `json:"customer"`
	Active           bool                      `json:"active"`
	Stats            CustomerStats             `json:"stats"`
	FavoriteProducts []FavoriteProductResponse `json:"favorite_products"`
	RecentPending    []PendingSaleResponse     `json:"recent_pending"`
}

// DelinquentsRequest filtros de GET /reports/delinquents.
type DelinquentsRequest struct {
	MinDays  int              `query:"min_days" validate:"omitempty,min=0"`
	MinValue *decimal.Decimal `query:"min_value"`
	OrderBy  string           `query:"order_by" validate:"omitempty,oneof=valor_desc valor_asc dias_desc dias_asc"`
}

// DelinquentResponse cliente inadimplente e sua dívida.
type DelinquentResponse struct {
	Customer       CustomerRef     `json:"customer"`
	TotalDue       decimal.Decimal `json:"total_due"`
	PendingSales   int             `json:"pending_sales"`
	OldestSale     time.Time       `json:"oldest_sale"`
	NewestSale     time.Time       `json:"newest_sale"`
	MaxDaysOverdue int             `json:"max_days_overdue"`
}

// DelinquentsResponse lista de inadimplentes e critérios usados.
type DelinquentsResponse struct {
	Customers []DelinquentResponse `json:"customers"`
	TotalDue  decimal.Decimal      `json:"total_due"`
	MinDays   int                  `json:"min_days"`
	MinValue  *decimal.Decimal     `json:"min_value,omitempty"`
	OrderBy   string               `json:"order_by"`
}
