package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ProductProfitRow rentabilidade agregada de um produto.
type ProductProfitRow struct {
	ProductID    string          `db:"product_id"`
	ProductName  string          `db:"product_name"`
	QuantitySold decimal.Decimal `db:"quantity_sold"`
	Revenue      decimal.Decimal `db:"revenue"`
	Cost         decimal.Decimal `db:"cost"`
	GrossProfit  decimal.Decimal `db:"gross_profit"`
	Records      int             `db:"records"`
}

// SalesSummaryRow totais de vendas num período.
type SalesSummaryRow struct {
	Count       int             `db:"count"`
	Total       decimal.Decimal `db:"total"`
	GrossProfit decimal.Decimal `db:"gross_profit"`
}

// MonthlySalesRow totais de vendas de um mês.
type MonthlySalesRow struct {
	Year        int             `db:"year"`
	Month       int             `db:"month"`
	Count       int             `db:"count"`
	Total       decimal.Decimal `db:"total"`
	GrossProfit decimal.Decimal `db:"gross_profit"`
}

// PendingSaleRow venda com pagamento pendente e dados do cliente.
type PendingSaleRow struct {
	SaleID        string          `db:"sale_id"`
	CustomerID    *string         `db:"customer_id"`
	CustomerName  *string         `db:"customer_name"`
	TradeName     *string         `db:"trade_name"`
	Email         *string         `db:"email"`
	Phone         *string         `db:"phone"`
	Total         decimal.Decimal `db:"total"`
	PickingStatus string          `db:"picking_status"`
	Notes         string          `db:"notes"`
	CreatedAt     time.Time       `db:"created_at"`
}

// PendingFilter filtros de vendas pendentes.
type PendingFilter struct {
	CustomerID string
	// OrderBy: valor_desc, valor_asc, data_desc, data_asc.
	OrderBy string
}

// SalesPeriod janela sobre a data da venda; nil deixa o lado aberto.
type SalesPeriod struct {
	From *time.Time
	To   *time.Time
}

// CustomerRankRow cliente no ranking por valor vendido.
type CustomerRankRow struct {
	CustomerName string          `db:"customer_name"`
	TradeName    *string         `db:"trade_name"`
	SalesCount   int             `db:"sales_count"`
	Total        decimal.Decimal `db:"total"`
	Pending      decimal.Decimal `db:"pending"`
	GrossProfit  decimal.Decimal `db:"gross_profit"`
}

// SalesKPIRow totais de vendas do período por situação de pagamento e separação.
type SalesKPIRow struct {
	Count         int             `db:"count"`
	Total         decimal.Decimal `db:"total"`
	TotalPaid     decimal.Decimal `db:"total_paid"`
	TotalPending  decimal.Decimal `db:"total_pending"`
	PickedCount   int             `db:"picked_count"`
	AwaitingCount int             `db:"awaiting_count"`
}

// TopProductRow produto no ranking por valor vendido.
type TopProductRow struct {
	ProductID   string          `db:"product_id"`
	ProductName string          `db:"product_name"`
	Quantity    decimal.Decimal `db:"quantity"`
	Total       decimal.Decimal `db:"total"`
}

// PickerPerformanceRow vendas separadas por um funcionário.
type PickerPerformanceRow struct {
	UserID      string          `db:"user_id"`
	Name        string          `db:"name"`
	Email       string          `db:"email"`
	PickedCount int             `db:"picked_count"`
	PickedTotal decimal.Decimal `db:"picked_total"`
}

// CustomerSummaryRow resumo financeiro de um cliente.
type CustomerSummaryRow struct {
	SalesCount   int             `db:"sales_count"`
	TotalSold    decimal.Decimal `db:"total_sold"`
	TotalPaid    decimal.Decimal `db:"total_paid"`
	TotalPending decimal.Decimal `db:"total_pending"`
	PendingCount int             `db:"pending_count"`
	GrossProfit  decimal.Decimal `db:"gross_profit"`
	FirstSaleAt  *time.Time      `db:"first_sale_at"`
	LastSaleAt   *time.Time      `db:"last_sale_at"`
}

// FavoriteProductRow produto mais comprado por um cliente.
type FavoriteProductRow struct {
	ProductID   string          `db:"product_id"`
	ProductName string          `db:"product_name"`
	Quantity    decimal.Decimal `db:"quantity"`
	Total       decimal.Decimal `db:"total"`
	TimesBought int             `db:"times_bought"`
}

// DelinquentRow cliente com vendas pendentes além do prazo.
type DelinquentRow struct {
	CustomerID   string          `db:"customer_id"`
	CustomerName string          `db:"customer_name"`
	TradeName    *string         `db:"trade_name"`
	Email        *string         `db:"email"`
	Phone        string          `db:"phone"`
	TotalDue     decimal.Decimal `db:"total_due"`
	PendingSales int             `db:"pending_sales"`
	OldestSale   time.Time       `db:"oldest_sale"`
	NewestSale   time.Time       `db:"newest_sale"`
}

// DelinquentFilter critérios do relatório de inadimplentes.
type DelinquentFilter struct {
	MinDays  int
	MinValue *decimal.Decimal
	// OrderBy: valor_desc, valor_asc, dias_desc, dias_asc.
	OrderBy string
	Now     time.Time
}

// ReportRepository consultas somente leitura para relatórios e dashboard.
type ReportRepository interface {
	ProductProfitability(ctx context.Context, f ProfitFilter) ([]ProductProfitRow, error)
	SalesSummary(ctx context.Context, from, to time.Time) (SalesSummaryRow, error)
	MonthlySales(ctx context.Context, from time.Time) ([]MonthlySalesRow, error)
	PendingSales(ctx context.Context, f PendingFilter) ([]PendingSaleRow, error)
	TopCustomers(ctx context.Context, p SalesPeriod, limit int) ([]CustomerRankRow, error)
	SalesKPIs(ctx context.Context, p SalesPeriod) (SalesKPIRow, error)
	TopProducts(ctx context.Context, p SalesPeriod, limit int) ([]TopProductRow, error)
	// PickerPerformance filtra pela data da separação, não da venda.
	PickerPerformance(ctx context.Context, p SalesPeriod) ([]PickerPerformanceRow, error)
	CustomerSummary(ctx context.Context, customerID string) (CustomerSummaryRow, error)
	FavoriteProducts(ctx context.Context, customerID string, limit int) ([]FavoriteProductRow, error)
	Delinquents(ctx context.Context, f DelinquentFilter) ([]DelinquentRow, error)
}
