package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/ceasa-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// saleProfitJoin lucro bruto somado por venda.
const saleProfitJoin = `LEFT JOIN (
		SELECT sale_id, SUM(gross_profit) AS gross_profit FROM profit_records GROUP BY sale_id
	) pr ON pr.sale_id = s.id`

// ReportRepo consultas agregadas de relatórios. Roda sobre o pool, fora das transações de escrita.
type ReportRepo struct {
	q   Querier
	loc *time.Location
}

// NewReportRepository constrói o repositório; loc define o fuso do agrupamento mensal.
func NewReportRepository(q Querier, loc *time.Location) *ReportRepo {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportRepo{q: q, loc: loc}
}

func (r *ReportRepo) selectAll(ctx context.Context, name string, dst any, b sq.SelectBuilder) error {
	ctx, span := tracer.Start(ctx, "report."+name, trace.WithAttributes(attribute.String("db.operation", "select")))
	defer span.End()

	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	if err := pgxscan.Select(ctx, r.q, dst, query, args...); err != nil {
		span.RecordError(err)
		return fmt.Errorf("relatório %s: %w", name, err)
	}
	return nil
}

func (r *ReportRepo) getOne(ctx context.Context, name string, dst any, b sq.SelectBuilder) error {
	ctx, span := tracer.Start(ctx, "report."+name, trace.WithAttributes(attribute.String("db.operation", "select")))
	defer span.End()

	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	if err := pgxscan.Get(ctx, r.q, dst, query, args...); err != nil {
		span.RecordError(err)
		return fmt.Errorf("relatório %s: %w", name, err)
	}
	return nil
}

// ProductProfitability agrega os registros de lucro por produto, maior lucro primeiro.
func (r *ReportRepo) ProductProfitability(ctx context.Context, f repository.ProfitFilter) ([]repository.ProductProfitRow, error) {
	b := psql.Select(
		"pr.product_id",
		"p.name AS product_name",
		"SUM(pr.quantity_sold) AS quantity_sold",
		"SUM(pr.revenue_total) AS revenue",
		"SUM(pr.cost_total) AS cost",
		"SUM(pr.gross_profit) AS gross_profit",
		"COUNT(*) AS records",
	).From("profit_records pr").
		Join("products p ON p.id = pr.product_id").
		Where(profitWhere(f, "pr.")).
		GroupBy("pr.product_id", "p.name").
		OrderBy("gross_profit DESC", "p.name")

	var rows []repository.ProductProfitRow
	if err := r.selectAll(ctx, "product_profitability", &rows, b); err != nil {
		return nil, err
	}
	return rows, nil
}

// SalesSummary quantidade, total e lucro das vendas criadas em [from, to].
func (r *ReportRepo) SalesSummary(ctx context.Context, from, to time.Time) (repository.SalesSummaryRow, error) {
	b := psql.Select(
		"COUNT(*) AS count",
		"COALESCE(SUM(s.total), 0) AS total",
		"COALESCE(SUM(pr.gross_profit), 0) AS gross_profit",
	).From("sales s " + saleProfitJoin).
		Where(sq.And{sq.GtOrEq{"s.created_at": from}, sq.LtOrEq{"s.created_at": to}})

	var row repository.SalesSummaryRow
	if err := r.getOne(ctx, "sales_summary", &row, b); err != nil {
		return repository.SalesSummaryRow{}, err
	}
	return row, nil
}

// MonthlySales totais por mês (no fuso configurado) a partir de from, em ordem cronológica.
func (r *ReportRepo) MonthlySales(ctx context.Context, from time.Time) ([]repository.MonthlySalesRow, error) {
	month := sq.Expr("date_trunc('month', s.created_at AT TIME ZONE ?)", r.loc.String())
	b := psql.Select().
		Column(sq.Alias(sq.Expr("EXTRACT(YEAR FROM ?)::int", month), "year")).
		Column(sq.Alias(sq.Expr("EXTRACT(MONTH FROM ?)::int", month), "month")).
		Columns(
			"COUNT(*) AS count",
			"COALESCE(SUM(s.total), 0) AS total",
			"COALESCE(SUM(pr.gross_profit), 0) AS gross_profit",
		).
		From("sales s " + saleProfitJoin).
		Where(sq.GtOrEq{"s.created_at": from}).
		GroupBy("1", "2").
		OrderBy("1", "2")

	var rows []repository.MonthlySalesRow
	if err := r.selectAll(ctx, "monthly_sales", &rows, b); err != nil {
		return nil, err
	}
	return rows, nil
}

// PendingSales vendas não pagas com contato do cliente.
func (r *ReportRepo) PendingSales(ctx context.Context, f repository.PendingFilter) ([]repository.PendingSaleRow, error) {
	b := psql.Select(
		"s.id AS sale_id",
		"s.customer_id",
		"c.name AS customer_name",
		"NULLIF(c.trade_name, '') AS trade_name",
		"NULLIF(c.email, '') AS email",
		"NULLIF(c.phone1, '') AS phone",
		"s.total",
		"s.picking_status",
		"s.notes",
		"s.created_at",
	).From("sales s").
		LeftJoin("customers c ON c.id = s.customer_id").
		Where(sq.Eq{"s.payment_status": "PENDING"})
	if f.CustomerID != "" {
		b = b.Where(sq.Eq{"s.customer_id": f.CustomerID})
	}
	switch f.OrderBy {
	case "valor_desc":
		b = b.OrderBy("s.total DESC", "s.created_at DESC")
	case "valor_asc":
		b = b.OrderBy("s.total", "s.created_at DESC")
	case "data_asc":
		b = b.OrderBy("s.created_at", "s.id")
	default:
		b = b.OrderBy("s.created_at DESC", "s.id")
	}

	var rows []repository.PendingSaleRow
	if err := r.selectAll(ctx, "pending_sales", &rows, b); err != nil {
		return nil, err
	}
	return rows, nil
}

// TopCustomers clientes por valor vendido no período; vendas de balcão ficam de fora.
func (r *ReportRepo) TopCustomers(ctx context.Context, p repository.SalesPeriod, limit int) ([]repository.CustomerRankRow, error) {
	b := psql.Select(
		"c.name AS customer_name",
		"NULLIF(c.trade_name, '') AS trade_name",
		"COUNT(*) AS sales_count",
		"SUM(s.total) AS total",
		"COALESCE(SUM(s.total) FILTER (WHERE s.payment_status = 'PENDING'), 0) AS pending",
		"COALESCE(SUM(pr.gross_profit), 0) AS gross_profit",
	).From("sales s " + saleProfitJoin).
		Join("customers c ON c.id = s.customer_id").
		Where(periodWhere(p, "s.created_at")).
		GroupBy("c.id", "c.name", "c.trade_name").
		OrderBy("total DESC", "c.name")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}

	var rows []repository.CustomerRankRow
	if err := r.selectAll(ctx, "top_customers", &rows, b); err != nil {
		return nil, err
	}
	return rows, nil
}

// SalesKPIs totais do período por situação de pagamento e de separação.
func (r *ReportRepo) SalesKPIs(ctx context.Context, p repository.SalesPeriod) (repository.SalesKPIRow, error) {
	b := psql.Select(
		"COUNT(*) AS count",
		"COALESCE(SUM(s.total), 0) AS total",
		"COALESCE(SUM(s.total) FILTER (WHERE s.payment_status = 'PAID'), 0) AS total_paid",
		"COALESCE(SUM(s.total) FILTER (WHERE s.payment_status = 'PENDING'), 0) AS total_pending",
		"COUNT(*) FILTER (WHERE s.picking_status = 'PICKED') AS picked_count",
		"COUNT(*) FILTER (WHERE s.picking_status = 'AWAITING_PICKING') AS awaiting_count",
	).From("sales s").
		Where(periodWhere(p, "s.created_at"))

	var row repository.SalesKPIRow
	if err := r.getOne(ctx, "sales_kpis", &row, b); err != nil {
		return repository.SalesKPIRow{}, err
	}
	return row, nil
}

// TopProducts produtos por valor vendido no período; a quantidade é a separada quando existe.
func (r *ReportRepo) TopProducts(ctx context.Context, p repository.SalesPeriod, limit int) ([]repository.TopProductRow, error) {
	b := psql.Select(
		"l.product_id",
		"p.name AS product_name",
		"SUM(COALESCE(l.fulfilled_quantity, l.requested_quantity)) AS quantity",
		"SUM(l.line_total) AS total",
	).From("sale_lines l").
		Join("sales s ON s.id = l.sale_id").
		Join("products p ON p.id = l.product_id").
		Where(periodWhere(p, "s.created_at")).
		GroupBy("l.product_id", "p.name").
		OrderBy("total DESC", "p.name")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}

	var rows []repository.TopProductRow
	if err := r.selectAll(ctx, "top_products", &rows, b); err != nil {
		return nil, err
	}
	return rows, nil
}

// PickerPerformance vendas separadas por funcionário, mais separações primeiro.
func (r *ReportRepo) PickerPerformance(ctx context.Context, p repository.SalesPeriod) ([]repository.PickerPerformanceRow, error) {
	b := psql.Select(
		"u.id AS user_id",
		"u.name",
		"u.email",
		"COUNT(*) AS picked_count",
		"SUM(s.total) AS picked_total",
	).From("sales s").
		Join("users u ON u.id = s.picked_by").
		Where(periodWhere(p, "s.picked_at")).
		GroupBy("u.id", "u.name", "u.email").
		OrderBy("picked_count DESC", "u.name")

	var rows []repository.PickerPerformanceRow
	if err := r.selectAll(ctx, "picker_performance", &rows, b); err != nil {
		return nil, err
	}
	return rows, nil
}

// periodWhere limita column a [From, To]; lados nil ficam abertos.
func periodWhere(p repository.SalesPeriod, column string) sq.And {
	where := sq.And{}
	if p.From != nil {
		where = append(where, sq.GtOrEq{column: *p.From})
	}
	if p.To != nil {
		where = append(where, sq.LtOrEq{column: *p.To})
	}
	return where
}

// CustomerSummary totais financeiros do cliente.
func (r *ReportRepo) CustomerSummary(ctx context.Context, customerID string) (repository.CustomerSummaryRow, error) {
	b := psql.Select(
		"COUNT(*) AS sales_count",
		"COALESCE(SUM(s.total), 0) AS total_sold",
		"COALESCE(SUM(s.total) FILTER (WHERE s.payment_status = 'PAID'), 0) AS total_paid",
		"COALESCE(SUM(s.total) FILTER (WHERE s.payment_status = 'PENDING'), 0) AS total_pending",
		"COUNT(*) FILTER (WHERE s.payment_status = 'PENDING') AS pending_count",
		"COALESCE(SUM(pr.gross_profit), 0) AS gross_profit",
		"MIN(s.created_at) AS first_sale_at",
		"MAX(s.created_at) AS last_sale_at",
	).From("sales s " + saleProfitJoin).
		Where(sq.Eq{"s.customer_id": customerID})

	var row repository.CustomerSummaryRow
	if err := r.getOne(ctx, "customer_summary", &row, b); err != nil {
		return repository.CustomerSummaryRow{}, err
	}
	return row, nil
}

// FavoriteProducts produtos que o cliente mais compra (em número de vendas, depois valor).
func (r *ReportRepo) FavoriteProducts(ctx context.Context, customerID string, limit int) ([]repository.FavoriteProductRow, error) {
	b := psql.Select(
		"l.product_id",
		"p.name AS product_name",
		"SUM(COALESCE(l.fulfilled_quantity, l.requested_quantity)) AS quantity",
		"SUM(l.line_total) AS total",
		"COUNT(DISTINCT l.sale_id) AS times_bought",
	).From("sale_lines l").
		Join("sales s ON s.id = l.sale_id").
		Join("products p ON p.id = l.product_id").
		Where(sq.Eq{"s.customer_id": customerID}).
		GroupBy("l.product_id", "p.name").
		OrderBy("times_bought DESC", "total DESC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}

	var rows []repository.FavoriteProductRow
	if err := r.selectAll(ctx, "favorite_products", &rows, b); err != nil {
		return nil, err
	}
	return rows, nil
}

// Delinquents clientes com vendas pendentes criadas há pelo menos MinDays dias.
func (r *ReportRepo) Delinquents(ctx context.Context, f repository.DelinquentFilter) ([]repository.DelinquentRow, error) {
	cutoff := f.Now.AddDate(0, 0, -f.MinDays)
	b := psql.Select(
		"c.id AS customer_id",
		"c.name AS customer_name",
		"NULLIF(c.trade_name, '') AS trade_name",
		"NULLIF(c.email, '') AS email",
		"c.phone1 AS phone",
		"SUM(s.total) AS total_due",
		"COUNT(*) AS pending_sales",
		"MIN(s.created_at) AS oldest_sale",
		"MAX(s.created_at) AS newest_sale",
	).From("sales s").
		Join("customers c ON c.id = s.customer_id").
		Where(sq.And{sq.Eq{"s.payment_status": "PENDING"}, sq.LtOrEq{"s.created_at": cutoff}}).
		GroupBy("c.id", "c.name", "c.trade_name", "c.email", "c.phone1")
	if f.MinValue != nil {
		b = b.Having("SUM(s.total) >= ?", *f.MinValue)
	}
	switch f.OrderBy {
	case "valor_asc":
		b = b.OrderBy("total_due", "c.name")
	case "dias_desc":
		b = b.OrderBy("oldest_sale", "c.name")
	case "dias_asc":
		b = b.OrderBy("oldest_sale DESC", "c.name")
	default:
		b = b.OrderBy("total_due DESC", "c.name")
	}

	var rows []repository.DelinquentRow
	if err := r.selectAll(ctx, "delinquents", &rows, b); err != nil {
		return nil, err
	}
	return rows, nil
}
