package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/ceasa-api/internal/domain/entity"
	"github.com/jhoicas/ceasa-api/internal/domain/repository"
)

var _ repository.ProfitRepository = (*ProfitRepo)(nil)

const profitColumns = `id, sale_id, product_id, quantity_sold, cost_total, revenue_total, gross_profit,
	margin_percent, cost_approximated, computed_at`

// ProfitRepo registros de lucro bruto por produto e venda.
type ProfitRepo struct {
	q Querier
}

// NewProfitRepository constrói o adaptador dos registros de lucro.
func NewProfitRepository(q Querier) *ProfitRepo {
	return &ProfitRepo{q: q}
}

// Create persiste o registro.
func (r *ProfitRepo) Create(ctx context.Context, p *entity.ProfitRecord) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO profit_records (id, sale_id, product_id, quantity_sold, cost_total, revenue_total, gross_profit,
			margin_percent, cost_approximated, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.SaleID, p.ProductID, p.QuantitySold, p.CostTotal, p.RevenueTotal, p.GrossProfit,
		p.MarginPercent, p.CostApproximated, p.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("insert profit record: %w", err)
	}
	return nil
}

// ListBySale registros da venda, na ordem em que foram calculados.
func (r *ProfitRepo) ListBySale(ctx context.Context, saleID string) ([]entity.ProfitRecord, error) {
	var list []entity.ProfitRecord
	err := pgxscan.Select(ctx, r.q, &list,
		"SELECT "+profitColumns+" FROM profit_records WHERE sale_id = $1 ORDER BY computed_at, id", saleID)
	if err != nil {
		return nil, fmt.Errorf("list profit records by sale: %w", err)
	}
	return list, nil
}

// DeleteByID remove um registro.
func (r *ProfitRepo) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM profit_records WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete profit record: %w", err)
	}
	return nil
}

// List registros filtrados por produto e período de cálculo.
func (r *ProfitRepo) List(ctx context.Context, f repository.ProfitFilter) ([]entity.ProfitRecord, error) {
	query, args, err := psql.Select(profitColumns).From("profit_records").
		Where(profitWhere(f, "")).OrderBy("computed_at", "id").ToSql()
	if err != nil {
		return nil, err
	}
	var list []entity.ProfitRecord
	if err := pgxscan.Select(ctx, r.q, &list, query, args...); err != nil {
		return nil, fmt.Errorf("list profit records: %w", err)
	}
	return list, nil
}

// profitWhere monta o filtro sobre profit_records; alias é o prefixo da tabela ("" ou "pr.").
func profitWhere(f repository.ProfitFilter, alias string) sq.And {
	where := sq.And{}
	if f.ProductID != "" {
		where = append(where, sq.Eq{alias + "product_id": f.ProductID})
	}
	if f.From != nil {
		where = append(where, sq.GtOrEq{alias + "computed_at": *f.From})
	}
	if f.To != nil {
		where = append(where, sq.LtOrEq{alias + "computed_at": *f.To})
	}
	return where
}
