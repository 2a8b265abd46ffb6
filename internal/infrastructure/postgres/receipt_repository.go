package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ceasa-api/internal/domain/entity"
	"github.com/jhoicas/ceasa-api/internal/domain/repository"
)

var _ repository.ReceiptRepository = (*ReceiptRepo)(nil)

const receiptColumns = "r.id, r.product_id, r.measure_unit, r.unit_cost, r.quantity, r.total_value, r.supplier, r.notes, r.received_at, r.created_at"

// ReceiptRepo entradas de estoque (stock_receipts).
type ReceiptRepo struct {
	q Querier
}

// NewReceiptRepository constrói o adaptador de entradas.
func NewReceiptRepository(q Querier) *ReceiptRepo {
	return &ReceiptRepo{q: q}
}

// Create persiste a entrada. O lote correspondente é criado pelo razão na mesma transação.
func (r *ReceiptRepo) Create(ctx context.Context, rc *entity.Receipt) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_receipts (id, product_id, measure_unit, unit_cost, quantity, total_value, supplier, notes, received_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rc.ID, rc.ProductID, rc.MeasureUnit, rc.UnitCost, rc.Quantity, rc.TotalValue, rc.Supplier, rc.Notes,
		rc.ReceivedAt, rc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert receipt: %w", err)
	}
	return nil
}

// GetByID devolve nil, nil quando não existe.
func (r *ReceiptRepo) GetByID(ctx context.Context, id string) (*entity.Receipt, error) {
	var rc entity.Receipt
	if err := pgxscan.Get(ctx, r.q, &rc, "SELECT "+receiptColumns+" FROM stock_receipts r WHERE r.id = $1", id); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get receipt: %w", err)
	}
	return &rc, nil
}

// Delete remove a entrada; lote e movimentação de entrada já devem ter sido removidos.
func (r *ReceiptRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM stock_receipts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete receipt: %w", err)
	}
	return nil
}

// List entradas mais recentes primeiro.
func (r *ReceiptRepo) List(ctx context.Context, f repository.ReceiptFilter) ([]entity.Receipt, int, error) {
	where := sq.And{}
	if f.ProductID != "" {
		where = append(where, sq.Eq{"r.product_id": f.ProductID})
	}
	if f.From != nil {
		where = append(where, sq.GtOrEq{"r.received_at": *f.From})
	}
	if f.To != nil {
		where = append(where, sq.LtOrEq{"r.received_at": *f.To})
	}
	if f.DeletableOnly {
		where = append(where, sq.Expr("NOT EXISTS (SELECT 1 FROM lots l WHERE l.receipt_id = r.id AND l.remaining_quantity <> l.original_quantity)"))
	}

	total, err := count(ctx, r.q, psql.Select("COUNT(*)").From("stock_receipts r").Where(where))
	if err != nil {
		return nil, 0, fmt.Errorf("count receipts: %w", err)
	}
	query, args, err := paginate(psql.Select(receiptColumns).From("stock_receipts r").Where(where).
		OrderBy("r.received_at DESC", "r.id"), f.Limit, f.Offset).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var list []entity.Receipt
	if err := pgxscan.Select(ctx, r.q, &list, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list receipts: %w", err)
	}
	return list, total, nil
}

// CountByProduct quantas entradas o produto possui.
func (r *ReceiptRepo) CountByProduct(ctx context.Context, productID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_receipts WHERE product_id = $1`, productID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count receipts: %w", err)
	}
	return n, nil
}

// SumQuantitySince soma as quantidades recebidas a partir de since.
func (r *ReceiptRepo) SumQuantitySince(ctx context.Context, productID string, since time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM stock_receipts WHERE product_id = $1 AND received_at >= $2`,
		productID, since).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum receipts: %w", err)
	}
	return total, nil
}
