package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/ceasa-api/internal/domain/entity"
	"github.com/jhoicas/ceasa-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `s.id, s.customer_id, COALESCE(c.name, '') AS customer_name, COALESCE(s.created_by::text, '') AS created_by,
	s.picked_by, s.total, s.picking_status, s.payment_status, s.notes, s.created_at, s.picked_at, s.paid_at`

const saleFrom = "sales s LEFT JOIN customers c ON c.id = s.customer_id"

// SaleRepo vendas e itens (sales, sale_lines).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository constrói o adaptador de vendas.
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create persiste cabeçalho e linhas; a ordem das linhas é preservada em line_no.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sales (id, customer_id, created_by, picked_by, total, picking_status, payment_status, notes, created_at, picked_at, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		s.ID, s.CustomerID, nullIfEmpty(s.CreatedBy), optionalID(s.PickedBy), s.Total, s.PickingStatus, s.PaymentStatus,
		s.Notes, s.CreatedAt, s.PickedAt, s.PaidAt,
	)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	for i := range s.Lines {
		l := &s.Lines[i]
		l.SaleID = s.ID
		_, err := r.q.Exec(ctx, `
			INSERT INTO sale_lines (id, sale_id, line_no, product_id, measure_unit, requested_quantity, fulfilled_quantity, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			l.ID, l.SaleID, i+1, l.ProductID, l.MeasureUnit, l.RequestedQuantity, l.FulfilledQuantity, l.UnitPrice, l.LineTotal,
		)
		if err != nil {
			return fmt.Errorf("insert sale line: %w", err)
		}
	}
	return nil
}

// GetByID devolve a venda com linhas; nil, nil quando não existe.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, "SELECT "+saleColumns+" FROM "+saleFrom+" WHERE s.id = $1", id)
}

// GetForUpdate bloqueia apenas a linha da venda (OF s); o cliente continua livre.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, "SELECT "+saleColumns+" FROM "+saleFrom+" WHERE s.id = $1 FOR UPDATE OF s", id)
}

func (r *SaleRepo) get(ctx context.Context, query, id string) (*entity.Sale, error) {
	var s entity.Sale
	if err := pgxscan.Get(ctx, r.q, &s, query, id); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	sales := []entity.Sale{s}
	if err := r.attachLines(ctx, sales); err != nil {
		return nil, err
	}
	return &sales[0], nil
}

func (r *SaleRepo) attachLines(ctx context.Context, sales []entity.Sale) error {
	if len(sales) == 0 {
		return nil
	}
	ids := make([]string, len(sales))
	index := make(map[string]int, len(sales))
	for i, s := range sales {
		ids[i] = s.ID
		index[s.ID] = i
	}
	var lines []entity.SaleLine
	err := pgxscan.Select(ctx, r.q, &lines, `
		SELECT id, sale_id, product_id, measure_unit, requested_quantity, fulfilled_quantity, unit_price, line_total
		FROM sale_lines WHERE sale_id = ANY($1::uuid[])
		ORDER BY sale_id, line_no`, ids)
	if err != nil {
		return fmt.Errorf("list sale lines: %w", err)
	}
	for _, l := range lines {
		i := index[l.SaleID]
		sales[i].Lines = append(sales[i].Lines, l)
	}
	return nil
}

// Update grava o cabeçalho e, por linha, quantidade pedida, separada e total.
func (r *SaleRepo) Update(ctx context.Context, s *entity.Sale) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE sales SET customer_id = $2, picked_by = $3, total = $4, picking_status = $5, payment_status = $6,
			notes = $7, picked_at = $8, paid_at = $9
		WHERE id = $1`,
		s.ID, s.CustomerID, optionalID(s.PickedBy), s.Total, s.PickingStatus, s.PaymentStatus, s.Notes, s.PickedAt, s.PaidAt,
	)
	if err != nil {
		return fmt.Errorf("update sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("venda %s não existe", s.ID)
	}
	for _, l := range s.Lines {
		_, err := r.q.Exec(ctx, `
			UPDATE sale_lines SET requested_quantity = $2, fulfilled_quantity = $3, unit_price = $4, line_total = $5
			WHERE id = $1`,
			l.ID, l.RequestedQuantity, l.FulfilledQuantity, l.UnitPrice, l.LineTotal,
		)
		if err != nil {
			return fmt.Errorf("update sale line: %w", err)
		}
	}
	return nil
}

// Delete remove a venda; as linhas saem em cascata.
func (r *SaleRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	return nil
}

// List vendas mais recentes primeiro, com linhas.
func (r *SaleRepo) List(ctx context.Context, f repository.SaleFilter) ([]entity.Sale, int, error) {
	where := sq.And{}
	if f.CustomerID != "" {
		where = append(where, sq.Eq{"s.customer_id": f.CustomerID})
	}
	if f.PickingStatus != "" {
		where = append(where, sq.Eq{"s.picking_status": f.PickingStatus})
	}
	if f.PaymentStatus != "" {
		where = append(where, sq.Eq{"s.payment_status": f.PaymentStatus})
	}
	if f.From != nil {
		where = append(where, sq.GtOrEq{"s.created_at": *f.From})
	}
	if f.To != nil {
		where = append(where, sq.LtOrEq{"s.created_at": *f.To})
	}

	total, err := count(ctx, r.q, psql.Select("COUNT(*)").From("sales s").Where(where))
	if err != nil {
		return nil, 0, fmt.Errorf("count sales: %w", err)
	}
	query, args, err := paginate(psql.Select(saleColumns).From(saleFrom).Where(where).
		OrderBy("s.created_at DESC", "s.id"), f.Limit, f.Offset).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var list []entity.Sale
	if err := pgxscan.Select(ctx, r.q, &list, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sales: %w", err)
	}
	if err := r.attachLines(ctx, list); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
