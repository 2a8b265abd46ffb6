package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/jhoicas/ceasa-api/internal/domain/entity"
	"github.com/jhoicas/ceasa-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo lançamentos do fluxo de caixa. A origem é gravada em receipt_id/sale_id.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository constrói o adaptador do fluxo de caixa.
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste o lançamento.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	var receiptID, saleID *string
	if id, ok := m.Origin.ReceiptID(); ok {
		receiptID = &id
	}
	if id, ok := m.Origin.SaleID(); ok {
		saleID = &id
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO movements (id, product_id, kind, quantity, unit_price, total_value, receipt_id, sale_id, note, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		m.ID, m.ProductID, string(m.Kind), m.Quantity, m.UnitPrice, m.TotalValue, receiptID, saleID, m.Note, m.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// DeleteBySale remove todos os lançamentos da venda.
func (r *MovementRepo) DeleteBySale(ctx context.Context, saleID string) (int64, error) {
	return r.delete(ctx, `DELETE FROM movements WHERE sale_id = $1`, saleID)
}

// DeleteOutflow remove as saídas de um produto na venda.
func (r *MovementRepo) DeleteOutflow(ctx context.Context, saleID, productID string) (int64, error) {
	return r.delete(ctx, `DELETE FROM movements WHERE sale_id = $1 AND product_id = $2 AND kind = 'outflow'`, saleID, productID)
}

// DeleteByReceipt remove o lançamento de entrada.
func (r *MovementRepo) DeleteByReceipt(ctx context.Context, receiptID string) (int64, error) {
	return r.delete(ctx, `DELETE FROM movements WHERE receipt_id = $1`, receiptID)
}

func (r *MovementRepo) delete(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete movements: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Each lê as linhas do cursor uma a uma, sem materializar o resultado.
func (r *MovementRepo) Each(ctx context.Context, f repository.MovementFilter, fn func(entity.Movement) error) error {
	where := sq.And{}
	if f.ProductID != "" {
		where = append(where, sq.Eq{"product_id": f.ProductID})
	}
	if f.From != nil {
		where = append(where, sq.GtOrEq{"occurred_at": *f.From})
	}
	if f.To != nil {
		where = append(where, sq.LtOrEq{"occurred_at": *f.To})
	}
	query, args, err := psql.
		Select("id", "product_id", "kind", "quantity", "unit_price", "total_value", "receipt_id", "sale_id", "note", "occurred_at").
		From("movements").Where(where).OrderBy("occurred_at", "id").ToSql()
	if err != nil {
		return err
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query movements: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			m                 entity.Movement
			kind              string
			receiptID, saleID *string
		)
		if err := rows.Scan(&m.ID, &m.ProductID, &kind, &m.Quantity, &m.UnitPrice, &m.TotalValue,
			&receiptID, &saleID, &m.Note, &m.OccurredAt); err != nil {
			return fmt.Errorf("scan movement: %w", err)
		}
		m.Kind = entity.MovementKind(kind)
		if m.Origin, err = entity.OriginFromColumns(receiptID, saleID); err != nil {
			return fmt.Errorf("movimentação %s: %w", m.ID, err)
		}
		if err := fn(m); err != nil {
			return err
		}
	}
	return rows.Err()
}
