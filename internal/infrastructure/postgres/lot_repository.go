package postgres

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/ceasa-api/internal/domain/entity"
	"github.com/jhoicas/ceasa-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

const lotColumns = "id, product_id, receipt_id, seq, original_quantity, remaining_quantity, unit_cost, received_at, exhausted"

// LotRepo lotes FIFO.
type LotRepo struct {
	q Querier
}

// NewLotRepository constrói o adaptador de lotes.
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

// Create persiste o lote e preenche Seq com o valor gerado pelo banco.
func (r *LotRepo) Create(ctx context.Context, l *entity.Lot) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO lots (id, product_id, receipt_id, original_quantity, remaining_quantity, unit_cost, received_at, exhausted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING seq`,
		l.ID, l.ProductID, l.ReceiptID, l.OriginalQuantity, l.RemainingQuantity, l.UnitCost, l.ReceivedAt, l.Exhausted,
	).Scan(&l.Seq)
	if err != nil {
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

// ListByProductForUpdate lotes do produto em ordem FIFO, bloqueados até o fim da transação.
func (r *LotRepo) ListByProductForUpdate(ctx context.Context, productID string) ([]*entity.Lot, error) {
	return r.list(ctx, "SELECT "+lotColumns+" FROM lots WHERE product_id = $1 ORDER BY received_at, seq FOR UPDATE", productID)
}

// ListByProduct mesma ordem, sem bloqueio.
func (r *LotRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Lot, error) {
	return r.list(ctx, "SELECT "+lotColumns+" FROM lots WHERE product_id = $1 ORDER BY received_at, seq", productID)
}

func (r *LotRepo) list(ctx context.Context, query, productID string) ([]*entity.Lot, error) {
	var lots []*entity.Lot
	if err := pgxscan.Select(ctx, r.q, &lots, query, productID); err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	return lots, nil
}

// GetByReceipt lote originado pela entrada; nil, nil se não houver.
func (r *LotRepo) GetByReceipt(ctx context.Context, receiptID string) (*entity.Lot, error) {
	var l entity.Lot
	if err := pgxscan.Get(ctx, r.q, &l, "SELECT "+lotColumns+" FROM lots WHERE receipt_id = $1", receiptID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot by receipt: %w", err)
	}
	return &l, nil
}

// UpdateRemaining grava quantidade restante e flag esgotado. As CHECK constraints da tabela
// rejeitam valores fora de [0, original].
func (r *LotRepo) UpdateRemaining(ctx context.Context, lots []*entity.Lot) error {
	for _, l := range lots {
		tag, err := r.q.Exec(ctx, `UPDATE lots SET remaining_quantity = $2, exhausted = $3 WHERE id = $1`,
			l.ID, l.RemainingQuantity, l.Exhausted)
		if err != nil {
			return fmt.Errorf("update lot %s: %w", l.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("lote %s não existe", l.ID)
		}
	}
	return nil
}

// Delete remove o lote.
func (r *LotRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM lots WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete lot: %w", err)
	}
	return nil
}
