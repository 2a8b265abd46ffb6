// Package ledger implementa o razão FIFO de lotes, o fluxo de caixa e o cálculo de lucro bruto.
// Toda operação recebe o handle da transação (repository.Tx); quem abre e fecha a transação é o caso de uso.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ceasa-api/internal/domain"
	"github.com/jhoicas/ceasa-api/internal/domain/entity"
	"github.com/jhoicas/ceasa-api/internal/domain/inventory"
	"github.com/jhoicas/ceasa-api/internal/domain/repository"
)

// Ledger razão FIFO por produto.
type Ledger struct {
	log   zerolog.Logger
	now   func() time.Time
	newID func() string
}

// Option configura o Ledger.
type Option func(*Ledger)

// WithClock substitui o relógio (testes).
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDGenerator substitui o gerador de ids (testes).
func WithIDGenerator(fn func() string) Option {
	return func(l *Ledger) { l.newID = fn }
}

// New constrói o razão.
func New(log zerolog.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		log:   log.With().Str("component", "ledger").Logger(),
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Now relógio do razão; os casos de uso usam o mesmo para manter datas coerentes.
func (l *Ledger) Now() time.Time { return l.now() }

// NewID gera um id de entidade.
func (l *Ledger) NewID() string { return l.newID() }

func (l *Ledger) lockProduct(ctx context.Context, tx repository.Tx, productID string) (*entity.Product, error) {
	p, err := tx.Products.Lock(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// RecordReceipt registra a entrada, cria o lote correspondente, lança a entrada no fluxo de caixa
// e ressincroniza o inventário do produto.
func (l *Ledger) RecordReceipt(ctx context.Context, tx repository.Tx, r *entity.Receipt) (*entity.Lot, *entity.InventorySnapshot, error) {
	if !r.Quantity.IsPositive() {
		return nil, nil, domain.NewValidation("quantity", "quantidade deve ser maior que zero")
	}
	if !r.UnitCost.IsPositive() {
		return nil, nil, domain.NewValidation("unit_cost", "custo unitário deve ser maior que zero")
	}
	product, err := l.lockProduct(ctx, tx, r.ProductID)
	if err != nil {
		return nil, nil, err
	}

	now := l.now()
	if r.ID == "" {
		r.ID = l.newID()
	}
	if r.ReceivedAt.IsZero() {
		r.ReceivedAt = now
	}
	if r.MeasureUnit == "" {
		r.MeasureUnit = product.MeasureUnit
	}
	r.TotalValue = r.Quantity.Mul(r.UnitCost)
	r.CreatedAt = now
	if err := tx.Receipts.Create(ctx, r); err != nil {
		return nil, nil, err
	}

	lot := &entity.Lot{
		ID:                l.newID(),
		ProductID:         r.ProductID,
		ReceiptID:         r.ID,
		OriginalQuantity:  r.Quantity,
		RemainingQuantity: r.Quantity,
		UnitCost:          r.UnitCost,
		ReceivedAt:        r.ReceivedAt,
	}
	if err := tx.Lots.Create(ctx, lot); err != nil {
		return nil, nil, err
	}
	if err := l.LogInflow(ctx, tx, r); err != nil {
		return nil, nil, err
	}
	snap, err := l.Resync(ctx, tx, r.ProductID)
	if err != nil {
		return nil, nil, err
	}
	return lot, snap, nil
}

// Consume retira qty dos lotes do produto em ordem FIFO. Falta de lotes não é erro:
// a diferença é precificada pelo último custo conhecido e sinalizada em Consumption.
func (l *Ledger) Consume(ctx context.Context, tx repository.Tx, productID string, qty decimal.Decimal) (inventory.Consumption, error) {
	if !qty.IsPositive() {
		return inventory.Consumption{}, domain.NewValidation("quantity", "quantidade a consumir deve ser maior que zero")
	}
	if _, err := l.lockProduct(ctx, tx, productID); err != nil {
		return inventory.Consumption{}, err
	}
	lots, err := tx.Lots.ListByProductForUpdate(ctx, productID)
	if err != nil {
		return inventory.Consumption{}, err
	}

	c := inventory.Consume(lots, qty)
	if err := tx.Lots.UpdateRemaining(ctx, inventory.Touched(lots, c.Pieces)); err != nil {
		return inventory.Consumption{}, err
	}
	if c.Approximated() {
		l.log.Warn().
			Str("product_id", productID).
			Str("shortfall", c.Shortfall.String()).
			Str("fallback_cost", c.FallbackCost.String()).
			Msg("lotes insuficientes, custo aproximado pelo último lote")
	}
	if _, err := l.upsertSnapshot(ctx, tx, productID, lots); err != nil {
		return inventory.Consumption{}, err
	}
	return c, nil
}

// Restore devolve qty aos lotes do produto, do mais recente ao mais antigo, respeitando a quantidade
// original de cada lote. O excedente que nenhum lote comporta vira uma movimentação de ajuste.
func (l *Ledger) Restore(ctx context.Context, tx repository.Tx, productID string, qty decimal.Decimal, record *entity.ProfitRecord) (inventory.Restoration, error) {
	if !qty.IsPositive() {
		return inventory.Restoration{Dropped: decimal.Zero}, nil
	}
	if _, err := l.lockProduct(ctx, tx, productID); err != nil {
		return inventory.Restoration{}, err
	}
	lots, err := tx.Lots.ListByProductForUpdate(ctx, productID)
	if err != nil {
		return inventory.Restoration{}, err
	}

	r := inventory.Restore(lots, qty)
	if err := tx.Lots.UpdateRemaining(ctx, inventory.Touched(lots, r.Pieces)); err != nil {
		return inventory.Restoration{}, err
	}
	if r.Dropped.IsPositive() {
		saleID := ""
		unit := decimal.Zero
		if record != nil {
			saleID = record.SaleID
			unit = inventory.AverageUnitCost(record)
		}
		l.log.Warn().
			Str("product_id", productID).
			Str("sale_id", saleID).
			Str("dropped", r.Dropped.String()).
			Msg("quantidade sem lote para restaurar, registrando ajuste")
		note := fmt.Sprintf("Reversão da venda #%s: %s sem lote para restaurar", saleID, r.Dropped.String())
		if err := l.LogAdjustment(ctx, tx, productID, r.Dropped, unit, note); err != nil {
			return inventory.Restoration{}, err
		}
	}
	if _, err := l.upsertSnapshot(ctx, tx, productID, lots); err != nil {
		return inventory.Restoration{}, err
	}
	return r, nil
}

// RemoveReceipt apaga a entrada e seu lote. Falha com ConflictError se o lote já foi consumido.
func (l *Ledger) RemoveReceipt(ctx context.Context, tx repository.Tx, receiptID string) error {
	r, err := tx.Receipts.GetByID(ctx, receiptID)
	if err != nil {
		return err
	}
	if r == nil {
		return domain.ErrNotFound
	}
	if _, err := l.lockProduct(ctx, tx, r.ProductID); err != nil {
		return err
	}
	lot, err := tx.Lots.GetByReceipt(ctx, receiptID)
	if err != nil {
		return err
	}
	if lot != nil && !lot.Intact() {
		used := lot.OriginalQuantity.Sub(lot.RemainingQuantity)
		return domain.NewConflict("não é possível excluir a entrada: %s de %s já foram vendidos (FIFO)",
			used.String(), lot.OriginalQuantity.String())
	}

	if err := l.RemoveForReceipt(ctx, tx, receiptID); err != nil {
		return err
	}
	if lot != nil {
		if err := tx.Lots.Delete(ctx, lot.ID); err != nil {
			return err
		}
	}
	if err := tx.Receipts.Delete(ctx, receiptID); err != nil {
		return err
	}

	snap, err := l.Resync(ctx, tx, r.ProductID)
	if err != nil {
		return err
	}
	if snap.QuantityOnHand.IsZero() {
		n, err := tx.Receipts.CountByProduct(ctx, r.ProductID)
		if err != nil {
			return err
		}
		if n == 0 {
			return tx.Inventory.Delete(ctx, r.ProductID)
		}
	}
	return nil
}

// Resync recalcula o inventário do produto a partir dos lotes (bloqueados) e grava o snapshot.
func (l *Ledger) Resync(ctx context.Context, tx repository.Tx, productID string) (*entity.InventorySnapshot, error) {
	lots, err := tx.Lots.ListByProductForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	return l.upsertSnapshot(ctx, tx, productID, lots)
}

func (l *Ledger) upsertSnapshot(ctx context.Context, tx repository.Tx, productID string, lots []*entity.Lot) (*entity.InventorySnapshot, error) {
	snap := inventory.Valuate(productID, lots, l.now())
	if prev, err := tx.Inventory.Get(ctx, productID); err != nil {
		return nil, err
	} else if prev != nil {
		snap.Notes = prev.Notes
	}
	if err := tx.Inventory.Upsert(ctx, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
