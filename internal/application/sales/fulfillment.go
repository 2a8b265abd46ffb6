// Package sales implementa o ciclo de vida das vendas: criação, separação, pagamento e exclusão.
package sales

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ceasa-api/internal/application/ledger"
	"github.com/jhoicas/ceasa-api/internal/application/ports"
	"github.com/jhoicas/ceasa-api/internal/domain"
	"github.com/jhoicas/ceasa-api/internal/domain/entity"
	"github.com/jhoicas/ceasa-api/internal/domain/inventory"
	"github.com/jhoicas/ceasa-api/internal/domain/repository"
)

// DefaultDeleteWindow prazo padrão para excluir uma venda.
const DefaultDeleteWindow = 24 * time.Hour

// LineUpdate quantidade efetivamente separada de um produto da venda.
type LineUpdate struct {
	ProductID      string
	ActualQuantity decimal.Decimal
}

// FulfillmentUseCase máquina de estados da separação.
//
//	AWAITING_PICKING --Pick--> PICKED --CancelPick--> AWAITING_PICKING
//
// Pick consome lotes FIFO e grava lucro bruto; CancelPick e DeleteSale desfazem.
type FulfillmentUseCase struct {
	txRunner     repository.TxRunner
	ledger       *ledger.Ledger
	calc         *ledger.Calculator
	cache        ports.ReportCache
	deleteWindow time.Duration
	log          zerolog.Logger
}

// NewFulfillmentUseCase constrói o caso de uso. deleteWindow <= 0 usa DefaultDeleteWindow.
func NewFulfillmentUseCase(txRunner repository.TxRunner, l *ledger.Ledger, cache ports.ReportCache, deleteWindow time.Duration, log zerolog.Logger) *FulfillmentUseCase {
	if cache == nil {
		cache = ports.NopCache{}
	}
	if deleteWindow <= 0 {
		deleteWindow = DefaultDeleteWindow
	}
	return &FulfillmentUseCase{
		txRunner:     txRunner,
		ledger:       l,
		calc:         ledger.NewCalculator(l),
		cache:        cache,
		deleteWindow: deleteWindow,
		log:          log.With().Str("component", "fulfillment").Logger(),
	}
}

// Pick registra a separação. Todos os produtos são verificados antes de qualquer alteração:
// se faltar estoque em algum, nada é gravado e o erro lista todos os produtos em falta.
func (uc *FulfillmentUseCase) Pick(ctx context.Context, saleID string, updates []LineUpdate, pickedBy string) (*entity.Sale, error) {
	actual, err := indexUpdates(updates)
	if err != nil {
		return nil, err
	}

	var out *entity.Sale
	err = uc.txRunner.Run(ctx, func(ctx context.Context, tx repository.Tx) error {
		sale, err := getForUpdate(ctx, tx, saleID)
		if err != nil {
			return err
		}
		if err := uc.pick(ctx, tx, sale, actual, pickedBy); err != nil {
			return err
		}
		out = sale
		return tx.Sales.Update(ctx, sale)
	})
	if err != nil {
		return nil, err
	}
	uc.cache.Invalidate(ctx)
	uc.log.Info().Str("sale_id", saleID).Str("picked_by", pickedBy).Str("total", out.Total.String()).Msg("venda separada")
	return out, nil
}

// CancelPick desfaz a separação de uma venda ainda não paga.
func (uc *FulfillmentUseCase) CancelPick(ctx context.Context, saleID string) (*entity.Sale, error) {
	var out *entity.Sale
	err := uc.txRunner.Run(ctx, func(ctx context.Context, tx repository.Tx) error {
		sale, err := getForUpdate(ctx, tx, saleID)
		if err != nil {
			return err
		}
		if sale.Paid() {
			return domain.NewConflict("venda #%s já está paga; não é possível cancelar a separação", sale.ID)
		}
		if !sale.Picked() {
			return domain.NewConflict("venda #%s ainda não foi separada", sale.ID)
		}
		if _, err := uc.calc.ReverseForSale(ctx, tx, sale); err != nil {
			return err
		}
		for i := range sale.Lines {
			l := &sale.Lines[i]
			l.FulfilledQuantity = nil
			l.LineTotal = l.RequestedQuantity.Mul(l.UnitPrice)
		}
		sale.RecomputeTotal()
		sale.PickingStatus = entity.PickingAwaiting
		sale.PickedBy = nil
		sale.PickedAt = nil
		out = sale
		return tx.Sales.Update(ctx, sale)
	})
	if err != nil {
		return nil, err
	}
	uc.cache.Invalidate(ctx)
	uc.log.Info().Str("sale_id", saleID).Msg("separação cancelada")
	return out, nil
}

// DeleteSale exclui a venda dentro do prazo configurado. Se já separada, devolve as quantidades aos lotes.
func (uc *FulfillmentUseCase) DeleteSale(ctx context.Context, saleID string) error {
	err := uc.txRunner.Run(ctx, func(ctx context.Context, tx repository.Tx) error {
		sale, err := getForUpdate(ctx, tx, saleID)
		if err != nil {
			return err
		}
		if uc.ledger.Now().Sub(sale.CreatedAt) > uc.deleteWindow {
			return domain.NewConflict("só é possível excluir vendas criadas há menos de %d horas", int(uc.deleteWindow.Hours()))
		}
		if sale.Picked() {
			records, err := uc.calc.ReverseForSale(ctx, tx, sale)
			if err != nil {
				return err
			}
			reversed := make(map[string]bool, len(records))
			for _, r := range records {
				reversed[r.ProductID] = true
			}
			// Linhas separadas sem registro de lucro (dados antigos) voltam ao estoque pela quantidade efetiva.
			for i := range sale.Lines {
				l := &sale.Lines[i]
				if reversed[l.ProductID] {
					continue
				}
				if _, err := uc.ledger.Restore(ctx, tx, l.ProductID, l.EffectiveQuantity(), nil); err != nil {
					return err
				}
			}
		}
		if err := uc.ledger.RemoveForSale(ctx, tx, sale.ID); err != nil {
			return err
		}
		return tx.Sales.Delete(ctx, sale.ID)
	})
	if err != nil {
		return err
	}
	uc.cache.Invalidate(ctx)
	uc.log.Info().Str("sale_id", saleID).Msg("venda excluída")
	return nil
}

// QuickSale cria uma venda já separada e paga, na mesma transação e com a mesma verificação de estoque do Pick.
func (uc *FulfillmentUseCase) QuickSale(ctx context.Context, in NewSale) (*entity.Sale, error) {
	var out *entity.Sale
	err := uc.txRunner.Run(ctx, func(ctx context.Context, tx repository.Tx) error {
		sale, err := buildSale(ctx, tx, uc.ledger, in)
		if err != nil {
			return err
		}
		if err := tx.Sales.Create(ctx, sale); err != nil {
			return err
		}
		if err := uc.pick(ctx, tx, sale, nil, in.CreatedBy); err != nil {
			return err
		}
		paidAt := *sale.PickedAt
		sale.PaymentStatus = entity.PaymentPaid
		sale.PaidAt = &paidAt
		out = sale
		return tx.Sales.Update(ctx, sale)
	})
	if err != nil {
		return nil, err
	}
	uc.cache.Invalidate(ctx)
	uc.log.Info().Str("sale_id", out.ID).Str("total", out.Total.String()).Msg("venda rápida registrada")
	return out, nil
}

func (uc *FulfillmentUseCase) pick(ctx context.Context, tx repository.Tx, sale *entity.Sale, actual map[string]decimal.Decimal, pickedBy string) error {
	if sale.Picked() {
		return domain.NewConflict("venda #%s já foi separada", sale.ID)
	}
	inSale := make(map[string]bool, len(sale.Lines))
	for _, l := range sale.Lines {
		inSale[l.ProductID] = true
	}
	for pid := range actual {
		if !inSale[pid] {
			return domain.NewValidation("product_id", "produto %s não pertence à venda #%s", pid, sale.ID)
		}
	}

	needed := make(map[string]decimal.Decimal, len(inSale))
	fulfilled := make([]decimal.Decimal, len(sale.Lines))
	for i, l := range sale.Lines {
		q, ok := actual[l.ProductID]
		if !ok {
			q = l.RequestedQuantity
		}
		fulfilled[i] = q
		needed[l.ProductID] = needed[l.ProductID].Add(q)
	}
	if err := checkAvailability(ctx, tx, needed); err != nil {
		return err
	}

	for i := range sale.Lines {
		l := &sale.Lines[i]
		q := fulfilled[i]
		l.FulfilledQuantity = &q
		l.LineTotal = q.Mul(l.UnitPrice)
		if _, err := uc.calc.ComputeForLine(ctx, tx, sale, l); err != nil {
			return err
		}
	}
	now := uc.ledger.Now()
	sale.RecomputeTotal()
	sale.PickingStatus = entity.PickingPicked
	sale.PickedBy = &pickedBy
	sale.PickedAt = &now
	return nil
}

// checkAvailability bloqueia produtos e lotes em ordem crescente de id e compara com o necessário.
func checkAvailability(ctx context.Context, tx repository.Tx, needed map[string]decimal.Decimal) error {
	ids := make([]string, 0, len(needed))
	for id := range needed {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var short []domain.StockShortage
	for _, id := range ids {
		p, err := tx.Products.Lock(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.NewValidation("product_id", "produto %s não encontrado", id)
		}
		lots, err := tx.Lots.ListByProductForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if avail := inventory.Available(lots); avail.LessThan(needed[id]) {
			short = append(short, domain.StockShortage{
				ProductID:   id,
				ProductName: p.Name,
				Requested:   needed[id],
				Available:   avail,
			})
		}
	}
	if len(short) > 0 {
		return &domain.InsufficientStockError{Items: short}
	}
	return nil
}

func indexUpdates(updates []LineUpdate) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(updates))
	for _, u := range updates {
		if u.ProductID == "" {
			return nil, domain.NewValidation("product_id", "produto não informado")
		}
		if !u.ActualQuantity.IsPositive() {
			return nil, domain.NewValidation("actual_quantity", "quantidade separada de %s deve ser maior que zero", u.ProductID)
		}
		if _, dup := out[u.ProductID]; dup {
			return nil, domain.NewValidation("product_id", "produto %s informado mais de uma vez", u.ProductID)
		}
		out[u.ProductID] = u.ActualQuantity
	}
	return out, nil
}

func getForUpdate(ctx context.Context, tx repository.Tx, saleID string) (*entity.Sale, error) {
	sale, err := tx.Sales.GetForUpdate(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	return sale, nil
}
