package ledger

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ceasa-api/internal/domain/entity"
	"github.com/jhoicas/ceasa-api/internal/domain/repository"
)

// CounterCustomer rótulo das vendas sem cliente.
const CounterCustomer = "Balcão"

// LogInflow lança a entrada de estoque: quantidade × custo unitário.
func (l *Ledger) LogInflow(ctx context.Context, tx repository.Tx, r *entity.Receipt) error {
	m, err := entity.NewMovement(l.newID(), r.ProductID, entity.MovementInflow, entity.ReceiptOrigin(r.ID),
		r.Quantity, r.UnitCost, r.ReceivedAt, "Entrada de estoque - "+r.SupplierLabel())
	if err != nil {
		return err
	}
	return tx.Movements.Create(ctx, m)
}

// LogOutflow lança a saída de uma venda: quantidade × preço de venda.
func (l *Ledger) LogOutflow(ctx context.Context, tx repository.Tx, sale *entity.Sale, productID string, qty, unitPrice decimal.Decimal) error {
	customer := sale.CustomerName
	if customer == "" {
		customer = CounterCustomer
	}
	m, err := entity.NewMovement(l.newID(), productID, entity.MovementOutflow, entity.SaleOrigin(sale.ID),
		qty, unitPrice, l.now(), fmt.Sprintf("Venda #%s - Cliente: %s", sale.ID, customer))
	if err != nil {
		return err
	}
	return tx.Movements.Create(ctx, m)
}

// LogAdjustment lança um ajuste sem origem (baixa manual ou excedente de reversão).
func (l *Ledger) LogAdjustment(ctx context.Context, tx repository.Tx, productID string, qty, unitPrice decimal.Decimal, note string) error {
	m, err := entity.NewMovement(l.newID(), productID, entity.MovementAdjustment, entity.NoOrigin(),
		qty, unitPrice, l.now(), note)
	if err != nil {
		return err
	}
	return tx.Movements.Create(ctx, m)
}

// RemoveForSale apaga todas as movimentações originadas pela venda.
func (l *Ledger) RemoveForSale(ctx context.Context, tx repository.Tx, saleID string) error {
	_, err := tx.Movements.DeleteBySale(ctx, saleID)
	return err
}

// RemoveForReceipt apaga a movimentação de entrada da entrada de estoque.
func (l *Ledger) RemoveForReceipt(ctx context.Context, tx repository.Tx, receiptID string) error {
	_, err := tx.Movements.DeleteByReceipt(ctx, receiptID)
	return err
}

var errStopIteration = errors.New("ledger: iteração interrompida")

// Query devolve as movimentações filtradas, em ordem cronológica, como sequência preguiçosa.
// Cada range executa a consulta de novo; um erro de leitura é entregue como último elemento.
func Query(ctx context.Context, repo repository.MovementRepository, f repository.MovementFilter) iter.Seq2[entity.Movement, error] {
	return func(yield func(entity.Movement, error) bool) {
		err := repo.Each(ctx, f, func(m entity.Movement) error {
			if !yield(m, nil) {
				return errStopIteration
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStopIteration) {
			yield(entity.Movement{}, err)
		}
	}
}
