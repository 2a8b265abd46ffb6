package ledger

import (
	"context"

	"github.com/jhoicas/ceasa-api/internal/domain"
	"github.com/jhoicas/ceasa-api/internal/domain/entity"
	"github.com/jhoicas/ceasa-api/internal/domain/inventory"
	"github.com/jhoicas/ceasa-api/internal/domain/repository"
)

// Calculator calcula custo FIFO e lucro bruto das linhas separadas.
type Calculator struct {
	ledger *Ledger
}

// NewCalculator constrói o calculador sobre o razão.
func NewCalculator(l *Ledger) *Calculator {
	return &Calculator{ledger: l}
}

// ComputeForLine consome os lotes da quantidade separada, grava o lucro bruto e a saída no fluxo de caixa.
// Deve rodar na mesma transação que alterou a linha.
func (c *Calculator) ComputeForLine(ctx context.Context, tx repository.Tx, sale *entity.Sale, line *entity.SaleLine) (*entity.ProfitRecord, error) {
	if line.FulfilledQuantity == nil || !line.FulfilledQuantity.IsPositive() {
		return nil, domain.NewValidation("fulfilled_quantity", "linha %s sem quantidade separada", line.ID)
	}
	qty := *line.FulfilledQuantity

	cons, err := c.ledger.Consume(ctx, tx, line.ProductID, qty)
	if err != nil {
		return nil, err
	}
	rec := inventory.NewProfitRecord(c.ledger.newID(), sale.ID, line.ProductID, qty, line.UnitPrice, cons, c.ledger.now())
	if err := tx.Profits.Create(ctx, &rec); err != nil {
		return nil, err
	}
	if err := c.ledger.LogOutflow(ctx, tx, sale, line.ProductID, qty, line.UnitPrice); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ReverseForSale desfaz todos os lucros da venda: restaura lotes, apaga a saída e o registro.
func (c *Calculator) ReverseForSale(ctx context.Context, tx repository.Tx, sale *entity.Sale) ([]entity.ProfitRecord, error) {
	records, err := tx.Profits.ListBySale(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	for i := range records {
		rec := &records[i]
		if _, err := c.ledger.Restore(ctx, tx, rec.ProductID, rec.QuantitySold, rec); err != nil {
			return nil, err
		}
		if _, err := tx.Movements.DeleteOutflow(ctx, sale.ID, rec.ProductID); err != nil {
			return nil, err
		}
		if err := tx.Profits.DeleteByID(ctx, rec.ID); err != nil {
			return nil, err
		}
	}
	return records, nil
}
