package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SupplierNotInformed é usado nas observações quando a entrada não tem fornecedor.
const SupplierNotInformed = "Não informado"

// Receipt é uma entrada de estoque: a compra que origina exatamente um lote FIFO.
type Receipt struct {
	ID          string
	ProductID   string
	MeasureUnit string
	UnitCost    decimal.Decimal
	Quantity    decimal.Decimal
	TotalValue  decimal.Decimal // Quantity × UnitCost
	Supplier    string
	Notes       string
	ReceivedAt  time.Time
	CreatedAt   time.Time
}

// SupplierLabel devolve o fornecedor ou "Não informado".
func (r *Receipt) SupplierLabel() string {
	if r.Supplier == "" {
		return SupplierNotInformed
	}
	return r.Supplier
}
