package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lot é o registro FIFO de uma entrada: quantidade restante a custo unitário fixo.
// Invariante: 0 <= RemainingQuantity <= OriginalQuantity e Exhausted == RemainingQuantity.IsZero().
type Lot struct {
	ID                string
	ProductID         string
	ReceiptID         string
	Seq               int64 // ordem de criação; desempate FIFO
	OriginalQuantity  decimal.Decimal
	RemainingQuantity decimal.Decimal
	UnitCost          decimal.Decimal
	ReceivedAt        time.Time
	Exhausted         bool
}

// Capacity é quanto o lote ainda pode receber numa restauração.
func (l *Lot) Capacity() decimal.Decimal {
	return l.OriginalQuantity.Sub(l.RemainingQuantity)
}

// Intact indica que nada foi consumido do lote.
func (l *Lot) Intact() bool {
	return l.RemainingQuantity.Equal(l.OriginalQuantity)
}
