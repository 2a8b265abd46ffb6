package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Situação de separação do pedido.
const (
	PickingAwaiting = "AWAITING_PICKING"
	PickingPicked   = "PICKED"
)

// Situação de pagamento.
const (
	PaymentPending = "PENDING"
	PaymentPaid    = "PAID"
)

// Sale pedido de venda. CustomerID nil representa venda de balcão.
type Sale struct {
	ID            string
	CustomerID    *string
	CustomerName  string // somente leitura, preenchido nas consultas
	CreatedBy     string
	PickedBy      *string
	Total         decimal.Decimal
	PickingStatus string
	PaymentStatus string
	Notes         string
	CreatedAt     time.Time
	PickedAt      *time.Time
	PaidAt        *time.Time
	Lines         []SaleLine
}

// SaleLine item da venda.
type SaleLine struct {
	ID                string
	SaleID            string
	ProductID         string
	MeasureUnit       string
	RequestedQuantity decimal.Decimal
	FulfilledQuantity *decimal.Decimal
	UnitPrice         decimal.Decimal
	LineTotal         decimal.Decimal
}

// EffectiveQuantity quantidade separada se houver, senão a pedida.
func (l *SaleLine) EffectiveQuantity() decimal.Decimal {
	if l.FulfilledQuantity != nil {
		return *l.FulfilledQuantity
	}
	return l.RequestedQuantity
}

// Picked indica que a venda já foi separada.
func (s *Sale) Picked() bool { return s.PickingStatus == PickingPicked }

// Paid indica que a venda já foi paga.
func (s *Sale) Paid() bool { return s.PaymentStatus == PaymentPaid }

// RecomputeTotal soma os totais das linhas.
func (s *Sale) RecomputeTotal() {
	total := decimal.Zero
	for i := range s.Lines {
		total = total.Add(s.Lines[i].LineTotal)
	}
	s.Total = total
}
