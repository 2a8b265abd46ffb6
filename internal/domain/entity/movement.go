package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind tipo de lançamento no fluxo de caixa.
type MovementKind string

const (
	MovementInflow     MovementKind = "inflow"
	MovementOutflow    MovementKind = "outflow"
	MovementAdjustment MovementKind = "adjustment"
)

type originKind uint8

const (
	originNone originKind = iota
	originReceipt
	originSale
)

// MovementOrigin é a origem de um lançamento: Receipt(id) | Sale(id) | nenhuma.
// O zero value é "nenhuma".
type MovementOrigin struct {
	kind originKind
	id   string
}

// ReceiptOrigin origem em uma entrada de estoque.
func ReceiptOrigin(id string) MovementOrigin { return MovementOrigin{kind: originReceipt, id: id} }

// SaleOrigin origem em uma venda.
func SaleOrigin(id string) MovementOrigin { return MovementOrigin{kind: originSale, id: id} }

// NoOrigin usado por ajustes.
func NoOrigin() MovementOrigin { return MovementOrigin{} }

// ReceiptID devolve o id da entrada, se a origem for uma entrada.
func (o MovementOrigin) ReceiptID() (string, bool) {
	return o.id, o.kind == originReceipt
}

// SaleID devolve o id da venda, se a origem for uma venda.
func (o MovementOrigin) SaleID() (string, bool) {
	return o.id, o.kind == originSale
}

// IsNone indica ausência de origem.
func (o MovementOrigin) IsNone() bool { return o.kind == originNone }

func (o MovementOrigin) String() string {
	switch o.kind {
	case originReceipt:
		return "receipt:" + o.id
	case originSale:
		return "sale:" + o.id
	}
	return "none"
}

// OriginFromColumns reconstrói a origem a partir das colunas anuláveis persistidas.
func OriginFromColumns(receiptID, saleID *string) (MovementOrigin, error) {
	switch {
	case receiptID != nil && saleID != nil:
		return MovementOrigin{}, fmt.Errorf("movimentação com entrada e venda ao mesmo tempo")
	case receiptID != nil:
		return ReceiptOrigin(*receiptID), nil
	case saleID != nil:
		return SaleOrigin(*saleID), nil
	}
	return NoOrigin(), nil
}

// Movement é um lançamento do fluxo de caixa (entrada, saída ou ajuste).
type Movement struct {
	ID         string
	ProductID  string
	Kind       MovementKind
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	TotalValue decimal.Decimal
	Origin     MovementOrigin
	Note       string
	OccurredAt time.Time
}

// NewMovement monta um lançamento validando a combinação tipo/origem e calculando o total.
func NewMovement(id, productID string, kind MovementKind, origin MovementOrigin, qty, unitPrice decimal.Decimal, at time.Time, note string) (*Movement, error) {
	if !qty.IsPositive() {
		return nil, fmt.Errorf("quantidade da movimentação deve ser positiva: %s", qty)
	}
	switch kind {
	case MovementInflow:
		if _, ok := origin.ReceiptID(); !ok {
			return nil, fmt.Errorf("entrada exige origem em entrada de estoque, recebido %s", origin)
		}
	case MovementOutflow:
		if _, ok := origin.SaleID(); !ok {
			return nil, fmt.Errorf("saída exige origem em venda, recebido %s", origin)
		}
	case MovementAdjustment:
		if !origin.IsNone() {
			return nil, fmt.Errorf("ajuste não tem origem, recebido %s", origin)
		}
	default:
		return nil, fmt.Errorf("tipo de movimentação desconhecido: %q", kind)
	}
	return &Movement{
		ID:         id,
		ProductID:  productID,
		Kind:       kind,
		Quantity:   qty,
		UnitPrice:  unitPrice,
		TotalValue: qty.Mul(unitPrice),
		Origin:     origin,
		Note:       note,
		OccurredAt: at,
	}, nil
}
