// Package inventory contém a matemática FIFO de lotes, sem dependência de persistência.
// As funções recebem os lotes já carregados (e bloqueados) pelo chamador e os alteram no lugar.
package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ceasa-api/internal/domain/entity"
)

// Piece é a fatia de um lote usada (ou devolvida) numa operação.
type Piece struct {
	LotID    string
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
}

// Cost quantidade × custo unitário.
func (p Piece) Cost() decimal.Decimal { return p.Quantity.Mul(p.UnitCost) }

// Consumption resultado de Consume.
// Shortfall é a parte não coberta por lotes, precificada a FallbackCost.
type Consumption struct {
	Pieces       []Piece
	Shortfall    decimal.Decimal
	FallbackCost decimal.Decimal
}

// Approximated indica que parte do custo não veio de lotes FIFO.
func (c Consumption) Approximated() bool { return c.Shortfall.IsPositive() }

// Taken quantidade efetivamente retirada de lotes.
func (c Consumption) Taken() decimal.Decimal {
	total := decimal.Zero
	for _, p := range c.Pieces {
		total = total.Add(p.Quantity)
	}
	return total
}

// CostTotal custo das fatias mais o custo aproximado da falta.
func (c Consumption) CostTotal() decimal.Decimal {
	total := c.Shortfall.Mul(c.FallbackCost)
	for _, p := range c.Pieces {
		total = total.Add(p.Cost())
	}
	return total
}

// Restoration resultado de Restore. Dropped é o que nenhum lote comportou.
type Restoration struct {
	Pieces  []Piece
	Dropped decimal.Decimal
}

// Restored quantidade devolvida aos lotes.
func (r Restoration) Restored() decimal.Decimal {
	total := decimal.Zero
	for _, p := range r.Pieces {
		total = total.Add(p.Quantity)
	}
	return total
}

// SortFIFO ordena por data de entrada e, no empate, por ordem de criação.
func SortFIFO(lots []*entity.Lot) {
	sort.SliceStable(lots, func(i, j int) bool { return fifoLess(lots[i], lots[j]) })
}

func fifoLess(a, b *entity.Lot) bool {
	if !a.ReceivedAt.Equal(b.ReceivedAt) {
		return a.ReceivedAt.Before(b.ReceivedAt)
	}
	return a.Seq < b.Seq
}

// Available soma o restante dos lotes não esgotados.
func Available(lots []*entity.Lot) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lots {
		if !l.Exhausted {
			total = total.Add(l.RemainingQuantity)
		}
	}
	return total
}

// LastCost custo unitário do lote recebido por último; zero se não houver lotes.
func LastCost(lots []*entity.Lot) decimal.Decimal {
	var last *entity.Lot
	for _, l := range lots {
		if last == nil || fifoLess(last, l) {
			last = l
		}
	}
	if last == nil {
		return decimal.Zero
	}
	return last.UnitCost
}

// Consume retira qty dos lotes, do mais antigo ao mais novo. A falta não é erro:
// fica em Shortfall precificada ao custo do lote mais recente de lots.
// lots deve conter todos os lotes do produto (inclusive esgotados) para que o custo de fallback seja correto.
func Consume(lots []*entity.Lot, qty decimal.Decimal) Consumption {
	SortFIFO(lots)
	pending := qty
	var out Consumption
	for _, l := range lots {
		if !pending.IsPositive() {
			break
		}
		if l.Exhausted || !l.RemainingQuantity.IsPositive() {
			continue
		}
		take := decimal.Min(pending, l.RemainingQuantity)
		l.RemainingQuantity = l.RemainingQuantity.Sub(take)
		l.Exhausted = !l.RemainingQuantity.IsPositive()
		pending = pending.Sub(take)
		out.Pieces = append(out.Pieces, Piece{LotID: l.ID, Quantity: take, UnitCost: l.UnitCost})
	}
	if pending.IsPositive() {
		out.Shortfall = pending
		out.FallbackCost = LastCost(lots)
	} else {
		out.Shortfall = decimal.Zero
	}
	return out
}

// Restore devolve qty aos lotes, do mais novo ao mais antigo, sem ultrapassar a quantidade original
// de cada um. O que sobrar fica em Dropped para o chamador registrar.
func Restore(lots []*entity.Lot, qty decimal.Decimal) Restoration {
	SortFIFO(lots)
	pending := qty
	var out Restoration
	for i := len(lots) - 1; i >= 0 && pending.IsPositive(); i-- {
		l := lots[i]
		room := l.Capacity()
		if !room.IsPositive() {
			continue
		}
		give := decimal.Min(pending, room)
		l.RemainingQuantity = l.RemainingQuantity.Add(give)
		l.Exhausted = false
		pending = pending.Sub(give)
		out.Pieces = append(out.Pieces, Piece{LotID: l.ID, Quantity: give, UnitCost: l.UnitCost})
	}
	if pending.IsPositive() {
		out.Dropped = pending
	} else {
		out.Dropped = decimal.Zero
	}
	return out
}

// Touched filtra os lotes que aparecem nas fatias, na ordem das fatias.
func Touched(lots []*entity.Lot, pieces []Piece) []*entity.Lot {
	byID := make(map[string]*entity.Lot, len(lots))
	for _, l := range lots {
		byID[l.ID] = l
	}
	out := make([]*entity.Lot, 0, len(pieces))
	for _, p := range pieces {
		if l, ok := byID[p.LotID]; ok {
			out = append(out, l)
		}
	}
	return out
}
