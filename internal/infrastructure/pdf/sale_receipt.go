// Package pdf gera o comprovante de venda em A4.
//
// Layout:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  CABEÇALHO: nome da banca        │  Venda nº + data         │
//	│  CLIENTE: nome ou Balcão + situação                         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABELA: Qtd | Un | Produto | Preço unit. | Total           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL + QR com o id da venda para conferência              │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/jhoicas/ceasa-api/internal/application/dto"
	"github.com/jhoicas/ceasa-api/internal/application/ports"
	"github.com/jhoicas/ceasa-api/internal/domain/entity"
)

var _ ports.SaleReceiptRenderer = (*SaleReceiptRenderer)(nil)

var (
	colorPrimary = &props.Color{Red: 26, Green: 94, Blue: 32}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// SaleReceiptRenderer gera comprovantes com Maroto v2.
type SaleReceiptRenderer struct {
	storeName string
	loc       *time.Location
	printer   *message.Printer
}

// NewSaleReceiptRenderer constrói o gerador. storeName aparece no cabeçalho; loc formata as datas.
func NewSaleReceiptRenderer(storeName string, loc *time.Location) *SaleReceiptRenderer {
	if loc == nil {
		loc = time.UTC
	}
	return &SaleReceiptRenderer{
		storeName: storeName,
		loc:       loc,
		printer:   message.NewPrinter(language.BrazilianPortuguese),
	}
}

// RenderSaleReceipt devolve os bytes do PDF. products mapeia id → nome do produto.
func (g *SaleReceiptRenderer) RenderSaleReceipt(_ context.Context, sale *dto.SaleResponse, products map[string]string) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprovante de venda", true).
		WithAuthor(g.storeName, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(g.headerRow(sale))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(g.customerRow(sale))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(tableHeaderRow())
	for _, l := range sale.Lines {
		m.AddRows(g.lineRow(l, products[l.ProductID]))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalRow(sale))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: gerar comprovante: %w", err)
	}
	return doc.GetBytes(), nil
}

func (g *SaleReceiptRenderer) headerRow(sale *dto.SaleResponse) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(g.storeName, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("Comprovante de venda (sem valor fiscal)", props.Text{Size: 8, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("VENDA", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1}),
			text.New("#"+shortID(sale.ID), props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 6}),
			text.New("Data: "+sale.CreatedAt.In(g.loc).Format("02/01/2006 15:04"), props.Text{Size: 8, Align: align.Right, Top: 13, Color: colorGray}),
		),
	)
}

func (g *SaleReceiptRenderer) customerRow(sale *dto.SaleResponse) core.Row {
	customer := sale.CustomerName
	if customer == "" {
		customer = "Balcão"
	}
	return row.New(14).Add(
		col.New(8).Add(
			text.New("CLIENTE", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(customer, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
		),
		col.New(4).Add(
			text.New("Separação: "+pickingLabel(sale.PickingStatus), props.Text{Size: 8, Align: align.Right, Top: 2}),
			text.New("Pagamento: "+paymentLabel(sale.PaymentStatus), props.Text{Size: 8, Align: align.Right, Top: 7}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Align: a, Top: 2, Left: 1, Right: 1}))
	}
	return row.New(8).Add(
		h("Qtd.", 2, align.Right),
		h("Un.", 1, align.Center),
		h("Produto", 5, align.Left),
		h("Preço unit.", 2, align.Right),
		h("Total", 2, align.Right),
	)
}

func (g *SaleReceiptRenderer) lineRow(l dto.SaleLineResponse, productName string) core.Row {
	if productName == "" {
		productName = l.ProductID
	}
	qty := l.RequestedQuantity
	if l.FulfilledQuantity != nil {
		qty = *l.FulfilledQuantity
	}
	return row.New(7).Add(
		col.New(2).Add(text.New(g.quantity(qty), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		col.New(1).Add(text.New(l.MeasureUnit, props.Text{Size: 8, Align: align.Center, Top: 1})),
		col.New(5).Add(text.New(productName, props.Text{Size: 8, Top: 1, Left: 1})),
		col.New(2).Add(text.New(g.Money(l.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		col.New(2).Add(text.New(g.Money(l.LineTotal), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
	)
}

func (g *SaleReceiptRenderer) totalRow(sale *dto.SaleResponse) core.Row {
	return row.New(30).Add(
		col.New(3).Add(code.NewQr(sale.ID, props.Rect{Percent: 90, Center: true})),
		col.New(4),
		col.New(5).Add(
			text.New("TOTAL: "+g.Money(sale.Total), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Color: colorPrimary, Top: 4, Right: 1,
			}),
		),
	)
}

// Money formata valores em reais no padrão brasileiro: "R$ 1.234,50".
func (g *SaleReceiptRenderer) Money(v decimal.Decimal) string {
	f, _ := v.Round(2).Float64()
	return "R$ " + g.printer.Sprint(number.Decimal(f, number.Scale(2)))
}

func (g *SaleReceiptRenderer) quantity(v decimal.Decimal) string {
	f, _ := v.Float64()
	return g.printer.Sprint(number.Decimal(f, number.MaxFractionDigits(3)))
}

func pickingLabel(s string) string {
	if s == entity.PickingPicked {
		return "separado"
	}
	return "aguardando"
}

func paymentLabel(s string) string {
	if s == entity.PaymentPaid {
		return "pago"
	}
	return "pendente"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
