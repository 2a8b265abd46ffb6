package sales

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ceasa-api/internal/application/dto"
	"github.com/jhoicas/ceasa-api/internal/application/ledger"
	"github.com/jhoicas/ceasa-api/internal/application/ports"
	"github.com/jhoicas/ceasa-api/internal/domain"
	"github.com/jhoicas/ceasa-api/internal/domain/entity"
	"github.com/jhoicas/ceasa-api/internal/domain/inventory"
	"github.com/jhoicas/ceasa-api/internal/domain/repository"
)

// NewLine item de uma nova venda. UnitPrice nil usa o preço de venda do produto.
type NewLine struct {
	ProductID   string
	Quantity    decimal.Decimal
	UnitPrice   *decimal.Decimal
	MeasureUnit string
}

// NewSale dados de uma nova venda. CustomerID nil é venda de balcão.
type NewSale struct {
	CustomerID *string
	CreatedBy  string
	Notes      string
	Lines      []NewLine
}

// NewSaleFromCreate adapta o body de POST /sales.
func NewSaleFromCreate(in dto.CreateSaleRequest, createdBy string) NewSale {
	customer := in.CustomerID
	return NewSale{CustomerID: &customer, CreatedBy: createdBy, Notes: in.Notes, Lines: newLines(in.Lines)}
}

// NewSaleFromQuick adapta o body de POST /sales/quick.
func NewSaleFromQuick(in dto.QuickSaleRequest, createdBy string) NewSale {
	return NewSale{CustomerID: in.CustomerID, CreatedBy: createdBy, Notes: in.Notes, Lines: newLines(in.Lines)}
}

func newLines(in []dto.SaleLineRequest) []NewLine {
	out := make([]NewLine, 0, len(in))
	for _, l := range in {
		out = append(out, NewLine{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice, MeasureUnit: l.MeasureUnit})
	}
	return out
}

// buildSale valida cliente e produtos (um item por produto) e monta a venda aguardando separação, com total pelas quantidades pedidas.
func buildSale(ctx context.Context, repos repository.Tx, l *ledger.Ledger, in NewSale) (*entity.Sale, error) {
	if len(in.Lines) == 0 {
		return nil, domain.NewValidation("lines", "a venda precisa de ao menos um item")
	}
	sale := &entity.Sale{
		ID:            l.NewID(),
		CreatedBy:     in.CreatedBy,
		PickingStatus: entity.PickingAwaiting,
		PaymentStatus: entity.PaymentPending,
		Notes:         in.Notes,
		CreatedAt:     l.Now(),
		Lines:         make([]entity.SaleLine, 0, len(in.Lines)),
	}
	if in.CustomerID != nil && *in.CustomerID != "" {
		c, err := repos.Customers.GetByID(ctx, *in.CustomerID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, domain.ErrNotFound
		}
		id := c.ID
		sale.CustomerID = &id
		sale.CustomerName = c.Name
	}

	seen := make(map[string]bool, len(in.Lines))
	for i, nl := range in.Lines {
		if seen[nl.ProductID] {
			return nil, domain.NewValidation("lines", "item %d: produto %s repetido na venda; informe a quantidade total em um único item", i+1, nl.ProductID)
		}
		seen[nl.ProductID] = true
		if !nl.Quantity.IsPositive() {
			return nil, domain.NewValidation("quantity", "item %d: quantidade deve ser maior que zero", i+1)
		}
		p, err := repos.Products.GetByID(ctx, nl.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.ErrNotFound
		}
		price := p.SalePrice
		if nl.UnitPrice != nil {
			price = *nl.UnitPrice
		}
		if !price.IsPositive() {
			return nil, domain.NewValidation("unit_price", "item %d: preço unitário deve ser maior que zero", i+1)
		}
		measure := nl.MeasureUnit
		if measure == "" {
			measure = p.MeasureUnit
		}
		sale.Lines = append(sale.Lines, entity.SaleLine{
			ID:                l.NewID(),
			SaleID:            sale.ID,
			ProductID:         p.ID,
			MeasureUnit:       measure,
			RequestedQuantity: nl.Quantity,
			UnitPrice:         price,
			LineTotal:         nl.Quantity.Mul(price),
		})
	}
	sale.RecomputeTotal()
	return sale, nil
}

// SaleUseCase criação, consulta e pagamento de vendas.
type SaleUseCase struct {
	txRunner repository.TxRunner
	repos    repository.Tx
	ledger   *ledger.Ledger
	cache    ports.ReportCache
	pdf      ports.SaleReceiptRenderer
}

// NewSaleUseCase constrói o caso de uso. pdf pode ser nil se o comprovante não for usado.
func NewSaleUseCase(txRunner repository.TxRunner, repos repository.Tx, l *ledger.Ledger, cache ports.ReportCache, pdf ports.SaleReceiptRenderer) *SaleUseCase {
	if cache == nil {
		cache = ports.NopCache{}
	}
	return &SaleUseCase{txRunner: txRunner, repos: repos, ledger: l, cache: cache, pdf: pdf}
}

// Create registra uma venda aguardando separação. Cliente é obrigatório.
func (uc *SaleUseCase) Create(ctx context.Context, in NewSale) (*entity.Sale, error) {
	if in.CustomerID == nil || *in.CustomerID == "" {
		return nil, domain.NewValidation("customer_id", "cliente é obrigatório")
	}
	var out *entity.Sale
	err := uc.txRunner.Run(ctx, func(ctx context.Context, tx repository.Tx) error {
		sale, err := buildSale(ctx, tx, uc.ledger, in)
		if err != nil {
			return err
		}
		out = sale
		return tx.Sales.Create(ctx, sale)
	})
	if err != nil {
		return nil, err
	}
	uc.cache.Invalidate(ctx)
	return out, nil
}

// Get devolve a venda com o detalhamento do lucro bruto FIFO.
func (uc *SaleUseCase) Get(ctx context.Context, id string) (*dto.SaleResponse, error) {
	sale, err := uc.repos.Sales.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	out := dto.SaleFromEntity(sale)
	profit, err := uc.profitBreakdown(ctx, sale)
	if err != nil {
		return nil, err
	}
	out.Profit = profit
	return &out, nil
}

func (uc *SaleUseCase) profitBreakdown(ctx context.Context, sale *entity.Sale) (*dto.SaleProfitResponse, error) {
	out := &dto.SaleProfitResponse{Status: dto.ProfitNotPicked, Revenue: sale.Total}
	if !sale.Picked() {
		return out, nil
	}
	records, err := uc.repos.Profits.ListBySale(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		out.Status = dto.ProfitPickedNoRecord
		return out, nil
	}

	out.Status = dto.ProfitComputedFIFO
	out.Revenue = decimal.Zero
	names, err := uc.productNames(ctx, records)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		out.Revenue = out.Revenue.Add(r.RevenueTotal)
		out.Cost = out.Cost.Add(r.CostTotal)
		out.GrossProfit = out.GrossProfit.Add(r.GrossProfit)
		out.Approximated = out.Approximated || r.CostApproximated
		out.Details = append(out.Details, dto.ProductProfitDetail{
			ProductID:     r.ProductID,
			ProductName:   names[r.ProductID],
			QuantitySold:  r.QuantitySold,
			Revenue:       r.RevenueTotal,
			Cost:          r.CostTotal,
			GrossProfit:   r.GrossProfit,
			MarginPercent: r.MarginPercent.Round(2),
			Approximated:  r.CostApproximated,
		})
	}
	out.MarginPercent = inventory.Margin(out.GrossProfit, out.Revenue).Round(2)
	return out, nil
}

func (uc *SaleUseCase) productNames(ctx context.Context, records []entity.ProfitRecord) (map[string]string, error) {
	names := make(map[string]string, len(records))
	for _, r := range records {
		if _, ok := names[r.ProductID]; ok {
			continue
		}
		p, err := uc.repos.Products.GetByID(ctx, r.ProductID)
		if err != nil {
			return nil, err
		}
		names[r.ProductID] = "N/A"
		if p != nil {
			names[r.ProductID] = p.Name
		}
	}
	return names, nil
}

// List lista vendas com filtros, mais recentes primeiro.
func (uc *SaleUseCase) List(ctx context.Context, in dto.SaleFilterRequest) (*dto.SaleListResponse, error) {
	in.DefaultPage()
	list, total, err := uc.repos.Sales.List(ctx, repository.SaleFilter{
		CustomerID:    in.CustomerID,
		PickingStatus: in.PickingStatus,
		PaymentStatus: in.PaymentStatus,
		Limit:         in.Limit,
		Offset:        in.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(list))
	for i := range list {
		items = append(items, dto.SaleFromEntity(&list[i]))
	}
	return &dto.SaleListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}, nil
}

// MarkPaid marca a venda como paga.
func (uc *SaleUseCase) MarkPaid(ctx context.Context, id string) (*entity.Sale, error) {
	var out *entity.Sale
	err := uc.txRunner.Run(ctx, func(ctx context.Context, tx repository.Tx) error {
		sale, err := getForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if sale.Paid() {
			return domain.NewConflict("venda #%s já está paga", sale.ID)
		}
		now := uc.ledger.Now()
		sale.PaymentStatus = entity.PaymentPaid
		sale.PaidAt = &now
		out = sale
		return tx.Sales.Update(ctx, sale)
	})
	if err != nil {
		return nil, err
	}
	uc.cache.Invalidate(ctx)
	return out, nil
}

// ReceiptPDF gera o comprovante da venda.
func (uc *SaleUseCase) ReceiptPDF(ctx context.Context, id string) ([]byte, error) {
	if uc.pdf == nil {
		return nil, domain.NewConflict("geração de comprovante indisponível")
	}
	sale, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(sale.Lines))
	for _, l := range sale.Lines {
		if _, ok := names[l.ProductID]; ok {
			continue
		}
		p, err := uc.repos.Products.GetByID(ctx, l.ProductID)
		if err != nil {
			return nil, err
		}
		if p != nil {
			names[l.ProductID] = p.Name
		}
	}
	return uc.pdf.RenderSaleReceipt(ctx, sale, names)
}
