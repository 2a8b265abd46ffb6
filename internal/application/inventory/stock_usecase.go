package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ceasa-api/internal/application/dto"
	"github.com/jhoicas/ceasa-api/internal/application/ledger"
	"github.com/jhoicas/ceasa-api/internal/application/ports"
	"github.com/jhoicas/ceasa-api/internal/domain"
	"github.com/jhoicas/ceasa-api/internal/domain/entity"
	"github.com/jhoicas/ceasa-api/internal/domain/inventory"
	"github.com/jhoicas/ceasa-api/internal/domain/repository"
)

// AdjustmentSupplier fornecedor das entradas criadas por ajuste manual de inventário.
const AdjustmentSupplier = "Ajuste de inventário"

const recentReceipts = 5

// StockUseCase consultas de inventário e ajuste manual.
type StockUseCase struct {
	txRunner repository.TxRunner
	repos    repository.Tx
	ledger   *ledger.Ledger
	cache    ports.ReportCache
}

// NewStockUseCase constrói o caso de uso.
func NewStockUseCase(txRunner repository.TxRunner, repos repository.Tx, l *ledger.Ledger, cache ports.ReportCache) *StockUseCase {
	if cache == nil {
		cache = ports.NopCache{}
	}
	return &StockUseCase{txRunner: txRunner, repos: repos, ledger: l, cache: cache}
}

// ListInventory lista o inventário com dados do produto.
func (uc *StockUseCase) ListInventory(ctx context.Context, in dto.InventoryFilterRequest) (*dto.InventoryListResponse, error) {
	in.DefaultPage()
	rows, total, err := uc.repos.Inventory.List(ctx, repository.InventoryFilter{
		LowStockOnly: in.LowStockOnly,
		Limit:        in.Limit,
		Offset:       in.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.InventoryResponse, 0, len(rows))
	for _, r := range rows {
		items = append(items, dto.InventoryFromRow(r))
	}
	return &dto.InventoryListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}, nil
}

// GetStock visão de estoque de um produto: inventário, lotes, entradas recentes e recebido no mês.
func (uc *StockUseCase) GetStock(ctx context.Context, productID string) (*dto.StockDetailResponse, error) {
	p, err := uc.repos.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	snap, err := uc.repos.Inventory.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	lots, err := uc.repos.Lots.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	receipts, _, err := uc.repos.Receipts.List(ctx, repository.ReceiptFilter{ProductID: productID, Limit: recentReceipts})
	if err != nil {
		return nil, err
	}
	now := uc.ledger.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	received, err := uc.repos.Receipts.SumQuantitySince(ctx, productID, monthStart)
	if err != nil {
		return nil, err
	}

	out := &dto.StockDetailResponse{
		Product:           dto.ProductFromEntity(p),
		Lots:              make([]dto.LotResponse, 0, len(lots)),
		RecentReceipts:    make([]dto.ReceiptResponse, 0, len(receipts)),
		ReceivedThisMonth: received,
	}
	onHand := decimal.Zero
	if snap != nil {
		inv := dto.InventoryFromRow(repository.InventoryRow{
			InventorySnapshot: *snap,
			ProductName:       p.Name,
			MeasureUnit:       p.MeasureUnit,
			MinimumStock:      p.MinimumStock,
		})
		out.Inventory = &inv
		onHand = snap.QuantityOnHand
	}
	out.LowStock = onHand.LessThan(p.MinimumStock)
	for _, l := range lots {
		if !l.Exhausted {
			out.Lots = append(out.Lots, dto.LotFromEntity(l))
		}
	}
	for i := range receipts {
		out.RecentReceipts = append(out.RecentReceipts, dto.ReceiptFromEntity(&receipts[i]))
	}
	return out, nil
}

// Alerts produtos abaixo do estoque mínimo (maior déficit primeiro) e produtos sem inventário.
func (uc *StockUseCase) Alerts(ctx context.Context) (*dto.StockAlertsResponse, error) {
	low, missing, err := uc.repos.Inventory.Alerts(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(low, func(i, j int) bool {
		defI := low[i].MinimumStock.Sub(low[i].QuantityOnHand)
		defJ := low[j].MinimumStock.Sub(low[j].QuantityOnHand)
		return defI.GreaterThan(defJ)
	})
	out := &dto.StockAlertsResponse{
		LowStock:         make([]dto.InventoryResponse, 0, len(low)),
		WithoutInventory: make([]dto.ProductResponse, 0, len(missing)),
	}
	for _, r := range low {
		out.LowStock = append(out.LowStock, dto.InventoryFromRow(r))
	}
	for i := range missing {
		out.WithoutInventory = append(out.WithoutInventory, dto.ProductFromEntity(&missing[i]))
	}
	out.Total = len(out.LowStock) + len(out.WithoutInventory)
	return out, nil
}

// SetInventory leva o estoque do produto à quantidade informada passando pelo razão.
// Baixar consome lotes FIFO e lança um ajuste ao custo FIFO; subir cria uma entrada de ajuste
// ao custo informado ou ao custo do último lote.
func (uc *StockUseCase) SetInventory(ctx context.Context, productID string, in dto.SetInventoryRequest) (*dto.InventoryResponse, error) {
	if in.Quantity.IsNegative() {
		return nil, domain.NewValidation("quantity", "quantidade não pode ser negativa")
	}
	if in.UnitCost != nil && !in.UnitCost.IsPositive() {
		return nil, domain.NewValidation("unit_cost", "custo unitário deve ser maior que zero")
	}

	var out dto.InventoryResponse
	err := uc.txRunner.Run(ctx, func(ctx context.Context, tx repository.Tx) error {
		p, err := tx.Products.Lock(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		lots, err := tx.Lots.ListByProductForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		current := inventory.Available(lots)
		diff := in.Quantity.Sub(current)

		switch {
		case diff.IsNegative():
			qty := diff.Neg()
			c, err := uc.ledger.Consume(ctx, tx, productID, qty)
			if err != nil {
				return err
			}
			note := fmt.Sprintf("Ajuste de inventário: %s → %s", current.String(), in.Quantity.String())
			if in.Notes != "" {
				note += " - " + in.Notes
			}
			if err := uc.ledger.LogAdjustment(ctx, tx, productID, qty, c.CostTotal().DivRound(qty, 4), note); err != nil {
				return err
			}
		case diff.IsPositive():
			cost := inventory.LastCost(lots)
			if in.UnitCost != nil {
				cost = *in.UnitCost
			}
			if !cost.IsPositive() {
				return domain.NewValidation("unit_cost", "produto sem lotes anteriores: informe o custo unitário")
			}
			r := &entity.Receipt{
				ProductID: productID,
				Quantity:  diff,
				UnitCost:  cost,
				Supplier:  AdjustmentSupplier,
				Notes:     in.Notes,
			}
			if _, _, err := uc.ledger.RecordReceipt(ctx, tx, r); err != nil {
				return err
			}
		}

		snap, err := uc.ledger.Resync(ctx, tx, productID)
		if err != nil {
			return err
		}
		if in.Notes != "" {
			snap.Notes = in.Notes
			if err := tx.Inventory.Upsert(ctx, snap); err != nil {
				return err
			}
		}
		out = dto.InventoryFromRow(repository.InventoryRow{
			InventorySnapshot: *snap,
			ProductName:       p.Name,
			MeasureUnit:       p.MeasureUnit,
			MinimumStock:      p.MinimumStock,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.cache.Invalidate(ctx)
	return &out, nil
}
