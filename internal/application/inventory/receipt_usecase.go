// Package inventory contém os casos de uso de entradas de estoque e do inventário.
package inventory

import (
	"context"

	"github.com/jhoicas/ceasa-api/internal/application/dto"
	"github.com/jhoicas/ceasa-api/internal/application/ledger"
	"github.com/jhoicas/ceasa-api/internal/application/ports"
	"github.com/jhoicas/ceasa-api/internal/domain"
	"github.com/jhoicas/ceasa-api/internal/domain/entity"
	"github.com/jhoicas/ceasa-api/internal/domain/repository"
)

// ReceiptUseCase registra, lista e exclui entradas de estoque.
type ReceiptUseCase struct {
	txRunner repository.TxRunner
	repos    repository.Tx
	ledger   *ledger.Ledger
	cache    ports.ReportCache
}

// NewReceiptUseCase constrói o caso de uso. repos são os repositórios fora de transação (leituras).
func NewReceiptUseCase(txRunner repository.TxRunner, repos repository.Tx, l *ledger.Ledger, cache ports.ReportCache) *ReceiptUseCase {
	if cache == nil {
		cache = ports.NopCache{}
	}
	return &ReceiptUseCase{txRunner: txRunner, repos: repos, ledger: l, cache: cache}
}

// Register grava a entrada, cria o lote e atualiza o inventário numa única transação.
func (uc *ReceiptUseCase) Register(ctx context.Context, in dto.RegisterReceiptRequest) (*dto.RegisterReceiptResponse, error) {
	r := &entity.Receipt{
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		UnitCost:  in.UnitCost,
		Supplier:  in.Supplier,
		Notes:     in.Notes,
	}
	if in.ReceivedAt != nil {
		r.ReceivedAt = *in.ReceivedAt
	}

	var out dto.RegisterReceiptResponse
	err := uc.txRunner.Run(ctx, func(ctx context.Context, tx repository.Tx) error {
		lot, snap, err := uc.ledger.RecordReceipt(ctx, tx, r)
		if err != nil {
			return err
		}
		out = dto.RegisterReceiptResponse{
			Receipt:   dto.ReceiptFromEntity(r),
			Lot:       dto.LotFromEntity(lot),
			Inventory: dto.InventoryFromSnapshot(snap),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.cache.Invalidate(ctx)
	return &out, nil
}

// Delete exclui a entrada se o lote ainda estiver intacto.
func (uc *ReceiptUseCase) Delete(ctx context.Context, receiptID string) error {
	err := uc.txRunner.Run(ctx, func(ctx context.Context, tx repository.Tx) error {
		return uc.ledger.RemoveReceipt(ctx, tx, receiptID)
	})
	if err != nil {
		return err
	}
	uc.cache.Invalidate(ctx)
	return nil
}

// List lista as entradas, mais recentes primeiro.
func (uc *ReceiptUseCase) List(ctx context.Context, in dto.ReceiptFilterRequest) (*dto.ReceiptListResponse, error) {
	return uc.list(ctx, in, false)
}

// ListDeletable lista apenas as entradas cujo lote não foi consumido.
func (uc *ReceiptUseCase) ListDeletable(ctx context.Context, in dto.ReceiptFilterRequest) (*dto.ReceiptListResponse, error) {
	return uc.list(ctx, in, true)
}

func (uc *ReceiptUseCase) list(ctx context.Context, in dto.ReceiptFilterRequest, deletableOnly bool) (*dto.ReceiptListResponse, error) {
	in.DefaultPage()
	list, total, err := uc.repos.Receipts.List(ctx, repository.ReceiptFilter{
		ProductID:     in.ProductID,
		From:          in.From,
		To:            in.To,
		DeletableOnly: deletableOnly,
		Limit:         in.Limit,
		Offset:        in.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ReceiptResponse, 0, len(list))
	for i := range list {
		items = append(items, dto.ReceiptFromEntity(&list[i]))
	}
	return &dto.ReceiptListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}, nil
}

// DeletionStatus informa se a entrada pode ser excluída, com o estado do lote.
func (uc *ReceiptUseCase) DeletionStatus(ctx context.Context, receiptID string) (*dto.DeletionStatusResponse, error) {
	r, err := uc.repos.Receipts.GetByID(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	lot, err := uc.repos.Lots.GetByReceipt(ctx, receiptID)
	if err != nil {
		return nil, err
	}

	out := &dto.DeletionStatusResponse{ReceiptID: receiptID, Deletable: true, Reason: "Lote intacto, nenhuma unidade vendida"}
	if lot == nil {
		out.Reason = "Entrada sem lote associado"
		return out, nil
	}
	l := dto.LotFromEntity(lot)
	out.Lot = &l
	if !lot.Intact() {
		out.Deletable = false
		out.Reason = "Lote já consumido parcial ou totalmente por vendas (FIFO)"
	}
	return out, nil
}
