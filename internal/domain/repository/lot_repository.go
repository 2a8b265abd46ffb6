package repository

import (
	"context"

	"github.com/jhoicas/ceasa-api/internal/domain/entity"
)

// LotRepository porta de persistência dos lotes FIFO.
type LotRepository interface {
	// Create persiste o lote e preenche Seq.
	Create(ctx context.Context, l *entity.Lot) error
	// ListByProductForUpdate devolve todos os lotes do produto em ordem FIFO, bloqueados (FOR UPDATE).
	ListByProductForUpdate(ctx context.Context, productID string) ([]*entity.Lot, error)
	// ListByProduct leitura sem bloqueio, mesma ordem.
	ListByProduct(ctx context.Context, productID string) ([]*entity.Lot, error)
	GetByReceipt(ctx context.Context, receiptID string) (*entity.Lot, error)
	UpdateRemaining(ctx context.Context, lots []*entity.Lot) error
	Delete(ctx context.Context, id string) error
}
