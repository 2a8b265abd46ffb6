package repository

import (
	"context"
	"time"

	"github.com/jhoicas/ceasa-api/internal/domain/entity"
)

// MovementFilter filtros de consulta do fluxo de caixa.
type MovementFilter struct {
	ProductID string
	From      *time.Time
	To        *time.Time
}

// MovementRepository porta de persistência do fluxo de caixa.
type MovementRepository interface {
	Create(ctx context.Context, m *entity.Movement) error
	DeleteBySale(ctx context.Context, saleID string) (int64, error)
	DeleteOutflow(ctx context.Context, saleID, productID string) (int64, error)
	DeleteByReceipt(ctx context.Context, receiptID string) (int64, error)
	// Each percorre as movimentações em ordem de occurred_at sem carregar tudo em memória.
	// Interrompe e devolve o erro se fn falhar.
	Each(ctx context.Context, f MovementFilter, fn func(entity.Movement) error) error
}
