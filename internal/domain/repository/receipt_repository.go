package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ceasa-api/internal/domain/entity"
)

// ReceiptFilter filtros da listagem de entradas.
type ReceiptFilter struct {
	ProductID string
	From      *time.Time
	To        *time.Time
	// DeletableOnly restringe às entradas cujo lote ainda está intacto.
	DeletableOnly bool
	Limit         int
	Offset        int
}

// ReceiptRepository porta de persistência das entradas de estoque.
type ReceiptRepository interface {
	Create(ctx context.Context, r *entity.Receipt) error
	GetByID(ctx context.Context, id string) (*entity.Receipt, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f ReceiptFilter) ([]entity.Receipt, int, error)
	CountByProduct(ctx context.Context, productID string) (int, error)
	SumQuantitySince(ctx context.Context, productID string, since time.Time) (decimal.Decimal, error)
}
