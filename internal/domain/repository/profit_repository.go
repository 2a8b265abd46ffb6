package repository

import (
	"context"
	"time"

	"github.com/jhoicas/ceasa-api/internal/domain/entity"
)

// ProfitFilter filtros dos registros de lucro bruto.
type ProfitFilter struct {
	ProductID string
	From      *time.Time
	To        *time.Time
}

// ProfitRepository porta de persistência dos registros de lucro bruto.
type ProfitRepository interface {
	Create(ctx context.Context, r *entity.ProfitRecord) error
	ListBySale(ctx context.Context, saleID string) ([]entity.ProfitRecord, error)
	DeleteByID(ctx context.Context, id string) error
	List(ctx context.Context, f ProfitFilter) ([]entity.ProfitRecord, error)
}
