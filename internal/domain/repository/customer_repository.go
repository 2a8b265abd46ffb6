package repository

import (
	"context"

	"github.com/jhoicas/ceasa-api/internal/domain/entity"
)

// CustomerFilter filtros da listagem de clientes.
type CustomerFilter struct {
	Search     string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// CustomerRepository porta de persistência de Customer.
type CustomerRepository interface {
	Create(ctx context.Context, c *entity.Customer) error
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	GetByDocument(ctx context.Context, document string) (*entity.Customer, error)
	Update(ctx context.Context, c *entity.Customer) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f CustomerFilter) ([]entity.Customer, int, error)
	Count(ctx context.Context) (total, active int, err error)
}
