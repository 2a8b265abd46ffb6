package repository

import (
	"context"

	"github.com/jhoicas/ceasa-api/internal/domain/entity"
)

// ProductFilter filtros da listagem de produtos.
type ProductFilter struct {
	Search     string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// ProductRepository porta de persistência de Product.
type ProductRepository interface {
	Create(ctx context.Context, p *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// Lock bloqueia a linha do produto até o fim da transação; serializa o razão do produto.
	Lock(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, p *entity.Product) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f ProductFilter) ([]entity.Product, int, error)
}
