package repository

import (
	"context"
	"time"

	"github.com/jhoicas/ceasa-api/internal/domain/entity"
)

// SaleFilter filtros da listagem de vendas.
type SaleFilter struct {
	CustomerID    string
	PickingStatus string
	PaymentStatus string
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
}

// SaleRepository porta de persistência de vendas e itens.
type SaleRepository interface {
	// Create persiste a venda e suas linhas.
	Create(ctx context.Context, s *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// GetForUpdate carrega a venda bloqueando sua linha até o fim da transação.
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	// Update grava cabeçalho e quantidades/totais das linhas existentes.
	Update(ctx context.Context, s *entity.Sale) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f SaleFilter) ([]entity.Sale, int, error)
}
