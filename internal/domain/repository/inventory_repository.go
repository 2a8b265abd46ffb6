package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ceasa-api/internal/domain/entity"
)

// InventoryRow posição de estoque com dados do produto, para listagens e alertas.
type InventoryRow struct {
	entity.InventorySnapshot
	ProductName  string
	MeasureUnit  string
	MinimumStock decimal.Decimal
}

// LowStock indica estoque abaixo do mínimo.
func (r InventoryRow) LowStock() bool {
	return r.QuantityOnHand.LessThan(r.MinimumStock)
}

// InventoryFilter filtros da listagem de inventário.
type InventoryFilter struct {
	LowStockOnly bool
	Limit        int
	Offset       int
}

// InventoryRepository porta de persistência do snapshot de estoque.
type InventoryRepository interface {
	Get(ctx context.Context, productID string) (*entity.InventorySnapshot, error)
	Upsert(ctx context.Context, s *entity.InventorySnapshot) error
	Delete(ctx context.Context, productID string) error
	List(ctx context.Context, f InventoryFilter) ([]InventoryRow, int, error)
	// Alerts devolve produtos abaixo do mínimo e produtos sem linha de inventário.
	Alerts(ctx context.Context) (low []InventoryRow, missing []entity.Product, err error)
}
