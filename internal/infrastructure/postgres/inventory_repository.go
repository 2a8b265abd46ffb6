package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/ceasa-api/internal/domain/entity"
	"github.com/jhoicas/ceasa-api/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

const inventoryRowColumns = `i.product_id, i.quantity_on_hand, i.unit_value, i.total_value, i.notes, i.last_updated_at,
	p.name AS product_name, p.measure_unit, p.minimum_stock`

// InventoryRepo snapshot de estoque por produto.
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository constrói o adaptador do inventário.
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

// Get devolve nil, nil quando o produto não tem linha de inventário.
func (r *InventoryRepo) Get(ctx context.Context, productID string) (*entity.InventorySnapshot, error) {
	var s entity.InventorySnapshot
	err := pgxscan.Get(ctx, r.q, &s, `
		SELECT product_id, quantity_on_hand, unit_value, total_value, notes, last_updated_at
		FROM inventory WHERE product_id = $1`, productID)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory: %w", err)
	}
	return &s, nil
}

// Upsert grava o snapshot recalculado a partir dos lotes.
func (r *InventoryRepo) Upsert(ctx context.Context, s *entity.InventorySnapshot) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO inventory (product_id, quantity_on_hand, unit_value, total_value, notes, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (product_id) DO UPDATE SET
			quantity_on_hand = EXCLUDED.quantity_on_hand,
			unit_value       = EXCLUDED.unit_value,
			total_value      = EXCLUDED.total_value,
			notes            = EXCLUDED.notes,
			last_updated_at  = EXCLUDED.last_updated_at`,
		s.ProductID, s.QuantityOnHand, s.UnitValue, s.TotalValue, s.Notes, s.LastUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert inventory: %w", err)
	}
	return nil
}

// Delete remove a linha de inventário do produto.
func (r *InventoryRepo) Delete(ctx context.Context, productID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM inventory WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("delete inventory: %w", err)
	}
	return nil
}

// List posições de estoque ordenadas pelo nome do produto.
func (r *InventoryRepo) List(ctx context.Context, f repository.InventoryFilter) ([]repository.InventoryRow, int, error) {
	where := sq.And{}
	if f.LowStockOnly {
		where = append(where, sq.Expr("i.quantity_on_hand < p.minimum_stock"))
	}
	from := "inventory i JOIN products p ON p.id = i.product_id"

	total, err := count(ctx, r.q, psql.Select("COUNT(*)").From(from).Where(where))
	if err != nil {
		return nil, 0, fmt.Errorf("count inventory: %w", err)
	}
	query, args, err := paginate(psql.Select(inventoryRowColumns).From(from).Where(where).OrderBy("p.name", "p.id"), f.Limit, f.Offset).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var rows []repository.InventoryRow
	if err := pgxscan.Select(ctx, r.q, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list inventory: %w", err)
	}
	return rows, total, nil
}

// Alerts produtos abaixo do mínimo e produtos que nunca tiveram entrada.
func (r *InventoryRepo) Alerts(ctx context.Context) ([]repository.InventoryRow, []entity.Product, error) {
	var low []repository.InventoryRow
	err := pgxscan.Select(ctx, r.q, &low, `
		SELECT `+inventoryRowColumns+`
		FROM inventory i JOIN products p ON p.id = i.product_id
		WHERE i.quantity_on_hand < p.minimum_stock
		ORDER BY p.name, p.id`)
	if err != nil {
		return nil, nil, fmt.Errorf("low stock alerts: %w", err)
	}

	var missing []entity.Product
	err = pgxscan.Select(ctx, r.q, &missing, `
		SELECT `+productColumns+`
		FROM products p
		WHERE NOT EXISTS (SELECT 1 FROM inventory i WHERE i.product_id = p.id)
		ORDER BY p.name, p.id`)
	if err != nil {
		return nil, nil, fmt.Errorf("missing inventory alerts: %w", err)
	}
	return low, missing, nil
}
