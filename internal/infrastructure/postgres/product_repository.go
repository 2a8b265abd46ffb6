package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/ceasa-api/internal/domain"
	"github.com/jhoicas/ceasa-api/internal/domain/entity"
	"github.com/jhoicas/ceasa-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = "id, name, description, sale_price, measure_unit, minimum_stock, active, created_at, updated_at"

// ProductRepo implementação de ProductRepository sobre PostgreSQL (pool ou tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository constrói o adaptador de produtos.
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste um novo produto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO products (id, name, description, sale_price, measure_unit, minimum_stock, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.Name, p.Description, p.SalePrice, p.MeasureUnit, p.MinimumStock, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID devolve nil, nil quando o produto não existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.get(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
}

// Lock usa FOR NO KEY UPDATE: serializa o razão do produto sem travar as FKs que o referenciam.
func (r *ProductRepo) Lock(ctx context.Context, id string) (*entity.Product, error) {
	return r.get(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1 FOR NO KEY UPDATE", id)
}

func (r *ProductRepo) get(ctx context.Context, query, id string) (*entity.Product, error) {
	var p entity.Product
	if err := pgxscan.Get(ctx, r.q, &p, query, id); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// Update atualiza os dados cadastrais. Estoque e custo mudam apenas pelo razão.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	_, err := r.q.Exec(ctx, `
		UPDATE products SET name = $2, description = $3, sale_price = $4, measure_unit = $5,
			minimum_stock = $6, active = $7, updated_at = $8
		WHERE id = $1`,
		p.ID, p.Name, p.Description, p.SalePrice, p.MeasureUnit, p.MinimumStock, p.Active, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// Delete remove o produto. Referências em vendas ou entradas viram ConflictError.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		if isForeignKeyViolation(err) {
			return domain.NewConflict("produto %s possui movimentações registradas", id)
		}
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// List filtra por nome (ILIKE) e situação, ordenado por nome.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]entity.Product, int, error) {
	where := sq.And{}
	if f.Search != "" {
		where = append(where, sq.ILike{"name": "%" + f.Search + "%"})
	}
	if f.ActiveOnly {
		where = append(where, sq.Eq{"active": true})
	}

	total, err := count(ctx, r.q, psql.Select("COUNT(*)").From("products").Where(where))
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query, args, err := paginate(psql.Select(productColumns).From("products").Where(where).OrderBy("name", "id"), f.Limit, f.Offset).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var list []entity.Product
	if err := pgxscan.Select(ctx, r.q, &list, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return list, total, nil
}
