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

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

const customerColumns = "id, name, trade_name, document, address, reference, email, phone1, phone2, active, created_at, updated_at"

// CustomerRepo implementação de CustomerRepository sobre PostgreSQL.
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository constrói o adaptador de clientes.
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// Create persiste o cliente. Documento repetido devolve ErrDuplicate.
func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO customers (id, name, trade_name, document, address, reference, email, phone1, phone2, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		c.ID, c.Name, c.TradeName, c.Document, c.Address, c.Reference, c.Email, c.Phone1, c.Phone2,
		c.Active, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID devolve nil, nil quando não existe.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	return r.getBy(ctx, "id", id)
}

// GetByDocument busca pelo CPF/CNPJ normalizado.
func (r *CustomerRepo) GetByDocument(ctx context.Context, document string) (*entity.Customer, error) {
	return r.getBy(ctx, "document", document)
}

func (r *CustomerRepo) getBy(ctx context.Context, column, value string) (*entity.Customer, error) {
	var c entity.Customer
	err := pgxscan.Get(ctx, r.q, &c, "SELECT "+customerColumns+" FROM customers WHERE "+column+" = $1", value)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer by %s: %w", column, err)
	}
	return &c, nil
}

// Update grava todos os campos cadastrais.
func (r *CustomerRepo) Update(ctx context.Context, c *entity.Customer) error {
	_, err := r.q.Exec(ctx, `
		UPDATE customers SET name = $2, trade_name = $3, document = $4, address = $5, reference = $6,
			email = $7, phone1 = $8, phone2 = $9, active = $10, updated_at = $11
		WHERE id = $1`,
		c.ID, c.Name, c.TradeName, c.Document, c.Address, c.Reference, c.Email, c.Phone1, c.Phone2,
		c.Active, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

// Delete remove o cliente.
func (r *CustomerRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id); err != nil {
		if isForeignKeyViolation(err) {
			return domain.NewConflict("cliente %s possui vendas registradas", id)
		}
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}

// List busca por nome ou nome fantasia.
func (r *CustomerRepo) List(ctx context.Context, f repository.CustomerFilter) ([]entity.Customer, int, error) {
	where := sq.And{}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		where = append(where, sq.Or{sq.ILike{"name": like}, sq.ILike{"trade_name": like}})
	}
	if f.ActiveOnly {
		where = append(where, sq.Eq{"active": true})
	}

	total, err := count(ctx, r.q, psql.Select("COUNT(*)").From("customers").Where(where))
	if err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}
	query, args, err := paginate(psql.Select(customerColumns).From("customers").Where(where).OrderBy("name", "id"), f.Limit, f.Offset).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var list []entity.Customer
	if err := pgxscan.Select(ctx, r.q, &list, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	return list, total, nil
}

// Count devolve o total de clientes e quantos estão ativos.
func (r *CustomerRepo) Count(ctx context.Context) (total, active int, err error) {
	err = r.q.QueryRow(ctx, `SELECT COUNT(*), COUNT(*) FILTER (WHERE active) FROM customers`).Scan(&total, &active)
	if err != nil {
		return 0, 0, fmt.Errorf("count customers: %w", err)
	}
	return total, active, nil
}
