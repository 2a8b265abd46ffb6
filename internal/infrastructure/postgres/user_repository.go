package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/ceasa-api/internal/domain"
	"github.com/jhoicas/ceasa-api/internal/domain/entity"
	"github.com/jhoicas/ceasa-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

const userColumns = "id, name, email, document, password_hash, role, active, created_at, updated_at"

// UserRepo implementação de UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository constrói o adaptador de usuários.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// Create persiste o usuário. Email repetido devolve ErrEmailAlreadyExists; documento, ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO users (id, name, email, document, password_hash, role, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID, u.Name, u.Email, u.Document, u.PasswordHash, u.Role, u.Active, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return userWriteError("insert user", err)
	}
	return nil
}

func userWriteError(op string, err error) error {
	if !isUniqueViolation(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.ConstraintName == "users_email_key" {
		return domain.ErrEmailAlreadyExists
	}
	return domain.ErrDuplicate
}

// GetByID devolve nil, nil quando não existe.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getBy(ctx, "id", id)
}

// GetByEmail busca pelo email já normalizado em minúsculas.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getBy(ctx, "email", email)
}

// GetByDocument busca pelo CPF/CNPJ.
func (r *UserRepo) GetByDocument(ctx context.Context, document string) (*entity.User, error) {
	return r.getBy(ctx, "document", document)
}

func (r *UserRepo) getBy(ctx context.Context, column, value string) (*entity.User, error) {
	var u entity.User
	err := pgxscan.Get(ctx, r.q, &u, "SELECT "+userColumns+" FROM users WHERE "+column+" = $1", value)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by %s: %w", column, err)
	}
	return &u, nil
}

// Update grava nome, email, documento, senha, papel e situação.
func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	_, err := r.q.Exec(ctx, `
		UPDATE users SET name = $2, email = $3, document = $4, password_hash = $5, role = $6, active = $7, updated_at = $8
		WHERE id = $1`,
		u.ID, u.Name, u.Email, u.Document, u.PasswordHash, u.Role, u.Active, u.UpdatedAt,
	)
	if err != nil {
		return userWriteError("update user", err)
	}
	return nil
}

// Delete remove o usuário; quem já registrou vendas não pode ser removido.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		if isForeignKeyViolation(err) {
			return domain.NewConflict("usuário possui vendas registradas; desative-o em vez de excluir")
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// List devolve os usuários, opcionalmente só os do papel informado.
func (r *UserRepo) List(ctx context.Context, role string) ([]entity.User, error) {
	b := psql.Select(userColumns).From("users").OrderBy("name", "id")
	if role != "" {
		b = b.Where("role = ?", role)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	var list []entity.User
	if err := pgxscan.Select(ctx, r.q, &list, query, args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return list, nil
}
