package repository

import (
	"context"

	"github.com/jhoicas/ceasa-api/internal/domain/entity"
)

// UserRepository porta de persistência de User.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByDocument(ctx context.Context, document string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, role string) ([]entity.User, error)
}
