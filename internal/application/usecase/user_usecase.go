package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/ceasa-api/internal/application/dto"
	"github.com/jhoicas/ceasa-api/internal/domain"
	"github.com/jhoicas/ceasa-api/internal/domain/entity"
	"github.com/jhoicas/ceasa-api/internal/domain/repository"
)

// UserUseCase gestão de usuários pelo administrador.
type UserUseCase struct {
	repo repository.UserRepository
}

// NewUserUseCase constrói o caso de uso com a porta de persistência.
func NewUserUseCase(repo repository.UserRepository) *UserUseCase {
	return &UserUseCase{repo: repo}
}

// CreateEmployee cadastra um funcionário.
func (uc *UserUseCase) CreateEmployee(ctx context.Context, in dto.CreateEmployeeRequest) (*dto.UserResponse, error) {
	return uc.Create(ctx, in, entity.RoleEmployee)
}

// Create cadastra um usuário com o papel indicado. Hash bcrypt da senha; e-mail e documento únicos.
func (uc *UserUseCase) Create(ctx context.Context, in dto.CreateEmployeeRequest, role string) (*dto.UserResponse, error) {
	if role != entity.RoleAdmin && role != entity.RoleEmployee {
		return nil, domain.NewValidation("role", "papel inválido: %q", role)
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	existing, err := uc.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	doc := NormalizeDocument(in.Document)
	if doc != "" {
		existing, err := uc.repo.GetByDocument(ctx, doc)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, domain.ErrDuplicate
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		Document:     doc,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	out := dto.UserFromEntity(user)
	return &out, nil
}

// GetByID obtém um usuário por ID.
func (uc *UserUseCase) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.UserFromEntity(user)
	return &out, nil
}

// List lista usuários, opcionalmente de um papel.
func (uc *UserUseCase) List(ctx context.Context, role string) ([]dto.UserResponse, error) {
	list, err := uc.repo.List(ctx, role)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(list))
	for i := range list {
		out = append(out, dto.UserFromEntity(&list[i]))
	}
	return out, nil
}

// UpdatePassword troca a senha.
func (uc *UserUseCase) UpdatePassword(ctx context.Context, id, password string) error {
	user, err := uc.get(ctx, id)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	user.UpdatedAt = time.Now()
	return uc.repo.Update(ctx, user)
}

// UpdateName troca o nome.
func (uc *UserUseCase) UpdateName(ctx context.Context, id, name string) (*dto.UserResponse, error) {
	user, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Name = strings.TrimSpace(name)
	user.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	out := dto.UserFromEntity(user)
	return &out, nil
}

// SetActive ativa ou desativa. O usuário não pode desativar a si mesmo.
func (uc *UserUseCase) SetActive(ctx context.Context, actorID, id string, active bool) (*dto.UserResponse, error) {
	if actorID == id && !active {
		return nil, domain.NewConflict("não é possível desativar o próprio usuário")
	}
	user, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Active = active
	user.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	out := dto.UserFromEntity(user)
	return &out, nil
}

// Delete exclui um usuário. O usuário não pode excluir a si mesmo.
func (uc *UserUseCase) Delete(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return domain.NewConflict("não é possível excluir o próprio usuário")
	}
	if _, err := uc.get(ctx, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id)
}

func (uc *UserUseCase) get(ctx context.Context, id string) (*entity.User, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}
