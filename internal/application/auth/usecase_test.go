package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ceasa-api/internal/application/auth"
	"github.com/jhoicas/ceasa-api/internal/application/dto"
	"github.com/jhoicas/ceasa-api/internal/application/memstore"
	"github.com/jhoicas/ceasa-api/internal/application/usecase"
	"github.com/jhoicas/ceasa-api/internal/domain"
	"github.com/jhoicas/ceasa-api/internal/domain/entity"
	"github.com/jhoicas/ceasa-api/pkg/jwt"
)

const secret = "segredo-de-teste"

func setup(t *testing.T) (*auth.AuthUseCase, *usecase.UserUseCase, string) {
	t.Helper()
	store := memstore.New()
	users := usecase.NewUserUseCase(store.Users())
	u, err := users.CreateEmployee(context.Background(), dto.CreateEmployeeRequest{Name: "Ana", Email: "ana@banca.com", Password: "segredo1"})
	require.NoError(t, err)
	uc := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: secret, ExpMinutes: 10, Issuer: "ceasa-api"})
	return uc, users, u.ID
}

func TestLogin_IssuesTokenWithRole(t *testing.T) {
	uc, _, id := setup(t)

	out, err := uc.Login(context.Background(), dto.LoginRequest{Email: "ANA@banca.com", Password: "segredo1"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", out.TokenType)
	assert.Equal(t, id, out.User.ID)

	userID, role, err := jwt.Parse(secret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, id, userID)
	assert.Equal(t, entity.RoleEmployee, role)
}

func TestLogin_Rejections(t *testing.T) {
	uc, users, id := setup(t)
	ctx := context.Background()

	_, err := uc.Login(ctx, dto.LoginRequest{Email: "ana@banca.com", Password: "errada"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "ninguem@banca.com", Password: "segredo1"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = users.SetActive(ctx, "admin", id, false)
	require.NoError(t, err)
	_, err = uc.Login(ctx, dto.LoginRequest{Email: "ana@banca.com", Password: "segredo1"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = uc.Me(ctx, id)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestMe(t *testing.T) {
	uc, _, id := setup(t)

	me, err := uc.Me(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Ana", me.Name)

	_, err = uc.Me(context.Background(), "sumiu")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
