package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ceasa-api/internal/application/dto"
	"github.com/jhoicas/ceasa-api/internal/application/memstore"
	"github.com/jhoicas/ceasa-api/internal/application/usecase"
	"github.com/jhoicas/ceasa-api/internal/domain"
	"github.com/jhoicas/ceasa-api/internal/domain/entity"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

// ──────────────────────────────────────────────────────────────────────────────
// Produtos
// ──────────────────────────────────────────────────────────────────────────────

func newProducts() (*memstore.Store, *usecase.ProductUseCase) {
	store := memstore.New()
	repos := store.Repos()
	return store, usecase.NewProductUseCase(repos.Products, repos.Receipts)
}

func TestProduct_CreateGetUpdate(t *testing.T) {
	_, uc := newProducts()
	ctx := context.Background()

	created, err := uc.Create(ctx, dto.CreateProductRequest{Name: " Batata ", SalePrice: d("3.50"), MeasureUnit: entity.MeasureKg})
	require.NoError(t, err)
	assert.Equal(t, "Batata", created.Name)
	assert.True(t, created.Active)

	updated, err := uc.Update(ctx, created.ID, dto.UpdateProductRequest{SalePrice: ptr(d("3.90")), Active: ptr(false)})
	require.NoError(t, err)
	assert.True(t, updated.SalePrice.Equal(d("3.90")))
	assert.False(t, updated.Active)

	got, err := uc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Batata", got.Name)
	assert.False(t, got.Active)
}

func TestProduct_Validation(t *testing.T) {
	_, uc := newProducts()
	cases := []struct {
		name string
		in   dto.CreateProductRequest
	}{
		{"preço negativo", dto.CreateProductRequest{Name: "x", SalePrice: d("-1"), MeasureUnit: entity.MeasureKg}},
		{"estoque mínimo negativo", dto.CreateProductRequest{Name: "x", MinimumStock: d("-1"), MeasureUnit: entity.MeasureKg}},
		{"unidade desconhecida", dto.CreateProductRequest{Name: "x", MeasureUnit: "tonelada"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Create(context.Background(), tc.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestProduct_DeleteWithReceiptsIsConflict(t *testing.T) {
	store, uc := newProducts()
	ctx := context.Background()
	p, err := uc.Create(ctx, dto.CreateProductRequest{Name: "Cenoura", MeasureUnit: entity.MeasureKg})
	require.NoError(t, err)
	require.NoError(t, store.Repos().Receipts.Create(ctx, &entity.Receipt{ID: "r1", ProductID: p.ID, Quantity: d("1"), UnitCost: d("1")}))

	err = uc.Delete(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = uc.GetByID(ctx, p.ID)
	assert.NoError(t, err)
}

func TestProduct_DeleteAndList(t *testing.T) {
	_, uc := newProducts()
	ctx := context.Background()
	for _, name := range []string{"Chuchu", "Abobrinha", "Berinjela"} {
		_, err := uc.Create(ctx, dto.CreateProductRequest{Name: name, MeasureUnit: entity.MeasureKg})
		require.NoError(t, err)
	}

	list, err := uc.List(ctx, dto.ProductFilterRequest{PageRequest: dto.PageRequest{Limit: 2}})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "Abobrinha", list.Items[0].Name)
	assert.Equal(t, 3, list.Page.Total)

	require.NoError(t, uc.Delete(ctx, list.Items[0].ID))
	_, err = uc.GetByID(ctx, list.Items[0].ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, uc.Delete(ctx, "nao-existe"), domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Clientes
// ──────────────────────────────────────────────────────────────────────────────

func newCustomers() (*memstore.Store, *usecase.CustomerUseCase) {
	store := memstore.New()
	repos := store.Repos()
	return store, usecase.NewCustomerUseCase(repos.Customers, repos.Sales)
}

func validCustomer(doc string) dto.CreateCustomerRequest {
	return dto.CreateCustomerRequest{Name: "Sacolão do Zé", Document: doc, Phone1: "61 3333-4444", Email: "ZE@Sacolao.com "}
}

func TestCustomer_CreateNormalizes(t *testing.T) {
	_, uc := newCustomers()

	got, err := uc.Create(context.Background(), validCustomer("12.345.678/0001-99"))
	require.NoError(t, err)
	assert.Equal(t, "12345678000199", got.Document)
	assert.Equal(t, "ze@sacolao.com", got.Email)
}

func TestCustomer_DocumentRules(t *testing.T) {
	_, uc := newCustomers()
	ctx := context.Background()
	first, err := uc.Create(ctx, validCustomer("123.456.789-09"))
	require.NoError(t, err)

	_, err = uc.Create(ctx, validCustomer("12345678909"))
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Create(ctx, validCustomer("123"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Update(ctx, first.ID, dto.UpdateCustomerRequest{Document: ptr("123.456.789-09"), Name: ptr("Zé")})
	assert.NoError(t, err, "o próprio documento não conflita")
}

func TestCustomer_DeleteWithSalesIsConflict(t *testing.T) {
	store, uc := newCustomers()
	ctx := context.Background()
	c, err := uc.Create(ctx, validCustomer("12345678909"))
	require.NoError(t, err)
	require.NoError(t, store.Repos().Sales.Create(ctx, &entity.Sale{ID: "s1", CustomerID: &c.ID}))

	assert.ErrorIs(t, uc.Delete(ctx, c.ID), domain.ErrConflict)

	other, err := uc.Create(ctx, validCustomer("98765432100"))
	require.NoError(t, err)
	assert.NoError(t, uc.Delete(ctx, other.ID))
}

// ──────────────────────────────────────────────────────────────────────────────
// Usuários
// ──────────────────────────────────────────────────────────────────────────────

func TestUser_CreateEmployee(t *testing.T) {
	store := memstore.New()
	uc := usecase.NewUserUseCase(store.Users())
	ctx := context.Background()

	u, err := uc.CreateEmployee(ctx, dto.CreateEmployeeRequest{Name: "Ana", Email: "Ana@Banca.com", Password: "segredo1"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleEmployee, u.Role)
	assert.Equal(t, "ana@banca.com", u.Email)

	stored, err := store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "segredo1", stored.PasswordHash)

	_, err = uc.CreateEmployee(ctx, dto.CreateEmployeeRequest{Name: "Outra", Email: "ana@banca.com", Password: "segredo2"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	_, err = uc.Create(ctx, dto.CreateEmployeeRequest{Name: "X", Email: "x@banca.com", Password: "segredo3"}, "gerente")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUser_SelfProtection(t *testing.T) {
	store := memstore.New()
	uc := usecase.NewUserUseCase(store.Users())
	ctx := context.Background()
	admin, err := uc.Create(ctx, dto.CreateEmployeeRequest{Name: "Chefe", Email: "chefe@banca.com", Password: "segredo1"}, entity.RoleAdmin)
	require.NoError(t, err)
	emp, err := uc.CreateEmployee(ctx, dto.CreateEmployeeRequest{Name: "Ana", Email: "ana@banca.com", Password: "segredo1"})
	require.NoError(t, err)

	_, err = uc.SetActive(ctx, admin.ID, admin.ID, false)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.ErrorIs(t, uc.Delete(ctx, admin.ID, admin.ID), domain.ErrConflict)

	off, err := uc.SetActive(ctx, admin.ID, emp.ID, false)
	require.NoError(t, err)
	assert.False(t, off.Active)

	employees, err := uc.List(ctx, entity.RoleEmployee)
	require.NoError(t, err)
	assert.Len(t, employees, 1)

	require.NoError(t, uc.Delete(ctx, admin.ID, emp.ID))
	_, err = uc.GetByID(ctx, emp.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
