package usecase

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/jhoicas/ceasa-api/internal/application/dto"
	"github.com/jhoicas/ceasa-api/internal/domain"
	"github.com/jhoicas/ceasa-api/internal/domain/entity"
	"github.com/jhoicas/ceasa-api/internal/domain/repository"
)

// CustomerUseCase casos de uso CRUD de clientes.
type CustomerUseCase struct {
	customers repository.CustomerRepository
	sales     repository.SaleRepository
}

// NewCustomerUseCase constrói o caso de uso.
func NewCustomerUseCase(customers repository.CustomerRepository, sales repository.SaleRepository) *CustomerUseCase {
	return &CustomerUseCase{customers: customers, sales: sales}
}

// NormalizeDocument mantém só os dígitos do CPF/CNPJ.
func NormalizeDocument(doc string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, doc)
}

func validDocument(doc string) bool {
	return len(doc) == 11 || len(doc) == 14
}

// Create cadastra um cliente. Documento duplicado devolve ErrDuplicate.
func (uc *CustomerUseCase) Create(ctx context.Context, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	doc := NormalizeDocument(in.Document)
	if !validDocument(doc) {
		return nil, domain.NewValidation("document", "CPF deve ter 11 dígitos e CNPJ 14")
	}
	if err := uc.ensureDocumentFree(ctx, doc, ""); err != nil {
		return nil, err
	}
	now := time.Now()
	c := &entity.Customer{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(in.Name),
		TradeName: in.TradeName,
		Document:  doc,
		Address:   in.Address,
		Reference: in.Reference,
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Phone1:    in.Phone1,
		Phone2:    in.Phone2,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.customers.Create(ctx, c); err != nil {
		return nil, err
	}
	out := dto.CustomerFromEntity(c)
	return &out, nil
}

// GetByID obtém um cliente por ID.
func (uc *CustomerUseCase) GetByID(ctx context.Context, id string) (*dto.CustomerResponse, error) {
	c, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.CustomerFromEntity(c)
	return &out, nil
}

// Update altera os campos informados.
func (uc *CustomerUseCase) Update(ctx context.Context, id string, in dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	c, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Document != nil {
		doc := NormalizeDocument(*in.Document)
		if !validDocument(doc) {
			return nil, domain.NewValidation("document", "CPF deve ter 11 dígitos e CNPJ 14")
		}
		if err := uc.ensureDocumentFree(ctx, doc, c.ID); err != nil {
			return nil, err
		}
		c.Document = doc
	}
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.TradeName != nil {
		c.TradeName = *in.TradeName
	}
	if in.Address != nil {
		c.Address = *in.Address
	}
	if in.Reference != nil {
		c.Reference = *in.Reference
	}
	if in.Email != nil {
		c.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Phone1 != nil {
		c.Phone1 = *in.Phone1
	}
	if in.Phone2 != nil {
		c.Phone2 = *in.Phone2
	}
	if in.Active != nil {
		c.Active = *in.Active
	}
	c.UpdatedAt = time.Now()
	if err := uc.customers.Update(ctx, c); err != nil {
		return nil, err
	}
	out := dto.CustomerFromEntity(c)
	return &out, nil
}

// List lista clientes por nome com paginação.
func (uc *CustomerUseCase) List(ctx context.Context, in dto.CustomerFilterRequest) (*dto.CustomerListResponse, error) {
	in.DefaultPage()
	list, total, err := uc.customers.List(ctx, repository.CustomerFilter{
		Search:     in.Search,
		ActiveOnly: in.ActiveOnly,
		Limit:      in.Limit,
		Offset:     in.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.CustomerResponse, 0, len(list))
	for i := range list {
		items = append(items, dto.CustomerFromEntity(&list[i]))
	}
	return &dto.CustomerListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}, nil
}

// Delete exclui um cliente sem vendas; com vendas, o cliente deve ser desativado.
func (uc *CustomerUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.get(ctx, id); err != nil {
		return err
	}
	_, n, err := uc.sales.List(ctx, repository.SaleFilter{CustomerID: id, Limit: 1})
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.NewConflict("cliente possui %d venda(s); desative-o em vez de excluir", n)
	}
	return uc.customers.Delete(ctx, id)
}

func (uc *CustomerUseCase) get(ctx context.Context, id string) (*entity.Customer, error) {
	c, err := uc.customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (uc *CustomerUseCase) ensureDocumentFree(ctx context.Context, doc, selfID string) error {
	existing, err := uc.customers.GetByDocument(ctx, doc)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return domain.ErrDuplicate
	}
	return nil
}
