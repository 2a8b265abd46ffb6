package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ceasa-api/internal/application/dto"
	"github.com/jhoicas/ceasa-api/internal/domain"
	"github.com/jhoicas/ceasa-api/internal/domain/entity"
	"github.com/jhoicas/ceasa-api/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD de produtos. Estoque e custo são mantidos pelo razão FIFO.
type ProductUseCase struct {
	products repository.ProductRepository
	receipts repository.ReceiptRepository
}

// NewProductUseCase constrói o caso de uso.
func NewProductUseCase(products repository.ProductRepository, receipts repository.ReceiptRepository) *ProductUseCase {
	return &ProductUseCase{products: products, receipts: receipts}
}

// Create cadastra um produto ativo.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := validateProductValues(&in.SalePrice, &in.MinimumStock); err != nil {
		return nil, err
	}
	if !entity.ValidMeasure(in.MeasureUnit) {
		return nil, domain.NewValidation("measure_unit", "unidade de medida inválida: %q", in.MeasureUnit)
	}
	now := time.Now()
	product := &entity.Product{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		SalePrice:    in.SalePrice,
		MeasureUnit:  in.MeasureUnit,
		MinimumStock: in.MinimumStock,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.products.Create(ctx, product); err != nil {
		return nil, err
	}
	out := dto.ProductFromEntity(product)
	return &out, nil
}

// GetByID obtém um produto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.ProductFromEntity(product)
	return &out, nil
}

// Update altera os campos informados.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateProductValues(in.SalePrice, in.MinimumStock); err != nil {
		return nil, err
	}
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.SalePrice != nil {
		product.SalePrice = *in.SalePrice
	}
	if in.MeasureUnit != nil {
		if !entity.ValidMeasure(*in.MeasureUnit) {
			return nil, domain.NewValidation("measure_unit", "unidade de medida inválida: %q", *in.MeasureUnit)
		}
		product.MeasureUnit = *in.MeasureUnit
	}
	if in.MinimumStock != nil {
		product.MinimumStock = *in.MinimumStock
	}
	if in.Active != nil {
		product.Active = *in.Active
	}
	product.UpdatedAt = time.Now()
	if err := uc.products.Update(ctx, product); err != nil {
		return nil, err
	}
	out := dto.ProductFromEntity(product)
	return &out, nil
}

// List lista produtos por nome com paginação.
func (uc *ProductUseCase) List(ctx context.Context, in dto.ProductFilterRequest) (*dto.ProductListResponse, error) {
	in.DefaultPage()
	list, total, err := uc.products.List(ctx, repository.ProductFilter{
		Search:     in.Search,
		ActiveOnly: in.ActiveOnly,
		Limit:      in.Limit,
		Offset:     in.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for i := range list {
		items = append(items, dto.ProductFromEntity(&list[i]))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}, nil
}

// Delete exclui um produto sem histórico de entradas; com histórico, o produto deve ser desativado.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.get(ctx, id); err != nil {
		return err
	}
	n, err := uc.receipts.CountByProduct(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.NewConflict("produto possui %d entrada(s) de estoque; desative-o em vez de excluir", n)
	}
	return uc.products.Delete(ctx, id)
}

func (uc *ProductUseCase) get(ctx context.Context, id string) (*entity.Product, error) {
	product, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

func validateProductValues(price, minimum *decimal.Decimal) error {
	if price != nil && price.IsNegative() {
		return domain.NewValidation("sale_price", "preço de venda não pode ser negativo")
	}
	if minimum != nil && minimum.IsNegative() {
		return domain.NewValidation("minimum_stock", "estoque mínimo não pode ser negativo")
	}
	return nil
}
