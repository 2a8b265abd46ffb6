package dto

import "time"

// CreateCustomerRequest entrada para cadastrar um cliente. Document é CPF ou CNPJ.
type CreateCustomerRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=200"`
	TradeName string `json:"trade_name" validate:"max=200"`
	Document  string `json:"document" validate:"required,min=11,max=18"`
	Address   string `json:"address" validate:"max=300"`
	Reference string `json:"reference" validate:"max=300"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone1    string `json:"phone1" validate:"required,min=8,max=20"`
	Phone2    string `json:"phone2" validate:"omitempty,max=20"`
}

// UpdateCustomerRequest atualização parcial de cliente.
type UpdateCustomerRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=200"`
	TradeName *string `json:"trade_name" validate:"omitempty,max=200"`
	Document  *string `json:"document" validate:"omitempty,min=11,max=18"`
	Address   *string `json:"address" validate:"omitempty,max=300"`
	Reference *string `json:"reference" validate:"omitempty,max=300"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone1    *string `json:"phone1" validate:"omitempty,min=8,max=20"`
	Phone2    *string `json:"phone2" validate:"omitempty,max=20"`
	Active    *bool   `json:"active"`
}

// CustomerFilterRequest filtros de GET /customers.
type CustomerFilterRequest struct {
	PageRequest
	Search     string `query:"search"`
	ActiveOnly bool   `query:"active_only"`
}

// CustomerResponse saída de um cliente.
type CustomerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TradeName string    `json:"trade_name,omitempty"`
	Document  string    `json:"document"`
	Address   string    `json:"address,omitempty"`
	Reference string    `json:"reference,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone1    string    `json:"phone1"`
	Phone2    string    `json:"phone2,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CustomerListResponse lista paginada de clientes.
type CustomerListResponse struct {
	Items []CustomerResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
