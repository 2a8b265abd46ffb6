package dto

import "time"

// CreateEmployeeRequest entrada para cadastrar um funcionário (senha em texto, o caso de uso aplica bcrypt).
type CreateEmployeeRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Document string `json:"document" validate:"omitempty,min=11,max=18"`
	Password string `json:"password" validate:"required,min=6"`
}

// UpdatePasswordRequest troca de senha de um usuário.
type UpdatePasswordRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}

// UpdateNameRequest troca do nome de um usuário.
type UpdateNameRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

// UpdateActiveRequest ativa ou desativa um usuário.
type UpdateActiveRequest struct {
	Active bool `json:"active"`
}

// UserResponse saída de um usuário (sem senha).
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Document  string    `json:"document,omitempty"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginRequest entrada de login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse token JWT e o usuário autenticado.
type LoginResponse struct {
	Token     string       `json:"access_token"`
	TokenType string       `json:"token_type"`
	User      UserResponse `json:"user"`
}
