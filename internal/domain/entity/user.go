package entity

import "time"

// Papéis válidos para User.
const (
	RoleAdmin    = "administrador"
	RoleEmployee = "funcionario"
)

// User representa um usuário do sistema.
type User struct {
	ID           string
	Name         string
	Email        string
	Document     string
	PasswordHash string // hash bcrypt, nunca em texto plano após persistir
	Role         string // administrador, funcionario
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
