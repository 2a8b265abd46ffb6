package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation verifica se o erro é violação de restrição única (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isForeignKeyViolation verifica se o erro é violação de chave estrangeira (23503).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503" // foreign_key_violation
	}
	return false
}

// nullIfEmpty grava NULL para strings vazias em colunas opcionais.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// optionalID trata ponteiro para string vazia como NULL.
func optionalID(id *string) *string {
	if id == nil {
		return nil
	}
	return nullIfEmpty(*id)
}
