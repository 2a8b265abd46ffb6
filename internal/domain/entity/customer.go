package entity

import "time"

// Customer representa um cliente (pessoa física ou jurídica).
type Customer struct {
	ID        string
	Name      string
	TradeName string
	Document  string // CPF ou CNPJ, único
	Address   string
	Reference string // ponto de referência
	Email     string
	Phone1    string
	Phone2    string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
