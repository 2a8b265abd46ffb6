package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unidades de medida aceitas para produtos e itens de venda.
const (
	MeasureKg      = "kg"
	MeasureUnidade = "unidade"
	MeasureLitro   = "litro"
	MeasureCaixa   = "caixa"
	MeasureSaco    = "saco"
	MeasureDuzia   = "duzia"
)

// ValidMeasure informa se a unidade de medida é conhecida.
func ValidMeasure(m string) bool {
	switch m {
	case MeasureKg, MeasureUnidade, MeasureLitro, MeasureCaixa, MeasureSaco, MeasureDuzia:
		return true
	}
	return false
}

// Product representa um produto vendido na banca.
type Product struct {
	ID           string
	Name         string
	Description  string
	SalePrice    decimal.Decimal
	MeasureUnit  string
	MinimumStock decimal.Decimal
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
