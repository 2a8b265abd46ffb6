package http

import (
	"reflect"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// RegisterQueryDecoders ensina o QueryParser a ler datas e decimais.
// Datas sem hora ("2006-01-02") são interpretadas no fuso loc.
func RegisterQueryDecoders(loc *time.Location) {
	if loc == nil {
		loc = time.UTC
	}
	fiber.SetParserDecoder(fiber.ParserConfig{
		IgnoreUnknownKeys: true,
		ZeroEmpty:         true,
		ParserType: []fiber.ParserType{
			{Customtype: time.Time{}, Converter: timeConverter(loc)},
			{Customtype: decimal.Decimal{}, Converter: decimalConverter},
		},
	})
}

func timeConverter(loc *time.Location) func(string) reflect.Value {
	return func(s string) reflect.Value {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return reflect.ValueOf(t)
		}
		if t, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
			return reflect.ValueOf(t)
		}
		return reflect.Value{}
	}
}

func decimalConverter(s string) reflect.Value {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return reflect.Value{}
	}
	return reflect.ValueOf(v)
}

// endOfDay estende uma data sem hora até o último instante do dia.
func endOfDay(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	h, m, s := t.Clock()
	if h != 0 || m != 0 || s != 0 || t.Nanosecond() != 0 {
		return t
	}
	end := t.Add(24*time.Hour - time.Nanosecond)
	return &end
}
