package http

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// requestError entrada HTTP malformada ou reprovada nas tags validate (400).
type requestError struct {
	code    string
	message string
	details any
}

func (e *requestError) Error() string { return e.message }

// bindBody decodifica o JSON e aplica as tags validate.
func bindBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return &requestError{code: "INVALID_BODY", message: "corpo inválido"}
	}
	return check(dst)
}

// bindQuery idem para a query string.
func bindQuery(c *fiber.Ctx, dst any) error {
	if err := c.QueryParser(dst); err != nil {
		return &requestError{code: "INVALID_PARAMS", message: "parâmetros de consulta inválidos"}
	}
	return check(dst)
}

func check(dst any) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return &requestError{code: "VALIDATION", message: err.Error()}
	}
	details := make(map[string]string, len(fields))
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		details[f.Namespace()] = f.Tag()
		names = append(names, f.Field())
	}
	return &requestError{code: "VALIDATION", message: "campos inválidos: " + strings.Join(names, ", "), details: details}
}
