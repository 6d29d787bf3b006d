package util

import (
	"errors"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/japama/watercontract/internal/apperr"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	// Email valida o formato usado no cadastro.
	Email = validation.Match(emailPattern).Error("Invalid email format")
	// Password exige no mínimo 6 caracteres e no máximo MaxPasswordBytes bytes.
	Password = passwordRule{}
	// Required rejeita valores vazios.
	Required = validation.Required.Error("is required")
)

// MaxPasswordBytes é o limite de entrada do bcrypt.
const MaxPasswordBytes = 72

var passwordMinLength = validation.Length(6, 0).Error("Password must be at least 6 characters long")

type passwordRule struct{}

func (passwordRule) Validate(value any) error {
	if err := passwordMinLength.Validate(value); err != nil {
		return err
	}
	s, _ := value.(string)
	if len(s) > MaxPasswordBytes {
		return errors.New("Password must be at most 72 bytes long")
	}
	return nil
}

// NormalizeEmail aplica trim e minúsculas.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidationError converte erros do ozzo em apperr de validação com detalhes por campo.
func ValidationError(err error, message string) error {
	if err == nil {
		return nil
	}
	var fields validation.Errors
	if !errors.As(err, &fields) {
		return apperr.Validation("INVALID_INPUT", message).Wrap(err)
	}
	details := make(map[string]any, len(fields))
	for field, ferr := range fields {
		if ferr != nil {
			details[field] = ferr.Error()
		}
	}
	if message == "" {
		message = fields.Error()
	}
	return apperr.Validation("INVALID_INPUT", message).WithDetails(details)
}
