// Package verification emite e resgata os artefatos que provam a posse do
// e-mail: link assinado ou código de 6 dígitos. Cada implantação usa um só modo.
package verification

import (
	"fmt"
	"strings"
	"time"

	"github.com/japama/watercontract/internal/apperr"
)

// Mode seleciona a estratégia de verificação.
type Mode string

const (
	ModeLink Mode = "link"
	ModeCode Mode = "code"
)

// ParseMode converte o valor de configuração.
func ParseMode(v string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(v))) {
	case ModeLink:
		return ModeLink, nil
	case ModeCode:
		return ModeCode, nil
	default:
		return "", fmt.Errorf("modo de verificação desconhecido: %q", v)
	}
}

// Artifact é o que foi emitido para o usuário.
type Artifact struct {
	Mode      Mode
	Code      string
	Token     string
	Link      string
	ExpiresAt time.Time
}

var (
	ErrInvalidCode   = apperr.Validation("INVALID_CODE", "Invalid or expired verification code")
	ErrTokenInvalid  = apperr.Validation("TOKEN_INVALID", "Invalid verification token")
	ErrTokenExpired  = apperr.Validation("TOKEN_EXPIRED", "Verification token has expired")
	ErrEmailMismatch = apperr.Validation("EMAIL_MISMATCH", "Verification token does not match the current email")
	ErrTokenRequired = apperr.Validation("TOKEN_REQUIRED", "Verification token is required")
)
