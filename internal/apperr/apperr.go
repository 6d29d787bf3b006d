// Package apperr define a taxonomia de erros da aplicação e seu mapeamento
// para status HTTP. Serviços retornam *Error; a camada HTTP decide o status
// pelo Kind, nunca pelo texto da mensagem.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifica a falha.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindDependency
	KindRateLimit
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindDependency:
		return "dependency"
	case KindRateLimit:
		return "rate_limit"
	default:
		return "internal"
	}
}

// Error é o erro tipado devolvido pelos serviços.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is compara pelo Code, permitindo errors.Is contra os sentinelas mesmo
// quando o erro recebeu detalhes ou causa.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Code == "" {
		return false
	}
	return t.Code == e.Code
}

// WithDetails devolve cópia com detalhes anexados.
func (e *Error) WithDetails(details map[string]any) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// Wrap devolve cópia carregando a causa original.
func (e *Error) Wrap(err error) *Error {
	cp := *e
	cp.Err = err
	return &cp
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Validation(code, message string) *Error { return New(KindValidation, code, message) }

func Conflict(code, message string) *Error { return New(KindConflict, code, message) }

func Authentication(code, message string) *Error { return New(KindAuthentication, code, message) }

func Authorization(code, message string) *Error { return New(KindAuthorization, code, message) }

func NotFound(code, message string) *Error { return New(KindNotFound, code, message) }

func Dependency(code, message string) *Error { return New(KindDependency, code, message) }

func RateLimited(code, message string) *Error { return New(KindRateLimit, code, message) }

// As extrai o *Error da cadeia.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// KindOf devolve o Kind do erro; erros não tipados são internos.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus traduz o Kind em status HTTP.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// ResponseCode traduz o Kind no código do envelope JSON.
func ResponseCode(kind Kind) string {
	switch kind {
	case KindValidation:
		return "VALIDATION"
	case KindConflict:
		return "CONFLICT"
	case KindAuthentication:
		return "AUTH"
	case KindAuthorization:
		return "FORBIDDEN"
	case KindNotFound:
		return "NOT_FOUND"
	case KindRateLimit:
		return "RATE_LIMIT"
	default:
		return "INTERNAL"
	}
}
