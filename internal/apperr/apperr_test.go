package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errSample = Conflict("EMAIL_TAKEN", "Email already registered")

func TestIsMatchesByCode(t *testing.T) {
	withDetails := errSample.WithDetails(map[string]any{"field": "email"})
	wrapped := fmt.Errorf("register: %w", withDetails)

	assert.True(t, errors.Is(wrapped, errSample))
	assert.False(t, errors.Is(wrapped, Conflict("USERNAME_TAKEN", "Username already taken")))
	assert.Nil(t, errSample.Details, "WithDetails não deve alterar o sentinela")
}

func TestKindOfUntypedIsInternal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindConflict, KindOf(fmt.Errorf("x: %w", errSample)))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("smtp: connection refused")
	err := Dependency("DELIVERY_FAILURE", "Could not send verification email").Wrap(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestHTTPMapping(t *testing.T) {
	cases := map[Kind]struct {
		status int
		code   string
	}{
		KindValidation:     {http.StatusBadRequest, "VALIDATION"},
		KindConflict:       {http.StatusConflict, "CONFLICT"},
		KindAuthentication: {http.StatusUnauthorized, "AUTH"},
		KindAuthorization:  {http.StatusForbidden, "FORBIDDEN"},
		KindNotFound:       {http.StatusNotFound, "NOT_FOUND"},
		KindRateLimit:      {http.StatusTooManyRequests, "RATE_LIMIT"},
		KindDependency:     {http.StatusInternalServerError, "INTERNAL"},
		KindInternal:       {http.StatusInternalServerError, "INTERNAL"},
	}
	for kind, want := range cases {
		assert.Equal(t, want.status, HTTPStatus(kind), kind.String())
		assert.Equal(t, want.code, ResponseCode(kind), kind.String())
	}
}
