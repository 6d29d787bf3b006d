package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japama/watercontract/internal/auth"
	"github.com/japama/watercontract/internal/repo"
	"github.com/japama/watercontract/internal/service"
)

type stubAuthenticator struct {
	claims *auth.SessionClaims
	err    error
	got    string
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (*auth.SessionClaims, error) {
	s.got = token
	return s.claims, s.err
}

type envelope struct {
	Data  any `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func TestAuth(t *testing.T) {
	t.Run("Should reject missing or malformed headers before the handler", func(t *testing.T) {
		authn := &stubAuthenticator{}
		called := false
		h := Auth(authn)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

		for _, header := range []string{"", "Token abc", "Bearer ", "Bearer"} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
			assert.Equal(t, "AUTH", decode(t, rec).Error.Code)
		}
		assert.False(t, called)
	})

	t.Run("Should map revoked sessions to 401", func(t *testing.T) {
		authn := &stubAuthenticator{err: service.ErrSessionRevoked}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer tok")
		rec := httptest.NewRecorder()
		Auth(authn)(http.HandlerFunc(okHandler)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Session has been closed", decode(t, rec).Error.Message)
	})

	t.Run("Should hide store failures behind 500", func(t *testing.T) {
		authn := &stubAuthenticator{err: service.ErrSessionStore.Wrap(errors.New("dial tcp"))}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer tok")
		rec := httptest.NewRecorder()
		Auth(authn)(http.HandlerFunc(okHandler)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "internal error", decode(t, rec).Error.Message)
	})

	t.Run("Should inject claims", func(t *testing.T) {
		claims := &auth.SessionClaims{UserID: 7, Role: "cobrador"}
		authn := &stubAuthenticator{claims: claims}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "bearer tok")
		rec := httptest.NewRecorder()

		Auth(authn)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, int64(7), UserID(r.Context()))
			assert.Equal(t, repo.RoleCobrador, Role(r.Context()))
			assert.Same(t, claims, Claims(r.Context()))
			w.WriteHeader(http.StatusNoContent)
		})).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "tok", authn.got)
	})
}

func TestAuthorizedRoles(t *testing.T) {
	authn := &stubAuthenticator{claims: &auth.SessionClaims{UserID: 3, Role: "inspector"}}
	h := Auth(authn)(AuthorizedRoles(repo.RoleAdmin, repo.RoleCobrador)(http.HandlerFunc(okHandler)))

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)
	assert.Equal(t, "inspector", env.Error.Details["your_role"])
	assert.Equal(t, []any{"admin", "cobrador"}, env.Error.Details["required_roles"])

	authn.claims.Role = "admin"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	AuthorizedRoles(repo.RoleAdmin)(http.HandlerFunc(okHandler)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type recordingObserver struct {
	route  string
	method string
	status int
}

func (o *recordingObserver) ObserveHTTP(route, method string, status int, _ time.Duration) {
	o.route, o.method, o.status = route, method, status
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	obs := &recordingObserver{}
	r := chi.NewRouter()
	r.Use(Metrics(obs))
	r.Get("/api/houses/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/houses/42", nil))

	assert.Equal(t, "/api/houses/{id}", obs.route)
	assert.Equal(t, http.MethodGet, obs.method)
	assert.Equal(t, http.StatusNotFound, obs.status)
}

func TestIPRateLimit(t *testing.T) {
	h := IPRateLimit(NewRateLimiter(1, 1))(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.Header.Set("X-Real-IP", "10.0.0.1")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMIT", decode(t, rec).Error.Code)

	other := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	other.Header.Set("X-Real-IP", "10.0.0.2")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRecover(t *testing.T) {
	rec := httptest.NewRecorder()
	Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL", decode(t, rec).Error.Code)
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"http://localhost:3000", "*.japama.gob.mx"})(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodOptions, "/api/houses", nil)
	req.Header.Set("Origin", "https://admin.japama.gob.mx")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://admin.japama.gob.mx", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/houses", nil)
	req.Header.Set("Origin", "https://japama.gob.mx")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
