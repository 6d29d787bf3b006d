package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/japama/watercontract/internal/apperr"
	"github.com/japama/watercontract/internal/auth"
	"github.com/japama/watercontract/internal/repo"
	"github.com/japama/watercontract/internal/service"
)

type contextKey string

const (
	ContextKeyUserID contextKey = "user_id"
	ContextKeyRole   contextKey = "role"
	ContextKeyClaims contextKey = "claims"
)

// Authenticator valida o token de sessão (assinatura, expiração e revogação).
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.SessionClaims, error)
}

// Auth exige "Authorization: Bearer <token>" e injeta as claims no contexto.
func Auth(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				writeError(w, http.StatusUnauthorized, "AUTH", "No token provided", nil)
				return
			}

			claims, err := authn.Authenticate(r.Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				if apperr.KindOf(err) != apperr.KindAuthentication {
					log.Error().Err(err).Msg("falha ao validar sessão")
				}
				writeAppError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUserID, claims.UserID)
			ctx = context.WithValue(ctx, ContextKeyRole, repo.Role(claims.Role))
			ctx = context.WithValue(ctx, ContextKeyClaims, claims)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID recupera o id do titular da sessão.
func UserID(ctx context.Context) int64 {
	val, _ := ctx.Value(ContextKeyUserID).(int64)
	return val
}

// Role recupera o papel do titular da sessão.
func Role(ctx context.Context) repo.Role {
	val, _ := ctx.Value(ContextKeyRole).(repo.Role)
	return val
}

// Claims recupera as claims completas (logout precisa do jti).
func Claims(ctx context.Context) *auth.SessionClaims {
	val, _ := ctx.Value(ContextKeyClaims).(*auth.SessionClaims)
	return val
}

// AuthorizedRoles libera apenas os papéis informados; deve vir depois de Auth.
func AuthorizedRoles(roles ...repo.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := Role(r.Context())
			if role == "" {
				writeError(w, http.StatusUnauthorized, "AUTH", "Unauthorized - No Role Found", nil)
				return
			}
			if err := service.Permit(role, roles...); err != nil {
				writeAppError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
