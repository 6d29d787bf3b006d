package verification

import (
	"errors"
	"net/url"
	"strings"

	"github.com/japama/watercontract/internal/auth"
	"github.com/japama/watercontract/internal/repo"
)

const verifyEmailPath = "/api/auth/verify-email"

// LinkIssuer emite tokens assinados de verificação e monta o link.
type LinkIssuer struct {
	jwt         *auth.JWTManager
	frontendURL string
}

// NewLinkIssuer cria o emissor de links.
func NewLinkIssuer(jwtManager *auth.JWTManager, frontendURL string) *LinkIssuer {
	return &LinkIssuer{jwt: jwtManager, frontendURL: strings.TrimRight(frontendURL, "/")}
}

// Issue gera o token do usuário e o link de verificação.
func (l *LinkIssuer) Issue(user repo.User) (Artifact, error) {
	token, expires, err := l.jwt.IssueVerification(user.ID, user.Email)
	if err != nil {
		return Artifact{}, err
	}
	link := l.frontendURL + verifyEmailPath + "?token=" + url.QueryEscape(token)
	return Artifact{Mode: ModeLink, Token: token, Link: link, ExpiresAt: expires}, nil
}

// Parse valida o token e devolve o id do usuário e o e-mail embutido.
func (l *LinkIssuer) Parse(token string) (int64, string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, "", ErrTokenRequired
	}
	claims, err := l.jwt.ParseVerification(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return 0, "", ErrTokenExpired
		}
		return 0, "", ErrTokenInvalid
	}
	return claims.UserID, claims.Email, nil
}

// Matches confere o e-mail do token com o e-mail atual da conta.
func Matches(tokenEmail, currentEmail string) error {
	if !strings.EqualFold(strings.TrimSpace(tokenEmail), strings.TrimSpace(currentEmail)) {
		return ErrEmailMismatch
	}
	return nil
}
