package verification

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/japama/watercontract/internal/auth"
	"github.com/japama/watercontract/internal/repo"
)

var codePattern = regexp.MustCompile(`^[0-9]{6}$`)

// CodeStore é o subconjunto do repositório usado pelo emissor de códigos.
type CodeStore interface {
	DeleteVerificationCodes(ctx context.Context, userID int64) (int64, error)
	InsertVerificationCode(ctx context.Context, userID int64, code string, expiresAt time.Time) (repo.VerificationCode, error)
	ConsumeVerificationCode(ctx context.Context, userID int64, code string, now time.Time) (repo.VerificationCode, error)
}

// CodeIssuer emite e resgata códigos numéricos de uso único.
type CodeIssuer struct {
	ttl      time.Duration
	generate func() (string, error)
	now      func() time.Time
}

// NewCodeIssuer cria o emissor com a validade informada.
func NewCodeIssuer(ttl time.Duration) *CodeIssuer {
	return &CodeIssuer{ttl: ttl, generate: auth.GenerateCode, now: time.Now}
}

// TTL expõe a validade dos códigos.
func (c *CodeIssuer) TTL() time.Duration {
	return c.ttl
}

// Issue substitui códigos anteriores do usuário por um novo.
func (c *CodeIssuer) Issue(ctx context.Context, store CodeStore, userID int64) (Artifact, error) {
	code, err := c.generate()
	if err != nil {
		return Artifact{}, err
	}
	if _, err := store.DeleteVerificationCodes(ctx, userID); err != nil {
		return Artifact{}, err
	}
	vc, err := store.InsertVerificationCode(ctx, userID, code, c.now().UTC().Add(c.ttl))
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{Mode: ModeCode, Code: vc.Code, ExpiresAt: vc.ExpiresAt}, nil
}

// Redeem consome o código. Código malformado, inexistente, expirado ou já
// usado resultam no mesmo ErrInvalidCode.
func (c *CodeIssuer) Redeem(ctx context.Context, store CodeStore, userID int64, code string) error {
	if !codePattern.MatchString(code) {
		return ErrInvalidCode
	}
	if _, err := store.ConsumeVerificationCode(ctx, userID, code, c.now().UTC()); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrInvalidCode
		}
		return err
	}
	return nil
}
