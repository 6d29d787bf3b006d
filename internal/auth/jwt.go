package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// AudienceSession identifica tokens de sessão.
	AudienceSession = "session"
	// AudienceEmailVerification identifica tokens do link de verificação.
	AudienceEmailVerification = "email-verification"

	purposeEmailVerification = "email-verification"
)

var (
	// ErrTokenInvalid cobre assinatura, formato, audience ou propósito incorretos.
	ErrTokenInvalid = errors.New("token inválido")
	// ErrTokenExpired indica token bem formado porém vencido.
	ErrTokenExpired = errors.New("token expirado")
)

// SessionClaims representa as informações presentes em um token de sessão.
type SessionClaims struct {
	UserID int64  `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// VerificationClaims representa o token enviado no link de verificação.
type VerificationClaims struct {
	UserID  int64  `json:"uid"`
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// JWTManager encapsula geração e validação de tokens.
type JWTManager struct {
	secret          []byte
	sessionTTL      time.Duration
	verificationTTL time.Duration
	now             func() time.Time
}

// NewJWTManager cria o gerenciador com segredo e TTLs configurados.
func NewJWTManager(secret string, sessionTTL, verificationTTL time.Duration) *JWTManager {
	return &JWTManager{
		secret:          []byte(secret),
		sessionTTL:      sessionTTL,
		verificationTTL: verificationTTL,
		now:             time.Now,
	}
}

// SessionTTL expõe a validade do token de sessão.
func (m *JWTManager) SessionTTL() time.Duration {
	return m.sessionTTL
}

// IssueSession cria um JWT HS256 de sessão com jti único.
func (m *JWTManager) IssueSession(userID int64, role string) (token string, claims *SessionClaims, err error) {
	now := m.now().UTC()
	claims = &SessionClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Audience:  jwt.ClaimStrings{AudienceSession},
			ExpiresAt: jwt.NewNumericDate(now.Add(m.sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, err
	}
	return token, claims, nil
}

// ParseSession verifica assinatura, expiração e audience de sessão.
func (m *JWTManager) ParseSession(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := m.parse(tokenString, AudienceSession, claims); err != nil {
		return nil, err
	}
	if claims.UserID <= 0 || claims.ID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// IssueVerification cria o token do link de verificação de e-mail.
func (m *JWTManager) IssueVerification(userID int64, email string) (string, time.Time, error) {
	now := m.now().UTC()
	expires := now.Add(m.verificationTTL)
	claims := VerificationClaims{
		UserID:  userID,
		Email:   email,
		Purpose: purposeEmailVerification,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Audience:  jwt.ClaimStrings{AudienceEmailVerification},
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// ParseVerification valida o token de verificação e seu propósito.
func (m *JWTManager) ParseVerification(tokenString string) (*VerificationClaims, error) {
	claims := &VerificationClaims{}
	if err := m.parse(tokenString, AudienceEmailVerification, claims); err != nil {
		return nil, err
	}
	if claims.Purpose != purposeEmailVerification || claims.UserID <= 0 {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (m *JWTManager) parse(tokenString, audience string, claims jwt.Claims) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)

	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrTokenInvalid
	}
	if !token.Valid {
		return ErrTokenInvalid
	}
	return nil
}
