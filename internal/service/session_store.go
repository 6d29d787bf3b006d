package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/redis/go-redis/v9"
)

const (
	revokedSessionPrefix = "session:revoked:"
	resendCooldownPrefix = "verification:resend:"

	PasskeyRegisterPrefix = "webauthn:register:"
	PasskeyLoginPrefix    = "webauthn:login:"
	passkeySessionTTL     = 5 * time.Minute
)

// ErrCeremonyNotFound indica cerimônia WebAuthn inexistente ou expirada.
var ErrCeremonyNotFound = errors.New("sessão não encontrada")

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	GetDel(ctx context.Context, key string) *redis.StringCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// SessionStore guarda estado efêmero no Redis: denylist de sessões
// encerradas, janela de reenvio e cerimônias WebAuthn.
type SessionStore struct {
	redis redisCommander
	now   func() time.Time
}

// NewSessionStore cria o store sobre um cliente Redis.
func NewSessionStore(client redisCommander) *SessionStore {
	return &SessionStore{redis: client, now: time.Now}
}

// Revoke marca o jti como revogado até a expiração natural do token.
func (s *SessionStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.redis.Set(ctx, revokedSessionPrefix+jti, "1", ttl).Err()
}

// IsRevoked consulta a denylist.
func (s *SessionStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.redis.Exists(ctx, revokedSessionPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AcquireResendSlot reserva a janela de reenvio; false se ainda em cooldown.
func (s *SessionStore) AcquireResendSlot(ctx context.Context, userID int64, cooldown time.Duration) (bool, error) {
	if cooldown <= 0 {
		return true, nil
	}
	return s.redis.SetNX(ctx, resendCooldownPrefix+strconv.FormatInt(userID, 10), "1", cooldown).Result()
}

// ReleaseResendSlot libera a janela quando nada chegou ao usuário.
func (s *SessionStore) ReleaseResendSlot(ctx context.Context, userID int64) error {
	return s.redis.Del(ctx, resendCooldownPrefix+strconv.FormatInt(userID, 10)).Err()
}

type webauthnSessionEnvelope struct {
	Session *webauthn.SessionData `json:"session"`
	UserID  int64                 `json:"user_id"`
}

// StoreCeremony guarda os dados da cerimônia WebAuthn por 5 minutos.
func (s *SessionStore) StoreCeremony(ctx context.Context, prefix, sessionID string, data *webauthn.SessionData, userID int64) error {
	payload, err := json.Marshal(webauthnSessionEnvelope{Session: data, UserID: userID})
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, prefix+sessionID, payload, passkeySessionTTL).Err()
}

// ConsumeCeremony lê e remove a cerimônia; só pode ser usada uma vez.
func (s *SessionStore) ConsumeCeremony(ctx context.Context, prefix, sessionID string) (*webauthn.SessionData, int64, error) {
	raw, err := s.redis.GetDel(ctx, prefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, 0, ErrCeremonyNotFound
		}
		return nil, 0, err
	}

	var envelope webauthnSessionEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, 0, err
	}
	if envelope.Session == nil || envelope.UserID <= 0 {
		return nil, 0, ErrCeremonyNotFound
	}
	return envelope.Session, envelope.UserID, nil
}
