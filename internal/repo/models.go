package repo

import (
	"time"

	"github.com/google/uuid"
)

// Role é o papel fixo atribuído no cadastro.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleInspector Role = "inspector"
	RoleCobrador  Role = "cobrador"
)

// Roles lista o conjunto fechado de papéis.
var Roles = []Role{RoleAdmin, RoleInspector, RoleCobrador}

// Valid indica se o papel pertence ao conjunto fechado.
func (r Role) Valid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// AccountState deriva de is_verified.
type AccountState string

const (
	StatePendingVerification AccountState = "pending_verification"
	StateVerified            AccountState = "verified"
)

// User representa um funcionário da JAPAMA.
type User struct {
	ID           int64
	Name         string
	Lastname     string
	Email        string
	Username     string
	PasswordHash string
	Role         Role
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// State devolve o estado da conta.
func (u User) State() AccountState {
	if u.IsVerified {
		return StateVerified
	}
	return StatePendingVerification
}

// CreateUserParams agrega campos do INSERT em users.
type CreateUserParams struct {
	Name         string
	Lastname     string
	Email        string
	Username     string
	PasswordHash string
	Role         Role
	IsVerified   bool
}

// UpdateProfileParams carrega apenas campos alteráveis; nil mantém o valor.
type UpdateProfileParams struct {
	Name     *string
	Lastname *string
	Username *string
}

// VerificationCode modela a tabela verification_codes.
type VerificationCode struct {
	ID        int64
	UserID    int64
	Code      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Passkey modela credenciais WebAuthn.
type Passkey struct {
	ID           uuid.UUID
	UserID       int64
	CredentialID []byte
	PublicKey    []byte
	SignCount    uint32
	Transports   []string
	AAGUID       []byte
	Nickname     *string
	Cloned       bool
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// CreatePasskeyParams agrega campos do INSERT em webauthn_credentials.
type CreatePasskeyParams struct {
	UserID       int64
	CredentialID []byte
	PublicKey    []byte
	SignCount    uint32
	Transports   []string
	AAGUID       []byte
	Nickname     *string
	Cloned       bool
}
