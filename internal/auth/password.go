package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"

	argon2idPrefix = "$argon2id$"
)

// ErrPasswordTooLong indica senha acima do limite do bcrypt.
var ErrPasswordTooLong = errors.New("senha excede 72 bytes")

var params = &argon2id.Params{
	Memory:      64 * 1024, // 64 MB
	Iterations:  3,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// PasswordHasher gera hashes no algoritmo configurado e verifica ambos os formatos.
type PasswordHasher struct {
	algorithm  string
	bcryptCost int

	dummyOnce sync.Once
	dummy     string
}

// NewPasswordHasher valida o algoritmo e o custo do bcrypt.
func NewPasswordHasher(algorithm string, bcryptCost int) (*PasswordHasher, error) {
	switch algorithm {
	case AlgorithmBcrypt:
		if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
			return nil, fmt.Errorf("custo bcrypt inválido: %d", bcryptCost)
		}
	case AlgorithmArgon2id:
	default:
		return nil, fmt.Errorf("algoritmo de senha não suportado: %s", algorithm)
	}
	return &PasswordHasher{algorithm: algorithm, bcryptCost: bcryptCost}, nil
}

// Hash gera o hash salgado da senha.
func (h *PasswordHasher) Hash(password string) (string, error) {
	if h.algorithm == AlgorithmArgon2id {
		return argon2id.CreateHash(password, params)
	}
	if len(password) > 72 {
		return "", ErrPasswordTooLong
	}
	out, err := bcrypt.GenerateFromPassword([]byte(password), h.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Verify compara a senha com o hash, detectando o algoritmo pelo prefixo.
// Divergência de senha retorna (false, nil); hash corrompido retorna erro.
func (h *PasswordHasher) Verify(password, encodedHash string) (bool, error) {
	if strings.HasPrefix(encodedHash, argon2idPrefix) {
		return argon2id.ComparePasswordAndHash(password, encodedHash)
	}

	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}

// VerifyDummy consome o mesmo tempo de uma verificação real. Usado quando o
// e-mail não existe, para não revelar a existência da conta pelo tempo de resposta.
func (h *PasswordHasher) VerifyDummy(password string) {
	h.dummyOnce.Do(func() {
		h.dummy, _ = h.Hash("japama-dummy-password")
	})
	if h.dummy != "" {
		_, _ = h.Verify(password, h.dummy)
	}
}
