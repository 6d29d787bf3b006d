package service

import "github.com/japama/watercontract/internal/repo"

// UserProfile é a visão pública do usuário; nunca inclui o hash.
type UserProfile struct {
	ID         int64             `json:"id"`
	Name       string            `json:"name"`
	Lastname   string            `json:"lastname"`
	Email      string            `json:"email"`
	Username   string            `json:"username"`
	Role       repo.Role         `json:"role"`
	IsVerified bool              `json:"is_verified"`
	State      repo.AccountState `json:"state"`
}

// NewUserProfile projeta o registro na visão pública.
func NewUserProfile(u repo.User) UserProfile {
	return UserProfile{
		ID:         u.ID,
		Name:       u.Name,
		Lastname:   u.Lastname,
		Email:      u.Email,
		Username:   u.Username,
		Role:       u.Role,
		IsVerified: u.IsVerified,
		State:      u.State(),
	}
}
