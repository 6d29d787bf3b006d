package service

import (
	"context"
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/japama/watercontract/internal/repo"
	"github.com/japama/watercontract/internal/util"
)

type userStore interface {
	GetUserByID(ctx context.Context, id int64) (repo.User, error)
	GetUserByUsername(ctx context.Context, username string) (repo.User, error)
	ListUsers(ctx context.Context) ([]repo.User, error)
	UpdateUserProfile(ctx context.Context, id int64, arg repo.UpdateProfileParams) (repo.User, error)
}

// UserService cobre consulta e edição de perfis.
type UserService struct {
	store userStore
}

// NewUserService cria o serviço sobre as consultas de usuários.
func NewUserService(q *repo.Queries) *UserService {
	return &UserService{store: q}
}

// List retorna todos os usuários.
func (s *UserService) List(ctx context.Context) ([]UserProfile, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserProfile, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserProfile(u))
	}
	return out, nil
}

// Get retorna um usuário pelo id.
func (s *UserService) Get(ctx context.Context, id int64) (UserProfile, error) {
	u, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return UserProfile{}, ErrUserNotFound
		}
		return UserProfile{}, err
	}
	return NewUserProfile(u), nil
}

// ProfileInput carrega os campos editáveis do perfil.
type ProfileInput struct {
	Name     *string `json:"name"`
	Lastname *string `json:"lastname"`
	Username *string `json:"username"`
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

// UpdateProfile altera nome, sobrenome e username. E-mail, senha e papel
// não passam por aqui.
func (s *UserService) UpdateProfile(ctx context.Context, id int64, in ProfileInput) (UserProfile, error) {
	in.Name = trimmed(in.Name)
	in.Lastname = trimmed(in.Lastname)
	in.Username = trimmed(in.Username)
	if in.Name == nil && in.Lastname == nil && in.Username == nil {
		return UserProfile{}, ErrEmptyUpdate
	}

	err := validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.NilOrNotEmpty.Error("cannot be empty")),
		validation.Field(&in.Lastname, validation.NilOrNotEmpty.Error("cannot be empty")),
		validation.Field(&in.Username, validation.NilOrNotEmpty.Error("cannot be empty")),
	)
	if err != nil {
		return UserProfile{}, util.ValidationError(err, "")
	}

	if in.Username != nil {
		other, err := s.store.GetUserByUsername(ctx, *in.Username)
		switch {
		case err == nil && other.ID != id:
			return UserProfile{}, ErrUsernameTaken
		case err != nil && !errors.Is(err, repo.ErrNotFound):
			return UserProfile{}, err
		}
	}

	u, err := s.store.UpdateUserProfile(ctx, id, repo.UpdateProfileParams{
		Name:     in.Name,
		Lastname: in.Lastname,
		Username: in.Username,
	})
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return UserProfile{}, ErrUserNotFound
		case errors.Is(err, repo.ErrDuplicateUsername):
			return UserProfile{}, ErrUsernameTaken
		}
		return UserProfile{}, err
	}
	return NewUserProfile(u), nil
}
