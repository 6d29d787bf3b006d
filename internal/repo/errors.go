package repo

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound é retornado quando nenhum registro é encontrado.
	ErrNotFound = errors.New("registro não encontrado")
	// ErrDuplicateEmail indica violação de unicidade do e-mail.
	ErrDuplicateEmail = errors.New("email já cadastrado")
	// ErrDuplicateUsername indica violação de unicidade do username.
	ErrDuplicateUsername = errors.New("username já cadastrado")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	constraintUsersEmail    = "users_email_key"
	constraintUsersUsername = "users_username_key"
)

// UniqueViolation informa a constraint violada quando err é 23505.
func UniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// ForeignKeyViolation informa a constraint violada quando err é 23503.
func ForeignKeyViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

func mapUserWriteError(err error) error {
	constraint, ok := UniqueViolation(err)
	if !ok {
		return err
	}
	switch constraint {
	case constraintUsersEmail:
		return ErrDuplicateEmail
	case constraintUsersUsername:
		return ErrDuplicateUsername
	default:
		return err
	}
}
