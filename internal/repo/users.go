package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, name, lastname, email, username, password_hash, role, is_verified, created_at, updated_at`

const (
	getUserByIDSQL       = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	getUserByEmailSQL    = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	getUserByUsernameSQL = `SELECT ` + userColumns + ` FROM users WHERE lower(username) = lower($1)`
	listUsersSQL         = `SELECT ` + userColumns + ` FROM users ORDER BY id`

	createUserSQL = `
        INSERT INTO users (name, lastname, email, username, password_hash, role, is_verified)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING ` + userColumns

	updateUserProfileSQL = `
        UPDATE users
        SET name = COALESCE($2, name),
            lastname = COALESCE($3, lastname),
            username = COALESCE($4, username),
            updated_at = now()
        WHERE id = $1
        RETURNING ` + userColumns

	markUserVerifiedSQL = `
        UPDATE users
        SET is_verified = true, updated_at = now()
        WHERE id = $1 AND is_verified = false`
)

func scanUser(row pgx.Row) (User, error) {
	var (
		u    User
		role string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Lastname, &u.Email, &u.Username, &u.PasswordHash, &role, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	u.Role = Role(role)
	return u, nil
}

// GetUserByID busca usuário pelo id.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByIDSQL, id))
}

// GetUserByEmail busca usuário pelo e-mail, sem diferenciar maiúsculas.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByEmailSQL, email))
}

// GetUserByUsername busca usuário pelo username, sem diferenciar maiúsculas.
func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByUsernameSQL, username))
}

// ListUsers devolve todos os usuários ordenados por id.
func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.Query(ctx, listUsersSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser insere o usuário; violações de unicidade viram ErrDuplicateEmail/ErrDuplicateUsername.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	u, err := scanUser(q.db.QueryRow(ctx, createUserSQL,
		arg.Name, arg.Lastname, arg.Email, arg.Username, arg.PasswordHash, string(arg.Role), arg.IsVerified,
	))
	if err != nil {
		return User{}, fmt.Errorf("create user: %w", mapUserWriteError(err))
	}
	return u, nil
}

// UpdateUserProfile altera nome, sobrenome e username.
func (q *Queries) UpdateUserProfile(ctx context.Context, id int64, arg UpdateProfileParams) (User, error) {
	u, err := scanUser(q.db.QueryRow(ctx, updateUserProfileSQL, id, arg.Name, arg.Lastname, arg.Username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, err
		}
		return User{}, fmt.Errorf("update user: %w", mapUserWriteError(err))
	}
	return u, nil
}

// MarkUserVerified promove a conta para verificada. Retorna false se a conta
// já estava verificada ou não existe.
func (q *Queries) MarkUserVerified(ctx context.Context, id int64) (bool, error) {
	tag, err := q.db.Exec(ctx, markUserVerifiedSQL, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
