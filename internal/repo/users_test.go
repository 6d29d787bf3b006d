package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{"id", "name", "lastname", "email", "username", "password_hash", "role", "is_verified", "created_at", "updated_at"}

func userRows(mock pgxmock.PgxPoolIface, u User) *pgxmock.Rows {
	return mock.NewRows(userRowColumns).
		AddRow(u.ID, u.Name, u.Lastname, u.Email, u.Username, u.PasswordHash, string(u.Role), u.IsVerified, u.CreatedAt, u.UpdatedAt)
}

func sampleUser() User {
	now := time.Now().UTC()
	return User{
		ID:           1,
		Name:         "Ana",
		Lastname:     "López",
		Email:        "ana@japama.gob.mx",
		Username:     "alopez",
		PasswordHash: "$2a$10$hash",
		Role:         RoleInspector,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestGetUserByEmail(t *testing.T) {
	t.Run("Should return user ignoring case", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		want := sampleUser()
		mock.ExpectQuery("FROM users WHERE lower\\(email\\) = lower\\(\\$1\\)").
			WithArgs("ANA@japama.gob.mx").
			WillReturnRows(userRows(mock, want))

		got, err := New(mock).GetUserByEmail(context.Background(), "ANA@japama.gob.mx")
		require.NoError(t, err)
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, RoleInspector, got.Role)
		assert.Equal(t, StatePendingVerification, got.State())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should map no rows to ErrNotFound", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("FROM users WHERE lower\\(email\\)").
			WithArgs("nobody@japama.gob.mx").
			WillReturnError(pgx.ErrNoRows)

		_, err = New(mock).GetUserByEmail(context.Background(), "nobody@japama.gob.mx")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCreateUser(t *testing.T) {
	params := CreateUserParams{
		Name:         "Ana",
		Lastname:     "López",
		Email:        "ana@japama.gob.mx",
		Username:     "alopez",
		PasswordHash: "$2a$10$hash",
		Role:         RoleInspector,
	}

	t.Run("Should insert and return the created row", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("INSERT INTO users").
			WithArgs(params.Name, params.Lastname, params.Email, params.Username, params.PasswordHash, "inspector", false).
			WillReturnRows(userRows(mock, sampleUser()))

		got, err := New(mock).CreateUser(context.Background(), params)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.ID)
		assert.False(t, got.IsVerified)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should map unique violations to duplicate errors", func(t *testing.T) {
		cases := map[string]error{
			"users_email_key":    ErrDuplicateEmail,
			"users_username_key": ErrDuplicateUsername,
		}
		for constraint, want := range cases {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)

			mock.ExpectQuery("INSERT INTO users").
				WithArgs(params.Name, params.Lastname, params.Email, params.Username, params.PasswordHash, "inspector", false).
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: constraint})

			_, err = New(mock).CreateUser(context.Background(), params)
			assert.ErrorIs(t, err, want, constraint)
			assert.NoError(t, mock.ExpectationsWereMet())
			mock.Close()
		}
	})
}

func TestMarkUserVerified(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("UPDATE users").WithArgs(int64(1)).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE users").WithArgs(int64(1)).WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	q := New(mock)
	first, err := q.MarkUserVerified(context.Background(), 1)
	require.NoError(t, err)
	second, err := q.MarkUserVerified(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second, "segunda promoção não deve alterar linha")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUserProfile(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	name := "Ana María"
	updated := sampleUser()
	updated.Name = name

	mock.ExpectQuery("UPDATE users").
		WithArgs(int64(1), &name, (*string)(nil), (*string)(nil)).
		WillReturnRows(userRows(mock, updated))

	got, err := New(mock).UpdateUserProfile(context.Background(), 1, UpdateProfileParams{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeVerificationCode(t *testing.T) {
	now := time.Now().UTC()

	t.Run("Should return the consumed code", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		rows := mock.NewRows([]string{"id", "user_id", "code", "expires_at", "created_at"}).
			AddRow(int64(5), int64(1), "123456", now.Add(5*time.Minute), now.Add(-5*time.Minute))
		mock.ExpectQuery("DELETE FROM verification_codes").
			WithArgs(int64(1), "123456", now).
			WillReturnRows(rows)

		vc, err := New(mock).ConsumeVerificationCode(context.Background(), 1, "123456", now)
		require.NoError(t, err)
		assert.Equal(t, "123456", vc.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should report ErrNotFound for expired or used codes", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("DELETE FROM verification_codes").
			WithArgs(int64(1), "000000", now).
			WillReturnError(pgx.ErrNoRows)

		_, err = New(mock).ConsumeVerificationCode(context.Background(), 1, "000000", now)
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestInTxCommitsOnSuccess(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM verification_codes").WithArgs(int64(1)).WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectCommit()

	err = New(mock).InTx(context.Background(), func(q *Queries) error {
		n, err := q.DeleteVerificationCodes(context.Background(), 1)
		assert.Equal(t, int64(2), n)
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
