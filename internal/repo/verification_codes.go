package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

const (
	deleteVerificationCodesSQL = `DELETE FROM verification_codes WHERE user_id = $1`

	insertVerificationCodeSQL = `
        INSERT INTO verification_codes (user_id, code, expires_at)
        VALUES ($1, $2, $3)
        RETURNING id, user_id, code, expires_at, created_at`

	// O DELETE ... RETURNING é o ponto de consumo: só uma chamada concorrente remove a linha.
	consumeVerificationCodeSQL = `
        DELETE FROM verification_codes
        WHERE id = (
            SELECT id FROM verification_codes
            WHERE user_id = $1 AND code = $2 AND expires_at > $3
            ORDER BY created_at DESC
            LIMIT 1
            FOR UPDATE SKIP LOCKED
        )
        RETURNING id, user_id, code, expires_at, created_at`
)

func scanVerificationCode(row pgx.Row) (VerificationCode, error) {
	var vc VerificationCode
	if err := row.Scan(&vc.ID, &vc.UserID, &vc.Code, &vc.ExpiresAt, &vc.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return VerificationCode{}, ErrNotFound
		}
		return VerificationCode{}, err
	}
	return vc, nil
}

// DeleteVerificationCodes remove todos os códigos do usuário.
func (q *Queries) DeleteVerificationCodes(ctx context.Context, userID int64) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteVerificationCodesSQL, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// InsertVerificationCode grava um novo código.
func (q *Queries) InsertVerificationCode(ctx context.Context, userID int64, code string, expiresAt time.Time) (VerificationCode, error) {
	return scanVerificationCode(q.db.QueryRow(ctx, insertVerificationCodeSQL, userID, code, expiresAt))
}

// ConsumeVerificationCode remove e devolve o código válido em now; ErrNotFound
// quando inexistente, expirado ou já consumido.
func (q *Queries) ConsumeVerificationCode(ctx context.Context, userID int64, code string, now time.Time) (VerificationCode, error) {
	return scanVerificationCode(q.db.QueryRow(ctx, consumeVerificationCodeSQL, userID, code, now))
}
