package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX cobre pool, conexão e transação.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Beginner abre transações (pgxpool.Pool, pgxmock).
type Beginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// WithTx executa uma função dentro de uma transação explicita.
func WithTx(ctx context.Context, conn Beginner, fn func(pctx context.Context, tx pgx.Tx) error) error {
	tx, err := conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// RunInTx abre transação quando conn permite; caso contrário (conn já é
// uma transação) executa fn diretamente.
func RunInTx(ctx context.Context, conn DBTX, fn func(tx DBTX) error) error {
	b, ok := conn.(Beginner)
	if !ok {
		return fn(conn)
	}
	return WithTx(ctx, b, func(_ context.Context, tx pgx.Tx) error {
		return fn(tx)
	})
}
