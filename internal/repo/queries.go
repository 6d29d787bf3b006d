package repo

import (
	"context"

	"github.com/japama/watercontract/internal/db"
)

// Queries agrupa as consultas de credenciais sobre pool ou transação.
type Queries struct {
	db db.DBTX
}

// New cria Queries sobre pool, conexão ou transação.
func New(conn db.DBTX) *Queries {
	return &Queries{db: conn}
}

// InTx executa fn com Queries vinculadas a uma transação.
func (q *Queries) InTx(ctx context.Context, fn func(*Queries) error) error {
	return db.RunInTx(ctx, q.db, func(tx db.DBTX) error {
		return fn(New(tx))
	})
}
