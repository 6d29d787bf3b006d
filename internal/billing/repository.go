package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/japama/watercontract/internal/db"
)

// ErrNotFound é retornado quando nenhum registro é encontrado.
var ErrNotFound = errors.New("billing: registro não encontrado")

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repository provê acesso a payment e à retirada da casa.
type Repository struct {
	db db.DBTX
}

// NewRepository cria o repositório.
func NewRepository(conn db.DBTX) *Repository {
	return &Repository{db: conn}
}

// InTx executa fn com um repositório vinculado à transação.
func (r *Repository) InTx(ctx context.Context, fn func(*Repository) error) error {
	return db.RunInTx(ctx, r.db, func(tx db.DBTX) error {
		return fn(NewRepository(tx))
	})
}

func (r *Repository) get(ctx context.Context, dst any, b squirrel.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}
	if err := pgxscan.Get(ctx, r.db, dst, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// LockHouse lê a casa com sua calle e fraccionamiento, travando a linha.
func (r *Repository) LockHouse(ctx context.Context, houseID int64) (*lockedHouse, error) {
	var h lockedHouse
	err := r.get(ctx, &h, psql.
		Select("h.house_id", "h.house_number", "h.street_id", "s.subdivision_id").
		From("house h").
		Join("street s ON s.street_id = h.street_id").
		Where(squirrel.Eq{"h.house_id": houseID}).
		Suffix("FOR UPDATE OF h"))
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// InsertPayment grava o pagamento e devolve o id.
func (r *Repository) InsertPayment(ctx context.Context, h *lockedHouse, importe decimal.Decimal, cobradorID int64) (int64, error) {
	var id int64
	err := r.get(ctx, &id, psql.Insert("payment").
		Columns("subdivision_id", "street_id", "house_id", "house_number", "importe", "cobrador_id").
		Values(h.SubdivisionID, h.StreetID, h.HouseID, h.HouseNumber, importe, cobradorID).
		Suffix("RETURNING payment_id"))
	if err != nil {
		return 0, fmt.Errorf("insert payment: %w", err)
	}
	return id, nil
}

// DeleteHouse retira a casa do padrón; reportes caem em cascata.
func (r *Repository) DeleteHouse(ctx context.Context, houseID int64) error {
	query, args, err := psql.Delete("house").Where(squirrel.Eq{"house_id": houseID}).ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete house: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func paymentSelect() squirrel.SelectBuilder {
	return psql.Select(
		"p.payment_id", "p.subdivision_id", "sd.subdivision_name", "p.street_id", "s.street_name",
		"p.house_id", "p.house_number", "p.importe", "p.cobrador_id",
		"u.name AS cobrador_name", "u.lastname AS cobrador_lastname", "p.created_at",
	).
		From("payment p").
		Join("subdivision sd ON sd.subdivision_id = p.subdivision_id").
		Join("street s ON s.street_id = p.street_id").
		Join("users u ON u.id = p.cobrador_id")
}

// Get busca o pagamento pelo id.
func (r *Repository) Get(ctx context.Context, id int64) (*Payment, error) {
	var p Payment
	if err := r.get(ctx, &p, paymentSelect().Where(squirrel.Eq{"p.payment_id": id})); err != nil {
		return nil, err
	}
	return &p, nil
}

// List devolve pagamentos do mais recente ao mais antigo.
func (r *Repository) List(ctx context.Context, filter Filter) ([]Payment, error) {
	q := paymentSelect().OrderBy("p.created_at DESC", "p.payment_id DESC")
	if filter.SubdivisionID != nil {
		q = q.Where(squirrel.Eq{"p.subdivision_id": *filter.SubdivisionID})
	}
	if filter.CobradorID != nil {
		q = q.Where(squirrel.Eq{"p.cobrador_id": *filter.CobradorID})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	var out []Payment
	if err := pgxscan.Select(ctx, r.db, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return out, nil
}
