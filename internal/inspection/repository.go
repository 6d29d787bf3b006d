package inspection

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/japama/watercontract/internal/db"
	"github.com/japama/watercontract/internal/repo"
)

var (
	// ErrNotFound é retornado quando o reporte não existe.
	ErrNotFound = errors.New("inspection: reporte não encontrado")
	// ErrUnknownHouse indica house_id sem casa correspondente.
	ErrUnknownHouse = errors.New("inspection: casa inexistente")
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repository provê acesso à tabela reports.
type Repository struct {
	db db.DBTX
}

// NewRepository cria o repositório.
func NewRepository(conn db.DBTX) *Repository {
	return &Repository{db: conn}
}

func reportSelect() squirrel.SelectBuilder {
	return psql.Select(
		"r.report_id", "to_char(r.report_date, 'YYYY-MM-DD') AS report_date", "r.comments", "r.house_id",
		"h.house_number", "h.inhabited", "h.water", "h.street_id", "s.street_name",
		"s.subdivision_id", "sd.subdivision_name", "r.created_at", "r.updated_at",
	).
		From("reports r").
		Join("house h ON h.house_id = r.house_id").
		Join("street s ON s.street_id = h.street_id").
		Join("subdivision sd ON sd.subdivision_id = s.subdivision_id")
}

// List devolve reportes do mais recente ao mais antigo, opcionalmente de uma casa.
func (r *Repository) List(ctx context.Context, houseID *int64) ([]Report, error) {
	q := reportSelect().OrderBy("r.report_date DESC", "r.report_id DESC")
	if houseID != nil {
		q = q.Where(squirrel.Eq{"r.house_id": *houseID})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	var out []Report
	if err := pgxscan.Select(ctx, r.db, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return out, nil
}

// Get busca o reporte pelo id.
func (r *Repository) Get(ctx context.Context, id int64) (*Report, error) {
	query, args, err := reportSelect().Where(squirrel.Eq{"r.report_id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	var rep Report
	if err := pgxscan.Get(ctx, r.db, &rep, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rep, nil
}

func (r *Repository) returningID(ctx context.Context, b squirrel.Sqlizer) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("building query: %w", err)
	}
	var id int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if pgxscan.NotFound(err) {
			return 0, ErrNotFound
		}
		if _, ok := repo.ForeignKeyViolation(err); ok {
			return 0, ErrUnknownHouse
		}
		return 0, err
	}
	return id, nil
}

// Create insere o reporte e o devolve completo.
func (r *Repository) Create(ctx context.Context, date string, comments *string, houseID int64) (*Report, error) {
	id, err := r.returningID(ctx, psql.Insert("reports").
		Columns("report_date", "comments", "house_id").
		Values(squirrel.Expr("?::date", date), comments, houseID).
		Suffix("RETURNING report_id"))
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// Update aplica os campos informados.
func (r *Repository) Update(ctx context.Context, id int64, in ReportInput) (*Report, error) {
	set := map[string]any{"updated_at": squirrel.Expr("now()")}
	if in.ReportDate != nil {
		set["report_date"] = squirrel.Expr("?::date", *in.ReportDate)
	}
	if in.Comments != nil {
		set["comments"] = *in.Comments
	}
	if in.HouseID != nil {
		set["house_id"] = *in.HouseID
	}
	updated, err := r.returningID(ctx, psql.Update("reports").
		SetMap(set).
		Where(squirrel.Eq{"report_id": id}).
		Suffix("RETURNING report_id"))
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, updated)
}

// Delete remove o reporte.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	query, args, err := psql.Delete("reports").Where(squirrel.Eq{"report_id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// HouseExists confirma a casa antes de listar seus reportes.
func (r *Repository) HouseExists(ctx context.Context, houseID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM house WHERE house_id = $1)`, houseID).Scan(&exists)
	return exists, err
}
