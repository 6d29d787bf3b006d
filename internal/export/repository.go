package export

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/japama/watercontract/internal/db"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Scope restringe a carga do padrón.
type Scope struct {
	SubdivisionID *int64
	WithReports   bool
}

type padronRow struct {
	SubdivisionID   int64   `db:"subdivision_id"`
	SubdivisionName string  `db:"subdivision_name"`
	StreetID        *int64  `db:"street_id"`
	StreetName      *string `db:"street_name"`
	HouseID         *int64  `db:"house_id"`
	HouseNumber     *string `db:"house_number"`
	Inhabited       *bool   `db:"inhabited"`
	Water           *bool   `db:"water"`
	ReportDate      *string `db:"report_date"`
	Comments        *string `db:"comments"`
}

// Repository lê o padrón completo em uma única consulta.
type Repository struct {
	db db.DBTX
}

// NewRepository cria o repositório.
func NewRepository(conn db.DBTX) *Repository {
	return &Repository{db: conn}
}

// Load devolve fraccionamiento → calles → casas → reportes. Fraccionamientos
// e calles sem filhos também aparecem.
func (r *Repository) Load(ctx context.Context, scope Scope) ([]Subdivision, error) {
	cols := []string{
		"sd.subdivision_id", "sd.subdivision_name", "s.street_id", "s.street_name",
		"h.house_id", "h.house_number", "h.inhabited", "h.water",
	}
	order := []string{"sd.subdivision_name", "sd.subdivision_id", "s.street_name", "s.street_id", "h.house_number", "h.house_id"}

	q := psql.Select().
		From("subdivision sd").
		LeftJoin("street s ON s.subdivision_id = sd.subdivision_id").
		LeftJoin("house h ON h.street_id = s.street_id")
	if scope.WithReports {
		cols = append(cols, "to_char(r.report_date, 'YYYY-MM-DD') AS report_date", "r.comments")
		q = q.LeftJoin("reports r ON r.house_id = h.house_id")
		order = append(order, "r.report_date DESC", "r.report_id DESC")
	}
	q = q.Columns(cols...).OrderBy(order...)
	if scope.SubdivisionID != nil {
		q = q.Where(squirrel.Eq{"sd.subdivision_id": *scope.SubdivisionID})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	var rows []padronRow
	if err := pgxscan.Select(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("load padron: %w", err)
	}
	return fold(rows), nil
}

// fold monta a árvore a partir das linhas ordenadas pelo pai.
func fold(rows []padronRow) []Subdivision {
	var out []Subdivision
	for _, row := range rows {
		if len(out) == 0 || out[len(out)-1].ID != row.SubdivisionID {
			out = append(out, Subdivision{ID: row.SubdivisionID, Name: row.SubdivisionName})
		}
		sub := &out[len(out)-1]
		if row.StreetID == nil {
			continue
		}

		if len(sub.Streets) == 0 || sub.Streets[len(sub.Streets)-1].ID != *row.StreetID {
			sub.Streets = append(sub.Streets, Street{ID: *row.StreetID, Name: deref(row.StreetName)})
		}
		street := &sub.Streets[len(sub.Streets)-1]
		if row.HouseID == nil {
			continue
		}

		if len(street.Houses) == 0 || street.Houses[len(street.Houses)-1].ID != *row.HouseID {
			street.Houses = append(street.Houses, House{
				ID:        *row.HouseID,
				Number:    deref(row.HouseNumber),
				Inhabited: row.Inhabited != nil && *row.Inhabited,
				Water:     row.Water != nil && *row.Water,
			})
		}
		house := &street.Houses[len(street.Houses)-1]
		if row.ReportDate != nil {
			house.Reports = append(house.Reports, Report{Date: *row.ReportDate, Comments: deref(row.Comments)})
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
