package catalog

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
	// ErrNotFound é retornado quando nenhum registro é encontrado.
	ErrNotFound = errors.New("catalog: registro não encontrado")
	// ErrParentNotFound indica FK apontando para registro inexistente.
	ErrParentNotFound = errors.New("catalog: registro pai inexistente")
	// ErrInUse indica exclusão bloqueada por registros dependentes.
	ErrInUse = errors.New("catalog: registro em uso")
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repository provê acesso a fraccionamientos, calles e casas.
type Repository struct {
	db db.DBTX
}

// NewRepository cria um repositório sobre pool ou transação.
func NewRepository(conn db.DBTX) *Repository {
	return &Repository{db: conn}
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

func (r *Repository) selectAll(ctx context.Context, dst any, b squirrel.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}
	return pgxscan.Select(ctx, r.db, dst, query, args...)
}

func (r *Repository) delete(ctx context.Context, b squirrel.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		if _, ok := repo.ForeignKeyViolation(err); ok {
			return ErrInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func parentError(err error) error {
	if _, ok := repo.ForeignKeyViolation(err); ok {
		return ErrParentNotFound
	}
	return err
}

const subdivisionReturning = "RETURNING subdivision_id, subdivision_name, created_at, updated_at"

// CreateSubdivision insere um fraccionamiento.
func (r *Repository) CreateSubdivision(ctx context.Context, name string) (*Subdivision, error) {
	var s Subdivision
	err := r.get(ctx, &s, psql.Insert("subdivision").
		Columns("subdivision_name").
		Values(name).
		Suffix(subdivisionReturning))
	if err != nil {
		return nil, fmt.Errorf("create subdivision: %w", err)
	}
	return &s, nil
}

// ListSubdivisions devolve os fraccionamientos do mais recente ao mais antigo.
func (r *Repository) ListSubdivisions(ctx context.Context) ([]Subdivision, error) {
	var out []Subdivision
	err := r.selectAll(ctx, &out, psql.
		Select("subdivision_id", "subdivision_name", "created_at", "updated_at").
		From("subdivision").
		OrderBy("created_at DESC", "subdivision_id DESC"))
	if err != nil {
		return nil, fmt.Errorf("list subdivisions: %w", err)
	}
	return out, nil
}

// GetSubdivision busca pelo id.
func (r *Repository) GetSubdivision(ctx context.Context, id int64) (*Subdivision, error) {
	var s Subdivision
	err := r.get(ctx, &s, psql.
		Select("subdivision_id", "subdivision_name", "created_at", "updated_at").
		From("subdivision").
		Where(squirrel.Eq{"subdivision_id": id}))
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// RenameSubdivision altera o nome.
func (r *Repository) RenameSubdivision(ctx context.Context, id int64, name string) (*Subdivision, error) {
	var s Subdivision
	err := r.get(ctx, &s, psql.Update("subdivision").
		Set("subdivision_name", name).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"subdivision_id": id}).
		Suffix(subdivisionReturning))
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSubdivision remove o fraccionamiento; calles ou pagos vinculados bloqueiam.
func (r *Repository) DeleteSubdivision(ctx context.Context, id int64) error {
	return r.delete(ctx, psql.Delete("subdivision").Where(squirrel.Eq{"subdivision_id": id}))
}

const streetReturning = "RETURNING street_id, street_name, subdivision_id, created_at, updated_at"

// CreateStreet insere uma calle.
func (r *Repository) CreateStreet(ctx context.Context, name string, subdivisionID int64) (*Street, error) {
	var s Street
	err := r.get(ctx, &s, psql.Insert("street").
		Columns("street_name", "subdivision_id").
		Values(name, subdivisionID).
		Suffix(streetReturning))
	if err != nil {
		return nil, parentError(err)
	}
	return &s, nil
}

// ListStreets devolve as calles, opcionalmente de um fraccionamiento.
func (r *Repository) ListStreets(ctx context.Context, subdivisionID *int64) ([]Street, error) {
	q := psql.Select("street_id", "street_name", "subdivision_id", "created_at", "updated_at").
		From("street").
		OrderBy("street_name", "street_id")
	if subdivisionID != nil {
		q = q.Where(squirrel.Eq{"subdivision_id": *subdivisionID})
	}
	var out []Street
	if err := r.selectAll(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("list streets: %w", err)
	}
	return out, nil
}

// GetStreet busca pelo id.
func (r *Repository) GetStreet(ctx context.Context, id int64) (*Street, error) {
	var s Street
	err := r.get(ctx, &s, psql.
		Select("street_id", "street_name", "subdivision_id", "created_at", "updated_at").
		From("street").
		Where(squirrel.Eq{"street_id": id}))
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateStreet aplica apenas os campos informados.
func (r *Repository) UpdateStreet(ctx context.Context, id int64, in StreetInput) (*Street, error) {
	set := map[string]any{"updated_at": squirrel.Expr("now()")}
	if in.Name != nil {
		set["street_name"] = *in.Name
	}
	if in.SubdivisionID != nil {
		set["subdivision_id"] = *in.SubdivisionID
	}
	var s Street
	err := r.get(ctx, &s, psql.Update("street").
		SetMap(set).
		Where(squirrel.Eq{"street_id": id}).
		Suffix(streetReturning))
	if err != nil {
		return nil, parentError(err)
	}
	return &s, nil
}

func houseSelect() squirrel.SelectBuilder {
	return psql.Select(
		"h.house_id", "h.house_number", "h.inhabited", "h.water", "h.importe", "h.street_id",
		"s.street_name", "s.subdivision_id", "sd.subdivision_name", "h.created_at", "h.updated_at",
	).
		From("house h").
		Join("street s ON s.street_id = h.street_id").
		Join("subdivision sd ON sd.subdivision_id = s.subdivision_id")
}

// ListHouses devolve casas com calle e fraccionamiento.
func (r *Repository) ListHouses(ctx context.Context, filter HouseFilter) ([]House, error) {
	q := houseSelect()
	switch {
	case filter.StreetID != nil:
		q = q.Where(squirrel.Eq{"h.street_id": *filter.StreetID}).OrderBy("h.house_number")
	case filter.SubdivisionID != nil:
		q = q.Where(squirrel.Eq{"s.subdivision_id": *filter.SubdivisionID}).OrderBy("h.street_id", "h.house_number")
	default:
		q = q.OrderBy("h.created_at DESC", "h.house_id DESC")
	}
	var out []House
	if err := r.selectAll(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("list houses: %w", err)
	}
	return out, nil
}

// GetHouse busca a casa pelo id.
func (r *Repository) GetHouse(ctx context.Context, id int64) (*House, error) {
	var h House
	if err := r.get(ctx, &h, houseSelect().Where(squirrel.Eq{"h.house_id": id})); err != nil {
		return nil, err
	}
	return &h, nil
}

// CreateHouse insere a casa e a devolve já com os nomes vinculados.
func (r *Repository) CreateHouse(ctx context.Context, number string, inhabited, water bool, streetID int64) (*House, error) {
	var id int64
	err := r.get(ctx, &id, psql.Insert("house").
		Columns("house_number", "inhabited", "water", "street_id").
		Values(number, inhabited, water, streetID).
		Suffix("RETURNING house_id"))
	if err != nil {
		return nil, parentError(err)
	}
	return r.GetHouse(ctx, id)
}

// UpdateHouse aplica apenas os campos informados.
func (r *Repository) UpdateHouse(ctx context.Context, id int64, in HouseInput) (*House, error) {
	set := map[string]any{"updated_at": squirrel.Expr("now()")}
	if in.Number != nil {
		set["house_number"] = *in.Number
	}
	if in.Inhabited != nil {
		set["inhabited"] = bool(*in.Inhabited)
	}
	if in.Water != nil {
		set["water"] = bool(*in.Water)
	}
	if in.StreetID != nil {
		set["street_id"] = *in.StreetID
	}
	var updated int64
	err := r.get(ctx, &updated, psql.Update("house").
		SetMap(set).
		Where(squirrel.Eq{"house_id": id}).
		Suffix("RETURNING house_id"))
	if err != nil {
		return nil, parentError(err)
	}
	return r.GetHouse(ctx, updated)
}

// DeleteHouse remove a casa; reportes caem em cascata.
func (r *Repository) DeleteHouse(ctx context.Context, id int64) error {
	return r.delete(ctx, psql.Delete("house").Where(squirrel.Eq{"house_id": id}))
}
