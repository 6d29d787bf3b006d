package inspection

import (
	"context"
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/japama/watercontract/internal/util"
)

type store interface {
	List(ctx context.Context, houseID *int64) ([]Report, error)
	Get(ctx context.Context, id int64) (*Report, error)
	Create(ctx context.Context, date string, comments *string, houseID int64) (*Report, error)
	Update(ctx context.Context, id int64, in ReportInput) (*Report, error)
	Delete(ctx context.Context, id int64) error
	HouseExists(ctx context.Context, houseID int64) (bool, error)
}

// Service valida e registra reportes.
type Service struct {
	repo store
}

// NewService cria o serviço.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

var (
	dateRule  = validation.Date(DateLayout).Error("report_date must be in format YYYY-MM-DD")
	houseRule = validation.Min(int64(1)).Error("house_id must be a valid number")
)

func normalize(in *ReportInput) {
	if in.ReportDate != nil {
		d := strings.TrimSpace(*in.ReportDate)
		in.ReportDate = &d
	}
	if in.Comments != nil {
		c := strings.TrimSpace(*in.Comments)
		in.Comments = &c
	}
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return ErrReportNotFound
	case errors.Is(err, ErrUnknownHouse):
		return ErrHouseNotFound
	default:
		return err
	}
}

// Create registra um reporte para uma casa existente.
func (s *Service) Create(ctx context.Context, in ReportInput) (*Report, error) {
	normalize(&in)
	err := validation.ValidateStruct(&in,
		validation.Field(&in.ReportDate, validation.Required.Error("is required"), dateRule),
		validation.Field(&in.HouseID, validation.Required.Error("is required"), houseRule),
	)
	if err != nil {
		return nil, util.ValidationError(err, "")
	}
	comments := in.Comments
	if comments != nil && *comments == "" {
		comments = nil
	}
	rep, err := s.repo.Create(ctx, *in.ReportDate, comments, *in.HouseID)
	if err != nil {
		return nil, mapError(err)
	}
	return rep, nil
}

// List devolve todos os reportes.
func (s *Service) List(ctx context.Context) ([]Report, error) {
	return s.repo.List(ctx, nil)
}

// ByHouse devolve os reportes de uma casa existente.
func (s *Service) ByHouse(ctx context.Context, houseID int64) ([]Report, error) {
	ok, err := s.repo.HouseExists(ctx, houseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrHouseNotFound
	}
	return s.repo.List(ctx, &houseID)
}

// Get busca um reporte.
func (s *Service) Get(ctx context.Context, id int64) (*Report, error) {
	rep, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return rep, nil
}

// Update altera data, comentários ou casa do reporte.
func (s *Service) Update(ctx context.Context, id int64, in ReportInput) (*Report, error) {
	normalize(&in)
	if in.ReportDate == nil && in.Comments == nil && in.HouseID == nil {
		return nil, ErrEmptyUpdate
	}
	err := validation.ValidateStruct(&in,
		validation.Field(&in.ReportDate, validation.NilOrNotEmpty.Error("report_date must be in format YYYY-MM-DD"), dateRule),
		validation.Field(&in.HouseID, houseRule),
	)
	if err != nil {
		return nil, util.ValidationError(err, "")
	}
	rep, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return nil, mapError(err)
	}
	return rep, nil
}

// Delete remove um reporte.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return mapError(s.repo.Delete(ctx, id))
}
