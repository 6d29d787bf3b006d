package catalog

import (
	"context"
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/japama/watercontract/internal/util"
)

type store interface {
	CreateSubdivision(ctx context.Context, name string) (*Subdivision, error)
	ListSubdivisions(ctx context.Context) ([]Subdivision, error)
	GetSubdivision(ctx context.Context, id int64) (*Subdivision, error)
	RenameSubdivision(ctx context.Context, id int64, name string) (*Subdivision, error)
	DeleteSubdivision(ctx context.Context, id int64) error
	CreateStreet(ctx context.Context, name string, subdivisionID int64) (*Street, error)
	ListStreets(ctx context.Context, subdivisionID *int64) ([]Street, error)
	GetStreet(ctx context.Context, id int64) (*Street, error)
	UpdateStreet(ctx context.Context, id int64, in StreetInput) (*Street, error)
	ListHouses(ctx context.Context, filter HouseFilter) ([]House, error)
	GetHouse(ctx context.Context, id int64) (*House, error)
	CreateHouse(ctx context.Context, number string, inhabited, water bool, streetID int64) (*House, error)
	UpdateHouse(ctx context.Context, id int64, in HouseInput) (*House, error)
	DeleteHouse(ctx context.Context, id int64) error
}

// Service aplica as regras de cadastro do padrón.
type Service struct {
	repo store
}

// NewService cria o serviço sobre o repositório.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

func mapNotFound(err, notFound error) error {
	if errors.Is(err, ErrNotFound) {
		return notFound
	}
	return err
}

func trimPtr(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

var positiveID = validation.Min(int64(1)).Error("must be a valid id")

// CreateSubdivision cadastra um fraccionamiento.
func (s *Service) CreateSubdivision(ctx context.Context, name string) (*Subdivision, error) {
	name = strings.TrimSpace(name)
	if err := validation.Validate(name, validation.Required.Error("Subdivision name is required")); err != nil {
		return nil, util.ValidationError(err, err.Error())
	}
	return s.repo.CreateSubdivision(ctx, name)
}

// ListSubdivisions devolve todos os fraccionamientos.
func (s *Service) ListSubdivisions(ctx context.Context) ([]Subdivision, error) {
	return s.repo.ListSubdivisions(ctx)
}

// GetSubdivision busca um fraccionamiento.
func (s *Service) GetSubdivision(ctx context.Context, id int64) (*Subdivision, error) {
	sub, err := s.repo.GetSubdivision(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrSubdivisionNotFound)
	}
	return sub, nil
}

// RenameSubdivision altera o nome do fraccionamiento.
func (s *Service) RenameSubdivision(ctx context.Context, id int64, name string) (*Subdivision, error) {
	name = strings.TrimSpace(name)
	if err := validation.Validate(name, validation.Required.Error("Subdivision name is required")); err != nil {
		return nil, util.ValidationError(err, err.Error())
	}
	sub, err := s.repo.RenameSubdivision(ctx, id, name)
	if err != nil {
		return nil, mapNotFound(err, ErrSubdivisionNotFound)
	}
	return sub, nil
}

// DeleteSubdivision remove um fraccionamiento sem calles nem pagos.
func (s *Service) DeleteSubdivision(ctx context.Context, id int64) error {
	err := s.repo.DeleteSubdivision(ctx, id)
	switch {
	case errors.Is(err, ErrInUse):
		return ErrSubdivisionInUse
	default:
		return mapNotFound(err, ErrSubdivisionNotFound)
	}
}

// SubdivisionHouses lista as casas de um fraccionamiento existente.
func (s *Service) SubdivisionHouses(ctx context.Context, id int64) ([]House, error) {
	if _, err := s.GetSubdivision(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListHouses(ctx, HouseFilter{SubdivisionID: &id})
}

// CreateStreet cadastra uma calle em um fraccionamiento.
func (s *Service) CreateStreet(ctx context.Context, in StreetInput) (*Street, error) {
	in.Name = trimPtr(in.Name)
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required.Error("Both street name and subdivision need to be sent")),
		validation.Field(&in.SubdivisionID, validation.Required.Error("Both street name and subdivision need to be sent"), positiveID),
	)
	if err != nil {
		return nil, util.ValidationError(err, "Both street name and subdivision need to be sent")
	}
	street, err := s.repo.CreateStreet(ctx, *in.Name, *in.SubdivisionID)
	if errors.Is(err, ErrParentNotFound) {
		return nil, ErrSubdivisionNotFound
	}
	return street, err
}

// ListStreets devolve as calles, opcionalmente de um fraccionamiento.
func (s *Service) ListStreets(ctx context.Context, subdivisionID *int64) ([]Street, error) {
	return s.repo.ListStreets(ctx, subdivisionID)
}

// GetStreet busca uma calle.
func (s *Service) GetStreet(ctx context.Context, id int64) (*Street, error) {
	street, err := s.repo.GetStreet(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrStreetNotFound)
	}
	return street, nil
}

// UpdateStreet altera nome e/ou fraccionamiento.
func (s *Service) UpdateStreet(ctx context.Context, id int64, in StreetInput) (*Street, error) {
	in.Name = trimPtr(in.Name)
	if in.Name == nil && in.SubdivisionID == nil {
		return nil, ErrEmptyUpdate
	}
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.NilOrNotEmpty.Error("cannot be empty")),
		validation.Field(&in.SubdivisionID, positiveID),
	)
	if err != nil {
		return nil, util.ValidationError(err, "")
	}
	street, err := s.repo.UpdateStreet(ctx, id, in)
	switch {
	case errors.Is(err, ErrParentNotFound):
		return nil, ErrSubdivisionNotFound
	case err != nil:
		return nil, mapNotFound(err, ErrStreetNotFound)
	}
	return street, nil
}

// StreetHouses lista as casas de uma calle existente.
func (s *Service) StreetHouses(ctx context.Context, id int64) ([]House, error) {
	if _, err := s.GetStreet(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListHouses(ctx, HouseFilter{StreetID: &id})
}

// CreateHouse cadastra uma casa; todos os campos são obrigatórios.
func (s *Service) CreateHouse(ctx context.Context, in HouseInput) (*House, error) {
	in.Number = trimPtr(in.Number)
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Number, validation.Required.Error("is required")),
		validation.Field(&in.Inhabited, validation.NotNil.Error("is required")),
		validation.Field(&in.Water, validation.NotNil.Error("is required")),
		validation.Field(&in.StreetID, validation.Required.Error("is required"), positiveID),
	)
	if err != nil {
		return nil, util.ValidationError(err, "Missing required fields")
	}
	house, err := s.repo.CreateHouse(ctx, *in.Number, bool(*in.Inhabited), bool(*in.Water), *in.StreetID)
	if errors.Is(err, ErrParentNotFound) {
		return nil, ErrStreetNotFound
	}
	return house, err
}

// ListHouses devolve todas as casas.
func (s *Service) ListHouses(ctx context.Context) ([]House, error) {
	return s.repo.ListHouses(ctx, HouseFilter{})
}

// GetHouse busca uma casa.
func (s *Service) GetHouse(ctx context.Context, id int64) (*House, error) {
	house, err := s.repo.GetHouse(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrHouseNotFound)
	}
	return house, nil
}

// UpdateHouse altera os campos informados; trocar de calle exige calle existente.
func (s *Service) UpdateHouse(ctx context.Context, id int64, in HouseInput) (*House, error) {
	in.Number = trimPtr(in.Number)
	if in.Number == nil && in.Inhabited == nil && in.Water == nil && in.StreetID == nil {
		return nil, ErrEmptyUpdate
	}
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Number, validation.NilOrNotEmpty.Error("cannot be empty")),
		validation.Field(&in.StreetID, positiveID),
	)
	if err != nil {
		return nil, util.ValidationError(err, "")
	}
	house, err := s.repo.UpdateHouse(ctx, id, in)
	switch {
	case errors.Is(err, ErrParentNotFound):
		return nil, ErrStreetNotFound
	case err != nil:
		return nil, mapNotFound(err, ErrHouseNotFound)
	}
	return house, nil
}

// DeleteHouse remove a casa e seus reportes.
func (s *Service) DeleteHouse(ctx context.Context, id int64) error {
	return mapNotFound(s.repo.DeleteHouse(ctx, id), ErrHouseNotFound)
}
