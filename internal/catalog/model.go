package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/japama/watercontract/internal/apperr"
)

var (
	ErrSubdivisionNotFound = apperr.NotFound("SUBDIVISION_NOT_FOUND", "Subdivision not found")
	ErrStreetNotFound      = apperr.NotFound("STREET_NOT_FOUND", "Street not found")
	ErrHouseNotFound       = apperr.NotFound("HOUSE_NOT_FOUND", "House not found")
	ErrSubdivisionInUse    = apperr.Conflict("SUBDIVISION_IN_USE", "Subdivision still has streets or payments")
	ErrEmptyUpdate         = apperr.Validation("EMPTY_UPDATE", "No updatable fields provided")
)

// Subdivision é um fraccionamiento atendido pela JAPAMA.
type Subdivision struct {
	ID        int64     `db:"subdivision_id" json:"subdivision_id"`
	Name      string    `db:"subdivision_name" json:"subdivision_name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Street pertence a um fraccionamiento.
type Street struct {
	ID            int64     `db:"street_id" json:"street_id"`
	Name          string    `db:"street_name" json:"street_name"`
	SubdivisionID int64     `db:"subdivision_id" json:"subdivision_id"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// House é uma toma no padrón, com os nomes de calle e fraccionamiento.
type House struct {
	ID              int64               `db:"house_id" json:"house_id"`
	Number          string              `db:"house_number" json:"house_number"`
	Inhabited       bool                `db:"inhabited" json:"inhabited"`
	Water           bool                `db:"water" json:"water"`
	Importe         decimal.NullDecimal `db:"importe" json:"importe"`
	StreetID        int64               `db:"street_id" json:"street_id"`
	StreetName      string              `db:"street_name" json:"street_name"`
	SubdivisionID   int64               `db:"subdivision_id" json:"subdivision_id"`
	SubdivisionName string              `db:"subdivision_name" json:"subdivision_name"`
	CreatedAt       time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time           `db:"updated_at" json:"updated_at"`
}

// Flag aceita "0"/"1", 0/1 ou booleano no JSON de entrada.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case `true`, `"1"`, `1`:
		*f = true
		return nil
	case `false`, `"0"`, `0`:
		*f = false
		return nil
	}
	var raw any
	_ = json.Unmarshal(data, &raw)
	return fmt.Errorf("must be '0' or '1', got %v", raw)
}

// Ptr devolve o valor como *bool.
func (f *Flag) Ptr() *bool {
	if f == nil {
		return nil
	}
	v := bool(*f)
	return &v
}

// StreetInput cobre criação e edição de calles; nil mantém o valor.
type StreetInput struct {
	Name          *string `json:"street_name"`
	SubdivisionID *int64  `json:"subdivision_id"`
}

// HouseInput cobre criação e edição de casas; nil mantém o valor.
type HouseInput struct {
	Number    *string `json:"house_number"`
	Inhabited *Flag   `json:"inhabited"`
	Water     *Flag   `json:"water"`
	StreetID  *int64  `json:"street_id"`
}

// HouseFilter restringe a listagem de casas.
type HouseFilter struct {
	StreetID      *int64
	SubdivisionID *int64
}
