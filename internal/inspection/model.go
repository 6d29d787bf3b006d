// Package inspection registra os reportes de vistoria das casas.
package inspection

import (
	"time"

	"github.com/japama/watercontract/internal/apperr"
)

var (
	ErrReportNotFound = apperr.NotFound("REPORT_NOT_FOUND", "Report not found")
	ErrHouseNotFound  = apperr.NotFound("HOUSE_NOT_FOUND", "House not found")
	ErrEmptyUpdate    = apperr.Validation("EMPTY_UPDATE", "No updatable fields provided")
)

// DateLayout é o formato aceito e devolvido em report_date.
const DateLayout = "2006-01-02"

// Report é um reporte com os dados da casa, calle e fraccionamiento.
type Report struct {
	ID              int64     `db:"report_id" json:"report_id"`
	ReportDate      string    `db:"report_date" json:"report_date"`
	Comments        *string   `db:"comments" json:"comments"`
	HouseID         int64     `db:"house_id" json:"house_id"`
	HouseNumber     string    `db:"house_number" json:"house_number"`
	Inhabited       bool      `db:"inhabited" json:"inhabited"`
	Water           bool      `db:"water" json:"water"`
	StreetID        int64     `db:"street_id" json:"street_id"`
	StreetName      string    `db:"street_name" json:"street_name"`
	SubdivisionID   int64     `db:"subdivision_id" json:"subdivision_id"`
	SubdivisionName string    `db:"subdivision_name" json:"subdivision_name"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// ReportInput cobre criação e edição; nil mantém o valor.
type ReportInput struct {
	ReportDate *string `json:"report_date"`
	Comments   *string `json:"comments"`
	HouseID    *int64  `json:"house_id"`
}
