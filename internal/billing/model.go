// Package billing registra a cobrança de tomas: o pagamento retira a casa do padrón.
package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/japama/watercontract/internal/apperr"
)

var (
	ErrPaymentNotFound = apperr.NotFound("PAYMENT_NOT_FOUND", "Payment not found")
	ErrHouseNotFound   = apperr.NotFound("HOUSE_NOT_FOUND", "House not found")
	ErrInvalidImporte  = apperr.Validation("INVALID_IMPORTE", "Importe must be greater than 0")
)

// Payment é uma cobrança com os nomes de cobrador, calle e fraccionamiento.
type Payment struct {
	ID               int64           `db:"payment_id" json:"payment_id"`
	SubdivisionID    int64           `db:"subdivision_id" json:"subdivision_id"`
	SubdivisionName  string          `db:"subdivision_name" json:"subdivision_name"`
	StreetID         int64           `db:"street_id" json:"street_id"`
	StreetName       string          `db:"street_name" json:"street_name"`
	HouseID          int64           `db:"house_id" json:"house_id"`
	HouseNumber      string          `db:"house_number" json:"house_number"`
	Importe          decimal.Decimal `db:"importe" json:"importe"`
	CobradorID       int64           `db:"cobrador_id" json:"cobrador_id"`
	CobradorName     string          `db:"cobrador_name" json:"cobrador_name"`
	CobradorLastname string          `db:"cobrador_lastname" json:"cobrador_lastname"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
}

// CollectInput é o corpo de POST /api/payments.
type CollectInput struct {
	HouseID *int64           `json:"house_id"`
	Importe *decimal.Decimal `json:"importe"`
}

// Filter restringe a listagem de pagamentos.
type Filter struct {
	SubdivisionID *int64
	CobradorID    *int64
}

type lockedHouse struct {
	HouseID       int64  `db:"house_id"`
	HouseNumber   string `db:"house_number"`
	StreetID      int64  `db:"street_id"`
	SubdivisionID int64  `db:"subdivision_id"`
}
