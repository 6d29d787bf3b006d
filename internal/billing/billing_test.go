package billing

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japama/watercontract/internal/apperr"
)

var paymentColumns = []string{
	"payment_id", "subdivision_id", "subdivision_name", "street_id", "street_name",
	"house_id", "house_number", "importe", "cobrador_id", "cobrador_name", "cobrador_lastname", "created_at",
}

func newMockService(t *testing.T) (*Service, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewService(NewRepository(mock)), mock
}

func collectInput(t *testing.T, body string) CollectInput {
	t.Helper()
	var in CollectInput
	require.NoError(t, json.Unmarshal([]byte(body), &in))
	return in
}

func TestCollect(t *testing.T) {
	t.Run("Should insert the payment and remove the house atomically", func(t *testing.T) {
		svc, mock := newMockService(t)
		importe := decimal.RequireFromString("150.5")

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM house h JOIN street s ON s.street_id = h.street_id WHERE h.house_id = \$1 FOR UPDATE OF h`).
			WithArgs(int64(20)).
			WillReturnRows(mock.NewRows([]string{"house_id", "house_number", "street_id", "subdivision_id"}).
				AddRow(int64(20), "12-B", int64(3), int64(1)))
		mock.ExpectQuery(`INSERT INTO payment \(subdivision_id,street_id,house_id,house_number,importe,cobrador_id\)`).
			WithArgs(int64(1), int64(3), int64(20), "12-B", pgxmock.AnyArg(), int64(7)).
			WillReturnRows(mock.NewRows([]string{"payment_id"}).AddRow(int64(100)))
		mock.ExpectExec(`DELETE FROM house WHERE house_id = \$1`).
			WithArgs(int64(20)).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectCommit()
		mock.ExpectQuery(`FROM payment p .* WHERE p.payment_id = \$1`).
			WithArgs(int64(100)).
			WillReturnRows(mock.NewRows(paymentColumns).
				AddRow(int64(100), int64(1), "Las Fuentes", int64(3), "Calle Sur", int64(20), "12-B", "150.50", int64(7), "Beto", "Ruiz", time.Now()))

		p, err := svc.Collect(context.Background(), collectInput(t, `{"house_id":20,"importe":150.5}`), 7)
		require.NoError(t, err)
		assert.Equal(t, int64(100), p.ID)
		assert.True(t, importe.Equal(p.Importe))
		assert.Equal(t, "Beto", p.CobradorName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should roll back when the house is already gone", func(t *testing.T) {
		svc, mock := newMockService(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE OF h`).
			WithArgs(int64(20)).
			WillReturnRows(mock.NewRows([]string{"house_id", "house_number", "street_id", "subdivision_id"}))
		mock.ExpectRollback()

		_, err := svc.Collect(context.Background(), collectInput(t, `{"house_id":20,"importe":"99"}`), 7)
		assert.ErrorIs(t, err, ErrHouseNotFound)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should reject non positive amounts before touching the database", func(t *testing.T) {
		svc, mock := newMockService(t)
		for _, body := range []string{`{"house_id":20,"importe":0}`, `{"house_id":20,"importe":-5}`, `{"house_id":20}`, `{"house_id":20,"importe":0.001}`} {
			_, err := svc.Collect(context.Background(), collectInput(t, body), 7)
			require.Error(t, err, body)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), body)
		}
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListings(t *testing.T) {
	svc, mock := newMockService(t)
	now := time.Now()

	mock.ExpectQuery(`WHERE p.cobrador_id = \$1 ORDER BY p.created_at DESC`).
		WithArgs(int64(7)).
		WillReturnRows(mock.NewRows(paymentColumns).
			AddRow(int64(100), int64(1), "Las Fuentes", int64(3), "Calle Sur", int64(20), "12-B", "150.50", int64(7), "Beto", "Ruiz", now))
	mock.ExpectQuery(`WHERE p.subdivision_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(mock.NewRows(paymentColumns))
	mock.ExpectQuery(`WHERE p.payment_id = \$1`).
		WithArgs(int64(5)).
		WillReturnRows(mock.NewRows(paymentColumns))

	byCobrador, err := svc.ByCobrador(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, byCobrador, 1)

	bySub, err := svc.BySubdivision(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, bySub)

	_, err = svc.Get(context.Background(), 5)
	assert.ErrorIs(t, err, ErrPaymentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
