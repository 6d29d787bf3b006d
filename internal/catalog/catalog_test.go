package catalog

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japama/watercontract/internal/apperr"
)

var houseColumns = []string{
	"house_id", "house_number", "inhabited", "water", "importe", "street_id",
	"street_name", "subdivision_id", "subdivision_name", "created_at", "updated_at",
}

func newMockService(t *testing.T) (*Service, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &Service{repo: NewRepository(mock)}, mock
}

func ptr[T any](v T) *T { return &v }

func TestCreateSubdivision(t *testing.T) {
	t.Run("Should insert the trimmed name", func(t *testing.T) {
		svc, mock := newMockService(t)
		now := time.Now()
		mock.ExpectQuery(`INSERT INTO subdivision \(subdivision_name\) VALUES \(\$1\) RETURNING`).
			WithArgs("Las Fuentes").
			WillReturnRows(mock.NewRows([]string{"subdivision_id", "subdivision_name", "created_at", "updated_at"}).
				AddRow(int64(1), "Las Fuentes", now, now))

		sub, err := svc.CreateSubdivision(context.Background(), "  Las Fuentes ")
		require.NoError(t, err)
		assert.Equal(t, int64(1), sub.ID)
		assert.Equal(t, "Las Fuentes", sub.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should reject an empty name", func(t *testing.T) {
		svc, _ := newMockService(t)
		_, err := svc.CreateSubdivision(context.Background(), "   ")
		require.Error(t, err)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		assert.Contains(t, err.Error(), "Subdivision name is required")
	})
}

func TestDeleteSubdivision(t *testing.T) {
	t.Run("Should report dependents as conflict", func(t *testing.T) {
		svc, mock := newMockService(t)
		mock.ExpectExec(`DELETE FROM subdivision WHERE subdivision_id = \$1`).
			WithArgs(int64(4)).
			WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "street_subdivision_id_fkey"})

		err := svc.DeleteSubdivision(context.Background(), 4)
		assert.ErrorIs(t, err, ErrSubdivisionInUse)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should report missing rows as not found", func(t *testing.T) {
		svc, mock := newMockService(t)
		mock.ExpectExec(`DELETE FROM subdivision`).
			WithArgs(int64(4)).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		assert.ErrorIs(t, svc.DeleteSubdivision(context.Background(), 4), ErrSubdivisionNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should delete", func(t *testing.T) {
		svc, mock := newMockService(t)
		mock.ExpectExec(`DELETE FROM subdivision`).
			WithArgs(int64(4)).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		assert.NoError(t, svc.DeleteSubdivision(context.Background(), 4))
	})
}

func TestCreateStreet(t *testing.T) {
	t.Run("Should map a missing subdivision", func(t *testing.T) {
		svc, mock := newMockService(t)
		mock.ExpectQuery(`INSERT INTO street \(street_name,subdivision_id\)`).
			WithArgs("Av. Independencia", int64(99)).
			WillReturnError(&pgconn.PgError{Code: "23503"})

		_, err := svc.CreateStreet(context.Background(), StreetInput{Name: ptr("Av. Independencia"), SubdivisionID: ptr(int64(99))})
		assert.ErrorIs(t, err, ErrSubdivisionNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should require both fields", func(t *testing.T) {
		svc, _ := newMockService(t)
		_, err := svc.CreateStreet(context.Background(), StreetInput{Name: ptr("Av. Independencia")})
		appErr, ok := apperr.As(err)
		require.True(t, ok)
		assert.Equal(t, apperr.KindValidation, appErr.Kind)
		assert.Contains(t, appErr.Details, "subdivision_id")
	})
}

func TestUpdateStreet(t *testing.T) {
	svc, mock := newMockService(t)
	now := time.Now()

	_, err := svc.UpdateStreet(context.Background(), 3, StreetInput{})
	assert.ErrorIs(t, err, ErrEmptyUpdate)

	mock.ExpectQuery(`UPDATE street SET street_name = \$1, updated_at = now\(\) WHERE street_id = \$2 RETURNING`).
		WithArgs("Calle Sur", int64(3)).
		WillReturnRows(mock.NewRows([]string{"street_id", "street_name", "subdivision_id", "created_at", "updated_at"}).
			AddRow(int64(3), "Calle Sur", int64(1), now, now))

	street, err := svc.UpdateStreet(context.Background(), 3, StreetInput{Name: ptr(" Calle Sur ")})
	require.NoError(t, err)
	assert.Equal(t, "Calle Sur", street.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateHouse(t *testing.T) {
	t.Run("Should insert and reload with names", func(t *testing.T) {
		svc, mock := newMockService(t)
		now := time.Now()
		mock.ExpectQuery(`INSERT INTO house \(house_number,inhabited,water,street_id\)`).
			WithArgs("12-B", true, false, int64(3)).
			WillReturnRows(mock.NewRows([]string{"house_id"}).AddRow(int64(20)))
		mock.ExpectQuery(`FROM house h JOIN street s .* WHERE h.house_id = \$1`).
			WithArgs(int64(20)).
			WillReturnRows(mock.NewRows(houseColumns).
				AddRow(int64(20), "12-B", true, false, nil, int64(3), "Calle Sur", int64(1), "Las Fuentes", now, now))

		var in HouseInput
		require.NoError(t, json.Unmarshal([]byte(`{"house_number":"12-B","inhabited":"1","water":"0","street_id":3}`), &in))

		house, err := svc.CreateHouse(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, int64(20), house.ID)
		assert.True(t, house.Inhabited)
		assert.False(t, house.Water)
		assert.Equal(t, "Las Fuentes", house.SubdivisionName)
		assert.False(t, house.Importe.Valid)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should map a missing street", func(t *testing.T) {
		svc, mock := newMockService(t)
		mock.ExpectQuery(`INSERT INTO house`).
			WithArgs("1", false, false, int64(77)).
			WillReturnError(&pgconn.PgError{Code: "23503"})

		f := Flag(false)
		_, err := svc.CreateHouse(context.Background(), HouseInput{Number: ptr("1"), Inhabited: &f, Water: &f, StreetID: ptr(int64(77))})
		assert.ErrorIs(t, err, ErrStreetNotFound)
	})

	t.Run("Should list missing fields", func(t *testing.T) {
		svc, _ := newMockService(t)
		_, err := svc.CreateHouse(context.Background(), HouseInput{Number: ptr("1")})
		appErr, ok := apperr.As(err)
		require.True(t, ok)
		assert.Equal(t, "Missing required fields", appErr.Message)
		assert.Contains(t, appErr.Details, "inhabited")
		assert.Contains(t, appErr.Details, "water")
		assert.Contains(t, appErr.Details, "street_id")
	})
}

func TestSubdivisionHouses(t *testing.T) {
	svc, mock := newMockService(t)
	now := time.Now()
	mock.ExpectQuery(`FROM subdivision WHERE subdivision_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(mock.NewRows([]string{"subdivision_id", "subdivision_name", "created_at", "updated_at"}).
			AddRow(int64(1), "Las Fuentes", now, now))
	mock.ExpectQuery(`WHERE s.subdivision_id = \$1 ORDER BY h.street_id, h.house_number`).
		WithArgs(int64(1)).
		WillReturnRows(mock.NewRows(houseColumns).
			AddRow(int64(20), "1", true, true, "150.00", int64(3), "Calle Sur", int64(1), "Las Fuentes", now, now).
			AddRow(int64(21), "2", false, true, nil, int64(3), "Calle Sur", int64(1), "Las Fuentes", now, now))

	houses, err := svc.SubdivisionHouses(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, houses, 2)
	assert.True(t, houses[0].Importe.Valid)
	assert.Equal(t, "150", houses[0].Importe.Decimal.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetHouseNotFound(t *testing.T) {
	svc, mock := newMockService(t)
	mock.ExpectQuery(`WHERE h.house_id = \$1`).
		WithArgs(int64(5)).
		WillReturnRows(mock.NewRows(houseColumns))

	_, err := svc.GetHouse(context.Background(), 5)
	assert.ErrorIs(t, err, ErrHouseNotFound)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestFlagUnmarshal(t *testing.T) {
	cases := map[string]bool{`"1"`: true, `"0"`: false, `true`: true, `false`: false, `1`: true, `0`: false}
	for raw, want := range cases {
		var f Flag
		require.NoError(t, json.Unmarshal([]byte(raw), &f), raw)
		assert.Equal(t, want, bool(f), raw)
	}

	var f Flag
	assert.Error(t, json.Unmarshal([]byte(`"yes"`), &f))
}
