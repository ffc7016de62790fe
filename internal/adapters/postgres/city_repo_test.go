package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/roadpulse/internal/core/domain"
)

func TestCityRepo_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCityRepo(db)

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO cities`).
		WithArgs(-120.54, 38.07).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(testCityID, now, now))

	city := &domain.City{Center: domain.GeoPoint{Lat: 38.07, Lon: -120.54}}
	err := repo.Create(context.Background(), city)
	require.NoError(t, err)
	assert.Equal(t, testCityID, city.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCityRepo_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCityRepo(db)

	now := time.Now()
	mock.ExpectQuery(`FROM cities WHERE id = \$1`).
		WithArgs(testCityID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "lat", "lon", "created_at", "updated_at"}).
			AddRow(testCityID, 38.07, -120.54, now, now))
	mock.ExpectQuery(`SELECT id::text FROM roads WHERE city_id = \$1`).
		WithArgs(testCityID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("r1").AddRow("r2"))

	city, err := repo.GetByID(context.Background(), testCityID)
	require.NoError(t, err)
	assert.Equal(t, 38.07, city.Center.Lat)
	assert.Equal(t, []string{"r1", "r2"}, city.RoadIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCityRepo_GetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCityRepo(db)

	mock.ExpectQuery(`FROM cities WHERE id = \$1`).
		WithArgs(testCityID).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), testCityID)
	assert.ErrorIs(t, err, domain.ErrCityNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
