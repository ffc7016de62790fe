package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/samirrijal/roadpulse/internal/core/domain"
)

// CityRepo implements ports.CityRepository with pgx.
type CityRepo struct {
	db *DB
}

// NewCityRepo creates a new CityRepo.
func NewCityRepo(db *DB) *CityRepo {
	return &CityRepo{db: db}
}

// Create inserts a city and fills in its generated ID and timestamps.
func (r *CityRepo) Create(ctx context.Context, c *domain.City) error {
	ctx, span := tracer.Start(ctx, "CityRepo.Create")
	defer span.End()

	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO cities (center)
		VALUES (ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography)
		RETURNING id::text, created_at, updated_at
	`, c.Center.Lon, c.Center.Lat).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		span.RecordError(err)
		return eris.Wrap(err, "postgres: create city")
	}
	return nil
}

// GetByID returns a city and the IDs of its roads.
func (r *CityRepo) GetByID(ctx context.Context, id string) (*domain.City, error) {
	ctx, span := tracer.Start(ctx, "CityRepo.GetByID")
	defer span.End()

	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrCityNotFound
	}

	var c domain.City
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id::text,
		       ST_Y(center::geometry) AS lat,
		       ST_X(center::geometry) AS lon,
		       created_at, updated_at
		FROM cities WHERE id = $1
	`, id).Scan(&c.ID, &c.Center.Lat, &c.Center.Lon, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCityNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, eris.Wrap(err, "postgres: get city")
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id::text FROM roads WHERE city_id = $1 ORDER BY created_at, id
	`, id)
	if err != nil {
		span.RecordError(err)
		return nil, eris.Wrap(err, "postgres: list city roads")
	}
	defer rows.Close()

	for rows.Next() {
		var roadID string
		if err := rows.Scan(&roadID); err != nil {
			return nil, eris.Wrap(err, "postgres: scan city road")
		}
		c.RoadIDs = append(c.RoadIDs, roadID)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate city roads")
	}
	return &c, nil
}
