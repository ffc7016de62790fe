package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/roadpulse/internal/core/domain"
)

// RoadRepo implements ports.RoadRepository with pgx and PostGIS.
type RoadRepo struct {
	db *DB
}

// NewRoadRepo creates a new RoadRepo.
func NewRoadRepo(db *DB) *RoadRepo {
	return &RoadRepo{db: db}
}

const roadColumns = `r.id::text, r.city_id::text, ST_AsEWKB(r.geom), r.condition, r.created_at, r.updated_at`

// Create inserts a road after checking that its city exists.
func (r *RoadRepo) Create(ctx context.Context, road *domain.Road) error {
	ctx, span := tracer.Start(ctx, "RoadRepo.Create")
	defer span.End()

	if _, err := uuid.Parse(road.CityID); err != nil {
		return domain.ErrCityNotFound
	}
	wkb, err := encodeLineString(road.Coordinates)
	if err != nil {
		return err
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin create road")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM cities WHERE id = $1)`, road.CityID,
	).Scan(&exists); err != nil {
		span.RecordError(err)
		return eris.Wrap(err, "postgres: check city")
	}
	if !exists {
		return domain.ErrCityNotFound
	}

	if err := tx.QueryRow(ctx, `
		INSERT INTO roads (city_id, geom, condition)
		VALUES ($1, ST_GeomFromEWKB($2), $3)
		RETURNING id::text, created_at, updated_at
	`, road.CityID, wkb, road.Condition).Scan(&road.ID, &road.CreatedAt, &road.UpdatedAt); err != nil {
		span.RecordError(err)
		return eris.Wrap(err, "postgres: insert road")
	}

	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "postgres: commit create road")
	}
	return nil
}

const insertRoadBatchSQL = `
	INSERT INTO roads (city_id, geom, condition, osm_way_id)
	VALUES ($1, ST_GeomFromEWKB($2), $3, $4)
	ON CONFLICT (city_id, osm_way_id) WHERE osm_way_id IS NOT NULL DO NOTHING
`

// CreateBatch inserts many roads using pgx.Batch. Roads carrying an OSM way
// ID already stored for their city are skipped, so re-imports add nothing.
func (r *RoadRepo) CreateBatch(ctx context.Context, roads []domain.Road) error {
	ctx, span := tracer.Start(ctx, "RoadRepo.CreateBatch")
	defer span.End()
	span.SetAttributes(attribute.Int("roads.count", len(roads)))

	if len(roads) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, road := range roads {
		wkb, err := encodeLineString(road.Coordinates)
		if err != nil {
			return err
		}
		batch.Queue(insertRoadBatchSQL, road.CityID, wkb, road.Condition, road.OSMWayID)
	}

	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range roads {
		if _, err := br.Exec(); err != nil {
			span.RecordError(err)
			return eris.Wrap(err, "postgres: batch insert roads")
		}
	}
	return nil
}

// GetByID returns a road by UUID.
func (r *RoadRepo) GetByID(ctx context.Context, id string) (*domain.Road, error) {
	ctx, span := tracer.Start(ctx, "RoadRepo.GetByID")
	defer span.End()

	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrRoadNotFound
	}

	row := r.db.Pool.QueryRow(ctx, `SELECT `+roadColumns+` FROM roads r WHERE r.id = $1`, id)
	road, err := scanRoad(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRoadNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, eris.Wrap(err, "postgres: get road")
	}
	return road, nil
}

// FindCandidates returns the roads of every city whose center lies within
// the query radius, using ST_DWithin on the city centers. A zero limit means
// no limit.
func (r *RoadRepo) FindCandidates(ctx context.Context, q domain.RegionQuery) ([]domain.Road, error) {
	ctx, span := tracer.Start(ctx, "RoadRepo.FindCandidates")
	defer span.End()

	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+roadColumns+`
		FROM roads r
		JOIN cities c ON c.id = r.city_id
		WHERE ST_DWithin(c.center, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3, false)
		ORDER BY r.created_at, r.id
		LIMIT NULLIF($4::int, 0)
	`, q.Center.Lon, q.Center.Lat, q.Radius.Meters(), q.Limit)
	if err != nil {
		span.RecordError(err)
		return nil, eris.Wrap(err, "postgres: find candidates")
	}
	defer rows.Close()

	var roads []domain.Road
	for rows.Next() {
		road, err := scanRoad(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan candidate")
		}
		roads = append(roads, *road)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, eris.Wrap(err, "postgres: iterate candidates")
	}

	span.SetAttributes(attribute.Int("roads.count", len(roads)))
	return roads, nil
}

// ApplyCondition sets condition on every road in ids with a single UPDATE.
func (r *RoadRepo) ApplyCondition(ctx context.Context, ids []string, condition float64) error {
	ctx, span := tracer.Start(ctx, "RoadRepo.ApplyCondition")
	defer span.End()
	span.SetAttributes(attribute.Int("roads.count", len(ids)))

	_, err := r.db.Pool.Exec(ctx, `
		UPDATE roads SET condition = $1, updated_at = now()
		WHERE id = ANY($2::uuid[])
	`, condition, ids)
	if err != nil {
		span.RecordError(err)
		return eris.Wrap(err, "postgres: apply condition")
	}
	return nil
}

func scanRoad(row pgx.Row) (*domain.Road, error) {
	var (
		road domain.Road
		wkb  []byte
	)
	if err := row.Scan(&road.ID, &road.CityID, &wkb, &road.Condition, &road.CreatedAt, &road.UpdatedAt); err != nil {
		return nil, err
	}
	coords, err := decodeLineString(wkb)
	if err != nil {
		return nil, err
	}
	road.Coordinates = coords
	return &road, nil
}
