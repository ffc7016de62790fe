package usecases_test

import (
	"context"

	"github.com/samirrijal/roadpulse/internal/core/domain"
)

// --- Mock RoadIndex / RoadRepository ---

type mockRoadRepo struct {
	findFn   func(ctx context.Context, q domain.RegionQuery) ([]domain.Road, error)
	applyFn  func(ctx context.Context, ids []string, condition float64) error
	createFn func(ctx context.Context, road *domain.Road) error

	findCalls  int
	applyCalls int
	lastQuery  domain.RegionQuery
}

func (m *mockRoadRepo) FindCandidates(ctx context.Context, q domain.RegionQuery) ([]domain.Road, error) {
	m.findCalls++
	m.lastQuery = q
	if m.findFn != nil {
		return m.findFn(ctx, q)
	}
	return nil, nil
}

func (m *mockRoadRepo) ApplyCondition(ctx context.Context, ids []string, condition float64) error {
	m.applyCalls++
	if m.applyFn != nil {
		return m.applyFn(ctx, ids, condition)
	}
	return nil
}

func (m *mockRoadRepo) Create(ctx context.Context, road *domain.Road) error {
	if m.createFn != nil {
		return m.createFn(ctx, road)
	}
	road.ID = "road-new"
	return nil
}

func (m *mockRoadRepo) CreateBatch(ctx context.Context, roads []domain.Road) error { return nil }
func (m *mockRoadRepo) GetByID(ctx context.Context, id string) (*domain.Road, error) {
	return nil, nil
}

// --- Mock CityRepository ---

type mockCityRepo struct {
	createFn func(ctx context.Context, city *domain.City) error
	getFn    func(ctx context.Context, id string) (*domain.City, error)
	getCalls int
}

func (m *mockCityRepo) Create(ctx context.Context, city *domain.City) error {
	if m.createFn != nil {
		return m.createFn(ctx, city)
	}
	city.ID = "city-new"
	return nil
}

func (m *mockCityRepo) GetByID(ctx context.Context, id string) (*domain.City, error) {
	m.getCalls++
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, domain.ErrCityNotFound
}

// --- Mock ConditionProvider ---

type mockScorer struct {
	scoreFn func(ctx context.Context, r *domain.ConditionReport) (float64, error)
	calls   int
}

func (m *mockScorer) Score(ctx context.Context, r *domain.ConditionReport) (float64, error) {
	m.calls++
	if m.scoreFn != nil {
		return m.scoreFn(ctx, r)
	}
	return 96, nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	events []*domain.ConditionUpdated
	err    error
}

func (m *mockPublisher) PublishConditionUpdated(ctx context.Context, e *domain.ConditionUpdated) error {
	m.events = append(m.events, e)
	return m.err
}

// --- Mock CacheService ---

type mockCache struct {
	data map[string][]byte
}

func newMockCache() *mockCache { return &mockCache{data: map[string][]byte{}} }

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, context.Canceled
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttl int) error {
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

// northRoad runs 0.001 degrees north from the origin.
func northRoad(id string) domain.Road {
	return domain.Road{
		ID:          id,
		Coordinates: []domain.GeoPoint{{Lat: 0, Lon: 0}, {Lat: 0.001, Lon: 0}},
	}
}

// onRoad lies about 11 m east of northRoad's midpoint.
var onRoad = domain.GeoPoint{Lat: 0.0005, Lon: 0.0001}

// offRoad lies about 111 m east of northRoad's midpoint.
var offRoad = domain.GeoPoint{Lat: 0.0005, Lon: 0.001}
