// Package memory provides an in-process road store for development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"github.com/google/uuid"

	"github.com/samirrijal/roadpulse/internal/core/domain"
)

// Store keeps cities and roads in memory. Region queries use an S2 spherical
// cap around the query center, matching a $centerSphere search on city
// centers.
type Store struct {
	mu        sync.RWMutex
	cities    map[string]*domain.City
	cityOrder []string
	roads     map[string]*domain.Road
	now       func() time.Time
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		cities: make(map[string]*domain.City),
		roads:  make(map[string]*domain.Road),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Cities returns the city repository view of the store.
func (s *Store) Cities() *CityRepo { return &CityRepo{s: s} }

// Roads returns the road repository view of the store.
func (s *Store) Roads() *RoadRepo { return &RoadRepo{s: s} }

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// CityRepo implements ports.CityRepository.
type CityRepo struct {
	s *Store
}

// Create stores a city and assigns it an ID.
func (r *CityRepo) Create(ctx context.Context, c *domain.City) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	c.ID = uuid.NewString()
	c.CreatedAt, c.UpdatedAt = now, now
	c.RoadIDs = nil

	stored := *c
	r.s.cities[c.ID] = &stored
	r.s.cityOrder = append(r.s.cityOrder, c.ID)
	return nil
}

// GetByID returns a copy of a city.
func (r *CityRepo) GetByID(ctx context.Context, id string) (*domain.City, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.cities[id]
	if !ok {
		return nil, domain.ErrCityNotFound
	}
	out := *c
	out.RoadIDs = append([]string(nil), c.RoadIDs...)
	return &out, nil
}

// RoadRepo implements ports.RoadRepository.
type RoadRepo struct {
	s *Store
}

// Create stores a road under an existing city.
func (r *RoadRepo) Create(ctx context.Context, road *domain.Road) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.insertRoad(road)
}

// CreateBatch stores several roads atomically: either all are stored or none.
// Roads whose OSM way is already stored for their city are skipped.
func (r *RoadRepo) CreateBatch(ctx context.Context, roads []domain.Road) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, road := range roads {
		if _, ok := r.s.cities[road.CityID]; !ok {
			return domain.ErrCityNotFound
		}
	}
	for i := range roads {
		if r.s.hasWay(roads[i].CityID, roads[i].OSMWayID) {
			continue
		}
		if err := r.s.insertRoad(&roads[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) hasWay(cityID string, wayID *int64) bool {
	if wayID == nil {
		return false
	}
	for _, id := range s.cities[cityID].RoadIDs {
		if w := s.roads[id].OSMWayID; w != nil && *w == *wayID {
			return true
		}
	}
	return false
}

func (s *Store) insertRoad(road *domain.Road) error {
	city, ok := s.cities[road.CityID]
	if !ok {
		return domain.ErrCityNotFound
	}

	now := s.now()
	road.ID = uuid.NewString()
	road.CreatedAt, road.UpdatedAt = now, now

	s.roads[road.ID] = cloneRoad(road)
	city.RoadIDs = append(city.RoadIDs, road.ID)
	city.UpdatedAt = now
	return nil
}

// GetByID returns a copy of a road.
func (r *RoadRepo) GetByID(ctx context.Context, id string) (*domain.Road, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	road, ok := r.s.roads[id]
	if !ok {
		return nil, domain.ErrRoadNotFound
	}
	return cloneRoad(road), nil
}

// FindCandidates returns the roads of every city whose center lies inside the
// spherical cap described by q, in city then road insertion order.
func (r *RoadRepo) FindCandidates(ctx context.Context, q domain.RegionQuery) ([]domain.Road, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	region := s2.CapFromCenterAngle(pointOf(q.Center), s1.Angle(q.Radius))

	var out []domain.Road
	for _, cityID := range r.s.cityOrder {
		city := r.s.cities[cityID]
		if !region.ContainsPoint(pointOf(city.Center)) {
			continue
		}
		for _, roadID := range city.RoadIDs {
			out = append(out, *cloneRoad(r.s.roads[roadID]))
			if q.Limit > 0 && len(out) >= q.Limit {
				return out, nil
			}
		}
	}
	return out, nil
}

// ApplyCondition sets condition on every known road in ids.
func (r *RoadRepo) ApplyCondition(ctx context.Context, ids []string, condition float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	for _, id := range ids {
		road, ok := r.s.roads[id]
		if !ok {
			continue
		}
		c := condition
		road.Condition = &c
		road.UpdatedAt = now
	}
	return nil
}

func pointOf(p domain.GeoPoint) s2.Point {
	return s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat, p.Lon))
}

func cloneRoad(r *domain.Road) *domain.Road {
	out := *r
	out.Coordinates = append([]domain.GeoPoint(nil), r.Coordinates...)
	if r.Condition != nil {
		c := *r.Condition
		out.Condition = &c
	}
	if r.OSMWayID != nil {
		w := *r.OSMWayID
		out.OSMWayID = &w
	}
	return &out
}
