package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/samirrijal/roadpulse/internal/core/domain"
	"github.com/samirrijal/roadpulse/internal/core/ports"
)

// CityService handles city and road registration.
type CityService struct {
	cities ports.CityRepository
	roads  ports.RoadRepository
	cache  ports.CacheService
}

// NewCityService creates a new CityService. cache may be nil.
func NewCityService(cities ports.CityRepository, roads ports.RoadRepository, cache ports.CacheService) *CityService {
	return &CityService{cities: cities, roads: roads, cache: cache}
}

// CreateCity registers a city centered on center.
func (s *CityService) CreateCity(ctx context.Context, center domain.GeoPoint) (*domain.City, error) {
	if err := center.Validate(); err != nil {
		return nil, err
	}
	city := &domain.City{Center: center}
	if err := s.cities.Create(ctx, city); err != nil {
		return nil, domain.NewStoreError("create city", err)
	}
	return city, nil
}

// GetCity returns a city with the IDs of its roads.
func (s *CityService) GetCity(ctx context.Context, id string) (*domain.City, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: city id is required", domain.ErrInvalidInput)
	}

	cacheKey := cityCacheKey(id)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var city domain.City
			if err := json.Unmarshal(data, &city); err == nil {
				return &city, nil
			}
		}
	}

	city, err := s.cities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrCityNotFound) {
			return nil, err
		}
		return nil, domain.NewStoreError("get city", err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(city); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}

	return city, nil
}

// AddRoad attaches a new road to a city.
func (s *CityService) AddRoad(ctx context.Context, cityID string, coords []domain.GeoPoint, condition *float64) (*domain.Road, error) {
	if cityID == "" {
		return nil, fmt.Errorf("%w: city id is required", domain.ErrInvalidInput)
	}
	road := domain.Road{CityID: cityID, Coordinates: coords, Condition: condition}
	if err := validateRoads([]domain.Road{road}); err != nil {
		return nil, err
	}
	if condition != nil && (math.IsNaN(*condition) || math.IsInf(*condition, 0)) {
		return nil, fmt.Errorf("%w: condition must be a finite number", domain.ErrInvalidInput)
	}

	if err := s.roads.Create(ctx, &road); err != nil {
		if errors.Is(err, domain.ErrCityNotFound) {
			return nil, err
		}
		return nil, domain.NewStoreError("create road", err)
	}

	if s.cache != nil {
		_ = s.cache.Delete(ctx, cityCacheKey(cityID))
	}
	return &road, nil
}

func cityCacheKey(id string) string { return "cities:id:" + id }
