package ports

import (
	"context"

	"github.com/samirrijal/roadpulse/internal/core/domain"
)

// CandidateSupply fetches the roads of every city within a region. It is
// backed by a spatial index and may fail with a store error.
type CandidateSupply interface {
	FindCandidates(ctx context.Context, q domain.RegionQuery) ([]domain.Road, error)
}

// ConditionWriter applies one condition value to a batch of roads. A failure
// is a failure of the whole batch.
type ConditionWriter interface {
	ApplyCondition(ctx context.Context, roadIDs []string, condition float64) error
}

// RoadIndex is the part of the road store the matching engine reads and
// writes.
type RoadIndex interface {
	CandidateSupply
	ConditionWriter
}

// RoadRepository persists roads.
type RoadRepository interface {
	RoadIndex
	Create(ctx context.Context, road *domain.Road) error
	CreateBatch(ctx context.Context, roads []domain.Road) error
	GetByID(ctx context.Context, id string) (*domain.Road, error)
}

// CityRepository persists cities.
type CityRepository interface {
	Create(ctx context.Context, city *domain.City) error
	GetByID(ctx context.Context, id string) (*domain.City, error)
}
