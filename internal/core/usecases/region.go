package usecases

import (
	"context"

	"github.com/samirrijal/roadpulse/internal/core/domain"
	"github.com/samirrijal/roadpulse/internal/core/ports"
)

// RegionSelector narrows the search space to the roads of nearby cities. It
// never tests exact geometry.
type RegionSelector struct {
	supply ports.CandidateSupply
	radius domain.AngularRadius
	limit  int
}

// NewRegionSelector creates a RegionSelector searching radiusMeters around a
// center and asking the store for at most maxCandidates roads.
func NewRegionSelector(supply ports.CandidateSupply, radiusMeters float64, maxCandidates int) *RegionSelector {
	return &RegionSelector{
		supply: supply,
		radius: domain.AngularRadiusFromMeters(radiusMeters),
		limit:  maxCandidates,
	}
}

// Query builds the region query for center, rejecting invalid coordinates.
func (s *RegionSelector) Query(center domain.GeoPoint) (domain.RegionQuery, error) {
	if err := center.Validate(); err != nil {
		return domain.RegionQuery{}, err
	}
	return domain.RegionQuery{Center: center, Radius: s.radius, Limit: s.limit}, nil
}

// Candidates returns the roads around center. An empty result is reported as
// domain.ErrNoCandidates; store failures come back as *domain.StoreError.
func (s *RegionSelector) Candidates(ctx context.Context, center domain.GeoPoint) ([]domain.Road, error) {
	q, err := s.Query(center)
	if err != nil {
		return nil, err
	}

	roads, err := s.supply.FindCandidates(ctx, q)
	if err != nil {
		return nil, domain.NewStoreError("find candidates", err)
	}
	if len(roads) == 0 {
		return nil, domain.ErrNoCandidates
	}
	return roads, nil
}
