package usecases

import (
	"fmt"

	"github.com/samirrijal/roadpulse/internal/core/domain"
	"github.com/samirrijal/roadpulse/internal/pkg/geospatial"
)

// Matcher decides which candidate roads a point lies on.
type Matcher struct {
	// HalfWidthMeters is the buffer distance on each side of a segment.
	HalfWidthMeters float64
}

// Match returns the IDs of every road whose buffer contains p. All roads are
// tested, so overlapping buffers yield several IDs; a road is listed once even
// when more than one of its segments contains p. No match is reported as
// domain.ErrNoMatch.
func (m Matcher) Match(p domain.GeoPoint, roads []domain.Road) ([]string, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := validateRoads(roads); err != nil {
		return nil, err
	}

	var ids []string
	for _, road := range roads {
		for _, seg := range road.Segments() {
			if geospatial.InRoadBuffer(p, seg.Start, seg.End, m.HalfWidthMeters) {
				ids = append(ids, road.ID)
				break
			}
		}
	}

	if len(ids) == 0 {
		return nil, domain.ErrNoMatch
	}
	return ids, nil
}

// validateRoads rejects road geometry that cannot form a segment.
func validateRoads(roads []domain.Road) error {
	for _, road := range roads {
		if len(road.Coordinates) < 2 {
			return fmt.Errorf("%w: road %s has %d coordinate pairs, need at least 2",
				domain.ErrInvalidInput, road.ID, len(road.Coordinates))
		}
		for _, c := range road.Coordinates {
			if err := c.Validate(); err != nil {
				return fmt.Errorf("road %s: %w", road.ID, err)
			}
		}
	}
	return nil
}
