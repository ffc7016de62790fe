package geospatial

import (
	"math"

	"github.com/samirrijal/roadpulse/internal/core/domain"
)

// ClosestPointOnSegment projects p onto the segment a→b in degree space. The
// projection factor is clamped to [0, 1] so the result never leaves the
// segment. A zero-length segment yields a.
func ClosestPointOnSegment(p, a, b domain.GeoPoint) domain.GeoPoint {
	dx := b.Lon - a.Lon
	dy := b.Lat - a.Lat
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return a
	}

	t := ((p.Lon-a.Lon)*dx + (p.Lat-a.Lat)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))

	return domain.GeoPoint{
		Lat: a.Lat + t*dy,
		Lon: a.Lon + t*dx,
	}
}

// DistanceToSegment returns the great-circle distance in meters from p to the
// closest point of the segment a→b.
func DistanceToSegment(p, a, b domain.GeoPoint) float64 {
	return Distance(p, ClosestPointOnSegment(p, a, b))
}

// DistanceToPolyline returns the minimum DistanceToSegment over consecutive
// point pairs. A single point falls back to the direct distance; an empty
// polyline is infinitely far away.
func DistanceToPolyline(p domain.GeoPoint, pts []domain.GeoPoint) float64 {
	switch len(pts) {
	case 0:
		return math.Inf(1)
	case 1:
		return Distance(p, pts[0])
	}

	best := math.Inf(1)
	for i := 0; i < len(pts)-1; i++ {
		if d := DistanceToSegment(p, pts[i], pts[i+1]); d < best {
			best = d
		}
	}
	return best
}
