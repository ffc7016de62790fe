package geospatial

import (
	"math"

	"github.com/samirrijal/roadpulse/internal/core/domain"
)

// metersPerDegree is the length of one degree of latitude at the equator.
const metersPerDegree = 111320.0

// MetersToDegrees converts a ground distance to degrees using the longitude
// scale at lat. This is a local-linear approximation: the same factor is
// applied to both axes, so buffers are slightly narrow across latitude and the
// error grows with distance and with latitude. It is adequate for corridors of
// some tens of meters and is not a geodesic buffer.
func MetersToDegrees(meters, lat float64) float64 {
	return meters / (metersPerDegree * math.Cos(toRad(lat)))
}

// RoadBuffer builds the quadrilateral that extends halfWidth meters to each
// side of the segment p1→p2. It reports false for a zero-length segment, for
// which no normal exists.
//
// Work is done in degree space with x = longitude and y = latitude.
func RoadBuffer(p1, p2 domain.GeoPoint, halfWidth float64) (domain.BufferPolygon, bool) {
	x1, y1 := p1.Lon, p1.Lat
	x2, y2 := p2.Lon, p2.Lat

	dx := x2 - x1
	dy := y2 - y1
	length := math.Sqrt(dx*dx + dy*dy)
	if length == 0 {
		return domain.BufferPolygon{}, false
	}

	rDeg := MetersToDegrees(halfWidth, y1)

	// unit normal scaled to the half-width
	nx := (-dy / length) * rDeg
	ny := (dx / length) * rDeg

	return domain.BufferPolygon{
		{Lon: x1 + nx, Lat: y1 + ny},
		{Lon: x2 + nx, Lat: y2 + ny},
		{Lon: x2 - nx, Lat: y2 - ny},
		{Lon: x1 - nx, Lat: y1 - ny},
	}, true
}

// PointInPolygon is an even-odd ray-casting test. A horizontal ray is cast
// from p along its latitude; an edge counts as a crossing when one endpoint is
// above the scanline and the other at or below it, and the crossing lies east
// of p. Points exactly on an edge may resolve either way.
func PointInPolygon(p domain.GeoPoint, ring []domain.GeoPoint) bool {
	px, py := p.Lon, p.Lat
	inside := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		xi, yi := ring[i].Lon, ring[i].Lat
		xj, yj := ring[j].Lon, ring[j].Lat

		if ((yi > py) != (yj > py)) &&
			(px < (xj-xi)*(py-yi)/(yj-yi)+xi) {
			inside = !inside
		}
	}
	return inside
}

// InRoadBuffer reports whether p lies within halfWidth meters of the segment
// p1→p2, measured with the RoadBuffer approximation. Degenerate segments
// contain nothing.
func InRoadBuffer(p, p1, p2 domain.GeoPoint, halfWidth float64) bool {
	poly, ok := RoadBuffer(p1, p2, halfWidth)
	if !ok {
		return false
	}
	return PointInPolygon(p, poly[:])
}
