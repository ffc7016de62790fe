package domain

import (
	"fmt"
	"math"
)

// EarthRadiusSphereMeters is the radius used to turn a search distance into
// the angular radius of a spherical cap (the $centerSphere convention).
const EarthRadiusSphereMeters = 6378100.0

// GeoPoint represents a geographic coordinate (WGS 84, no datum transform).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate rejects non-finite or out-of-range coordinates. Out-of-range values
// are reported, never clamped.
func (p GeoPoint) Validate() error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lon, 0) {
		return fmt.Errorf("%w: coordinates must be numeric", ErrInvalidInput)
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: latitude %v outside [-90, 90]", ErrInvalidInput, p.Lat)
	}
	if p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("%w: longitude %v outside [-180, 180]", ErrInvalidInput, p.Lon)
	}
	return nil
}

// Segment is a straight chord between two consecutive road coordinates.
type Segment struct {
	Start GeoPoint `json:"start"`
	End   GeoPoint `json:"end"`
}

// IsDegenerate reports whether both endpoints coincide.
func (s Segment) IsDegenerate() bool {
	return s.Start == s.End
}

// BufferPolygon holds the four corners of the corridor around a segment, in
// order p1+n, p2+n, p2-n, p1-n.
type BufferPolygon [4]GeoPoint

// AngularRadius is a search radius in radians on the unit sphere.
type AngularRadius float64

// AngularRadiusFromMeters converts a ground distance to an angular radius.
func AngularRadiusFromMeters(meters float64) AngularRadius {
	return AngularRadius(meters / EarthRadiusSphereMeters)
}

// Meters converts the angular radius back to a ground distance.
func (r AngularRadius) Meters() float64 {
	return float64(r) * EarthRadiusSphereMeters
}

// RegionQuery asks a store for the roads of every city whose center lies
// within Radius of Center. Limit bounds the number of roads returned; zero
// means no bound.
type RegionQuery struct {
	Center GeoPoint
	Radius AngularRadius
	Limit  int
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}
