package geospatial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/roadpulse/internal/core/domain"
)

func TestHaversine_KnownValues(t *testing.T) {
	// one degree of longitude on the equator
	d := Haversine(0, 0, 0, 1)
	assert.InDelta(t, 111195, d, 111195*0.005)

	// Angels Camp to Murphys, Highway 4
	d = Haversine(38.0675, -120.5436, 38.1391, -120.4561)
	assert.InDelta(t, 11046, d, 100)

	assert.Equal(t, 0.0, Haversine(43.263, -2.935, 43.263, -2.935))
}

func TestHaversine_Symmetric(t *testing.T) {
	a := Haversine(43.2630, -2.9350, 43.2700, -2.9400)
	b := Haversine(43.2700, -2.9400, 43.2630, -2.9350)
	assert.InDelta(t, a, b, 1e-9)
}

func TestBoundingBox(t *testing.T) {
	b := BoundingBox(0, 0, metersPerDegree)
	assert.InDelta(t, -1, b.MinLat, 1e-9)
	assert.InDelta(t, 1, b.MaxLat, 1e-9)
	assert.InDelta(t, -1, b.MinLon, 1e-9)
	assert.InDelta(t, 1, b.MaxLon, 1e-9)
}

func TestMetersToDegrees_ScalesWithLatitude(t *testing.T) {
	assert.InDelta(t, 50/metersPerDegree, MetersToDegrees(50, 0), 1e-12)
	assert.InDelta(t, 2*50/metersPerDegree, MetersToDegrees(50, 60), 1e-9)
}

// north-going segment of about 111 m starting on the equator
var (
	south = domain.GeoPoint{Lat: 0, Lon: 0}
	north = domain.GeoPoint{Lat: 0.001, Lon: 0}
)

func eastOfMidpoint(meters float64) domain.GeoPoint {
	return domain.GeoPoint{Lat: 0.0005, Lon: meters / metersPerDegree}
}

func TestRoadBuffer_Corners(t *testing.T) {
	poly, ok := RoadBuffer(south, north, 50)
	require.True(t, ok)

	rDeg := 50 / metersPerDegree
	want := domain.BufferPolygon{
		{Lat: 0, Lon: -rDeg},
		{Lat: 0.001, Lon: -rDeg},
		{Lat: 0.001, Lon: rDeg},
		{Lat: 0, Lon: rDeg},
	}
	for i := range want {
		assert.InDelta(t, want[i].Lat, poly[i].Lat, 1e-12, "corner %d lat", i)
		assert.InDelta(t, want[i].Lon, poly[i].Lon, 1e-12, "corner %d lon", i)
	}
}

func TestRoadBuffer_Degenerate(t *testing.T) {
	_, ok := RoadBuffer(south, south, 50)
	assert.False(t, ok)
}

func TestInRoadBuffer_PerpendicularOffsets(t *testing.T) {
	tests := []struct {
		name   string
		point  domain.GeoPoint
		inside bool
	}{
		{"on the centerline", domain.GeoPoint{Lat: 0.0005, Lon: 0}, true},
		{"20m east", eastOfMidpoint(20), true},
		{"20m west", eastOfMidpoint(-20), true},
		{"80m east", eastOfMidpoint(80), false},
		{"80m west", eastOfMidpoint(-80), false},
		{"past the north end", domain.GeoPoint{Lat: 0.0015, Lon: 0}, false},
		{"before the south end", domain.GeoPoint{Lat: -0.0005, Lon: 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.inside, InRoadBuffer(tt.point, south, north, 50))
		})
	}
}

func TestInRoadBuffer_DiagonalSegment(t *testing.T) {
	a := domain.GeoPoint{Lat: 43.2600, Lon: -2.9400}
	b := domain.GeoPoint{Lat: 43.2610, Lon: -2.9390}
	mid := domain.GeoPoint{Lat: 43.2605, Lon: -2.9395}

	assert.True(t, InRoadBuffer(mid, a, b, 50))
	assert.False(t, InRoadBuffer(domain.GeoPoint{Lat: 43.2625, Lon: -2.9420}, a, b, 50))
}

func TestInRoadBuffer_DegenerateContainsNothing(t *testing.T) {
	assert.False(t, InRoadBuffer(south, south, south, 50))
	assert.False(t, InRoadBuffer(eastOfMidpoint(1), south, south, 50))
}

func TestInRoadBuffer_Idempotent(t *testing.T) {
	p := eastOfMidpoint(49)
	first := InRoadBuffer(p, south, north, 50)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, InRoadBuffer(p, south, north, 50))
	}
}

func TestPointInPolygon_Square(t *testing.T) {
	square := []domain.GeoPoint{
		{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 1, Lon: 1}, {Lat: 1, Lon: 0},
	}
	assert.True(t, PointInPolygon(domain.GeoPoint{Lat: 0.5, Lon: 0.5}, square))
	assert.False(t, PointInPolygon(domain.GeoPoint{Lat: 0.5, Lon: 1.5}, square))
	assert.False(t, PointInPolygon(domain.GeoPoint{Lat: -0.5, Lon: 0.5}, square))
	assert.False(t, PointInPolygon(domain.GeoPoint{Lat: 0.5, Lon: 0.5}, nil))
}

func TestClosestPointOnSegment_Clamping(t *testing.T) {
	a := domain.GeoPoint{Lat: 0, Lon: 0}
	b := domain.GeoPoint{Lat: 1, Lon: 0}

	got := ClosestPointOnSegment(domain.GeoPoint{Lat: -1, Lon: 0.0001}, a, b)
	assert.Equal(t, a, got, "projection before the start clamps to the start")

	got = ClosestPointOnSegment(domain.GeoPoint{Lat: 2, Lon: 0.0001}, a, b)
	assert.Equal(t, b, got, "projection past the end clamps to the end")

	got = ClosestPointOnSegment(domain.GeoPoint{Lat: 0.25, Lon: 0.5}, a, b)
	assert.InDelta(t, 0.25, got.Lat, 1e-12)
	assert.InDelta(t, 0, got.Lon, 1e-12)
}

func TestDistanceToSegment(t *testing.T) {
	d := DistanceToSegment(eastOfMidpoint(20), south, north)
	assert.InDelta(t, 20, d, 0.5)

	// clamped to the start point
	p := domain.GeoPoint{Lat: -1, Lon: 0.0001}
	assert.InDelta(t, Distance(p, south), DistanceToSegment(p, south, domain.GeoPoint{Lat: 1, Lon: 0}), 1e-9)
}

func TestDistanceToSegment_Degenerate(t *testing.T) {
	p := domain.GeoPoint{Lat: 43.27, Lon: -2.93}
	a := domain.GeoPoint{Lat: 43.26, Lon: -2.94}
	assert.Equal(t, Distance(p, a), DistanceToSegment(p, a, a))
}

func TestDistanceToPolyline(t *testing.T) {
	p := eastOfMidpoint(20)

	assert.True(t, math.IsInf(DistanceToPolyline(p, nil), 1))
	assert.Equal(t, Distance(p, south), DistanceToPolyline(p, []domain.GeoPoint{south}))

	far := domain.GeoPoint{Lat: 0.001, Lon: 0.01}
	d := DistanceToPolyline(p, []domain.GeoPoint{far, north, south})
	assert.InDelta(t, 20, d, 0.5)
}
