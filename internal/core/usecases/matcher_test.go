package usecases_test

import (
	"errors"
	"math"
	"testing"

	"github.com/samirrijal/roadpulse/internal/core/domain"
	"github.com/samirrijal/roadpulse/internal/core/usecases"
)

func TestMatcher_Match(t *testing.T) {
	m := usecases.Matcher{HalfWidthMeters: 50}

	ids, err := m.Match(onRoad, []domain.Road{northRoad("a"), northRoad("b")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("expected [a b], got %v", ids)
	}
}

func TestMatcher_NoMatch(t *testing.T) {
	m := usecases.Matcher{HalfWidthMeters: 50}

	_, err := m.Match(offRoad, []domain.Road{northRoad("a")})
	if !errors.Is(err, domain.ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

func TestMatcher_LaterSegment(t *testing.T) {
	m := usecases.Matcher{HalfWidthMeters: 50}
	road := domain.Road{
		ID: "bend",
		Coordinates: []domain.GeoPoint{
			{Lat: 0, Lon: 0},
			{Lat: 0.001, Lon: 0},
			{Lat: 0.001, Lon: 0.001},
		},
	}

	// Only the second, eastbound segment passes here.
	ids, err := m.Match(domain.GeoPoint{Lat: 0.00105, Lon: 0.0007}, []domain.Road{road})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 1 || ids[0] != "bend" {
		t.Errorf("expected [bend], got %v", ids)
	}
}

func TestMatcher_RoadListedOnce(t *testing.T) {
	m := usecases.Matcher{HalfWidthMeters: 50}
	road := domain.Road{
		ID: "loop",
		Coordinates: []domain.GeoPoint{
			{Lat: 0, Lon: 0},
			{Lat: 0.001, Lon: 0},
			{Lat: 0, Lon: 0},
		},
	}

	ids, err := m.Match(onRoad, []domain.Road{road})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 1 {
		t.Errorf("expected a single id, got %v", ids)
	}
}

func TestMatcher_DegenerateSegmentNeverMatches(t *testing.T) {
	m := usecases.Matcher{HalfWidthMeters: 50}
	road := domain.Road{
		ID:          "dot",
		Coordinates: []domain.GeoPoint{{Lat: 1, Lon: 1}, {Lat: 1, Lon: 1}},
	}

	_, err := m.Match(domain.GeoPoint{Lat: 1, Lon: 1}, []domain.Road{road})
	if !errors.Is(err, domain.ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

func TestMatcher_InvalidInput(t *testing.T) {
	m := usecases.Matcher{HalfWidthMeters: 50}

	tests := []struct {
		name  string
		point domain.GeoPoint
		roads []domain.Road
	}{
		{"nan latitude", domain.GeoPoint{Lat: math.NaN(), Lon: 0}, []domain.Road{northRoad("a")}},
		{"latitude out of range", domain.GeoPoint{Lat: 91, Lon: 0}, []domain.Road{northRoad("a")}},
		{"single coordinate road", onRoad, []domain.Road{{ID: "short", Coordinates: []domain.GeoPoint{{Lat: 0, Lon: 0}}}}},
		{"bad road coordinate", onRoad, []domain.Road{{ID: "bad", Coordinates: []domain.GeoPoint{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 200}}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Match(tt.point, tt.roads)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestMatcher_Idempotent(t *testing.T) {
	m := usecases.Matcher{HalfWidthMeters: 50}
	roads := []domain.Road{northRoad("a"), northRoad("b")}

	first, err := m.Match(onRoad, roads)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := m.Match(onRoad, roads)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("results differ: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("results differ at %d: %v vs %v", i, first, second)
		}
	}
}
