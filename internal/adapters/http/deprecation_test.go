package http

import (
	"errors"
	"fmt"
	"testing"

	"github.com/samirrijal/roadpulse/internal/core/domain"
)

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		path, pattern string
		want          bool
	}{
		{"/api/v1/map/get", "/api/v1/map/get", true},
		{"/api/v1/map/setroad/abc-123", "/api/v1/map/setroad/:id", true},
		{"/api/v1/map/setroad/", "/api/v1/map/setroad/:id", false},
		{"/api/v1/map/setroad/a/b", "/api/v1/map/setroad/:id", false},
		{"/api/v1/map/setcity", "/api/v1/map/get", false},
	}
	for _, tt := range tests {
		if got := matchPattern(tt.path, tt.pattern); got != tt.want {
			t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.path, tt.pattern, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: lat", domain.ErrInvalidInput), 400, "bad_request"},
		{domain.ErrNoCandidates, 404, "no_candidates"},
		{domain.ErrNoMatch, 404, "no_match"},
		{domain.ErrCityNotFound, 404, "city_not_found"},
		{domain.ErrRoadNotFound, 404, "road_not_found"},
		{domain.NewStoreError("find candidates", errors.New("timeout")), 503, "store_unavailable"},
		{fmt.Errorf("%w: model down", domain.ErrScoringUnavailable), 502, "scoring_unavailable"},
		{errors.New("boom"), 500, "internal_error"},
	}
	for _, tt := range tests {
		status, code := classify(tt.err)
		if status != tt.status || code != tt.code {
			t.Errorf("classify(%v) = %d %s, want %d %s", tt.err, status, code, tt.status, tt.code)
		}
	}
}
