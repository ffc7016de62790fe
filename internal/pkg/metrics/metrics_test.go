package metrics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/samirrijal/roadpulse/internal/core/domain"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{fmt.Errorf("%w: lat", domain.ErrInvalidInput), "invalid_input"},
		{domain.ErrNoCandidates, "no_candidates"},
		{domain.ErrNoMatch, "no_match"},
		{domain.NewStoreError("find", errors.New("down")), "store_unavailable"},
		{domain.ErrScoringUnavailable, "scoring_unavailable"},
		{errors.New("other"), "error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Outcome(tt.err))
	}
}

func TestMatchedRoads_Name(t *testing.T) {
	assert.Contains(t, MatchedRoads.Desc().String(), `"roadpulse_matching_matched_roads"`)
}
