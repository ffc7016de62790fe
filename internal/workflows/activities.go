package workflows

import (
	"context"
	"errors"

	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/roadpulse/internal/core/domain"
	"github.com/samirrijal/roadpulse/internal/core/usecases"
)

// Application error types reported by the activities.
const (
	ErrTypeInvalidInput = "InvalidInput"
	ErrTypeNoCandidates = "NoCandidates"
	ErrTypeNoMatch      = "NoMatch"
)

// ConditionActivities holds the activity implementations for the condition
// report workflow.
type ConditionActivities struct {
	Roads *usecases.RoadService
}

// MatchRoads returns the IDs of the roads containing the report location.
func (a *ConditionActivities) MatchRoads(ctx context.Context, lat, lon float64) ([]string, error) {
	ids, err := a.Roads.MatchRoads(ctx, domain.GeoPoint{Lat: lat, Lon: lon})
	return ids, classify(err)
}

// ScoreReport asks the condition provider for a score.
func (a *ConditionActivities) ScoreReport(ctx context.Context, input ConditionReportInput) (float64, error) {
	condition, err := a.Roads.Score(ctx, input.Report())
	return condition, classify(err)
}

// ApplyCondition writes condition to every road in ids.
func (a *ConditionActivities) ApplyCondition(ctx context.Context, ids []string, condition float64) error {
	return classify(a.Roads.ApplyCondition(ctx, ids, condition))
}

// AnnounceCondition publishes the condition update.
func (a *ConditionActivities) AnnounceCondition(ctx context.Context, reportID string, lat, lon float64, ids []string, condition float64) error {
	a.Roads.Announce(ctx, &domain.ConditionReport{ID: reportID, Location: domain.GeoPoint{Lat: lat, Lon: lon}}, ids, condition)
	return nil
}

// classify marks outcomes that cannot change on retry as non-retryable.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrInvalidInput):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidInput, err)
	case errors.Is(err, domain.ErrNoCandidates):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeNoCandidates, err)
	case errors.Is(err, domain.ErrNoMatch):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeNoMatch, err)
	default:
		return err
	}
}
