package workflows

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/samirrijal/roadpulse/internal/adapters/memory"
	"github.com/samirrijal/roadpulse/internal/adapters/scoring"
	"github.com/samirrijal/roadpulse/internal/core/domain"
	"github.com/samirrijal/roadpulse/internal/core/ports"
	"github.com/samirrijal/roadpulse/internal/core/usecases"
)

type flakyScorer struct {
	calls atomic.Int32
}

func (f *flakyScorer) Score(ctx context.Context, r *domain.ConditionReport) (float64, error) {
	f.calls.Add(1)
	return 0, errors.New("model offline")
}

func seededStore(t *testing.T) (*memory.Store, string) {
	t.Helper()
	store := memory.NewStore()
	city := &domain.City{Center: domain.GeoPoint{Lat: 0, Lon: 0}}
	require.NoError(t, store.Cities().Create(context.Background(), city))
	road := &domain.Road{
		CityID:      city.ID,
		Coordinates: []domain.GeoPoint{{Lat: 0, Lon: 0}, {Lat: 0.001, Lon: 0}},
	}
	require.NoError(t, store.Roads().Create(context.Background(), road))
	return store, road.ID
}

func newEnv(t *testing.T, store *memory.Store, scorer ports.ConditionProvider) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()

	svc := usecases.NewRoadService(store.Roads(), scorer, nil, usecases.DefaultMatchingOptions())
	env.RegisterActivity(&ConditionActivities{Roads: svc})
	return env
}

func TestConditionReportWorkflow_Applies(t *testing.T) {
	store, roadID := seededStore(t)
	env := newEnv(t, store, scoring.NewStatic(0))

	env.ExecuteWorkflow(ConditionReportWorkflow, ConditionReportInput{
		ReportID: "r-1", Lat: 0.0005, Lon: 0.0001, Media: []byte("jpeg"),
	})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var res domain.MatchReport
	require.NoError(t, env.GetWorkflowResult(&res))
	assert.Equal(t, 1, res.MatchedCount)
	assert.Equal(t, []string{roadID}, res.MatchedIDs)

	road, err := store.Roads().GetByID(context.Background(), roadID)
	require.NoError(t, err)
	require.NotNil(t, road.Condition)
	assert.Equal(t, 96.0, *road.Condition)
}

func TestConditionReportWorkflow_NoMatchIsFinal(t *testing.T) {
	store, _ := seededStore(t)
	env := newEnv(t, store, scoring.NewStatic(0))

	env.ExecuteWorkflow(ConditionReportWorkflow, ConditionReportInput{
		ReportID: "r-2", Lat: 0.0005, Lon: 0.01, Media: []byte("jpeg"),
	})

	require.True(t, env.IsWorkflowCompleted())
	err := env.GetWorkflowError()
	require.Error(t, err)

	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, ErrTypeNoMatch, appErr.Type())
}

func TestConditionReportWorkflow_ScoringRetried(t *testing.T) {
	store, roadID := seededStore(t)
	scorer := &flakyScorer{}
	env := newEnv(t, store, scorer)

	env.ExecuteWorkflow(ConditionReportWorkflow, ConditionReportInput{
		ReportID: "r-3", Lat: 0.0005, Lon: 0.0001, Media: []byte("jpeg"),
	})

	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
	assert.Equal(t, int32(5), scorer.calls.Load())

	road, err := store.Roads().GetByID(context.Background(), roadID)
	require.NoError(t, err)
	assert.Nil(t, road.Condition)
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))

	var appErr *temporal.ApplicationError
	require.True(t, errors.As(classify(domain.ErrNoCandidates), &appErr))
	assert.True(t, appErr.NonRetryable())
	assert.Equal(t, ErrTypeNoCandidates, appErr.Type())

	storeErr := domain.NewStoreError("apply condition", errors.New("timeout"))
	assert.Same(t, storeErr, classify(storeErr))
}
