package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/roadpulse/internal/core/domain"
)

// TaskQueue is the default task queue condition reports are processed on.
const TaskQueue = "condition-reports"

// ConditionReportInput is the input for the condition report workflow.
type ConditionReportInput struct {
	ReportID    string
	Lat         float64
	Lon         float64
	Filename    string
	ContentType string
	Media       []byte
	ReceivedAt  time.Time
}

// Report converts the input back into a domain report.
func (in ConditionReportInput) Report() *domain.ConditionReport {
	return &domain.ConditionReport{
		ID:          in.ReportID,
		Location:    domain.GeoPoint{Lat: in.Lat, Lon: in.Lon},
		Filename:    in.Filename,
		ContentType: in.ContentType,
		Media:       in.Media,
		ReceivedAt:  in.ReceivedAt,
	}
}

// InputFromReport builds workflow input from a report.
func InputFromReport(r *domain.ConditionReport) ConditionReportInput {
	return ConditionReportInput{
		ReportID:    r.ID,
		Lat:         r.Location.Lat,
		Lon:         r.Location.Lon,
		Filename:    r.Filename,
		ContentType: r.ContentType,
		Media:       r.Media,
		ReceivedAt:  r.ReceivedAt,
	}
}

// ConditionReportWorkflow matches a report to roads, scores it and writes the
// score to every matched road. Matching failures are final; store and scoring
// failures are retried.
func ConditionReportWorkflow(ctx workflow.Context, input ConditionReportInput) (*domain.MatchReport, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting condition report workflow", "reportID", input.ReportID)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: time.Second,
			MaximumAttempts: 5,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	var a *ConditionActivities

	// Step 1: match the report location to roads
	var ids []string
	if err := workflow.ExecuteActivity(ctx, a.MatchRoads, input.Lat, input.Lon).Get(ctx, &ids); err != nil {
		return nil, err
	}

	// Step 2: score the report
	var condition float64
	if err := workflow.ExecuteActivity(ctx, a.ScoreReport, input).Get(ctx, &condition); err != nil {
		return nil, err
	}

	// Step 3: write the score as one batch
	if err := workflow.ExecuteActivity(ctx, a.ApplyCondition, ids, condition).Get(ctx, nil); err != nil {
		return nil, err
	}

	if err := workflow.ExecuteActivity(ctx, a.AnnounceCondition, input.ReportID, input.Lat, input.Lon, ids, condition).Get(ctx, nil); err != nil {
		logger.Warn("announce condition failed", "error", err)
	}

	logger.Info("Condition applied", "roads", len(ids), "condition", condition)
	return &domain.MatchReport{MatchedCount: len(ids), MatchedIDs: ids, Condition: condition}, nil
}
