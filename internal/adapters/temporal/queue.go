// Package temporaladapter hands condition reports to the Temporal workflow
// that processes them asynchronously.
package temporaladapter

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/roadpulse/internal/core/domain"
	"github.com/samirrijal/roadpulse/internal/workflows"
)

// WorkflowStarter is the part of client.Client used to start workflows.
type WorkflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// ReportQueue implements ports.ReportQueue by starting a
// ConditionReportWorkflow per report.
type ReportQueue struct {
	client    WorkflowStarter
	taskQueue string
}

// NewReportQueue creates a ReportQueue on taskQueue.
func NewReportQueue(c WorkflowStarter, taskQueue string) *ReportQueue {
	if taskQueue == "" {
		taskQueue = workflows.TaskQueue
	}
	return &ReportQueue{client: c, taskQueue: taskQueue}
}

// Enqueue starts the workflow and returns its workflow ID.
func (q *ReportQueue) Enqueue(ctx context.Context, report *domain.ConditionReport) (string, error) {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}

	run, err := q.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        "condition-report-" + report.ID,
		TaskQueue: q.taskQueue,
	}, workflows.ConditionReportWorkflow, workflows.InputFromReport(report))
	if err != nil {
		return "", eris.Wrap(err, "temporal: start condition report workflow")
	}
	return run.GetID(), nil
}

// Dial connects to the Temporal frontend.
func Dial(hostPort, namespace string) (client.Client, error) {
	c, err := client.Dial(client.Options{HostPort: hostPort, Namespace: namespace})
	if err != nil {
		return nil, eris.Wrap(err, "temporal: dial")
	}
	return c, nil
}
