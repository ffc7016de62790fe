package temporaladapter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/roadpulse/internal/core/domain"
	"github.com/samirrijal/roadpulse/internal/workflows"
)

type fakeRun struct {
	client.WorkflowRun
	id string
}

func (r fakeRun) GetID() string { return r.id }

type fakeStarter struct {
	opts client.StartWorkflowOptions
	args []interface{}
	err  error
}

func (f *fakeStarter) ExecuteWorkflow(ctx context.Context, opts client.StartWorkflowOptions, wf interface{}, args ...interface{}) (client.WorkflowRun, error) {
	f.opts = opts
	f.args = args
	if f.err != nil {
		return nil, f.err
	}
	return fakeRun{id: opts.ID}, nil
}

func TestReportQueue_Enqueue(t *testing.T) {
	starter := &fakeStarter{}
	q := NewReportQueue(starter, "")

	report := &domain.ConditionReport{Location: domain.GeoPoint{Lat: 1, Lon: 2}, Media: []byte("x")}
	id, err := q.Enqueue(context.Background(), report)
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "condition-report-"+report.ID, id)
	assert.Equal(t, workflows.TaskQueue, starter.opts.TaskQueue)
	require.Len(t, starter.args, 1)

	input, ok := starter.args[0].(workflows.ConditionReportInput)
	require.True(t, ok)
	assert.Equal(t, 1.0, input.Lat)
	assert.Equal(t, 2.0, input.Lon)
}

func TestReportQueue_EnqueueError(t *testing.T) {
	q := NewReportQueue(&fakeStarter{err: errors.New("unavailable")}, "reports")

	_, err := q.Enqueue(context.Background(), &domain.ConditionReport{ID: "r"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unavailable")
}
