package reminders

import (
	"context"
	"errors"
	"testing"

	enumspb "go.temporal.io/api/enums/v1"
	temporalsdkclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"

	domainagg "github.com/yungbote/careerbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/careerbridge-backend/internal/platform/logger"
	"github.com/yungbote/careerbridge-backend/internal/services"
	"github.com/yungbote/careerbridge-backend/internal/temporalx"
)

type stubSweeper struct {
	sum   services.ReminderSummary
	err   error
	calls int
}

func (s *stubSweeper) Sweep(context.Context) (services.ReminderSummary, error) {
	s.calls++
	return s.sum, s.err
}

func newEnv(sweeper *stubSweeper) *testsuite.TestWorkflowEnvironment {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	acts := &Activities{Log: logger.Nop(), Reminders: sweeper}
	env.RegisterWorkflowWithOptions(Workflow, workflow.RegisterOptions{Name: WorkflowName})
	env.RegisterActivityWithOptions(acts.Sweep, activity.RegisterOptions{Name: ActivitySweep})
	return env
}

func TestWorkflowReturnsSummary(t *testing.T) {
	sweeper := &stubSweeper{sum: services.ReminderSummary{Processed: 3, Sent: 2, Skipped: 1}}
	env := newEnv(sweeper)
	env.ExecuteWorkflow(Workflow)

	if !env.IsWorkflowCompleted() {
		t.Fatalf("workflow did not complete")
	}
	if err := env.GetWorkflowError(); err != nil {
		t.Fatalf("workflow error: %v", err)
	}
	var got services.ReminderSummary
	if err := env.GetWorkflowResult(&got); err != nil {
		t.Fatalf("result: %v", err)
	}
	if got != sweeper.sum {
		t.Fatalf("summary = %+v, want %+v", got, sweeper.sum)
	}
}

func TestWorkflowDoesNotRetryMisconfiguration(t *testing.T) {
	sweeper := &stubSweeper{err: domainagg.NewError(domainagg.CodeInternal, "Reminders.Sweep", "notification service not configured", nil)}
	env := newEnv(sweeper)
	env.ExecuteWorkflow(Workflow)

	if !env.IsWorkflowCompleted() {
		t.Fatalf("workflow did not complete")
	}
	if err := env.GetWorkflowError(); err == nil {
		t.Fatalf("expected workflow error")
	}
	if sweeper.calls != 1 {
		t.Fatalf("sweep calls = %d, want 1", sweeper.calls)
	}
}

func TestWorkflowRetriesTransientFailure(t *testing.T) {
	sweeper := &stubSweeper{err: errors.New("connection reset")}
	env := newEnv(sweeper)
	env.ExecuteWorkflow(Workflow)

	if err := env.GetWorkflowError(); err == nil {
		t.Fatalf("expected workflow error")
	}
	if sweeper.calls != 3 {
		t.Fatalf("sweep calls = %d, want 3", sweeper.calls)
	}
}

func TestScheduleOptions(t *testing.T) {
	cfg := temporalx.Config{TaskQueue: "careerbridge", ReminderCron: "0 9 * * 1", ReminderScheduleID: "weekly"}
	opts := scheduleOptions(cfg)
	if opts.ID != "weekly" || len(opts.Spec.CronExpressions) != 1 || opts.Spec.CronExpressions[0] != "0 9 * * 1" {
		t.Fatalf("opts = %+v", opts)
	}
	if opts.Overlap != enumspb.SCHEDULE_OVERLAP_POLICY_SKIP {
		t.Fatalf("overlap = %v", opts.Overlap)
	}
	action, ok := opts.Action.(*temporalsdkclient.ScheduleWorkflowAction)
	if !ok || action.Workflow != WorkflowName || action.TaskQueue != "careerbridge" {
		t.Fatalf("action = %+v", opts.Action)
	}
}

func TestEnsureScheduleRequiresClient(t *testing.T) {
	if err := EnsureSchedule(context.Background(), nil, nil, temporalx.Config{}); err == nil {
		t.Fatalf("expected error without client")
	}
}
