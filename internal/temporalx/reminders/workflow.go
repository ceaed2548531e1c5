package reminders

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/yungbote/careerbridge-backend/internal/services"
)

// Workflow runs a single reminder sweep. The schedule starts one execution
// per cron tick and skips a tick while the previous sweep is still running.
func Workflow(ctx workflow.Context) (services.ReminderSummary, error) {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    10 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    5 * time.Minute,
			MaximumAttempts:    3,
		},
	})

	var out services.ReminderSummary
	if err := workflow.ExecuteActivity(ctx, ActivitySweep).Get(ctx, &out); err != nil {
		return out, err
	}
	workflow.GetLogger(ctx).Info("reminder sweep finished",
		"processed", out.Processed, "sent", out.Sent, "skipped", out.Skipped, "failed", out.Failed)
	return out, nil
}
