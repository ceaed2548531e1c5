package temporalworker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/activity"
	temporalsdkclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/yungbote/careerbridge-backend/internal/platform/envutil"
	"github.com/yungbote/careerbridge-backend/internal/platform/logger"
	"github.com/yungbote/careerbridge-backend/internal/services"
	"github.com/yungbote/careerbridge-backend/internal/temporalx"
	"github.com/yungbote/careerbridge-backend/internal/temporalx/reminders"
)

type Runner struct {
	log       *logger.Logger
	tc        temporalsdkclient.Client
	cfg       temporalx.Config
	reminders services.ReminderService
}

func NewRunner(log *logger.Logger, tc temporalsdkclient.Client, cfg temporalx.Config, rem services.ReminderService) (*Runner, error) {
	if tc == nil {
		return nil, fmt.Errorf("temporal client is not configured")
	}
	if rem == nil {
		return nil, fmt.Errorf("temporal worker missing reminder service")
	}
	return &Runner{log: log, tc: tc, cfg: cfg, reminders: rem}, nil
}

// Start polls the task queue until ctx is canceled and makes sure the weekly
// reminder schedule exists. Start failures are retried with backoff.
func (r *Runner) Start(ctx context.Context) error {
	if r == nil || r.tc == nil {
		return fmt.Errorf("temporal worker not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := r.cfg
	if r.log != nil {
		r.log.Info("Starting Temporal worker", "address", cfg.Address, "namespace", cfg.Namespace, "task_queue", cfg.TaskQueue)
	}

	autoRegister := envutil.Bool("TEMPORAL_AUTO_REGISTER_NAMESPACE", false)
	if autoRegister {
		if err := temporalx.EnsureNamespace(ctx, r.log, cfg); err != nil && r.log != nil {
			r.log.Warn("Temporal namespace ensure failed; worker will retry on start", "namespace", cfg.Namespace, "error", err)
		}
	}

	maxWait := envutil.Seconds("TEMPORAL_WORKER_START_MAX_WAIT_SECONDS", 60)
	backoff := envutil.Millis("TEMPORAL_WORKER_START_BACKOFF_MS", 250)
	backoffMax := envutil.Millis("TEMPORAL_WORKER_START_BACKOFF_MAX_MS", 5000)
	deadline := time.Now().Add(maxWait)

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		w := r.newWorker()
		startErr := w.Start()
		if startErr == nil {
			go func() {
				<-ctx.Done()
				w.Stop()
			}()
			if r.log != nil {
				r.log.Info("Temporal worker started", "namespace", cfg.Namespace, "task_queue", cfg.TaskQueue, "attempts", attempt)
			}
			if envutil.Bool("REMINDER_SCHEDULE_ENABLED", true) {
				if err := reminders.EnsureSchedule(ctx, r.log, r.tc, cfg); err != nil && r.log != nil {
					r.log.Warn("Reminder schedule not ensured", "schedule_id", cfg.ReminderScheduleID, "error", err)
				}
			}
			return nil
		}
		w.Stop()

		var nfe *serviceerror.NamespaceNotFound
		missingNS := errors.As(startErr, &nfe)
		if missingNS && autoRegister {
			_ = temporalx.EnsureNamespace(ctx, r.log, cfg)
		}
		if maxWait <= 0 || time.Now().After(deadline) {
			if missingNS {
				return fmt.Errorf("temporal namespace not found (namespace=%s): %w", cfg.Namespace, startErr)
			}
			return startErr
		}
		if r.log != nil {
			r.log.Warn("Temporal worker failed to start; retrying", "task_queue", cfg.TaskQueue, "attempt", attempt, "error", startErr)
		}
		time.Sleep(backoffFor(backoff, backoffMax, attempt))
	}
}

func (r *Runner) newWorker() worker.Worker {
	concurrency := r.cfg.WorkerConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	w := worker.New(r.tc, r.cfg.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize:     concurrency,
		MaxConcurrentWorkflowTaskExecutionSize: concurrency,
	})
	acts := &reminders.Activities{Log: r.log, Reminders: r.reminders}
	w.RegisterWorkflowWithOptions(reminders.Workflow, workflow.RegisterOptions{Name: reminders.WorkflowName})
	w.RegisterActivityWithOptions(acts.Sweep, activity.RegisterOptions{Name: reminders.ActivitySweep})
	return w
}

func backoffFor(base, max time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = 250 * time.Millisecond
	}
	if attempt > 20 {
		attempt = 20
	}
	sleep := base << uint(attempt-1)
	if max > 0 && sleep > max {
		return max
	}
	return sleep
}
