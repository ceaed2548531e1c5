package reminders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	enumspb "go.temporal.io/api/enums/v1"
	temporalsdkclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	"github.com/yungbote/careerbridge-backend/internal/platform/logger"
	"github.com/yungbote/careerbridge-backend/internal/temporalx"
)

func scheduleOptions(cfg temporalx.Config) temporalsdkclient.ScheduleOptions {
	return temporalsdkclient.ScheduleOptions{
		ID: cfg.ReminderScheduleID,
		Spec: temporalsdkclient.ScheduleSpec{
			CronExpressions: []string{cfg.ReminderCron},
		},
		Action: &temporalsdkclient.ScheduleWorkflowAction{
			ID:        cfg.ReminderScheduleID + "-run",
			Workflow:  WorkflowName,
			TaskQueue: cfg.TaskQueue,
		},
		Overlap: enumspb.SCHEDULE_OVERLAP_POLICY_SKIP,
	}
}

// EnsureSchedule creates the weekly reminder schedule, or updates its cron
// expression when a schedule with the same ID already exists.
func EnsureSchedule(ctx context.Context, log *logger.Logger, tc temporalsdkclient.Client, cfg temporalx.Config) error {
	if tc == nil {
		return fmt.Errorf("temporal client is not configured")
	}
	if strings.TrimSpace(cfg.ReminderCron) == "" || strings.TrimSpace(cfg.ReminderScheduleID) == "" {
		return fmt.Errorf("reminder schedule: cron and schedule id are required")
	}

	sc := tc.ScheduleClient()
	_, err := sc.Create(ctx, scheduleOptions(cfg))
	if err == nil {
		if log != nil {
			log.Info("Created reminder schedule", "schedule_id", cfg.ReminderScheduleID, "cron", cfg.ReminderCron)
		}
		return nil
	}
	if !errors.Is(err, temporal.ErrScheduleAlreadyRunning) {
		return fmt.Errorf("reminder schedule: create: %w", err)
	}

	h := sc.GetHandle(ctx, cfg.ReminderScheduleID)
	err = h.Update(ctx, temporalsdkclient.ScheduleUpdateOptions{
		DoUpdate: func(in temporalsdkclient.ScheduleUpdateInput) (*temporalsdkclient.ScheduleUpdate, error) {
			s := in.Description.Schedule
			s.Spec = &temporalsdkclient.ScheduleSpec{CronExpressions: []string{cfg.ReminderCron}}
			return &temporalsdkclient.ScheduleUpdate{Schedule: &s}, nil
		},
	})
	if err != nil {
		return fmt.Errorf("reminder schedule: update: %w", err)
	}
	if log != nil {
		log.Info("Updated reminder schedule", "schedule_id", cfg.ReminderScheduleID, "cron", cfg.ReminderCron)
	}
	return nil
}
