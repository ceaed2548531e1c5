package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/careerbridge-backend/internal/data/repos"
	domainagg "github.com/yungbote/careerbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/careerbridge-backend/internal/observability"
	"github.com/yungbote/careerbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/careerbridge-backend/internal/platform/envutil"
	"github.com/yungbote/careerbridge-backend/internal/platform/logger"
)

type ReminderSummary struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// ReminderService nudges owners of active plans that have gone quiet.
type ReminderService interface {
	Sweep(ctx context.Context) (ReminderSummary, error)
}

type ReminderConfig struct {
	StaleAfter  time.Duration
	BatchSize   int
	Concurrency int
}

func ReminderConfigFromEnv() ReminderConfig {
	return ReminderConfig{
		StaleAfter:  time.Duration(envutil.Int("REMINDER_STALE_DAYS", 7)) * 24 * time.Hour,
		BatchSize:   envutil.Int("REMINDER_BATCH_SIZE", 500),
		Concurrency: envutil.Int("REMINDER_CONCURRENCY", 8),
	}
}

type reminderService struct {
	log    *logger.Logger
	plans  repos.PlanRepo
	notify NotificationService
	cfg    ReminderConfig
	now    func() time.Time
}

func NewReminderService(log *logger.Logger, plans repos.PlanRepo, notify NotificationService, cfg ReminderConfig) ReminderService {
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 7 * 24 * time.Hour
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	return &reminderService{
		log:    log.With("service", "ReminderService"),
		plans:  plans,
		notify: notify,
		cfg:    cfg,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Sweep sends one reminder per active plan whose last activity is older than
// the stale window. Per-plan failures are counted, not returned.
func (s *reminderService) Sweep(ctx context.Context) (ReminderSummary, error) {
	const op = "Reminders.Sweep"
	var sum ReminderSummary
	if s.notify == nil {
		return sum, domainagg.NewError(domainagg.CodeInternal, op, "notification service not configured", nil)
	}
	dbc := dbctx.Context{Ctx: ctx}
	before := s.now().Add(-s.cfg.StaleAfter)
	stale, err := s.plans.ListStaleActive(dbc, before, s.cfg.BatchSize)
	if err != nil {
		return sum, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}

	var mu sync.Mutex
	record := func(outcome string) {
		mu.Lock()
		defer mu.Unlock()
		sum.Processed++
		switch outcome {
		case DeliverySent:
			sum.Sent++
		case DeliverySkipped:
			sum.Skipped++
		default:
			sum.Failed++
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for _, p := range stale {
		if p == nil {
			continue
		}
		planID := p.ID
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tree, err := s.plans.LoadTree(dbctx.Context{Ctx: gctx}, planID)
			if err != nil || tree == nil {
				s.log.Warn("reminder plan load failed", "plan_id", planID, "error", err)
				record(DeliveryFailed)
				return nil
			}
			outcome, err := s.notify.SendReminder(gctx, tree)
			if err != nil {
				s.log.Warn("reminder failed", "plan_id", planID, "user_id", tree.UserID, "error", err)
			}
			record(outcome)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return sum, fmt.Errorf("reminder sweep interrupted: %w", err)
	}

	m := observability.Current()
	m.AddReminderOutcome(DeliverySent, sum.Sent)
	m.AddReminderOutcome(DeliverySkipped, sum.Skipped)
	m.AddReminderOutcome(DeliveryFailed, sum.Failed)
	s.log.Info("reminder sweep finished",
		"processed", sum.Processed,
		"sent", sum.Sent,
		"skipped", sum.Skipped,
		"failed", sum.Failed,
	)
	return sum, nil
}
