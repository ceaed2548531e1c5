package reminders

import (
	"context"
	"time"

	"go.temporal.io/sdk/temporal"

	domainagg "github.com/yungbote/careerbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/careerbridge-backend/internal/observability"
	"github.com/yungbote/careerbridge-backend/internal/platform/logger"
	"github.com/yungbote/careerbridge-backend/internal/services"
)

type Activities struct {
	Log       *logger.Logger
	Reminders services.ReminderService
}

func (a *Activities) Sweep(ctx context.Context) (services.ReminderSummary, error) {
	start := time.Now()
	sum, err := a.Reminders.Sweep(ctx)
	status := "ok"
	if err != nil {
		status = "error"
	}
	observability.Current().ObserveActivity(ActivitySweep, status, time.Since(start))
	if err != nil {
		if a.Log != nil {
			a.Log.Warn("reminder sweep failed", "error", err)
		}
		// Misconfiguration does not heal between attempts.
		if domainagg.IsCode(err, domainagg.CodeInternal) {
			return sum, temporal.NewNonRetryableApplicationError(err.Error(), "reminder_config", err)
		}
		return sum, err
	}
	if a.Log != nil {
		a.Log.Info("reminder sweep", "processed", sum.Processed, "sent", sum.Sent, "skipped", sum.Skipped, "failed", sum.Failed)
	}
	return sum, nil
}
