package services

import (
	"context"
	"slices"
	"strings"

	"github.com/yungbote/careerbridge-backend/internal/data/repos"
	types "github.com/yungbote/careerbridge-backend/internal/domain"
	domainagg "github.com/yungbote/careerbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/careerbridge-backend/internal/domain/user"
	"github.com/yungbote/careerbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/careerbridge-backend/internal/platform/logger"
)

type PreferenceService interface {
	// Get returns the stored preferences, or the defaults when none were saved.
	Get(ctx context.Context) (*types.NotificationPreference, error)
	Update(ctx context.Context, in PreferenceInput) (*types.NotificationPreference, error)
}

type PreferenceInput struct {
	EmailReminders        bool   `json:"email_reminders"`
	ReminderFrequency     string `json:"reminder_frequency"`
	MilestoneEmails       bool   `json:"milestone_emails"`
	PhaseCompletionEmails bool   `json:"phase_completion_emails"`
	MarketingEmails       bool   `json:"marketing_emails"`
}

type preferenceService struct {
	log   *logger.Logger
	prefs repos.NotificationPreferenceRepo
}

func NewPreferenceService(log *logger.Logger, prefs repos.NotificationPreferenceRepo) PreferenceService {
	return &preferenceService{log: log.With("service", "PreferenceService"), prefs: prefs}
}

func (s *preferenceService) Get(ctx context.Context) (*types.NotificationPreference, error) {
	const op = "Preferences.Get"
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.prefs.GetByUserID(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if p == nil {
		return user.DefaultNotificationPreference(userID), nil
	}
	return p, nil
}

func (s *preferenceService) Update(ctx context.Context, in PreferenceInput) (*types.NotificationPreference, error) {
	const op = "Preferences.Update"
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}
	freq := strings.ToLower(strings.TrimSpace(in.ReminderFrequency))
	if freq == "" {
		freq = user.ReminderWeekly
	}
	if !slices.Contains(user.ReminderFrequencies, freq) {
		return nil, domainagg.Validation(op, "reminder_frequency must be one of "+strings.Join(user.ReminderFrequencies, ", "), nil)
	}
	row := &types.NotificationPreference{
		UserID:                userID,
		EmailReminders:        in.EmailReminders,
		ReminderFrequency:     freq,
		MilestoneEmails:       in.MilestoneEmails,
		PhaseCompletionEmails: in.PhaseCompletionEmails,
		MarketingEmails:       in.MarketingEmails,
	}
	if err := s.prefs.Upsert(dbctx.Context{Ctx: ctx}, row); err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	return row, nil
}
