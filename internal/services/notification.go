package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/careerbridge-backend/internal/data/repos"
	types "github.com/yungbote/careerbridge-backend/internal/domain"
	domainagg "github.com/yungbote/careerbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/careerbridge-backend/internal/domain/notification"
	"github.com/yungbote/careerbridge-backend/internal/modules/planning"
	"github.com/yungbote/careerbridge-backend/internal/observability"
	"github.com/yungbote/careerbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/careerbridge-backend/internal/platform/logger"
	"github.com/yungbote/careerbridge-backend/internal/platform/sendgrid"
	"github.com/yungbote/careerbridge-backend/internal/realtime"
)

const (
	DeliverySent    = "sent"
	DeliverySkipped = "skipped"
	DeliveryFailed  = "failed"
)

// nextMilestoneFallback is shown when the plan has no open milestone left.
const nextMilestoneFallback = "Continue your journey"

// NotificationService delivers plan notifications by email and realtime
// message. Every method is best-effort: failures are logged and recorded in
// email_log, and never propagate into the mutation that caused them.
type NotificationService interface {
	Dispatch(ctx context.Context, events []planning.Event)
	PlanGenerated(ctx context.Context, p *types.Plan)
	Welcome(ctx context.Context, u *types.User)

	// SendReminder emails the weekly nudge for a loaded plan tree and reports
	// DeliverySent, DeliverySkipped or DeliveryFailed.
	SendReminder(ctx context.Context, p *types.Plan) (string, error)
}

type NotificationServiceDeps struct {
	Log *logger.Logger

	Users     repos.UserRepo
	Profiles  repos.UserProfileRepo
	Prefs     repos.NotificationPreferenceRepo
	EmailLogs repos.EmailLogRepo
	Plans     repos.PlanRepo

	// Optional. A nil Email records every send as failed; a nil Realtime
	// skips realtime messages.
	Email    sendgrid.Client
	Realtime realtime.Publisher

	Renderer *EmailRenderer
	From     sendgrid.EmailAddress
	AppURL   string
	Now      func() time.Time
}

type notificationService struct {
	deps NotificationServiceDeps
	log  *logger.Logger
}

func NewNotificationService(deps NotificationServiceDeps) (NotificationService, error) {
	if deps.Log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if deps.Users == nil || deps.Profiles == nil || deps.Prefs == nil || deps.EmailLogs == nil || deps.Plans == nil {
		return nil, fmt.Errorf("notification service repos required")
	}
	if deps.Renderer == nil {
		r, err := NewEmailRenderer()
		if err != nil {
			return nil, err
		}
		deps.Renderer = r
	}
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	deps.AppURL = strings.TrimRight(strings.TrimSpace(deps.AppURL), "/")
	return &notificationService{deps: deps, log: deps.Log.With("service", "NotificationService")}, nil
}

type recipient struct {
	userID    uuid.UUID
	email     string
	firstName string
}

func (s *notificationService) Dispatch(ctx context.Context, events []planning.Event) {
	if len(events) == 0 {
		return
	}
	dbc := dbctx.Context{Ctx: ctx}
	trees := map[uuid.UUID]*types.Plan{}
	tree := func(planID uuid.UUID) *types.Plan {
		if p, ok := trees[planID]; ok {
			return p
		}
		p, err := s.deps.Plans.LoadTree(dbc, planID)
		if err != nil {
			s.log.Warn("load plan for notification failed", "plan_id", planID, "error", err)
		}
		trees[planID] = p
		return p
	}

	for _, ev := range events {
		switch ev.Kind {
		case planning.EventMilestoneCompleted:
			s.publish(ctx, ev.UserID, realtime.SSEEventMilestoneCompleted, ev)
			p := tree(ev.PlanID)
			next := nextMilestoneFallback
			if nm := planning.NextMilestoneOf(p); nm != nil && nm.Milestone != nil {
				next = nm.Milestone.Title
			}
			s.sendTo(ctx, ev.UserID, notification.EmailMilestoneCompleted, func(r recipient) any {
				return MilestoneEmail{
					FirstName:      r.firstName,
					MilestoneTitle: ev.Title,
					Progress:       planning.OverallPercent(p),
					NextMilestone:  next,
					PlanURL:        s.url("/plan"),
				}
			})
		case planning.EventPhaseCompleted:
			s.publish(ctx, ev.UserID, realtime.SSEEventPhaseCompleted, ev)
			p := tree(ev.PlanID)
			nextPhase := strings.TrimSpace(ev.NextPhaseTitle)
			if nextPhase == "" {
				nextPhase = planning.PlanCompleteMessage
			}
			s.sendTo(ctx, ev.UserID, notification.EmailPhaseCompleted, func(r recipient) any {
				return PhaseEmail{
					FirstName:  r.firstName,
					PhaseTitle: ev.Title,
					Progress:   planning.OverallPercent(p),
					NextPhase:  nextPhase,
					PlanURL:    s.url("/plan"),
				}
			})
		default:
			s.log.Warn("unknown plan event", "kind", ev.Kind)
		}
	}
}

func (s *notificationService) PlanGenerated(ctx context.Context, p *types.Plan) {
	if p == nil {
		return
	}
	s.publish(ctx, p.UserID, realtime.SSEEventPlanGenerated, map[string]any{
		"plan_id":       p.ID,
		"target_career": p.TargetCareer,
	})
	s.sendTo(ctx, p.UserID, notification.EmailPlanGenerated, func(r recipient) any {
		return PlanReadyEmail{
			FirstName:         r.firstName,
			TargetCareer:      p.TargetCareer,
			EstimatedDuration: p.EstimatedDuration,
			PlanURL:           s.url("/dashboard"),
		}
	})
}

func (s *notificationService) Welcome(ctx context.Context, u *types.User) {
	if u == nil {
		return
	}
	r := recipient{userID: u.ID, email: u.Email, firstName: firstNameOr(u.FirstName)}
	_, _ = s.deliver(ctx, r, notification.EmailWelcome, WelcomeEmail{FirstName: r.firstName, AppURL: s.url("")})
}

func (s *notificationService) SendReminder(ctx context.Context, p *types.Plan) (string, error) {
	const op = "Notification.SendReminder"
	if p == nil {
		return DeliveryFailed, domainagg.NewError(domainagg.CodeValidation, op, "missing plan", nil)
	}
	next := planning.NextMilestoneOf(p)
	if next == nil || next.Milestone == nil {
		// active but fully complete; nothing to nudge towards
		return DeliverySkipped, nil
	}
	tasks := make([]string, 0, len(next.NextTasks))
	for _, t := range next.NextTasks {
		tasks = append(tasks, t.Title)
	}
	r, err := s.recipient(ctx, p.UserID)
	if err != nil {
		observability.Current().IncEmail(notification.EmailWeeklyReminder, DeliveryFailed)
		return DeliveryFailed, err
	}
	outcome, err := s.deliver(ctx, r, notification.EmailWeeklyReminder, ReminderEmail{
		FirstName:        r.firstName,
		Progress:         planning.OverallPercent(p),
		CurrentMilestone: next.Milestone.Title,
		NextTasks:        tasks,
		DashboardURL:     s.url("/dashboard"),
	})
	if outcome == DeliverySent {
		s.publish(ctx, p.UserID, realtime.SSEEventReminder, map[string]any{
			"plan_id":      p.ID,
			"milestone_id": next.Milestone.ID,
		})
	}
	return outcome, err
}

// sendTo resolves the recipient and delivers one email, logging failures.
func (s *notificationService) sendTo(ctx context.Context, userID uuid.UUID, kind string, build func(r recipient) any) {
	r, err := s.recipient(ctx, userID)
	if err != nil {
		s.log.Warn("notification recipient lookup failed", "type", kind, "user_id", userID, "error", err)
		observability.Current().IncEmail(kind, DeliveryFailed)
		return
	}
	if _, err := s.deliver(ctx, r, kind, build(r)); err != nil {
		s.log.Warn("notification email failed", "type", kind, "user_id", userID, "error", err)
	}
}

func (s *notificationService) recipient(ctx context.Context, userID uuid.UUID) (recipient, error) {
	const op = "Notification.Recipient"
	dbc := dbctx.Context{Ctx: ctx}
	u, err := s.deps.Users.GetByID(dbc, userID)
	if err != nil {
		return recipient{}, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if u == nil {
		return recipient{}, domainagg.NotFound(op, "user", userID)
	}
	r := recipient{userID: u.ID, email: u.Email, firstName: firstNameOr(u.FirstName)}
	profile, err := s.deps.Profiles.GetByUserID(dbc, userID)
	if err != nil {
		s.log.Warn("profile lookup failed; using account name", "user_id", userID, "error", err)
	} else if profile != nil && strings.TrimSpace(profile.FirstName) != "" {
		r.firstName = strings.TrimSpace(profile.FirstName)
	}
	return r, nil
}

// deliver checks preferences, renders, records email_log and sends.
func (s *notificationService) deliver(ctx context.Context, r recipient, kind string, data any) (string, error) {
	dbc := dbctx.Context{Ctx: ctx}
	metrics := observability.Current()

	pref, err := s.deps.Prefs.GetByUserID(dbc, r.userID)
	if err != nil {
		// unreadable preferences fall back to the defaults
		s.log.Warn("preference lookup failed", "user_id", r.userID, "error", err)
		pref = nil
	}
	if !pref.Allows(kind) {
		metrics.IncEmail(kind, DeliverySkipped)
		return DeliverySkipped, nil
	}
	if strings.TrimSpace(r.email) == "" {
		metrics.IncEmail(kind, DeliveryFailed)
		return DeliveryFailed, fmt.Errorf("user %s has no email address", r.userID)
	}

	msg, err := s.deps.Renderer.Render(kind, data)
	if err != nil {
		metrics.IncEmail(kind, DeliveryFailed)
		return DeliveryFailed, err
	}

	row, err := s.deps.EmailLogs.Create(dbc, &types.EmailLog{
		UserID:    r.userID,
		Type:      kind,
		Recipient: r.email,
		Subject:   msg.Subject,
		Status:    notification.EmailQueued,
	})
	if err != nil {
		s.log.Warn("email_log insert failed", "type", kind, "error", err)
	}
	fail := func(cause error) (string, error) {
		if row != nil {
			if err := s.deps.EmailLogs.MarkFailed(dbc, row.ID, cause.Error()); err != nil {
				s.log.Warn("email_log mark failed", "email_log_id", row.ID, "error", err)
			}
		}
		metrics.IncEmail(kind, DeliveryFailed)
		return DeliveryFailed, cause
	}

	if s.deps.Email == nil {
		return fail(fmt.Errorf("email channel not configured"))
	}
	res, err := s.deps.Email.Send(ctx, sendgrid.SendEmailRequest{
		From:       s.deps.From,
		To:         []sendgrid.EmailAddress{{Email: r.email, Name: r.firstName}},
		Subject:    msg.Subject,
		Text:       msg.Text,
		HTML:       msg.HTML,
		Categories: []string{kind},
		CustomArgs: map[string]string{"user_id": r.userID.String(), "type": kind},
	})
	if err != nil {
		return fail(err)
	}
	if row != nil {
		messageID := ""
		if res != nil {
			messageID = res.MessageID
		}
		if err := s.deps.EmailLogs.MarkSent(dbc, row.ID, messageID, s.deps.Now()); err != nil {
			s.log.Warn("email_log mark sent failed", "email_log_id", row.ID, "error", err)
		}
	}
	metrics.IncEmail(kind, DeliverySent)
	s.log.Debug("email sent", "type", kind, "user_id", r.userID)
	return DeliverySent, nil
}

func (s *notificationService) publish(ctx context.Context, userID uuid.UUID, event realtime.SSEEvent, data any) {
	if s.deps.Realtime == nil || userID == uuid.Nil {
		return
	}
	if err := s.deps.Realtime.Publish(ctx, realtime.SSEMessage{
		Channel: realtime.UserChannel(userID),
		Event:   event,
		Data:    data,
	}); err != nil {
		s.log.Warn("realtime publish failed", "event", event, "user_id", userID, "error", err)
	}
}

func (s *notificationService) url(path string) string {
	return s.deps.AppURL + path
}

func firstNameOr(name string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return "there"
}
