package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/careerbridge-backend/internal/data/repos"
	types "github.com/yungbote/careerbridge-backend/internal/domain"
	domainagg "github.com/yungbote/careerbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/careerbridge-backend/internal/domain/plan"
	"github.com/yungbote/careerbridge-backend/internal/modules/planning"
	"github.com/yungbote/careerbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/careerbridge-backend/internal/platform/logger"
	"github.com/yungbote/careerbridge-backend/internal/realtime"
)

const (
	defaultFeaturedLimit = 5
	maxFeaturedLimit     = 20
)

type PlanService interface {
	Generate(ctx context.Context, conversationID uuid.UUID) (*planning.GenerateResult, error)
	Active(ctx context.Context) (*types.Plan, error)
	Get(ctx context.Context, planID uuid.UUID) (*types.Plan, error)
	Progress(ctx context.Context, planID uuid.UUID) (*planning.Summary, error)
	FeaturedResources(ctx context.Context, planID uuid.UUID, limit int) ([]*types.Resource, error)
	Archive(ctx context.Context, planID uuid.UUID) error

	ToggleTask(ctx context.Context, taskID uuid.UUID, completed bool) (*planning.ToggleResult, error)
	CompleteMilestone(ctx context.Context, milestoneID uuid.UUID) (*planning.MilestoneResult, error)
	SkipMilestone(ctx context.Context, milestoneID uuid.UUID) (*planning.MilestoneResult, error)
}

// PlanGenerator and PlanCompletion are the slices of the planning module the
// service drives.
type PlanGenerator interface {
	Generate(ctx context.Context, in planning.GenerateInput) (*planning.GenerateResult, error)
}

type PlanCompletion interface {
	ToggleTask(ctx context.Context, userID, taskID uuid.UUID, completed bool) (*planning.ToggleResult, error)
	CompleteMilestone(ctx context.Context, userID, milestoneID uuid.UUID) (*planning.MilestoneResult, error)
	SkipMilestone(ctx context.Context, userID, milestoneID uuid.UUID) (*planning.MilestoneResult, error)
}

type PlanServiceDeps struct {
	Log        *logger.Logger
	Plans      repos.PlanRepo
	Aggregate  domainagg.PlanAggregate
	Generator  PlanGenerator
	Completion PlanCompletion

	// Optional.
	Notify   NotificationService
	Realtime realtime.Publisher
	Mirror   PlanStatusMirror
	Now      func() time.Time
}

// PlanStatusMirror receives best-effort plan status changes (the graph store).
type PlanStatusMirror interface {
	SetPlanStatus(ctx context.Context, planID uuid.UUID, status string) error
}

type planService struct {
	deps PlanServiceDeps
	log  *logger.Logger
}

func NewPlanService(deps PlanServiceDeps) PlanService {
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	return &planService{deps: deps, log: deps.Log.With("service", "PlanService")}
}

func (s *planService) Generate(ctx context.Context, conversationID uuid.UUID) (*planning.GenerateResult, error) {
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.deps.Generator.Generate(ctx, planning.GenerateInput{UserID: userID, ConversationID: conversationID})
	if err != nil {
		return nil, err
	}
	s.log.Info("plan generated",
		"plan_id", res.Plan.ID,
		"user_id", userID,
		"attempts", res.Attempts,
		"target_career", res.TargetCareer,
	)
	if res.ArchivedPlanID != nil {
		s.publish(ctx, userID, realtime.SSEEventPlanArchived, map[string]any{"plan_id": *res.ArchivedPlanID})
	}
	if s.deps.Notify != nil {
		s.deps.Notify.PlanGenerated(ctx, res.Plan)
	}
	return res, nil
}

func (s *planService) Active(ctx context.Context) (*types.Plan, error) {
	const op = "Plan.Active"
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	p, err := s.deps.Plans.GetActiveByUserID(dbc, userID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if p == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "no active plan", nil)
	}
	return s.loadOwned(ctx, op, userID, p.ID)
}

func (s *planService) Get(ctx context.Context, planID uuid.UUID) (*types.Plan, error) {
	const op = "Plan.Get"
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}
	return s.loadOwned(ctx, op, userID, planID)
}

func (s *planService) Progress(ctx context.Context, planID uuid.UUID) (*planning.Summary, error) {
	const op = "Plan.Progress"
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.loadOwned(ctx, op, userID, planID)
	if err != nil {
		return nil, err
	}
	sum := planning.Summarize(p, s.deps.Now())
	return &sum, nil
}

func (s *planService) FeaturedResources(ctx context.Context, planID uuid.UUID, limit int) ([]*types.Resource, error) {
	const op = "Plan.FeaturedResources"
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultFeaturedLimit
	}
	if limit > maxFeaturedLimit {
		limit = maxFeaturedLimit
	}
	p, err := s.loadOwned(ctx, op, userID, planID)
	if err != nil {
		return nil, err
	}
	return planning.FeaturedResources(p, limit), nil
}

func (s *planService) Archive(ctx context.Context, planID uuid.UUID) error {
	userID, err := requestUserID(ctx)
	if err != nil {
		return err
	}
	if err := s.deps.Aggregate.Archive(ctx, userID, planID); err != nil {
		return err
	}
	if s.deps.Mirror != nil {
		if err := s.deps.Mirror.SetPlanStatus(ctx, planID, plan.StatusArchived); err != nil {
			s.log.Warn("graph mirror status update failed", "plan_id", planID, "error", err)
		}
	}
	s.publish(ctx, userID, realtime.SSEEventPlanArchived, map[string]any{"plan_id": planID})
	return nil
}

func (s *planService) ToggleTask(ctx context.Context, taskID uuid.UUID, completed bool) (*planning.ToggleResult, error) {
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.deps.Completion.ToggleTask(ctx, userID, taskID, completed)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, userID, realtime.SSEEventTaskToggled, res)
	return res, nil
}

func (s *planService) CompleteMilestone(ctx context.Context, milestoneID uuid.UUID) (*planning.MilestoneResult, error) {
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.deps.Completion.CompleteMilestone(ctx, userID, milestoneID)
	if err != nil {
		return nil, err
	}
	if s.deps.Notify != nil {
		// delivery must outlive a client that disconnects right after the write
		s.deps.Notify.Dispatch(context.WithoutCancel(ctx), res.Events)
	}
	return res, nil
}

func (s *planService) SkipMilestone(ctx context.Context, milestoneID uuid.UUID) (*planning.MilestoneResult, error) {
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}
	return s.deps.Completion.SkipMilestone(ctx, userID, milestoneID)
}

// loadOwned loads the full tree; plans owned by someone else are not found.
func (s *planService) loadOwned(ctx context.Context, op string, userID, planID uuid.UUID) (*types.Plan, error) {
	p, err := s.deps.Plans.LoadTree(dbctx.Context{Ctx: ctx}, planID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if p == nil || p.UserID != userID {
		return nil, domainagg.NotFound(op, "plan", planID)
	}
	return p, nil
}

func (s *planService) publish(ctx context.Context, userID uuid.UUID, event realtime.SSEEvent, data any) {
	if s.deps.Realtime == nil {
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
