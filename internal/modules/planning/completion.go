package planning

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/careerbridge-backend/internal/data/repos"
	types "github.com/yungbote/careerbridge-backend/internal/domain"
	domainagg "github.com/yungbote/careerbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/careerbridge-backend/internal/domain/plan"
	"github.com/yungbote/careerbridge-backend/internal/observability"
	"github.com/yungbote/careerbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/careerbridge-backend/internal/platform/logger"
)

const (
	EventMilestoneCompleted = "milestone_completed"
	EventPhaseCompleted     = "phase_completed"
)

// PlanCompleteMessage names the next step when the final phase is done.
const PlanCompleteMessage = "Complete your plan"

// Event is a notification emitted by a completion mutation. Delivery is the
// caller's job and never affects the mutation.
type Event struct {
	Kind           string     `json:"kind"`
	UserID         uuid.UUID  `json:"user_id"`
	PlanID         uuid.UUID  `json:"plan_id"`
	PhaseID        uuid.UUID  `json:"phase_id"`
	MilestoneID    *uuid.UUID `json:"milestone_id,omitempty"`
	Title          string     `json:"title"`
	NextPhaseTitle string     `json:"next_phase_title,omitempty"`
	OccurredAt     time.Time  `json:"occurred_at"`
}

type CompletionDeps struct {
	Log *logger.Logger

	Plans      repos.PlanRepo
	Phases     repos.PhaseRepo
	Milestones repos.MilestoneRepo
	Tasks      repos.TaskRepo

	Mirror PlanMirror
	Now    func() time.Time
}

// Completion is the mutation surface for task and milestone state. Writes are
// plain sequential updates without row locks, so two concurrent toggles on
// one milestone can leave its cached flag computed from a stale read.
type Completion struct {
	deps CompletionDeps
	log  *logger.Logger
}

func NewCompletion(deps CompletionDeps) *Completion {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Completion{deps: deps, log: deps.Log.With("module", "PlanCompletion")}
}

type ToggleResult struct {
	PlanID           uuid.UUID        `json:"plan_id"`
	Task             *types.Task      `json:"task"`
	Milestone        *types.Milestone `json:"milestone"`
	MilestoneChanged bool             `json:"milestone_changed"`
}

type MilestoneResult struct {
	PlanID        uuid.UUID        `json:"plan_id"`
	Milestone     *types.Milestone `json:"milestone"`
	PhaseComplete bool             `json:"phase_complete"`
	Events        []Event          `json:"events"`
}

type milestoneScope struct {
	milestone *types.Milestone
	phase     *types.Phase
	plan      *types.Plan
}

// ToggleTask sets one task's completion, recomputes its milestone from all
// sibling tasks and bumps plan activity.
func (c *Completion) ToggleTask(ctx context.Context, userID, taskID uuid.UUID, completed bool) (*ToggleResult, error) {
	const op = "Planning.ToggleTask"
	dbc := dbctx.Context{Ctx: ctx}

	task, err := c.deps.Tasks.GetByID(dbc, taskID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if task == nil {
		return nil, domainagg.NotFound(op, "task", taskID)
	}
	scope, err := c.loadScope(dbc, op, userID, task.MilestoneID)
	if err != nil {
		return nil, err
	}

	now := c.deps.Now()
	var completedAt *time.Time
	if completed {
		completedAt = &now
	}
	if err := c.deps.Tasks.SetCompleted(dbc, task.ID, completed, completedAt); err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	task.IsCompleted = completed
	task.CompletedAt = completedAt

	siblings, err := c.deps.Tasks.ListByMilestoneID(dbc, task.MilestoneID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	m := scope.milestone
	was := m.IsCompleted
	allDone := plan.AllTasksCompleted(siblings)
	var mAt *time.Time
	switch {
	case allDone && was && m.CompletedAt != nil:
		mAt = m.CompletedAt
	case allDone:
		mAt = &now
	}
	if err := c.deps.Milestones.SetCompleted(dbc, m.ID, allDone, mAt); err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	m.IsCompleted = allDone
	m.CompletedAt = mAt
	m.Tasks = siblings

	if err := c.deps.Plans.TouchActivity(dbc, scope.plan.ID, now); err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	c.mirror(ctx, scope)

	return &ToggleResult{
		PlanID:           scope.plan.ID,
		Task:             task,
		Milestone:        m,
		MilestoneChanged: was != allDone,
	}, nil
}

// CompleteMilestone requires every child task to be complete. It emits
// milestone_completed, plus phase_completed when no milestone in the phase
// is left open.
func (c *Completion) CompleteMilestone(ctx context.Context, userID, milestoneID uuid.UUID) (*MilestoneResult, error) {
	const op = "Planning.CompleteMilestone"
	dbc := dbctx.Context{Ctx: ctx}

	scope, err := c.loadScope(dbc, op, userID, milestoneID)
	if err != nil {
		return nil, err
	}
	tasks, err := c.deps.Tasks.ListByMilestoneID(dbc, milestoneID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if r := RollupTasks(tasks); r.Percent != 100 {
		return nil, domainagg.PreconditionFailed(op, "all tasks must be completed before completing the milestone")
	}
	scope.milestone.Tasks = tasks

	now, err := c.forceComplete(dbc, op, scope)
	if err != nil {
		return nil, err
	}

	res := &MilestoneResult{PlanID: scope.plan.ID, Milestone: scope.milestone}
	mid := scope.milestone.ID
	res.Events = append(res.Events, Event{
		Kind:        EventMilestoneCompleted,
		UserID:      scope.plan.UserID,
		PlanID:      scope.plan.ID,
		PhaseID:     scope.phase.ID,
		MilestoneID: &mid,
		Title:       scope.milestone.Title,
		OccurredAt:  now,
	})

	siblings, err := c.deps.Milestones.ListByPhaseID(dbc, scope.phase.ID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	res.PhaseComplete = true
	for _, m := range siblings {
		if m != nil && !m.IsCompleted {
			res.PhaseComplete = false
			break
		}
	}
	if res.PhaseComplete {
		next, err := c.nextPhaseTitle(dbc, scope.phase)
		if err != nil {
			return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
		}
		res.Events = append(res.Events, Event{
			Kind:           EventPhaseCompleted,
			UserID:         scope.plan.UserID,
			PlanID:         scope.plan.ID,
			PhaseID:        scope.phase.ID,
			Title:          scope.phase.Title,
			NextPhaseTitle: next,
			OccurredAt:     now,
		})
	}
	for _, ev := range res.Events {
		observability.Current().IncPlanEvent(ev.Kind)
	}
	c.mirror(ctx, scope)
	return res, nil
}

// SkipMilestone marks a milestone complete regardless of its tasks. No
// events are emitted.
func (c *Completion) SkipMilestone(ctx context.Context, userID, milestoneID uuid.UUID) (*MilestoneResult, error) {
	const op = "Planning.SkipMilestone"
	dbc := dbctx.Context{Ctx: ctx}

	scope, err := c.loadScope(dbc, op, userID, milestoneID)
	if err != nil {
		return nil, err
	}
	if _, err := c.forceComplete(dbc, op, scope); err != nil {
		return nil, err
	}
	c.log.Info("milestone skipped", "milestone_id", milestoneID, "plan_id", scope.plan.ID)
	c.mirror(ctx, scope)
	return &MilestoneResult{PlanID: scope.plan.ID, Milestone: scope.milestone, Events: []Event{}}, nil
}

func (c *Completion) forceComplete(dbc dbctx.Context, op string, scope *milestoneScope) (time.Time, error) {
	now := c.deps.Now()
	if err := c.deps.Milestones.SetCompleted(dbc, scope.milestone.ID, true, &now); err != nil {
		return now, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	scope.milestone.IsCompleted = true
	scope.milestone.CompletedAt = &now
	if err := c.deps.Plans.TouchActivity(dbc, scope.plan.ID, now); err != nil {
		return now, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	return now, nil
}

// loadScope resolves milestone → phase → plan and checks ownership. A plan
// owned by someone else is reported as not found.
func (c *Completion) loadScope(dbc dbctx.Context, op string, userID, milestoneID uuid.UUID) (*milestoneScope, error) {
	m, err := c.deps.Milestones.GetByID(dbc, milestoneID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if m == nil {
		return nil, domainagg.NotFound(op, "milestone", milestoneID)
	}
	ph, err := c.deps.Phases.GetByID(dbc, m.PhaseID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if ph == nil {
		return nil, domainagg.NotFound(op, "phase", m.PhaseID)
	}
	p, err := c.deps.Plans.GetByID(dbc, ph.PlanID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if p == nil || p.UserID != userID {
		return nil, domainagg.NotFound(op, "plan", ph.PlanID)
	}
	return &milestoneScope{milestone: m, phase: ph, plan: p}, nil
}

func (c *Completion) nextPhaseTitle(dbc dbctx.Context, cur *types.Phase) (string, error) {
	phases, err := c.deps.Phases.ListByPlanID(dbc, cur.PlanID)
	if err != nil {
		return "", err
	}
	sort.SliceStable(phases, func(i, j int) bool { return phases[i].OrderIndex < phases[j].OrderIndex })
	for _, ph := range phases {
		if ph != nil && ph.OrderIndex > cur.OrderIndex {
			return ph.Title, nil
		}
	}
	return PlanCompleteMessage, nil
}

func (c *Completion) mirror(ctx context.Context, scope *milestoneScope) {
	if c.deps.Mirror == nil {
		return
	}
	if err := c.deps.Mirror.UpsertMilestoneProgress(ctx, scope.phase.ID, scope.milestone); err != nil {
		c.log.Warn("plan graph mirror failed", "milestone_id", scope.milestone.ID, "error", err)
	}
}
