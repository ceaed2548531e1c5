package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/careerbridge-backend/internal/data/repos"
	types "github.com/yungbote/careerbridge-backend/internal/domain"
	domainagg "github.com/yungbote/careerbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/careerbridge-backend/internal/domain/chat"
	"github.com/yungbote/careerbridge-backend/internal/domain/plan"
	"github.com/yungbote/careerbridge-backend/internal/platform/dbctx"
)

type PlanAggregateDeps struct {
	Base BaseDeps

	Plans      repos.PlanRepo
	Phases     repos.PhaseRepo
	Milestones repos.MilestoneRepo
	Tasks      repos.TaskRepo
	Resources  repos.ResourceRepo

	// Optional. When set, the source conversation is marked completed in the
	// same transaction as the tree insert.
	Conversations repos.ConversationRepo
}

type planAggregate struct {
	deps PlanAggregateDeps
}

func NewPlanAggregate(deps PlanAggregateDeps) domainagg.PlanAggregate {
	deps.Base = deps.Base.withDefaults()
	return &planAggregate{deps: deps}
}

func (a *planAggregate) Contract() domainagg.Contract {
	return domainagg.PlanAggregateContract
}

func (a *planAggregate) CreateTree(ctx context.Context, in domainagg.CreatePlanTreeInput) (domainagg.CreatePlanTreeResult, error) {
	const op = "Planning.Plan.CreateTree"
	var out domainagg.CreatePlanTreeResult
	if in.UserID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	if in.Plan == nil || len(in.Plan.Phases) == 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "plan tree is empty", nil)
	}
	if a.deps.Plans == nil || a.deps.Phases == nil || a.deps.Milestones == nil || a.deps.Tasks == nil || a.deps.Resources == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "plan aggregate repos not configured", nil)
	}

	p := in.Plan
	now := time.Now().UTC()
	p.UserID = in.UserID
	p.Status = plan.StatusActive
	if p.GeneratedAt.IsZero() {
		p.GeneratedAt = now
	}
	p.LastActivityAt = p.GeneratedAt
	rows := flattenTree(p)

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		archived, err := a.deps.Plans.ArchiveActiveByUserID(dbc, in.UserID)
		if err != nil {
			return err
		}
		if _, err := a.deps.Plans.Create(dbc, []*types.Plan{p}); err != nil {
			return err
		}
		if _, err := a.deps.Phases.Create(dbc, rows.phases); err != nil {
			return err
		}
		if _, err := a.deps.Milestones.Create(dbc, rows.milestones); err != nil {
			return err
		}
		if _, err := a.deps.Tasks.Create(dbc, rows.tasks); err != nil {
			return err
		}
		if _, err := a.deps.Resources.Create(dbc, rows.resources); err != nil {
			return err
		}
		if p.ConversationID != nil && a.deps.Conversations != nil {
			if err := a.deps.Conversations.UpdateStatus(dbc, *p.ConversationID, chat.ConversationCompleted); err != nil {
				return err
			}
		}
		out.PlanID = p.ID
		if len(archived) > 0 {
			id := archived[0]
			out.ArchivedPlanID = &id
		}
		return nil
	})
	if err != nil {
		return domainagg.CreatePlanTreeResult{}, err
	}
	a.deps.Base.Log.Info("plan tree created",
		"plan_id", out.PlanID,
		"user_id", in.UserID,
		"phases", len(rows.phases),
		"milestones", len(rows.milestones),
		"tasks", len(rows.tasks),
	)
	return out, nil
}

func (a *planAggregate) Archive(ctx context.Context, userID, planID uuid.UUID) error {
	const op = "Planning.Plan.Archive"
	if userID == uuid.Nil || planID == uuid.Nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing user_id or plan_id", nil)
	}
	if a.deps.Plans == nil {
		return domainagg.NewError(domainagg.CodeInternal, op, "plan aggregate repos not configured", nil)
	}
	return executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		row, err := a.deps.Plans.GetByID(dbc, planID)
		if err != nil {
			return err
		}
		if row == nil || row.UserID != userID {
			return domainagg.NotFound(op, "plan", planID)
		}
		if row.Status == plan.StatusArchived {
			return nil
		}
		ok, err := a.deps.Base.CASGuard.UpdateByStatus(dbc, types.Plan{}.TableName(), planID,
			[]string{plan.StatusActive, plan.StatusCompleted},
			map[string]any{"status": plan.StatusArchived, "updated_at": time.Now().UTC()},
		)
		if err != nil {
			return err
		}
		return RequireCASSuccess(ok, "plan status changed concurrently")
	})
}

type treeRows struct {
	phases     []*types.Phase
	milestones []*types.Milestone
	tasks      []*types.Task
	resources  []*types.Resource
}

// flattenTree assigns IDs and parent keys top-down so each level can be
// bulk-inserted after its parent.
func flattenTree(p *types.Plan) treeRows {
	var out treeRows
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for _, ph := range p.Phases {
		if ph == nil {
			continue
		}
		if ph.ID == uuid.Nil {
			ph.ID = uuid.New()
		}
		ph.PlanID = p.ID
		out.phases = append(out.phases, ph)
		for _, m := range ph.Milestones {
			if m == nil {
				continue
			}
			if m.ID == uuid.Nil {
				m.ID = uuid.New()
			}
			m.PhaseID = ph.ID
			out.milestones = append(out.milestones, m)
			for _, t := range m.Tasks {
				if t == nil {
					continue
				}
				if t.ID == uuid.Nil {
					t.ID = uuid.New()
				}
				t.MilestoneID = m.ID
				out.tasks = append(out.tasks, t)
			}
			for i, r := range m.Resources {
				if r == nil {
					continue
				}
				if r.ID == uuid.Nil {
					r.ID = uuid.New()
				}
				r.MilestoneID = m.ID
				r.Position = i
				out.resources = append(out.resources, r)
			}
		}
	}
	return out
}
