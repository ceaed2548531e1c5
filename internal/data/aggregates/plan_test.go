package aggregates_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/careerbridge-backend/internal/data/aggregates"
	aggtest "github.com/yungbote/careerbridge-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/careerbridge-backend/internal/data/repos"
	repotest "github.com/yungbote/careerbridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/careerbridge-backend/internal/domain"
	domainagg "github.com/yungbote/careerbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/careerbridge-backend/internal/domain/plan"
	"github.com/yungbote/careerbridge-backend/internal/platform/dbctx"
)

// treeStore stages writes until the injected runner commits them.
type treeStore struct {
	plans      []*types.Plan
	phases     []*types.Phase
	milestones []*types.Milestone
	tasks      []*types.Task
	resources  []*types.Resource
	archived   []uuid.UUID

	staged   treeStoreStage
	failTask error
}

type treeStoreStage struct {
	plans      []*types.Plan
	phases     []*types.Phase
	milestones []*types.Milestone
	tasks      []*types.Task
	resources  []*types.Resource
	archived   []uuid.UUID
}

func (s *treeStore) commit() {
	s.plans = append(s.plans, s.staged.plans...)
	s.phases = append(s.phases, s.staged.phases...)
	s.milestones = append(s.milestones, s.staged.milestones...)
	s.tasks = append(s.tasks, s.staged.tasks...)
	s.resources = append(s.resources, s.staged.resources...)
	for _, id := range s.staged.archived {
		for _, p := range s.plans {
			if p.ID == id {
				p.Status = plan.StatusArchived
			}
		}
	}
	s.archived = append(s.archived, s.staged.archived...)
	s.staged = treeStoreStage{}
}

func (s *treeStore) rollback() { s.staged = treeStoreStage{} }

type fakePlanRepo struct {
	repos.PlanRepo
	s *treeStore
}

func (r fakePlanRepo) Create(_ dbctx.Context, rows []*types.Plan) ([]*types.Plan, error) {
	r.s.staged.plans = append(r.s.staged.plans, rows...)
	return rows, nil
}

func (r fakePlanRepo) ArchiveActiveByUserID(_ dbctx.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, p := range r.s.plans {
		if p.UserID == userID && p.Status == plan.StatusActive {
			ids = append(ids, p.ID)
		}
	}
	r.s.staged.archived = append(r.s.staged.archived, ids...)
	return ids, nil
}

func (r fakePlanRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.Plan, error) {
	for _, p := range r.s.plans {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

type fakePhaseRepo struct {
	repos.PhaseRepo
	s *treeStore
}

func (r fakePhaseRepo) Create(_ dbctx.Context, rows []*types.Phase) ([]*types.Phase, error) {
	r.s.staged.phases = append(r.s.staged.phases, rows...)
	return rows, nil
}

type fakeMilestoneRepo struct {
	repos.MilestoneRepo
	s *treeStore
}

func (r fakeMilestoneRepo) Create(_ dbctx.Context, rows []*types.Milestone) ([]*types.Milestone, error) {
	r.s.staged.milestones = append(r.s.staged.milestones, rows...)
	return rows, nil
}

type fakeTaskRepo struct {
	repos.TaskRepo
	s *treeStore
}

func (r fakeTaskRepo) Create(_ dbctx.Context, rows []*types.Task) ([]*types.Task, error) {
	if r.s.failTask != nil {
		return nil, r.s.failTask
	}
	r.s.staged.tasks = append(r.s.staged.tasks, rows...)
	return rows, nil
}

type fakeResourceRepo struct {
	repos.ResourceRepo
	s *treeStore
}

func (r fakeResourceRepo) Create(_ dbctx.Context, rows []*types.Resource) ([]*types.Resource, error) {
	r.s.staged.resources = append(r.s.staged.resources, rows...)
	return rows, nil
}

func newTestPlanAggregate(s *treeStore, hooks *aggtest.HooksRecorder) domainagg.PlanAggregate {
	runner := &aggtest.InjectedTxRunner{OnCommit: s.commit, OnRollback: s.rollback}
	return aggregates.NewPlanAggregate(aggregates.PlanAggregateDeps{
		Base:       aggregates.BaseDeps{Runner: runner, Hooks: hooks},
		Plans:      fakePlanRepo{s: s},
		Phases:     fakePhaseRepo{s: s},
		Milestones: fakeMilestoneRepo{s: s},
		Tasks:      fakeTaskRepo{s: s},
		Resources:  fakeResourceRepo{s: s},
	})
}

func TestPlanAggregateCreateTreeArchivesPrevious(t *testing.T) {
	s := &treeStore{}
	hooks := &aggtest.HooksRecorder{}
	agg := newTestPlanAggregate(s, hooks)
	ctx := context.Background()
	userID := uuid.New()

	first := repotest.PlanTree(uuid.Nil, []int{3, 3, 3}, []int{3, 3, 3}, []int{3, 3, 3})
	first.ID = uuid.Nil
	res1, err := agg.CreateTree(ctx, domainagg.CreatePlanTreeInput{UserID: userID, Plan: first})
	if err != nil {
		t.Fatalf("CreateTree first: %v", err)
	}
	if res1.PlanID == uuid.Nil || res1.ArchivedPlanID != nil {
		t.Fatalf("first result: %+v", res1)
	}
	if first.UserID != userID || first.Status != plan.StatusActive {
		t.Fatalf("first plan not stamped: user=%s status=%s", first.UserID, first.Status)
	}
	if len(s.phases) != 3 || len(s.milestones) != 9 || len(s.tasks) != 27 || len(s.resources) != 9 {
		t.Fatalf("rows: phases=%d milestones=%d tasks=%d resources=%d", len(s.phases), len(s.milestones), len(s.tasks), len(s.resources))
	}
	for _, ph := range s.phases {
		if ph.PlanID != res1.PlanID {
			t.Fatalf("phase %s not linked to plan", ph.ID)
		}
	}

	second := repotest.PlanTree(uuid.Nil, []int{3, 3, 3}, []int{3, 3, 3}, []int{3, 3, 3})
	res2, err := agg.CreateTree(ctx, domainagg.CreatePlanTreeInput{UserID: userID, Plan: second})
	if err != nil {
		t.Fatalf("CreateTree second: %v", err)
	}
	if res2.ArchivedPlanID == nil || *res2.ArchivedPlanID != res1.PlanID {
		t.Fatalf("expected first plan archived, got %+v", res2)
	}
	active := 0
	for _, p := range s.plans {
		if p.UserID == userID && p.Status == plan.StatusActive {
			active++
		}
	}
	if active != 1 {
		t.Fatalf("active plans: want 1 got %d", active)
	}
	if got := hooks.LastStatus("Planning.Plan.CreateTree"); got != "success" {
		t.Fatalf("hook status: %q", got)
	}
}

func TestPlanAggregateCreateTreeRollsBackOnFailure(t *testing.T) {
	s := &treeStore{failTask: errors.New("insert plan_task: connection reset")}
	hooks := &aggtest.HooksRecorder{}
	agg := newTestPlanAggregate(s, hooks)

	tree := repotest.PlanTree(uuid.Nil, []int{3, 3, 3}, []int{3, 3, 3}, []int{3, 3, 3})
	_, err := agg.CreateTree(context.Background(), domainagg.CreatePlanTreeInput{UserID: uuid.New(), Plan: tree})
	if !domainagg.IsCode(err, domainagg.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if len(s.plans)+len(s.phases)+len(s.milestones)+len(s.tasks)+len(s.resources) != 0 {
		t.Fatalf("partial tree persisted: plans=%d phases=%d", len(s.plans), len(s.phases))
	}
}

func TestPlanAggregateCreateTreeValidatesInput(t *testing.T) {
	agg := newTestPlanAggregate(&treeStore{}, &aggtest.HooksRecorder{})
	ctx := context.Background()

	if _, err := agg.CreateTree(ctx, domainagg.CreatePlanTreeInput{Plan: repotest.PlanTree(uuid.Nil, []int{3})}); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("missing user: %v", err)
	}
	if _, err := agg.CreateTree(ctx, domainagg.CreatePlanTreeInput{UserID: uuid.New(), Plan: &types.Plan{}}); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("empty tree: %v", err)
	}
}

func TestPlanAggregateArchiveRejectsForeignPlan(t *testing.T) {
	s := &treeStore{}
	agg := newTestPlanAggregate(s, &aggtest.HooksRecorder{})
	owner := uuid.New()
	p := repotest.PlanTree(owner, []int{3})
	s.plans = append(s.plans, p)

	err := agg.Archive(context.Background(), uuid.New(), p.ID)
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
	if p.Status != plan.StatusActive {
		t.Fatalf("foreign archive mutated plan")
	}

	p.Status = plan.StatusArchived
	if err := agg.Archive(context.Background(), owner, p.ID); err != nil {
		t.Fatalf("archiving an archived plan should be a no-op: %v", err)
	}
}

type fakeConversationRepo struct {
	repos.ConversationRepo
	status map[uuid.UUID]string
	fail   error
}

func (r *fakeConversationRepo) UpdateStatus(_ dbctx.Context, id uuid.UUID, status string) error {
	if r.fail != nil {
		return r.fail
	}
	r.status[id] = status
	return nil
}

func TestPlanAggregateCreateTreeCompletesConversation(t *testing.T) {
	s := &treeStore{}
	convs := &fakeConversationRepo{status: map[uuid.UUID]string{}}
	runner := &aggtest.InjectedTxRunner{OnCommit: s.commit, OnRollback: s.rollback}
	agg := aggregates.NewPlanAggregate(aggregates.PlanAggregateDeps{
		Base:          aggregates.BaseDeps{Runner: runner, Hooks: &aggtest.HooksRecorder{}},
		Plans:         fakePlanRepo{s: s},
		Phases:        fakePhaseRepo{s: s},
		Milestones:    fakeMilestoneRepo{s: s},
		Tasks:         fakeTaskRepo{s: s},
		Resources:     fakeResourceRepo{s: s},
		Conversations: convs,
	})

	convID := uuid.New()
	tree := repotest.PlanTree(uuid.Nil, []int{3, 3, 3})
	tree.ConversationID = &convID
	if _, err := agg.CreateTree(context.Background(), domainagg.CreatePlanTreeInput{UserID: uuid.New(), Plan: tree}); err != nil {
		t.Fatalf("CreateTree: %v", err)
	}
	if convs.status[convID] != "completed" {
		t.Fatalf("conversation status = %q", convs.status[convID])
	}

	convs.fail = errors.New("update conversation: connection reset")
	before := len(s.plans)
	again := repotest.PlanTree(uuid.Nil, []int{3, 3, 3})
	again.ConversationID = &convID
	if _, err := agg.CreateTree(context.Background(), domainagg.CreatePlanTreeInput{UserID: uuid.New(), Plan: again}); err == nil {
		t.Fatalf("expected error when conversation update fails")
	}
	if len(s.plans) != before {
		t.Fatalf("plan persisted despite conversation failure")
	}
}
