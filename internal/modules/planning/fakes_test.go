package planning

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/careerbridge-backend/internal/data/repos"
	types "github.com/yungbote/careerbridge-backend/internal/domain"
	domainagg "github.com/yungbote/careerbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/careerbridge-backend/internal/platform/dbctx"
)

// memStore indexes one or more plan trees for the repo fakes. Rows are
// shared pointers, so repo writes are visible through the tree.
type memStore struct {
	mu         sync.Mutex
	plans      map[uuid.UUID]*types.Plan
	phases     map[uuid.UUID]*types.Phase
	milestones map[uuid.UUID]*types.Milestone
	tasks      map[uuid.UUID]*types.Task
	touched    map[uuid.UUID]time.Time
	writes     int
}

func newMemStore(plans ...*types.Plan) *memStore {
	s := &memStore{
		plans:      map[uuid.UUID]*types.Plan{},
		phases:     map[uuid.UUID]*types.Phase{},
		milestones: map[uuid.UUID]*types.Milestone{},
		tasks:      map[uuid.UUID]*types.Task{},
		touched:    map[uuid.UUID]time.Time{},
	}
	for _, p := range plans {
		s.plans[p.ID] = p
		for _, ph := range p.Phases {
			s.phases[ph.ID] = ph
			for _, m := range ph.Milestones {
				s.milestones[m.ID] = m
				for _, t := range m.Tasks {
					s.tasks[t.ID] = t
				}
			}
		}
	}
	return s
}

type memPlanRepo struct {
	repos.PlanRepo
	s *memStore
}

func (r memPlanRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.Plan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.plans[id], nil
}

func (r memPlanRepo) TouchActivity(_ dbctx.Context, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.writes++
	r.s.touched[id] = at
	if p := r.s.plans[id]; p != nil && at.After(p.LastActivityAt) {
		p.LastActivityAt = at
	}
	return nil
}

type memPhaseRepo struct {
	repos.PhaseRepo
	s *memStore
}

func (r memPhaseRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.Phase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.phases[id], nil
}

func (r memPhaseRepo) ListByPlanID(_ dbctx.Context, planID uuid.UUID) ([]*types.Phase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*types.Phase
	for _, ph := range r.s.phases {
		if ph.PlanID == planID {
			out = append(out, ph)
		}
	}
	return out, nil
}

type memMilestoneRepo struct {
	repos.MilestoneRepo
	s *memStore
}

func (r memMilestoneRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.Milestone, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m := r.s.milestones[id]
	if m == nil {
		return nil, nil
	}
	// repos return a fresh row without associations
	cp := *m
	cp.Tasks = nil
	cp.Resources = nil
	return &cp, nil
}

func (r memMilestoneRepo) ListByPhaseID(_ dbctx.Context, phaseID uuid.UUID) ([]*types.Milestone, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*types.Milestone
	for _, m := range r.s.milestones {
		if m.PhaseID == phaseID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r memMilestoneRepo) SetCompleted(_ dbctx.Context, id uuid.UUID, completed bool, at *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m := r.s.milestones[id]
	if m == nil {
		return errors.New("milestone missing")
	}
	r.s.writes++
	m.IsCompleted = completed
	if !completed {
		at = nil
	}
	m.CompletedAt = at
	return nil
}

type memTaskRepo struct {
	repos.TaskRepo
	s *memStore
}

func (r memTaskRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t := r.s.tasks[id]
	if t == nil {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r memTaskRepo) ListByMilestoneID(_ dbctx.Context, milestoneID uuid.UUID) ([]*types.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*types.Task
	for _, t := range r.s.tasks {
		if t.MilestoneID == milestoneID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memTaskRepo) SetCompleted(_ dbctx.Context, id uuid.UUID, completed bool, at *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t := r.s.tasks[id]
	if t == nil {
		return errors.New("task missing")
	}
	r.s.writes++
	t.IsCompleted = completed
	if !completed {
		at = nil
	}
	t.CompletedAt = at
	return nil
}

type fakeProfileRepo struct {
	repos.UserProfileRepo
	rows map[uuid.UUID]*types.UserProfile
}

func (r fakeProfileRepo) GetByUserID(_ dbctx.Context, userID uuid.UUID) (*types.UserProfile, error) {
	return r.rows[userID], nil
}

type fakeConversationRepo struct {
	repos.ConversationRepo
	rows map[uuid.UUID]*types.Conversation
}

func (r fakeConversationRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.Conversation, error) {
	return r.rows[id], nil
}

type fakeMessageRepo struct {
	repos.MessageRepo
	rows map[uuid.UUID][]*types.Message
}

func (r fakeMessageRepo) ListByConversationID(_ dbctx.Context, id uuid.UUID) ([]*types.Message, error) {
	return r.rows[id], nil
}

// fakePlanAggregate records created trees instead of writing them.
type fakePlanAggregate struct {
	mu      sync.Mutex
	created []*types.Plan
	err     error
}

func (a *fakePlanAggregate) Contract() domainagg.Contract { return domainagg.PlanAggregateContract }

func (a *fakePlanAggregate) CreateTree(_ context.Context, in domainagg.CreatePlanTreeInput) (domainagg.CreatePlanTreeResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return domainagg.CreatePlanTreeResult{}, a.err
	}
	if in.Plan.ID == uuid.Nil {
		in.Plan.ID = uuid.New()
	}
	a.created = append(a.created, in.Plan)
	return domainagg.CreatePlanTreeResult{PlanID: in.Plan.ID}, nil
}

func (a *fakePlanAggregate) Archive(context.Context, uuid.UUID, uuid.UUID) error { return nil }

// scriptedAI returns the queued responses in order.
type scriptedAI struct {
	mu        sync.Mutex
	responses []func() (map[string]any, error)
	prompts   []string
}

func (a *scriptedAI) GenerateJSON(_ context.Context, _ string, user, _ string, _ map[string]any) (map[string]any, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.prompts = append(a.prompts, user)
	if len(a.responses) == 0 {
		return nil, errors.New("no scripted response")
	}
	next := a.responses[0]
	a.responses = a.responses[1:]
	return next()
}

type recordingMirror struct {
	mu         sync.Mutex
	plans      int
	milestones int
	err        error
}

func (m *recordingMirror) UpsertPlan(context.Context, *types.Plan, *uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans++
	return m.err
}

func (m *recordingMirror) UpsertMilestoneProgress(context.Context, uuid.UUID, *types.Milestone) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.milestones++
	return m.err
}
