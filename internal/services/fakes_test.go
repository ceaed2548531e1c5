package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/careerbridge-backend/internal/data/repos"
	types "github.com/yungbote/careerbridge-backend/internal/domain"
	domainagg "github.com/yungbote/careerbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/careerbridge-backend/internal/domain/notification"
	"github.com/yungbote/careerbridge-backend/internal/modules/planning"
	"github.com/yungbote/careerbridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/careerbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/careerbridge-backend/internal/platform/sendgrid"
	"github.com/yungbote/careerbridge-backend/internal/realtime"
)

func authed(userID uuid.UUID) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: userID})
}

type fakeUserRepo struct {
	repos.UserRepo
	mu      sync.Mutex
	byID    map[uuid.UUID]*types.User
	renamed map[uuid.UUID]string
}

func newFakeUserRepo(users ...*types.User) *fakeUserRepo {
	r := &fakeUserRepo{byID: map[uuid.UUID]*types.User{}, renamed: map[uuid.UUID]string{}}
	for _, u := range users {
		r.byID[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ dbctx.Context, rows []*types.User) ([]*types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range rows {
		r.byID[u.ID] = u
	}
	return rows, nil
}

func (r *fakeUserRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id], nil
}

func (r *fakeUserRepo) GetByEmail(_ dbctx.Context, email string) (*types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) EmailExists(dbc dbctx.Context, email string) (bool, error) {
	u, _ := r.GetByEmail(dbc, email)
	return u != nil, nil
}

func (r *fakeUserRepo) UpdateName(_ dbctx.Context, id uuid.UUID, first, last string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renamed[id] = first + " " + last
	return nil
}

type fakeProfileRepo struct {
	repos.UserProfileRepo
	byUser map[uuid.UUID]*types.UserProfile
}

func (r *fakeProfileRepo) GetByUserID(_ dbctx.Context, userID uuid.UUID) (*types.UserProfile, error) {
	return r.byUser[userID], nil
}

func (r *fakeProfileRepo) Upsert(_ dbctx.Context, row *types.UserProfile) error {
	r.byUser[row.UserID] = row
	return nil
}

type fakePrefRepo struct {
	repos.NotificationPreferenceRepo
	byUser map[uuid.UUID]*types.NotificationPreference
}

func (r *fakePrefRepo) GetByUserID(_ dbctx.Context, userID uuid.UUID) (*types.NotificationPreference, error) {
	return r.byUser[userID], nil
}

func (r *fakePrefRepo) Upsert(_ dbctx.Context, row *types.NotificationPreference) error {
	r.byUser[row.UserID] = row
	return nil
}

type fakeEmailLogRepo struct {
	repos.EmailLogRepo
	mu   sync.Mutex
	rows []*types.EmailLog
}

func (r *fakeEmailLogRepo) Create(_ dbctx.Context, row *types.EmailLog) (*types.EmailLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row.ID = uuid.New()
	r.rows = append(r.rows, row)
	return row, nil
}

func (r *fakeEmailLogRepo) find(id uuid.UUID) *types.EmailLog {
	for _, row := range r.rows {
		if row.ID == id {
			return row
		}
	}
	return nil
}

func (r *fakeEmailLogRepo) MarkSent(_ dbctx.Context, id uuid.UUID, providerID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row := r.find(id); row != nil {
		row.Status = notification.EmailSent
		row.ProviderMessageID = providerID
		row.SentAt = &at
	}
	return nil
}

func (r *fakeEmailLogRepo) MarkFailed(_ dbctx.Context, id uuid.UUID, msg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row := r.find(id); row != nil {
		row.Status = notification.EmailFailed
		row.Error = msg
	}
	return nil
}

func (r *fakeEmailLogRepo) byType(kind string) []*types.EmailLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*types.EmailLog
	for _, row := range r.rows {
		if row.Type == kind {
			out = append(out, row)
		}
	}
	return out
}

type fakePlanRepo struct {
	repos.PlanRepo
	mu    sync.Mutex
	trees map[uuid.UUID]*types.Plan
	stale []*types.Plan
	err   error
}

func newFakePlanRepo(plans ...*types.Plan) *fakePlanRepo {
	r := &fakePlanRepo{trees: map[uuid.UUID]*types.Plan{}}
	for _, p := range plans {
		r.trees[p.ID] = p
	}
	return r
}

func (r *fakePlanRepo) LoadTree(_ dbctx.Context, id uuid.UUID) (*types.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return r.trees[id], nil
}

func (r *fakePlanRepo) GetActiveByUserID(_ dbctx.Context, userID uuid.UUID) (*types.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.trees {
		if p.UserID == userID && p.Status == "active" {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakePlanRepo) ListStaleActive(_ dbctx.Context, before time.Time, limit int) ([]*types.Plan, error) {
	return r.stale, nil
}

type sentEmail struct {
	req sendgrid.SendEmailRequest
}

type fakeEmailer struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (e *fakeEmailer) Send(_ context.Context, req sendgrid.SendEmailRequest) (*sendgrid.SendEmailResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	e.sent = append(e.sent, sentEmail{req: req})
	return &sendgrid.SendEmailResult{StatusCode: 202, MessageID: "msg-" + uuid.NewString()}, nil
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []realtime.SSEMessage
}

func (p *fakePublisher) Publish(_ context.Context, m realtime.SSEMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, m)
	return nil
}

func (p *fakePublisher) events() []realtime.SSEEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]realtime.SSEEvent, 0, len(p.msgs))
	for _, m := range p.msgs {
		out = append(out, m.Event)
	}
	return out
}

type recordingNotifier struct {
	mu         sync.Mutex
	dispatched []planning.Event
	generated  []*types.Plan
	welcomed   []*types.User
	reminders  map[uuid.UUID]string
	remindErr  error
}

func (n *recordingNotifier) Dispatch(_ context.Context, events []planning.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dispatched = append(n.dispatched, events...)
}

func (n *recordingNotifier) PlanGenerated(_ context.Context, p *types.Plan) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.generated = append(n.generated, p)
}

func (n *recordingNotifier) Welcome(_ context.Context, u *types.User) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.welcomed = append(n.welcomed, u)
}

func (n *recordingNotifier) SendReminder(_ context.Context, p *types.Plan) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if outcome, ok := n.reminders[p.ID]; ok {
		if outcome == DeliveryFailed {
			return outcome, n.remindErr
		}
		return outcome, nil
	}
	return DeliverySent, nil
}

type fakeConversationRepo struct {
	repos.ConversationRepo
	byID map[uuid.UUID]*types.Conversation
}

func (r *fakeConversationRepo) Create(_ dbctx.Context, rows []*types.Conversation) ([]*types.Conversation, error) {
	for _, c := range rows {
		r.byID[c.ID] = c
	}
	return rows, nil
}

func (r *fakeConversationRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.Conversation, error) {
	return r.byID[id], nil
}

type fakeMessageRepo struct {
	repos.MessageRepo
	byConv map[uuid.UUID][]*types.Message
}

func (r *fakeMessageRepo) ListByConversationID(_ dbctx.Context, id uuid.UUID) ([]*types.Message, error) {
	return r.byConv[id], nil
}

// memConversationAggregate appends into fakeMessageRepo with the same owner
// and status rules as the real aggregate.
type memConversationAggregate struct {
	convs *fakeConversationRepo
	msgs  *fakeMessageRepo
}

func (a *memConversationAggregate) Contract() domainagg.Contract {
	return domainagg.ConversationAggregateContract
}

func (a *memConversationAggregate) AppendMessages(_ context.Context, in domainagg.AppendMessagesInput) (domainagg.AppendMessagesResult, error) {
	const op = "Chat.Conversation.AppendMessages"
	conv := a.convs.byID[in.ConversationID]
	if conv == nil || conv.UserID != in.UserID {
		return domainagg.AppendMessagesResult{}, domainagg.NotFound(op, "conversation", in.ConversationID)
	}
	var out []*types.Message
	for _, m := range in.Messages {
		conv.NextSeq++
		msg := &types.Message{ID: uuid.New(), ConversationID: conv.ID, UserID: in.UserID, Seq: conv.NextSeq, Role: m.Role, Content: m.Content, Model: m.Model}
		a.msgs.byConv[conv.ID] = append(a.msgs.byConv[conv.ID], msg)
		out = append(out, msg)
	}
	return domainagg.AppendMessagesResult{ConversationID: conv.ID, Messages: out, NextSeq: conv.NextSeq}, nil
}

type fakeAdvisor struct {
	reply   string
	err     error
	prompts []string
}

func (a *fakeAdvisor) GenerateText(_ context.Context, system, user string) (string, error) {
	a.prompts = append(a.prompts, user)
	if a.err != nil {
		return "", a.err
	}
	return a.reply, nil
}

func (a *fakeAdvisor) Model() string { return "advisor-test" }

type fakeCompletion struct {
	result *planning.MilestoneResult
	err    error
	calls  []string
}

func (c *fakeCompletion) ToggleTask(_ context.Context, userID, taskID uuid.UUID, completed bool) (*planning.ToggleResult, error) {
	c.calls = append(c.calls, "toggle")
	if c.err != nil {
		return nil, c.err
	}
	return &planning.ToggleResult{PlanID: uuid.New(), Task: &types.Task{ID: taskID, IsCompleted: completed}}, nil
}

func (c *fakeCompletion) CompleteMilestone(_ context.Context, userID, milestoneID uuid.UUID) (*planning.MilestoneResult, error) {
	c.calls = append(c.calls, "complete")
	return c.result, c.err
}

func (c *fakeCompletion) SkipMilestone(_ context.Context, userID, milestoneID uuid.UUID) (*planning.MilestoneResult, error) {
	c.calls = append(c.calls, "skip")
	if c.err != nil {
		return nil, c.err
	}
	return &planning.MilestoneResult{Events: []planning.Event{}}, nil
}

type fakeGenerator struct {
	result *planning.GenerateResult
	err    error
	inputs []planning.GenerateInput
}

func (g *fakeGenerator) Generate(_ context.Context, in planning.GenerateInput) (*planning.GenerateResult, error) {
	g.inputs = append(g.inputs, in)
	return g.result, g.err
}

var errSendGridDown = errors.New("sendgrid: 503 service unavailable")
