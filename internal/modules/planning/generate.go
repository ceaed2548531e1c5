package planning

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/careerbridge-backend/internal/data/repos"
	types "github.com/yungbote/careerbridge-backend/internal/domain"
	domainagg "github.com/yungbote/careerbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/careerbridge-backend/internal/domain/chat"
	"github.com/yungbote/careerbridge-backend/internal/observability"
	"github.com/yungbote/careerbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/careerbridge-backend/internal/platform/httpx"
	"github.com/yungbote/careerbridge-backend/internal/platform/logger"
)

// StructuredGenerator is the slice of the LLM client the orchestrator needs.
type StructuredGenerator interface {
	GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error)
}

// PlanMirror receives best-effort copies of plan state (the graph store).
type PlanMirror interface {
	UpsertPlan(ctx context.Context, p *types.Plan, supersedes *uuid.UUID) error
	UpsertMilestoneProgress(ctx context.Context, phaseID uuid.UUID, m *types.Milestone) error
}

type GeneratorDeps struct {
	Log *logger.Logger
	AI  StructuredGenerator

	Profiles      repos.UserProfileRepo
	Conversations repos.ConversationRepo
	Messages      repos.MessageRepo
	Plans         domainagg.PlanAggregate

	Extractor Extractor
	Policy    *Policy
	Mirror    PlanMirror

	// Sleep and Now are replaceable in tests.
	Sleep func(ctx context.Context, d time.Duration) error
	Now   func() time.Time
}

type Generator struct {
	deps GeneratorDeps
	log  *logger.Logger
}

func NewGenerator(deps GeneratorDeps) *Generator {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.Policy == nil {
		deps.Policy = CurrentPolicy(deps.Log)
	}
	if deps.Extractor == nil {
		deps.Extractor = NewPatternExtractor(deps.Policy)
	}
	if deps.Sleep == nil {
		deps.Sleep = httpx.Sleep
	}
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Generator{deps: deps, log: deps.Log.With("module", "PlanGenerator")}
}

type GenerateInput struct {
	UserID         uuid.UUID
	ConversationID uuid.UUID
}

type GenerateResult struct {
	Plan           *types.Plan
	Attempts       int
	TargetCareer   string
	ArchivedPlanID *uuid.UUID
}

type generationContext struct {
	profile  *types.UserProfile
	conv     *types.Conversation
	messages []*types.Message
}

// Generate turns a conversation into a persisted plan tree. Validation and
// provider failures share one retry budget; exhausting it returns a
// CodeGenerationFailed error. Calling it twice creates two plans.
func (g *Generator) Generate(ctx context.Context, in GenerateInput) (*GenerateResult, error) {
	const op = "Planning.Generate"
	start := time.Now()

	ctx, span := observability.Tracer().Start(ctx, "planning.generate", trace.WithAttributes(
		attribute.String("conversation.id", in.ConversationID.String()),
	))
	defer span.End()

	res, err := g.generate(ctx, op, in)
	outcome := "success"
	attempts := 0
	if res != nil {
		attempts = res.Attempts
	}
	if err != nil {
		outcome = string(domainagg.CodeOf(err))
		if outcome == "" {
			outcome = "error"
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	span.SetAttributes(attribute.Int("generation.attempts", attempts), attribute.String("generation.outcome", outcome))
	observability.Current().ObservePlanGeneration(outcome, attempts, time.Since(start))
	return res, err
}

func (g *Generator) generate(ctx context.Context, op string, in GenerateInput) (*GenerateResult, error) {
	if in.UserID == uuid.Nil || in.ConversationID == uuid.Nil {
		return nil, domainagg.Validation(op, "user_id and conversation_id are required", nil)
	}
	if g.deps.AI == nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "language model client not configured", nil)
	}

	gc, err := g.load(ctx, op, in)
	if err != nil {
		return nil, err
	}

	var userTexts []string
	for _, m := range gc.messages {
		if m != nil && m.Role == chat.RoleUser {
			userTexts = append(userTexts, m.Content)
		}
	}
	target, err := g.deps.Extractor.Extract(ctx, userTexts)
	if err != nil || target == "" {
		if err != nil {
			g.log.Warn("target career extraction failed; using fallback", "error", err)
		}
		target = g.deps.Policy.FallbackTargetCareer
	}

	pin := PromptInput{
		Profile:       gc.profile,
		Transcript:    BuildTranscript(gc.messages),
		CurrentCareer: gc.profile.CurrentCareer(),
		TargetCareer:  target,
		Limits:        g.deps.Policy.Limits,
	}
	candidate, attempts, err := g.generateCandidate(ctx, op, pin)
	res := &GenerateResult{Attempts: attempts, TargetCareer: target}
	if err != nil {
		return res, err
	}

	convID := in.ConversationID
	tree := candidate.ToDomain(in.UserID, &convID, g.deps.Now())
	created, err := g.deps.Plans.CreateTree(ctx, domainagg.CreatePlanTreeInput{UserID: in.UserID, Plan: tree})
	if err != nil {
		return res, err
	}
	res.Plan = tree
	res.ArchivedPlanID = created.ArchivedPlanID

	if g.deps.Mirror != nil {
		if err := g.deps.Mirror.UpsertPlan(ctx, tree, created.ArchivedPlanID); err != nil {
			g.log.Warn("plan graph mirror failed", "plan_id", created.PlanID, "error", err)
		}
	}

	g.log.Info("plan generated",
		"plan_id", created.PlanID,
		"user_id", in.UserID,
		"attempts", attempts,
		"target_career", target,
	)
	return res, nil
}

func (g *Generator) load(ctx context.Context, op string, in GenerateInput) (*generationContext, error) {
	out := &generationContext{}
	eg, egctx := errgroup.WithContext(ctx)
	dbc := dbctx.Context{Ctx: egctx}

	eg.Go(func() error {
		p, err := g.deps.Profiles.GetByUserID(dbc, in.UserID)
		out.profile = p
		return err
	})
	eg.Go(func() error {
		c, err := g.deps.Conversations.GetByID(dbc, in.ConversationID)
		out.conv = c
		return err
	})
	eg.Go(func() error {
		msgs, err := g.deps.Messages.ListByConversationID(dbc, in.ConversationID)
		out.messages = msgs
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}

	if out.profile == nil {
		return nil, domainagg.NotFound(op, "user profile", in.UserID)
	}
	if out.conv == nil || out.conv.UserID != in.UserID {
		return nil, domainagg.NotFound(op, "conversation", in.ConversationID)
	}
	if len(out.messages) == 0 {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "conversation has no messages", nil)
	}
	return out, nil
}

// generateCandidate runs the provider/validate loop. Each attempt replaces
// the previous candidate.
func (g *Generator) generateCandidate(ctx context.Context, op string, pin PromptInput) (*CandidatePlan, int, error) {
	pol := g.deps.Policy
	schema := PlanSchema(pin.Limits)
	system := SystemPrompt(pin)

	var (
		lastErr    error
		violations []Violation
	)
	for attempt := 1; attempt <= pol.MaxAttempts; attempt++ {
		user := UserPrompt(pin, attempt, pol.RetryNote, violations)
		candidate, vs, err := g.attempt(ctx, op, attempt, system, user, schema, pin.Limits)
		if err == nil {
			observability.Current().IncGenerationAttempt("success")
			return candidate, attempt, nil
		}
		if ctx.Err() != nil {
			return nil, attempt, domainagg.Wrap(domainagg.CodeInternal, op, ctx.Err())
		}

		lastErr = err
		violations = vs
		observability.Current().IncGenerationAttempt(string(domainagg.CodeOf(err)))
		g.log.Warn("plan generation attempt failed",
			"attempt", attempt,
			"max_attempts", pol.MaxAttempts,
			"violations", len(vs),
			"error", err,
		)
		if attempt == pol.MaxAttempts {
			break
		}
		if err := g.deps.Sleep(ctx, pol.Backoff(attempt)); err != nil {
			return nil, attempt, domainagg.Wrap(domainagg.CodeInternal, op, err)
		}
	}
	return nil, pol.MaxAttempts, domainagg.GenerationFailed(op, pol.MaxAttempts, lastErr)
}

func (g *Generator) attempt(ctx context.Context, op string, n int, system, user string, schema map[string]any, l Limits) (*CandidatePlan, []Violation, error) {
	ctx, span := observability.Tracer().Start(ctx, "planning.generate.attempt", trace.WithAttributes(attribute.Int("attempt", n)))
	defer span.End()

	obj, err := g.deps.AI.GenerateJSON(ctx, system, user, PlanSchemaName, schema)
	if err != nil {
		span.RecordError(err)
		return nil, nil, domainagg.Provider(op, err)
	}
	candidate, err := DecodeCandidate(obj)
	if err != nil {
		span.RecordError(err)
		return nil, nil, domainagg.Validation(op, err.Error(), err)
	}
	if vs := Validate(candidate, l); len(vs) > 0 {
		span.SetAttributes(attribute.Int("violations", len(vs)))
		return nil, vs, ViolationsError(op, vs)
	}
	phases, milestones, tasks, resources := candidate.Counts()
	span.SetAttributes(
		attribute.Int("plan.phases", phases),
		attribute.Int("plan.milestones", milestones),
		attribute.Int("plan.tasks", tasks),
		attribute.Int("plan.resources", resources),
	)
	return candidate, nil, nil
}
