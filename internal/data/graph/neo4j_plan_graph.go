package graph

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	types "github.com/yungbote/careerbridge-backend/internal/domain"
	"github.com/yungbote/careerbridge-backend/internal/domain/plan"
	"github.com/yungbote/careerbridge-backend/internal/platform/logger"
	"github.com/yungbote/careerbridge-backend/internal/platform/neo4jdb"
)

// PlanGraph mirrors plan structure and progress into Neo4j. Postgres stays
// the source of truth; every method is a no-op without a client.
type PlanGraph struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

func NewPlanGraph(client *neo4jdb.Client, log *logger.Logger) *PlanGraph {
	if log == nil {
		log = logger.Nop()
	}
	return &PlanGraph{client: client, log: log.With("graph", "PlanGraph")}
}

func (g *PlanGraph) enabled() bool {
	return g != nil && g.client != nil && g.client.Driver != nil
}

type planGraphRows struct {
	plan       map[string]any
	phases     []map[string]any
	milestones []map[string]any
	tasks      []map[string]any
	resources  []map[string]any
}

func buildPlanGraphRows(p *types.Plan, syncedAt string) planGraphRows {
	out := planGraphRows{
		plan: map[string]any{
			"id":                 p.ID.String(),
			"user_id":            p.UserID.String(),
			"target_career":      p.TargetCareer,
			"current_career":     p.CurrentCareer,
			"estimated_duration": p.EstimatedDuration,
			"status":             p.Status,
			"generated_at":       formatTime(p.GeneratedAt),
			"synced_at":          syncedAt,
		},
	}
	for _, ph := range p.Phases {
		if ph == nil {
			continue
		}
		out.phases = append(out.phases, map[string]any{
			"id":          ph.ID.String(),
			"plan_id":     p.ID.String(),
			"title":       ph.Title,
			"order_index": int64(ph.OrderIndex),
		})
		for _, m := range ph.Milestones {
			if m == nil {
				continue
			}
			out.milestones = append(out.milestones, milestoneRow(ph.ID, m))
			for _, t := range m.Tasks {
				if t == nil {
					continue
				}
				out.tasks = append(out.tasks, map[string]any{
					"id":           t.ID.String(),
					"milestone_id": m.ID.String(),
					"title":        t.Title,
					"order_index":  int64(t.OrderIndex),
					"is_completed": t.IsCompleted,
				})
			}
			for _, r := range m.Resources {
				if r == nil {
					continue
				}
				out.resources = append(out.resources, map[string]any{
					"id":           r.ID.String(),
					"milestone_id": m.ID.String(),
					"title":        r.Title,
					"url":          r.URL,
					"type":         r.Type,
					"cost":         r.Cost,
				})
			}
		}
	}
	return out
}

func milestoneRow(phaseID uuid.UUID, m *types.Milestone) map[string]any {
	completedAt := ""
	if m.CompletedAt != nil {
		completedAt = formatTime(*m.CompletedAt)
	}
	return map[string]any{
		"id":           m.ID.String(),
		"phase_id":     phaseID.String(),
		"title":        m.Title,
		"order_index":  int64(m.OrderIndex),
		"is_completed": m.IsCompleted,
		"completed_at": completedAt,
	}
}

// UpsertPlan writes the full plan tree. When supersedes is set, a SUPERSEDES
// edge links the new plan to the archived one.
func (g *PlanGraph) UpsertPlan(ctx context.Context, p *types.Plan, supersedes *uuid.UUID) error {
	if !g.enabled() || p == nil || p.ID == uuid.Nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	rows := buildPlanGraphRows(p, formatTime(time.Now()))

	session := g.client.WriteSession(ctx)
	defer session.Close(ctx)

	// Best-effort schema init.
	for _, stmt := range []string{
		`CREATE CONSTRAINT plan_id_unique IF NOT EXISTS FOR (p:Plan) REQUIRE p.id IS UNIQUE`,
		`CREATE CONSTRAINT milestone_id_unique IF NOT EXISTS FOR (m:Milestone) REQUIRE m.id IS UNIQUE`,
	} {
		if res, err := session.Run(ctx, stmt, nil); err != nil {
			g.log.Warn("neo4j schema init failed (continuing)", "error", err)
		} else {
			_, _ = res.Consume(ctx)
		}
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if err := run(ctx, tx, `
MERGE (u:User {id: $plan.user_id})
MERGE (p:Plan {id: $plan.id})
SET p.target_career = $plan.target_career,
    p.current_career = $plan.current_career,
    p.estimated_duration = $plan.estimated_duration,
    p.status = $plan.status,
    p.generated_at = $plan.generated_at,
    p.synced_at = $plan.synced_at
MERGE (u)-[:HAS_PLAN]->(p)
`, map[string]any{"plan": rows.plan}); err != nil {
			return nil, err
		}
		if err := run(ctx, tx, `
UNWIND $rows AS r
MATCH (p:Plan {id: r.plan_id})
MERGE (ph:Phase {id: r.id})
SET ph.title = r.title, ph.order_index = r.order_index
MERGE (p)-[:HAS_PHASE {order_index: r.order_index}]->(ph)
`, map[string]any{"rows": rows.phases}); err != nil {
			return nil, err
		}
		// Chain phases in order so "what comes next" is a single hop.
		if err := run(ctx, tx, `
MATCH (p:Plan {id: $plan_id})-[:HAS_PHASE]->(ph:Phase)
WITH ph ORDER BY ph.order_index
WITH collect(ph) AS phases
UNWIND range(0, size(phases) - 2) AS i
WITH phases[i] AS a, phases[i + 1] AS b
MERGE (a)-[:NEXT]->(b)
`, map[string]any{"plan_id": rows.plan["id"]}); err != nil {
			return nil, err
		}
		if err := run(ctx, tx, `
UNWIND $rows AS r
MATCH (ph:Phase {id: r.phase_id})
MERGE (m:Milestone {id: r.id})
SET m.title = r.title,
    m.order_index = r.order_index,
    m.is_completed = r.is_completed,
    m.completed_at = r.completed_at
MERGE (ph)-[:HAS_MILESTONE]->(m)
`, map[string]any{"rows": rows.milestones}); err != nil {
			return nil, err
		}
		if err := run(ctx, tx, `
UNWIND $rows AS r
MATCH (m:Milestone {id: r.milestone_id})
MERGE (t:Task {id: r.id})
SET t.title = r.title, t.order_index = r.order_index, t.is_completed = r.is_completed
MERGE (m)-[:HAS_TASK]->(t)
`, map[string]any{"rows": rows.tasks}); err != nil {
			return nil, err
		}
		if err := run(ctx, tx, `
UNWIND $rows AS r
MATCH (m:Milestone {id: r.milestone_id})
MERGE (res:Resource {id: r.id})
SET res.title = r.title, res.url = r.url, res.type = r.type, res.cost = r.cost
MERGE (m)-[:RECOMMENDS]->(res)
`, map[string]any{"rows": rows.resources}); err != nil {
			return nil, err
		}
		if supersedes != nil && *supersedes != uuid.Nil {
			if err := run(ctx, tx, `
MATCH (p:Plan {id: $plan_id})
MERGE (old:Plan {id: $old_id})
SET old.status = $archived
MERGE (p)-[:SUPERSEDES]->(old)
`, map[string]any{"plan_id": rows.plan["id"], "old_id": supersedes.String(), "archived": plan.StatusArchived}); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

// SetPlanStatus mirrors a plan status change.
func (g *PlanGraph) SetPlanStatus(ctx context.Context, planID uuid.UUID, status string) error {
	if !g.enabled() || planID == uuid.Nil {
		return nil
	}
	session := g.client.WriteSession(ctx)
	defer session.Close(ctx)
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, run(ctx, tx, `
MATCH (p:Plan {id: $plan_id})
SET p.status = $status, p.synced_at = $synced_at
`, map[string]any{"plan_id": planID.String(), "status": status, "synced_at": formatTime(time.Now())})
	})
	return err
}

// UpsertMilestoneProgress mirrors a milestone's completion flag and its tasks'.
func (g *PlanGraph) UpsertMilestoneProgress(ctx context.Context, phaseID uuid.UUID, m *types.Milestone) error {
	if !g.enabled() || m == nil || m.ID == uuid.Nil {
		return nil
	}
	taskRows := make([]map[string]any, 0, len(m.Tasks))
	for _, t := range m.Tasks {
		if t == nil {
			continue
		}
		taskRows = append(taskRows, map[string]any{"id": t.ID.String(), "is_completed": t.IsCompleted})
	}
	session := g.client.WriteSession(ctx)
	defer session.Close(ctx)
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if err := run(ctx, tx, `
MERGE (m:Milestone {id: $m.id})
SET m.is_completed = $m.is_completed, m.completed_at = $m.completed_at
`, map[string]any{"m": milestoneRow(phaseID, m)}); err != nil {
			return nil, err
		}
		return nil, run(ctx, tx, `
UNWIND $rows AS r
MATCH (t:Task {id: r.id})
SET t.is_completed = r.is_completed
`, map[string]any{"rows": taskRows})
	})
	return err
}

func run(ctx context.Context, tx neo4j.ManagedTransaction, cypher string, params map[string]any) error {
	res, err := tx.Run(ctx, cypher, params)
	if err != nil {
		return err
	}
	_, err = res.Consume(ctx)
	return err
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
