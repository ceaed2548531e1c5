package aggregates

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/careerbridge-backend/internal/domain/plan"
)

var PlanAggregateContract = Contract{
	Name:             "Planning.PlanAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owns atomic plan-tree creation and the one-active-plan-per-user invariant.",
}

// PlanAggregate owns plan lifecycle writes.
//
// Write failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeConflict, CodeRetryable, CodeInternal.
type PlanAggregate interface {
	Aggregate

	// CreateTree archives the user's current active plan (if any) and inserts
	// the full Plan → Phase → Milestone → {Task, Resource} tree atomically.
	CreateTree(ctx context.Context, in CreatePlanTreeInput) (CreatePlanTreeResult, error)

	// Archive moves an owned plan to archived.
	Archive(ctx context.Context, userID, planID uuid.UUID) error
}

type CreatePlanTreeInput struct {
	UserID uuid.UUID
	Plan   *plan.Plan
}

type CreatePlanTreeResult struct {
	PlanID         uuid.UUID
	ArchivedPlanID *uuid.UUID
}
