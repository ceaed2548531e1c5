package aggregates

import (
	"testing"

	"github.com/google/uuid"

	domainagg "github.com/yungbote/careerbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/careerbridge-backend/internal/platform/dbctx"
)

func TestRequireStatusAllowed(t *testing.T) {
	if err := RequireStatusAllowed("active", "active", "completed"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	err := RequireStatusAllowed("archived", "active", "completed")
	if !domainagg.IsCode(MapError("op", err), domainagg.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRequireCASSuccess(t *testing.T) {
	if err := RequireCASSuccess(true, "ok"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := RequireCASSuccess(false, "stale"); err == nil {
		t.Fatalf("expected conflict error")
	}
}

func TestCASGuardWithoutDB(t *testing.T) {
	_, err := NewCASGuard(nil).UpdateByStatus(dbctx.Context{}, "plan", uuid.New(), []string{"active"}, map[string]any{"status": "archived"})
	if !domainagg.IsCode(MapError("op", err), domainagg.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
