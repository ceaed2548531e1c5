package testutil

import (
	"testing"
	"time"
)

func TestHooksRecorder_CapturesSignals(t *testing.T) {
	h := &HooksRecorder{}
	h.ObserveOperation("Planning.Plan.CreateTree", "conflict", 10*time.Millisecond)
	h.ObserveOperation("Planning.Plan.CreateTree", "success", 5*time.Millisecond)
	h.IncConflict("Planning.Plan.CreateTree")
	h.IncRetry("Planning.Plan.Archive")

	if len(h.Operations) != 2 {
		t.Fatalf("expected 2 op events, got %d", len(h.Operations))
	}
	if got := h.LastStatus("Planning.Plan.CreateTree"); got != "success" {
		t.Fatalf("last status: %q", got)
	}
	if got := h.LastStatus("missing"); got != "" {
		t.Fatalf("missing op status: %q", got)
	}
	if len(h.Conflicts) != 1 || len(h.Retries) != 1 {
		t.Fatalf("unexpected counters: %+v %+v", h.Conflicts, h.Retries)
	}
}
