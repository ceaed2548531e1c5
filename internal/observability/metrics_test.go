package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNilMetricsDropObservations(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "plan.active", "200", time.Millisecond)
	m.ObservePlanGeneration("ok", 1, time.Second)
	m.IncPlanEvent("milestone_completed")
	m.AddReminderOutcome("sent", 3)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("nil handler status: got %d", rr.Code)
	}
}

func TestInitExportsPlanMetrics(t *testing.T) {
	t.Setenv("METRICS_ENABLED", "true")
	m := Init(nil)
	if m == nil {
		t.Fatal("expected metrics instance")
	}
	if Current() != m {
		t.Fatal("Current should return the initialized instance")
	}

	m.ObservePlanGeneration("ok", 2, 3*time.Second)
	m.IncGenerationAttempt("invalid")
	m.IncPlanEvent("phase_completed")

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("scrape status: got %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"cb_plan_generations", "cb_plan_generation_attempts", "cb_plan_events"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in scrape output", want)
		}
	}
}

func TestEnabled(t *testing.T) {
	for raw, want := range map[string]bool{"": false, "0": false, "true": true, "YES": true, "1": true} {
		t.Setenv("METRICS_ENABLED", raw)
		if got := Enabled(); got != want {
			t.Fatalf("Enabled(%q): want %v got %v", raw, want, got)
		}
	}
}
