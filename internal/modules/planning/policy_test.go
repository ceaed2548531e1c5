package planning

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func uuidFor(n byte) uuid.UUID {
	var id uuid.UUID
	id[15] = n
	id[6] = 0x40
	return id
}

func TestEmbeddedPolicyParses(t *testing.T) {
	data, err := policyFS.ReadFile("policy.yaml")
	if err != nil {
		t.Fatalf("read embedded policy: %v", err)
	}
	p, err := ParsePolicy(data)
	if err != nil {
		t.Fatalf("parse embedded policy: %v", err)
	}
	if p.MaxAttempts != 3 || p.BackoffBase != time.Second {
		t.Fatalf("unexpected generation settings: %+v", p)
	}
	if p.Limits != DefaultLimits {
		t.Fatalf("limits = %+v, want %+v", p.Limits, DefaultLimits)
	}
	if p.MessageWindow != 3 || p.FallbackTargetCareer != "new career" || len(p.Patterns) != 4 {
		t.Fatalf("unexpected extraction settings: %+v", p)
	}
}

func TestParsePolicyRejects(t *testing.T) {
	base := func(body string) []byte {
		return []byte("policy: plan_generation\n" + body)
	}
	okLimits := `
limits:
  min_phases: 3
  max_phases: 5
  min_milestones: 3
  max_milestones: 6
  min_tasks: 3
  max_tasks: 8
  min_resources: 1
`
	okExtraction := `
extraction:
  patterns:
    - '(?i)career in ([a-z ]+)'
`
	cases := []struct {
		name string
		data []byte
	}{
		{"not yaml", []byte("policy: [")},
		{"wrong policy", []byte("policy: other\ngeneration:\n  max_attempts: 1\n" + okLimits + okExtraction)},
		{"zero attempts", base("generation:\n  max_attempts: 0\n" + okLimits + okExtraction)},
		{"inverted range", base("generation:\n  max_attempts: 1\nlimits:\n  min_phases: 5\n  max_phases: 3\n  min_milestones: 3\n  max_milestones: 6\n  min_tasks: 3\n  max_tasks: 8\n  min_resources: 1\n" + okExtraction)},
		{"no patterns", base("generation:\n  max_attempts: 1\n" + okLimits)},
		{"pattern without group", base("generation:\n  max_attempts: 1\n" + okLimits + "extraction:\n  patterns:\n    - 'career in'\n")},
		{"bad pattern", base("generation:\n  max_attempts: 1\n" + okLimits + "extraction:\n  patterns:\n    - '(unclosed'\n")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParsePolicy(tc.data); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestParsePolicyDefaultsExtraction(t *testing.T) {
	data := []byte(`policy: plan_generation
generation:
  max_attempts: 2
  backoff_base_ms: 10
limits:
  min_phases: 1
  max_phases: 2
  min_milestones: 1
  max_milestones: 2
  min_tasks: 1
  max_tasks: 2
  min_resources: 1
extraction:
  patterns:
    - '(?i)career in ([a-z ]+)'
`)
	p, err := ParsePolicy(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.MessageWindow != 3 || p.FallbackTargetCareer != "new career" {
		t.Fatalf("extraction defaults not applied: %+v", p)
	}
	if p.BackoffBase != 10*time.Millisecond {
		t.Fatalf("backoff base = %v", p.BackoffBase)
	}
}

func TestPolicyBackoff(t *testing.T) {
	p := DefaultPolicy()
	cases := []struct {
		n    int
		want time.Duration
	}{
		{0, 0},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
	}
	for _, tc := range cases {
		if got := p.Backoff(tc.n); got != tc.want {
			t.Fatalf("Backoff(%d) = %v, want %v", tc.n, got, tc.want)
		}
	}
	var nilPolicy *Policy
	if nilPolicy.Backoff(1) != 0 {
		t.Fatalf("nil policy should not back off")
	}
}
