package planning

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/careerbridge-backend/internal/platform/logger"
)

const generationPolicyEnv = "PLAN_GENERATION_POLICY_YAML"

//go:embed policy.yaml
var policyFS embed.FS

// Limits are the cardinality bounds a generated plan must satisfy.
type Limits struct {
	MinPhases     int `yaml:"min_phases"`
	MaxPhases     int `yaml:"max_phases"`
	MinMilestones int `yaml:"min_milestones"`
	MaxMilestones int `yaml:"max_milestones"`
	MinTasks      int `yaml:"min_tasks"`
	MaxTasks      int `yaml:"max_tasks"`
	MinResources  int `yaml:"min_resources"`
}

var DefaultLimits = Limits{
	MinPhases:     3,
	MaxPhases:     5,
	MinMilestones: 3,
	MaxMilestones: 6,
	MinTasks:      3,
	MaxTasks:      8,
	MinResources:  1,
}

type Policy struct {
	MaxAttempts int
	BackoffBase time.Duration
	RetryNote   string
	Limits      Limits

	MessageWindow        int
	FallbackTargetCareer string
	Patterns             []*regexp.Regexp
}

type yamlPolicy struct {
	Policy     string `yaml:"policy"`
	Version    int    `yaml:"version"`
	Generation struct {
		MaxAttempts   int    `yaml:"max_attempts"`
		BackoffBaseMS int    `yaml:"backoff_base_ms"`
		RetryNote     string `yaml:"retry_note"`
	} `yaml:"generation"`
	Limits     Limits `yaml:"limits"`
	Extraction struct {
		MessageWindow        int      `yaml:"message_window"`
		FallbackTargetCareer string   `yaml:"fallback_target_career"`
		Patterns             []string `yaml:"patterns"`
	} `yaml:"extraction"`
}

// DefaultPolicy is used when the YAML policy cannot be loaded.
func DefaultPolicy() *Policy {
	return &Policy{
		MaxAttempts:          3,
		BackoffBase:          time.Second,
		RetryNote:            "Previous attempt failed validation. Ensure ALL minimums are met.",
		Limits:               DefaultLimits,
		MessageWindow:        3,
		FallbackTargetCareer: "new career",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)want to (?:be|become) (?:a |an )?([a-z\s]+?)(?:\.|,|$)`),
			regexp.MustCompile(`(?i)interested in (?:being |becoming )?(?:a |an )?([a-z\s]+?)(?:\.|,|$)`),
			regexp.MustCompile(`(?i)transition to (?:a |an )?([a-z\s]+?)(?:\.|,|$)`),
			regexp.MustCompile(`(?i)career in ([a-z\s]+?)(?:\.|,|$)`),
		},
	}
}

var (
	policyOnce  sync.Once
	policyCache *Policy
	policyErr   error
)

// CurrentPolicy loads the generation policy once per process.
func CurrentPolicy(log *logger.Logger) *Policy {
	policyOnce.Do(func() {
		policyCache, policyErr = loadPolicy()
	})
	if policyErr != nil {
		if log != nil {
			log.Warn("planning: generation policy load failed; using defaults", "error", policyErr)
		}
		return DefaultPolicy()
	}
	return policyCache
}

func loadPolicy() (*Policy, error) {
	data, err := readPolicy()
	if err != nil {
		return nil, err
	}
	return ParsePolicy(data)
}

func readPolicy() ([]byte, error) {
	if path := strings.TrimSpace(os.Getenv(generationPolicyEnv)); path != "" {
		return os.ReadFile(path)
	}
	return policyFS.ReadFile("policy.yaml")
}

// ParsePolicy decodes and validates a policy document.
func ParsePolicy(data []byte) (*Policy, error) {
	var raw yamlPolicy
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw.Policy) != "plan_generation" {
		return nil, fmt.Errorf("unexpected policy: %q", raw.Policy)
	}
	if raw.Generation.MaxAttempts <= 0 {
		return nil, errors.New("generation.max_attempts must be positive")
	}
	if raw.Generation.BackoffBaseMS < 0 {
		return nil, errors.New("generation.backoff_base_ms must not be negative")
	}
	if err := validateLimits(raw.Limits); err != nil {
		return nil, err
	}
	if len(raw.Extraction.Patterns) == 0 {
		return nil, errors.New("extraction.patterns is empty")
	}

	out := &Policy{
		MaxAttempts:          raw.Generation.MaxAttempts,
		BackoffBase:          time.Duration(raw.Generation.BackoffBaseMS) * time.Millisecond,
		RetryNote:            strings.TrimSpace(raw.Generation.RetryNote),
		Limits:               raw.Limits,
		MessageWindow:        raw.Extraction.MessageWindow,
		FallbackTargetCareer: strings.TrimSpace(raw.Extraction.FallbackTargetCareer),
	}
	if out.MessageWindow <= 0 {
		out.MessageWindow = 3
	}
	if out.FallbackTargetCareer == "" {
		out.FallbackTargetCareer = "new career"
	}
	for i, expr := range raw.Extraction.Patterns {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("extraction.patterns[%d]: %w", i, err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("extraction.patterns[%d]: needs a capture group", i)
		}
		out.Patterns = append(out.Patterns, re)
	}
	return out, nil
}

func validateLimits(l Limits) error {
	pairs := []struct {
		name     string
		min, max int
	}{
		{"phases", l.MinPhases, l.MaxPhases},
		{"milestones", l.MinMilestones, l.MaxMilestones},
		{"tasks", l.MinTasks, l.MaxTasks},
	}
	for _, p := range pairs {
		if p.min < 1 || p.max < p.min {
			return fmt.Errorf("limits.%s: invalid range %d-%d", p.name, p.min, p.max)
		}
	}
	if l.MinResources < 1 {
		return errors.New("limits.min_resources must be at least 1")
	}
	return nil
}

// Backoff returns the wait before the attempt that follows attempt n
// (1-based): base, 2×base, 4×base, ...
func (p *Policy) Backoff(n int) time.Duration {
	if p == nil || p.BackoffBase <= 0 || n < 1 {
		return 0
	}
	d := p.BackoffBase
	for i := 1; i < n; i++ {
		d *= 2
	}
	return d
}
