package planning

import (
	"fmt"
	"sort"
	"strings"

	domainagg "github.com/yungbote/careerbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/careerbridge-backend/internal/domain/plan"
)

const (
	RulePhaseCount     = "phase_count"
	RuleMilestoneCount = "milestone_count"
	RuleTaskCount      = "task_count"
	RuleResourceCount  = "resource_count"
	RuleRequiredText   = "required_text"
	RuleEnumValue      = "enum_value"
	RuleOrderIndex     = "order_index"
)

// Violation is one broken constraint in a candidate plan.
type Violation struct {
	Rule    string `json:"rule"`
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	if v.Path == "" {
		return v.Message
	}
	return v.Path + ": " + v.Message
}

// Validate checks c against l and returns every violation found. Checks run
// in a fixed order: phase count, milestone counts, task counts, resource
// counts, required text, then order indexes. A nil result means valid.
func Validate(c *CandidatePlan, l Limits) []Violation {
	if c == nil {
		return []Violation{{Rule: RulePhaseCount, Message: "candidate plan is empty"}}
	}
	var out []Violation
	add := func(rule, path, format string, args ...any) {
		out = append(out, Violation{Rule: rule, Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if n := len(c.Phases); n < l.MinPhases || n > l.MaxPhases {
		add(RulePhaseCount, "phases", "has %d phases, want %d-%d", n, l.MinPhases, l.MaxPhases)
	}

	for pi, ph := range c.Phases {
		if n := len(ph.Milestones); n < l.MinMilestones || n > l.MaxMilestones {
			add(RuleMilestoneCount, phasePath(pi), "has %d milestones, want %d-%d", n, l.MinMilestones, l.MaxMilestones)
		}
	}

	for pi, ph := range c.Phases {
		for mi, m := range ph.Milestones {
			if n := len(m.Tasks); n < l.MinTasks || n > l.MaxTasks {
				add(RuleTaskCount, milestonePath(pi, mi), "has %d tasks, want %d-%d", n, l.MinTasks, l.MaxTasks)
			}
		}
	}

	for pi, ph := range c.Phases {
		for mi, m := range ph.Milestones {
			if n := len(m.Resources); n < l.MinResources {
				add(RuleResourceCount, milestonePath(pi, mi), "has %d resources, want at least %d", n, l.MinResources)
			}
		}
	}

	requireText := func(path, field, value string) {
		if strings.TrimSpace(value) == "" {
			add(RuleRequiredText, path, "%s is required", field)
		}
	}
	requireText("", "targetCareer", c.TargetCareer)
	requireText("", "estimatedDuration", c.EstimatedDuration)
	for pi, ph := range c.Phases {
		pp := phasePath(pi)
		requireText(pp, "title", ph.Title)
		requireText(pp, "description", ph.Description)
		requireText(pp, "estimatedDuration", ph.EstimatedDuration)
		for mi, m := range ph.Milestones {
			mp := milestonePath(pi, mi)
			requireText(mp, "title", m.Title)
			requireText(mp, "description", m.Description)
			requireText(mp, "completionCriteria", m.CompletionCriteria)
			for ti, t := range m.Tasks {
				tp := fmt.Sprintf("%s.tasks[%d]", mp, ti)
				requireText(tp, "title", t.Title)
				requireText(tp, "description", t.Description)
			}
			for ri, r := range m.Resources {
				rp := fmt.Sprintf("%s.resources[%d]", mp, ri)
				requireText(rp, "title", r.Title)
				requireText(rp, "url", r.URL)
				requireText(rp, "cost", r.Cost)
				if !contains(plan.ResourceTypes, strings.TrimSpace(r.Type)) {
					add(RuleEnumValue, rp, "type %q is not one of %s", r.Type, strings.Join(plan.ResourceTypes, ", "))
				}
				if r.Location != nil && strings.TrimSpace(*r.Location) != "" && !contains(plan.ResourceLocations, strings.TrimSpace(*r.Location)) {
					add(RuleEnumValue, rp, "location %q is not one of %s", *r.Location, strings.Join(plan.ResourceLocations, ", "))
				}
			}
		}
	}

	checkOrder := func(path, level string, idx []int) {
		if !denseFromZero(idx) {
			add(RuleOrderIndex, path, "%s orderIndex values %v are not 0..%d", level, idx, len(idx)-1)
		}
	}
	phaseIdx := make([]int, 0, len(c.Phases))
	for _, ph := range c.Phases {
		phaseIdx = append(phaseIdx, ph.OrderIndex)
	}
	checkOrder("phases", "phase", phaseIdx)
	for pi, ph := range c.Phases {
		mIdx := make([]int, 0, len(ph.Milestones))
		for _, m := range ph.Milestones {
			mIdx = append(mIdx, m.OrderIndex)
		}
		checkOrder(phasePath(pi), "milestone", mIdx)
		for mi, m := range ph.Milestones {
			tIdx := make([]int, 0, len(m.Tasks))
			for _, t := range m.Tasks {
				tIdx = append(tIdx, t.OrderIndex)
			}
			checkOrder(milestonePath(pi, mi), "task", tIdx)
		}
	}

	return out
}

// ViolationsError wraps violations as a CodeValidation error.
func ViolationsError(op string, vs []Violation) error {
	if len(vs) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(vs))
	for _, v := range vs {
		msgs = append(msgs, v.String())
	}
	return domainagg.Validation(op, strings.Join(msgs, "; "), nil)
}

// denseFromZero reports whether idx is a permutation of 0..len(idx)-1.
func denseFromZero(idx []int) bool {
	sorted := append([]int(nil), idx...)
	sort.Ints(sorted)
	for i, v := range sorted {
		if v != i {
			return false
		}
	}
	return true
}

func phasePath(pi int) string { return fmt.Sprintf("phases[%d]", pi) }

func milestonePath(pi, mi int) string { return fmt.Sprintf("phases[%d].milestones[%d]", pi, mi) }

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
