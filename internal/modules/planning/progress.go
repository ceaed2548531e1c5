package planning

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/careerbridge-backend/internal/domain"
)

// Progress functions are pure: they never mutate the tree, and they order
// every level by OrderIndex before deriving positions. Milestone and phase
// state is read from the cached IsCompleted flags.

type TaskRollup struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Percent   int `json:"percent"`
}

func percent(done, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}

func RollupTasks(tasks []*types.Task) TaskRollup {
	out := TaskRollup{}
	for _, t := range tasks {
		if t == nil {
			continue
		}
		out.Total++
		if t.IsCompleted {
			out.Completed++
		}
	}
	out.Percent = percent(out.Completed, out.Total)
	return out
}

func MilestonePercent(m *types.Milestone) int {
	if m == nil {
		return 0
	}
	return RollupTasks(m.Tasks).Percent
}

func PhasePercent(ph *types.Phase) int {
	if ph == nil {
		return 0
	}
	done, total := 0, 0
	for _, m := range ph.Milestones {
		if m == nil {
			continue
		}
		total++
		if m.IsCompleted {
			done++
		}
	}
	return percent(done, total)
}

// OverallPercent is task-weighted across the whole plan.
func OverallPercent(p *types.Plan) int {
	done, total := 0, 0
	for _, ph := range orderedPhases(p) {
		for _, m := range orderedMilestones(ph) {
			r := RollupTasks(m.Tasks)
			done += r.Completed
			total += r.Total
		}
	}
	return percent(done, total)
}

func phaseHasIncomplete(ph *types.Phase) bool {
	for _, m := range ph.Milestones {
		if m != nil && !m.IsCompleted {
			return true
		}
	}
	return false
}

// CurrentPhase is the first phase with an incomplete milestone, or the last
// phase once everything is complete. Nil for an empty plan.
func CurrentPhase(p *types.Plan) *types.Phase {
	phases := orderedPhases(p)
	if len(phases) == 0 {
		return nil
	}
	for _, ph := range phases {
		if phaseHasIncomplete(ph) {
			return ph
		}
	}
	return phases[len(phases)-1]
}

type NextMilestone struct {
	Milestone  *types.Milestone `json:"milestone"`
	PhaseID    uuid.UUID        `json:"phase_id"`
	PhaseTitle string           `json:"phase_title"`
	NextTasks  []*types.Task    `json:"next_tasks"`
}

type UpcomingMilestone struct {
	Milestone  *types.Milestone `json:"milestone"`
	PhaseTitle string           `json:"phase_title"`
}

// NextMilestoneOf returns the first incomplete milestone in tree order with
// up to 3 of its incomplete tasks, or nil when the plan is complete.
func NextMilestoneOf(p *types.Plan) *NextMilestone {
	for _, ph := range orderedPhases(p) {
		for _, m := range orderedMilestones(ph) {
			if m.IsCompleted {
				continue
			}
			next := make([]*types.Task, 0, 3)
			for _, t := range orderedTasks(m) {
				if len(next) == 3 {
					break
				}
				if !t.IsCompleted {
					next = append(next, t)
				}
			}
			return &NextMilestone{Milestone: m, PhaseID: ph.ID, PhaseTitle: ph.Title, NextTasks: next}
		}
	}
	return nil
}

// Upcoming returns the first n incomplete milestones in tree order.
func Upcoming(p *types.Plan, n int) []UpcomingMilestone {
	out := []UpcomingMilestone{}
	if n <= 0 {
		return out
	}
	for _, ph := range orderedPhases(p) {
		for _, m := range orderedMilestones(ph) {
			if m.IsCompleted {
				continue
			}
			out = append(out, UpcomingMilestone{Milestone: m, PhaseTitle: ph.Title})
			if len(out) == n {
				return out
			}
		}
	}
	return out
}

// DaysActive is whole days since the plan was created, never less than 1.
func DaysActive(p *types.Plan, now time.Time) int {
	if p == nil {
		return 1
	}
	days := int(now.Sub(p.CreatedAt) / (24 * time.Hour))
	if days < 1 {
		return 1
	}
	return days
}

var firstNumberRE = regexp.MustCompile(`\d+`)

// DurationWeeks parses a free-text band using its first number: "2-3 months"
// is 8 weeks, "6 weeks" is 6. Anything else, including bands without a
// number or in years, counts as 0.
func DurationWeeks(band string) int {
	s := strings.ToLower(strings.TrimSpace(band))
	n := 0
	if m := firstNumberRE.FindString(s); m != "" {
		n, _ = strconv.Atoi(m)
	}
	switch {
	case strings.Contains(s, "month"):
		return n * 4
	case strings.Contains(s, "week"):
		return n
	default:
		return 0
	}
}

// EstimatedWeeksRemaining sums DurationWeeks over phases that still have an
// incomplete milestone.
func EstimatedWeeksRemaining(p *types.Plan) int {
	total := 0
	for _, ph := range orderedPhases(p) {
		if phaseHasIncomplete(ph) {
			total += DurationWeeks(ph.EstimatedDuration)
		}
	}
	return total
}

// FeaturedResources returns up to limit resources of the next milestone.
func FeaturedResources(p *types.Plan, limit int) []*types.Resource {
	out := []*types.Resource{}
	next := NextMilestoneOf(p)
	if next == nil || limit <= 0 {
		return out
	}
	for _, r := range next.Milestone.Resources {
		if r == nil {
			continue
		}
		out = append(out, r)
		if len(out) == limit {
			break
		}
	}
	return out
}

type PhaseProgress struct {
	PhaseID    uuid.UUID           `json:"phase_id"`
	Title      string              `json:"title"`
	OrderIndex int                 `json:"order_index"`
	Percent    int                 `json:"percent"`
	IsComplete bool                `json:"is_complete"`
	Milestones []MilestoneProgress `json:"milestones"`
}

type MilestoneProgress struct {
	MilestoneID uuid.UUID `json:"milestone_id"`
	Title       string    `json:"title"`
	Percent     int       `json:"percent"`
	IsCompleted bool      `json:"is_completed"`
}

type QuickStats struct {
	CompletedTasks          int `json:"completed_tasks"`
	TotalTasks              int `json:"total_tasks"`
	CompletedMilestones     int `json:"completed_milestones"`
	TotalMilestones         int `json:"total_milestones"`
	CompletedPhases         int `json:"completed_phases"`
	TotalPhases             int `json:"total_phases"`
	EstimatedWeeksRemaining int `json:"estimated_weeks_remaining"`
}

type Summary struct {
	PlanID         uuid.UUID           `json:"plan_id"`
	Overall        int                 `json:"overall"`
	CurrentPhase   string              `json:"current_phase"`
	CurrentPhaseID *uuid.UUID          `json:"current_phase_id,omitempty"`
	NextMilestone  *NextMilestone      `json:"next_milestone"`
	Upcoming       []UpcomingMilestone `json:"upcoming"`
	DaysActive     int                 `json:"days_active"`
	Phases         []PhaseProgress     `json:"phases"`
	Stats          QuickStats          `json:"stats"`
}

// Summarize computes the full progress view for one plan snapshot.
func Summarize(p *types.Plan, now time.Time) Summary {
	out := Summary{
		Overall:       OverallPercent(p),
		NextMilestone: NextMilestoneOf(p),
		Upcoming:      Upcoming(p, 3),
		DaysActive:    DaysActive(p, now),
		Phases:        []PhaseProgress{},
	}
	if p == nil {
		return out
	}
	out.PlanID = p.ID
	if cur := CurrentPhase(p); cur != nil {
		id := cur.ID
		out.CurrentPhase = cur.Title
		out.CurrentPhaseID = &id
	}
	for _, ph := range orderedPhases(p) {
		pp := PhaseProgress{
			PhaseID:    ph.ID,
			Title:      ph.Title,
			OrderIndex: ph.OrderIndex,
			Percent:    PhasePercent(ph),
			IsComplete: !phaseHasIncomplete(ph),
			Milestones: []MilestoneProgress{},
		}
		if pp.IsComplete {
			out.Stats.CompletedPhases++
		}
		out.Stats.TotalPhases++
		for _, m := range orderedMilestones(ph) {
			r := RollupTasks(m.Tasks)
			out.Stats.CompletedTasks += r.Completed
			out.Stats.TotalTasks += r.Total
			out.Stats.TotalMilestones++
			if m.IsCompleted {
				out.Stats.CompletedMilestones++
			}
			pp.Milestones = append(pp.Milestones, MilestoneProgress{
				MilestoneID: m.ID,
				Title:       m.Title,
				Percent:     r.Percent,
				IsCompleted: m.IsCompleted,
			})
		}
		out.Phases = append(out.Phases, pp)
	}
	out.Stats.EstimatedWeeksRemaining = EstimatedWeeksRemaining(p)
	return out
}

func orderedPhases(p *types.Plan) []*types.Phase {
	if p == nil {
		return nil
	}
	out := make([]*types.Phase, 0, len(p.Phases))
	for _, ph := range p.Phases {
		if ph != nil {
			out = append(out, ph)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out
}

func orderedMilestones(ph *types.Phase) []*types.Milestone {
	out := make([]*types.Milestone, 0, len(ph.Milestones))
	for _, m := range ph.Milestones {
		if m != nil {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out
}

func orderedTasks(m *types.Milestone) []*types.Task {
	out := make([]*types.Task, 0, len(m.Tasks))
	for _, t := range m.Tasks {
		if t != nil {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out
}
