package planning

import (
	"testing"
	"time"

	repotest "github.com/yungbote/careerbridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/careerbridge-backend/internal/domain"
)

// twoPhasePlan is A=[M1 (2 tasks), M2 (3 tasks)], B=[M3 (2 tasks)].
func twoPhasePlan() *types.Plan {
	return repotest.PlanTree(uuidFor(7), []int{2, 3}, []int{2})
}

func TestProgressMixedPlan(t *testing.T) {
	p := twoPhasePlan()
	a, b := p.Phases[0], p.Phases[1]
	repotest.CompleteTasks(a.Milestones[0], 2)

	if got := OverallPercent(p); got != 29 {
		t.Fatalf("overall = %d, want 29", got)
	}
	if got := PhasePercent(a); got != 50 {
		t.Fatalf("phase A = %d, want 50", got)
	}
	if got := PhasePercent(b); got != 0 {
		t.Fatalf("phase B = %d, want 0", got)
	}
	if cur := CurrentPhase(p); cur == nil || cur.ID != a.ID {
		t.Fatalf("current phase = %+v, want A", cur)
	}
	next := NextMilestoneOf(p)
	if next == nil || next.Milestone.ID != a.Milestones[1].ID {
		t.Fatalf("next milestone = %+v, want M2", next)
	}
	if len(next.NextTasks) != 3 || next.PhaseTitle != a.Title {
		t.Fatalf("next tasks = %d, phase = %q", len(next.NextTasks), next.PhaseTitle)
	}
}

func TestProgressPhaseAdvancesWhenCompleted(t *testing.T) {
	p := twoPhasePlan()
	a, b := p.Phases[0], p.Phases[1]
	repotest.CompleteTasks(a.Milestones[0], 2)
	repotest.CompleteTasks(a.Milestones[1], 3)

	if cur := CurrentPhase(p); cur == nil || cur.ID != b.ID {
		t.Fatalf("current phase = %+v, want B", cur)
	}
	if got := OverallPercent(p); got != 71 {
		t.Fatalf("overall = %d, want 71", got)
	}
	if next := NextMilestoneOf(p); next == nil || next.Milestone.ID != b.Milestones[0].ID {
		t.Fatalf("next milestone = %+v, want M3", next)
	}
}

func TestProgressCompletePlan(t *testing.T) {
	p := twoPhasePlan()
	for _, ph := range p.Phases {
		for _, m := range ph.Milestones {
			repotest.CompleteTasks(m, len(m.Tasks))
		}
	}
	if got := OverallPercent(p); got != 100 {
		t.Fatalf("overall = %d", got)
	}
	if cur := CurrentPhase(p); cur == nil || cur.ID != p.Phases[1].ID {
		t.Fatalf("complete plan should report the last phase, got %+v", cur)
	}
	if next := NextMilestoneOf(p); next != nil {
		t.Fatalf("expected no next milestone, got %+v", next)
	}
	if got := FeaturedResources(p, 3); len(got) != 0 {
		t.Fatalf("expected no featured resources, got %d", len(got))
	}
}

func TestProgressUsesOrderIndexNotSliceOrder(t *testing.T) {
	p := twoPhasePlan()
	p.Phases[0], p.Phases[1] = p.Phases[1], p.Phases[0]
	if cur := CurrentPhase(p); cur == nil || cur.OrderIndex != 0 {
		t.Fatalf("current phase order = %+v", cur)
	}
	if p.Phases[0].OrderIndex != 1 {
		t.Fatalf("progress functions must not reorder the input")
	}
}

func TestProgressEmptyPlan(t *testing.T) {
	p := &types.Plan{CreatedAt: fixedNow}
	if OverallPercent(p) != 0 || CurrentPhase(p) != nil || NextMilestoneOf(p) != nil {
		t.Fatalf("empty plan should have no progress")
	}
	if OverallPercent(nil) != 0 || PhasePercent(nil) != 0 || MilestonePercent(nil) != 0 {
		t.Fatalf("nil inputs should be zero")
	}
}

func TestRollupTasksRounding(t *testing.T) {
	p := repotest.PlanTree(uuidFor(1), []int{3})
	m := p.Phases[0].Milestones[0]
	repotest.CompleteTasks(m, 1)
	r := RollupTasks(m.Tasks)
	if r.Completed != 1 || r.Total != 3 || r.Percent != 33 {
		t.Fatalf("rollup = %+v", r)
	}
	repotest.CompleteTasks(m, 2)
	if got := MilestonePercent(m); got != 67 {
		t.Fatalf("milestone percent = %d, want 67", got)
	}
}

func TestDurationWeeks(t *testing.T) {
	cases := []struct {
		band string
		want int
	}{
		{"2-3 months", 8},
		{"1 month", 4},
		{"6 weeks", 6},
		{"4-6 Weeks", 4},
		{"about a month", 0},
		{"1 year", 0},
		{"", 0},
		{"ongoing", 0},
	}
	for _, tc := range cases {
		if got := DurationWeeks(tc.band); got != tc.want {
			t.Fatalf("DurationWeeks(%q) = %d, want %d", tc.band, got, tc.want)
		}
	}
}

func TestEstimatedWeeksRemaining(t *testing.T) {
	p := twoPhasePlan()
	p.Phases[0].EstimatedDuration = "2-3 months"
	p.Phases[1].EstimatedDuration = "6 weeks"
	if got := EstimatedWeeksRemaining(p); got != 14 {
		t.Fatalf("weeks = %d, want 14", got)
	}
	for _, m := range p.Phases[0].Milestones {
		repotest.CompleteTasks(m, len(m.Tasks))
	}
	if got := EstimatedWeeksRemaining(p); got != 6 {
		t.Fatalf("weeks = %d, want 6", got)
	}
}

func TestDaysActive(t *testing.T) {
	cases := []struct {
		age  time.Duration
		want int
	}{
		{0, 1},
		{5 * time.Hour, 1},
		{36 * time.Hour, 1},
		{72*time.Hour + time.Minute, 3},
	}
	for _, tc := range cases {
		p := &types.Plan{CreatedAt: fixedNow.Add(-tc.age)}
		if got := DaysActive(p, fixedNow); got != tc.want {
			t.Fatalf("age %v: days = %d, want %d", tc.age, got, tc.want)
		}
	}
}

func TestUpcomingAndFeatured(t *testing.T) {
	p := repotest.PlanTree(uuidFor(2), []int{2, 2}, []int{2, 2})
	repotest.CompleteTasks(p.Phases[0].Milestones[0], 2)

	up := Upcoming(p, 2)
	if len(up) != 2 {
		t.Fatalf("upcoming = %d, want 2", len(up))
	}
	if up[0].Milestone.ID != p.Phases[0].Milestones[1].ID || up[1].Milestone.ID != p.Phases[1].Milestones[0].ID {
		t.Fatalf("unexpected upcoming order")
	}
	if up[1].PhaseTitle != p.Phases[1].Title {
		t.Fatalf("phase title = %q", up[1].PhaseTitle)
	}
	if got := Upcoming(p, 0); len(got) != 0 {
		t.Fatalf("n=0 should be empty")
	}

	feat := FeaturedResources(p, 3)
	if len(feat) != 1 || feat[0].MilestoneID != p.Phases[0].Milestones[1].ID {
		t.Fatalf("featured = %+v", feat)
	}
}

func TestSummarize(t *testing.T) {
	p := twoPhasePlan()
	p.CreatedAt = fixedNow.Add(-10 * 24 * time.Hour)
	repotest.CompleteTasks(p.Phases[0].Milestones[0], 2)

	s := Summarize(p, fixedNow)
	if s.PlanID != p.ID || s.Overall != 29 || s.DaysActive != 10 {
		t.Fatalf("summary header = %+v", s)
	}
	if s.CurrentPhaseID == nil || *s.CurrentPhaseID != p.Phases[0].ID {
		t.Fatalf("current phase id = %v", s.CurrentPhaseID)
	}
	want := QuickStats{
		CompletedTasks:          2,
		TotalTasks:              7,
		CompletedMilestones:     1,
		TotalMilestones:         3,
		CompletedPhases:         0,
		TotalPhases:             2,
		EstimatedWeeksRemaining: 16,
	}
	if s.Stats != want {
		t.Fatalf("stats = %+v, want %+v", s.Stats, want)
	}
	if len(s.Phases) != 2 || s.Phases[0].Percent != 50 || s.Phases[0].Milestones[0].Percent != 100 {
		t.Fatalf("phase breakdown = %+v", s.Phases)
	}
	if len(s.Upcoming) != 2 {
		t.Fatalf("upcoming = %d, want 2", len(s.Upcoming))
	}
}
