package plan

import "sort"

// SortTree orders every level of the tree by OrderIndex in place.
// Readers must call it before deriving positions from slice order.
func SortTree(p *Plan) {
	if p == nil {
		return
	}
	sort.SliceStable(p.Phases, func(i, j int) bool { return p.Phases[i].OrderIndex < p.Phases[j].OrderIndex })
	for _, ph := range p.Phases {
		if ph == nil {
			continue
		}
		sort.SliceStable(ph.Milestones, func(i, j int) bool { return ph.Milestones[i].OrderIndex < ph.Milestones[j].OrderIndex })
		for _, m := range ph.Milestones {
			if m == nil {
				continue
			}
			sort.SliceStable(m.Tasks, func(i, j int) bool { return m.Tasks[i].OrderIndex < m.Tasks[j].OrderIndex })
		}
	}
}

// AllTasksCompleted reports whether every task in tasks is complete. An empty
// list counts as complete.
func AllTasksCompleted(tasks []*Task) bool {
	for _, t := range tasks {
		if t != nil && !t.IsCompleted {
			return false
		}
	}
	return true
}
