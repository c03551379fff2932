package stats

import "github.com/brk3/habitboard/pkg/habit"

// Snapshot is a caller-supplied, per-user view of habits and their
// completion days, keyed by habit ID. The functions in this package only
// read it; fetching, caching and invalidation belong to the caller.
type Snapshot struct {
	Habits      []habit.Habit
	Completions map[string][]Day
}

// activeDays returns the union of completion days across all habits. A
// day is active when at least one habit was completed on it.
func (s Snapshot) activeDays() []Day {
	uniq := map[Day]struct{}{}
	for _, days := range s.Completions {
		for _, d := range days {
			uniq[d] = struct{}{}
		}
	}
	out := make([]Day, 0, len(uniq))
	for d := range uniq {
		out = append(out, d)
	}
	return out
}
