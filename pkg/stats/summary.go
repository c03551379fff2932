package stats

// Helpers for per-habit summaries, operating on a single habit's
// completion days.

// FirstDay returns the earliest day, and false when days is empty.
func FirstDay(days []Day) (Day, bool) {
	if len(days) == 0 {
		return 0, false
	}
	first := days[0]
	for _, d := range days[1:] {
		if d < first {
			first = d
		}
	}
	return first, true
}

// LastDay returns the most recent day, and false when days is empty.
func LastDay(days []Day) (Day, bool) {
	if len(days) == 0 {
		return 0, false
	}
	last := days[0]
	for _, d := range days[1:] {
		if d > last {
			last = d
		}
	}
	return last, true
}

// TotalDays counts distinct days.
func TotalDays(days []Day) int {
	uniq := make(map[Day]struct{}, len(days))
	for _, d := range days {
		uniq[d] = struct{}{}
	}
	return len(uniq)
}

// CountInMonth counts distinct days falling in the same calendar month
// as ref.
func CountInMonth(days []Day, ref Day) int {
	refY, refM, _ := ref.Time().Date()
	uniq := map[Day]struct{}{}
	for _, d := range days {
		y, m, _ := d.Time().Date()
		if y == refY && m == refM {
			uniq[d] = struct{}{}
		}
	}
	return len(uniq)
}

// BestMonth returns the highest number of distinct completion days seen
// in any single calendar month.
func BestMonth(days []Day) int {
	type month struct {
		y int
		m int
	}
	counts := map[month]map[Day]struct{}{}
	for _, d := range days {
		y, m, _ := d.Time().Date()
		k := month{y, int(m)}
		if counts[k] == nil {
			counts[k] = map[Day]struct{}{}
		}
		counts[k][d] = struct{}{}
	}
	best := 0
	for _, set := range counts {
		best = max(best, len(set))
	}
	return best
}
