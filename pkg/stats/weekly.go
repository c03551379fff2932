package stats

import (
	"math"
	"time"
)

// SlotPolicy controls how many (habit, day) slots a week holds.
type SlotPolicy int

const (
	// CountAllDays charges every habit with all seven days of the week,
	// regardless of its own schedule. Weekday-restricted habits deflate
	// their apparent rate under this policy, but it is what the
	// dashboards have always shown.
	CountAllDays SlotPolicy = iota

	// CountScheduledDays only charges a habit with the days its
	// Frequency says it should run.
	CountScheduledDays
)

// WeeklyReport compares the week containing the reference day against the
// week before it. Rates are whole percentages.
type WeeklyReport struct {
	WeekStart   Day          `json:"week_start"`
	Rate        int          `json:"rate"`
	PriorRate   int          `json:"prior_rate"`
	Delta       int          `json:"delta"`
	BestWeekday time.Weekday `json:"best_weekday"`
}

// WeeklySuccessRate computes the completed fraction of (habit, day) slots
// for the Monday-to-Sunday week containing ref, the same for the prior
// week, their delta, and the best-performing weekday of the reference
// week. With zero habits every rate is 0.
func WeeklySuccessRate(s Snapshot, ref Day, policy SlotPolicy) WeeklyReport {
	done := make(map[string]map[Day]struct{}, len(s.Completions))
	for id, days := range s.Completions {
		set := make(map[Day]struct{}, len(days))
		for _, d := range days {
			set[d] = struct{}{}
		}
		done[id] = set
	}

	start := MondayOf(ref)
	rate, perDay := weekRate(s, done, start, policy)
	priorRate, _ := weekRate(s, done, start-7, policy)

	return WeeklyReport{
		WeekStart:   start,
		Rate:        rate,
		PriorRate:   priorRate,
		Delta:       rate - priorRate,
		BestWeekday: bestWeekday(perDay),
	}
}

func weekRate(s Snapshot, done map[string]map[Day]struct{}, start Day, policy SlotPolicy) (int, [7]int) {
	var perDay [7]int
	possible := 0
	completed := 0

	for _, h := range s.Habits {
		for i := 0; i < 7; i++ {
			day := start + Day(i)
			if policy == CountScheduledDays && !h.ScheduledOn(day.Weekday()) {
				continue
			}
			possible++
			if _, ok := done[h.ID][day]; ok {
				completed++
				perDay[i]++
			}
		}
	}

	if possible == 0 {
		return 0, perDay
	}
	return int(math.Round(100 * float64(completed) / float64(possible))), perDay
}

// bestWeekday picks the weekday with the highest per-day completion
// count, scanning Monday first. Only a strictly greater count replaces
// the current best, so ties resolve to the earliest weekday. The per-day
// ratio shares its denominator across the week, so comparing raw counts
// is equivalent.
func bestWeekday(perDay [7]int) time.Weekday {
	best := 0
	for i := 1; i < 7; i++ {
		if perDay[i] > perDay[best] {
			best = i
		}
	}
	// index 0 is Monday, index 6 wraps to Sunday
	return time.Weekday((int(time.Monday) + best) % 7)
}
