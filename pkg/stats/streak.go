package stats

import "slices"

// CurrentStreak is the number of consecutive active days ending at today.
// A day is active when any habit in the snapshot has a completion on it.
// If today itself is inactive the streak is 0. Lookback is unbounded, so
// callers with very long histories should pre-trim the snapshot.
func CurrentStreak(s Snapshot, today Day) int {
	return StreakEndingAt(s.activeDays(), today)
}

// LongestStreak is the longest run of consecutive active days over all
// history. The input order of completion records does not matter.
func LongestStreak(s Snapshot) int {
	return LongestRun(s.activeDays())
}

// StreakEndingAt walks backward from today through the given days and
// counts how many consecutive days are present. Duplicates are fine.
func StreakEndingAt(days []Day, today Day) int {
	set := make(map[Day]struct{}, len(days))
	for _, d := range days {
		set[d] = struct{}{}
	}

	n := 0
	for d := today; ; d-- {
		if _, ok := set[d]; !ok {
			break
		}
		n++
	}
	return n
}

// OngoingStreak is StreakEndingAt with a one-day grace: a streak whose
// most recent day is yesterday still counts, since today is not over
// yet. Used for per-habit summaries and expiry reminders; the dashboard
// CurrentStreak stays strict.
func OngoingStreak(days []Day, today Day) int {
	if n := StreakEndingAt(days, today); n > 0 {
		return n
	}
	return StreakEndingAt(days, today-1)
}

// LongestRun returns the length of the longest consecutive run in days.
// Days are deduplicated and sorted first, so the result is deterministic
// regardless of input order.
func LongestRun(days []Day) int {
	if len(days) == 0 {
		return 0
	}

	uniq := make(map[Day]struct{}, len(days))
	for _, d := range days {
		uniq[d] = struct{}{}
	}
	sorted := make([]Day, 0, len(uniq))
	for d := range uniq {
		sorted = append(sorted, d)
	}
	slices.Sort(sorted)

	longest := 1
	run := 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i]-sorted[i-1] == 1 {
			run++
			longest = max(longest, run)
		} else {
			run = 1
		}
	}
	return longest
}
