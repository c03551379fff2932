package nudge

import (
	"context"
	"fmt"
	"time"

	"github.com/brk3/habitboard/internal/logger"
)

// streakGrace is how long after the start of the last completed day a
// streak survives: the whole of that day plus the whole of the next.
const streakGrace = 48 * time.Hour

type Notifier interface {
	SendNudge(habits []string, hoursTillExpiry int) error
}

// GetHabitsExpiringIn returns names of habits whose streak will lapse
// within the given window unless checked in again, judged at the given
// instant. Completions are day granular, so a streak's deadline is the
// end of the day after the last completed day.
func GetHabitsExpiringIn(ctx context.Context, q Querier, now time.Time, window time.Duration) ([]string, error) {
	habits, err := q.ListHabits(ctx)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}

	now = now.UTC()
	var expiring []string
	for _, h := range habits {
		summary, err := q.GetHabitSummary(ctx, h.ID)
		if err != nil {
			return nil, fmt.Errorf("summary for %s: %w", h.ID, err)
		}
		if summary == nil || summary.CurrentStreak == 0 {
			continue
		}

		deadline := time.Unix(summary.LastWrite, 0).Add(streakGrace)
		left := deadline.Sub(now)
		if left > 0 && left <= window {
			expiring = append(expiring, summary.Name)
		}
	}

	return expiring, nil
}

// Run checks for expiring streaks and sends a single nudge covering all
// of them. No email goes out when nothing is expiring.
func Run(ctx context.Context, q Querier, n Notifier, now time.Time, window time.Duration) error {
	expiring, err := GetHabitsExpiringIn(ctx, q, now, window)
	if err != nil {
		return err
	}
	if len(expiring) == 0 {
		logger.Debug("No streaks expiring, skipping nudge")
		return nil
	}

	logger.Info("Sending nudge", "habits", expiring)
	return n.SendNudge(expiring, int(window.Hours()))
}
