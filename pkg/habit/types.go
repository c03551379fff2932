package habit

import (
	"fmt"
	"slices"
	"time"
)

// Frequency says which days of the week a habit is meant to run.
type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekdays Frequency = "weekdays"
	FrequencyWeekends Frequency = "weekends"
	FrequencyCustom   Frequency = "custom"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekdays, FrequencyWeekends, FrequencyCustom:
		return true
	}
	return false
}

type Habit struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Frequency   Frequency      `json:"frequency"`
	CustomDays  []time.Weekday `json:"custom_days,omitempty"`
	CreatedAt   int64          `json:"created_at"`
}

// ScheduledOn reports whether the habit is meant to run on the given
// weekday according to its Frequency.
func (h Habit) ScheduledOn(wd time.Weekday) bool {
	switch h.Frequency {
	case FrequencyWeekdays:
		return wd != time.Saturday && wd != time.Sunday
	case FrequencyWeekends:
		return wd == time.Saturday || wd == time.Sunday
	case FrequencyCustom:
		return slices.Contains(h.CustomDays, wd)
	default:
		return true
	}
}

func Validate(h Habit) error {
	const maxNameLength = 64
	const maxDescriptionLength = 1024

	if len(h.Name) == 0 || len(h.Name) > maxNameLength {
		return fmt.Errorf("bad habit name: must be 1-%d characters", maxNameLength)
	}
	if len(h.Description) > maxDescriptionLength {
		return fmt.Errorf("bad habit description: must be 0-%d characters", maxDescriptionLength)
	}
	if h.Frequency != "" && !h.Frequency.Valid() {
		return fmt.Errorf("bad frequency %q", h.Frequency)
	}
	if h.Frequency == FrequencyCustom && len(h.CustomDays) == 0 {
		return fmt.Errorf("custom frequency requires at least one weekday")
	}
	for _, wd := range h.CustomDays {
		if wd < time.Sunday || wd > time.Saturday {
			return fmt.Errorf("bad weekday %d in custom_days", wd)
		}
	}
	return nil
}

// HabitSummary is the per-habit stats payload. First logged is a
// day-granular YYYY-MM-DD string, empty when nothing is logged yet.
type HabitSummary struct {
	Name          string `json:"name"`
	CurrentStreak int    `json:"current_streak"`
	LongestStreak int    `json:"longest_streak"`
	FirstLogged   string `json:"first_logged,omitempty"`
	TotalDaysDone int    `json:"total_days_done"`
	BestMonth     int    `json:"best_month"`
	ThisMonth     int    `json:"this_month"`
	LastWrite     int64  `json:"last_write"`
}
