package nudge

import (
	"context"

	"github.com/brk3/habitboard/pkg/habit"
)

type Querier interface {
	ListHabits(ctx context.Context) ([]habit.Habit, error)
	GetHabitSummary(ctx context.Context, habitID string) (*habit.HabitSummary, error)
}
