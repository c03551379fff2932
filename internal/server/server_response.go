package server

import (
	"encoding/json"
	"net/http"

	"github.com/brk3/habitboard/pkg/habit"
	"github.com/brk3/habitboard/pkg/stats"
)

func writeJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}

type HabitListResponse struct {
	Habits []habit.Habit `json:"habits"`
}

type ToggleResponse struct {
	HabitID   string    `json:"habit_id"`
	Date      stats.Day `json:"date"`
	Completed bool      `json:"completed"`
}

type CheckinListResponse struct {
	HabitID  string      `json:"habit_id"`
	Checkins []stats.Day `json:"checkins"`
}

type HabitSummaryResponse struct {
	HabitID      string             `json:"habit_id"`
	HabitSummary habit.HabitSummary `json:"habit_summary"`
}

type DashboardResponse struct {
	CurrentStreak int                `json:"current_streak"`
	LongestStreak int                `json:"longest_streak"`
	LoginStreak   int                `json:"login_streak"`
	Weekly        stats.WeeklyReport `json:"weekly"`
}

type AuthResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}
