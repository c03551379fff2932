package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brk3/habitboard/internal/logger"
	"github.com/brk3/habitboard/pkg/habit"
	"github.com/brk3/habitboard/pkg/stats"
)

// snapshotFor assembles a fresh per-user stats snapshot. Nothing is
// cached between requests.
func (s *Server) snapshotFor(userID string) (stats.Snapshot, error) {
	habits, err := s.store.ListHabits(userID)
	if err != nil {
		return stats.Snapshot{}, err
	}

	snap := stats.Snapshot{
		Habits:      habits,
		Completions: make(map[string][]stats.Day, len(habits)),
	}
	for _, h := range habits {
		days, err := s.store.ListCompletions(userID, h.ID)
		if err != nil {
			return stats.Snapshot{}, err
		}
		snap.Completions[h.ID] = days
	}
	return snap, nil
}

func (s *Server) getDashboard(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(s.cfg.AuthEnabled, r)
	logger.Debug("Getting dashboard summary", "user_id", userID)
	if userID == "" {
		http.Error(w, `{"error":"user id is required"}`, http.StatusBadRequest)
		return
	}

	today := stats.DayOf(s.now())
	ref := today
	if week := r.URL.Query().Get("week"); week != "" {
		parsed, err := stats.ParseDay(week)
		if err != nil {
			http.Error(w, `{"error":"invalid week, want YYYY-MM-DD"}`, http.StatusBadRequest)
			return
		}
		ref = parsed
	}

	snap, err := s.snapshotFor(userID)
	if err != nil {
		logger.Error("Failed to build snapshot", "user_id", userID, "error", err)
		http.Error(w, `{"error":"storage error"}`, http.StatusInternalServerError)
		return
	}

	loginDays, err := s.store.ListLoginDays(userID)
	if err != nil {
		logger.Error("Failed to list login days", "user_id", userID, "error", err)
		http.Error(w, `{"error":"storage error"}`, http.StatusInternalServerError)
		return
	}

	resp := DashboardResponse{
		CurrentStreak: stats.CurrentStreak(snap, today),
		LongestStreak: stats.LongestStreak(snap),
		LoginStreak:   stats.StreakEndingAt(loginDays, today),
		Weekly:        stats.WeeklySuccessRate(snap, ref, stats.CountAllDays),
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		logger.Error("Failed to serialize dashboard response", "user_id", userID, "error", err)
		http.Error(w, `{"error":"failed to serialize response"}`, http.StatusInternalServerError)
		return
	}
}

func (s *Server) getHabitSummary(w http.ResponseWriter, r *http.Request) {
	habitID := chi.URLParam(r, "habit_id")
	userID := userIDFromContext(s.cfg.AuthEnabled, r)
	logger.Debug("Getting habit summary", "habit_id", habitID, "user_id", userID)
	if userID == "" || habitID == "" {
		http.Error(w, `{"error":"user id and habit id are required"}`, http.StatusBadRequest)
		return
	}

	h, found, err := s.store.GetHabit(userID, habitID)
	if err != nil {
		logger.Error("Failed to get habit for summary", "user_id", userID, "habit_id", habitID, "error", err)
		http.Error(w, `{"error":"storage error"}`, http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, `{"error":"habit not found"}`, http.StatusNotFound)
		return
	}

	days, err := s.store.ListCompletions(userID, habitID)
	if err != nil {
		logger.Error("Failed to list completions for summary", "user_id", userID, "habit_id", habitID, "error", err)
		http.Error(w, `{"error":"storage error"}`, http.StatusInternalServerError)
		return
	}

	today := stats.DayOf(s.now())
	summary := habit.HabitSummary{
		Name:          h.Name,
		CurrentStreak: stats.OngoingStreak(days, today),
		LongestStreak: stats.LongestRun(days),
		TotalDaysDone: stats.TotalDays(days),
		ThisMonth:     stats.CountInMonth(days, today),
		BestMonth:     stats.BestMonth(days),
	}
	if first, ok := stats.FirstDay(days); ok {
		summary.FirstLogged = first.String()
	}
	if last, ok := stats.LastDay(days); ok {
		summary.LastWrite = last.Time().Unix()
	}

	resp := HabitSummaryResponse{HabitID: habitID, HabitSummary: summary}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		logger.Error("Failed to serialize habit summary response", "user_id", userID, "habit_id", habitID, "error", err)
		http.Error(w, `{"error":"failed to serialize response"}`, http.StatusInternalServerError)
		return
	}
}
