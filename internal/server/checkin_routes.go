package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brk3/habitboard/internal/logger"
	"github.com/brk3/habitboard/pkg/stats"
)

// toggleCheckin flips the completion record for (habit, date). The date
// defaults to today; the store performs the flip atomically so a racing
// pair of toggles cannot create duplicate records.
func (s *Server) toggleCheckin(w http.ResponseWriter, r *http.Request) {
	habitID := chi.URLParam(r, "habit_id")
	userID := userIDFromContext(s.cfg.AuthEnabled, r)
	if userID == "" || habitID == "" {
		http.Error(w, `{"error":"user id and habit id are required"}`, http.StatusBadRequest)
		return
	}

	day := stats.DayOf(s.now())
	var body struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if body.Date != "" {
		parsed, err := stats.ParseDay(body.Date)
		if err != nil {
			logger.Warn("Rejecting malformed toggle date", "user_id", userID, "date", body.Date)
			http.Error(w, `{"error":"invalid date, want YYYY-MM-DD"}`, http.StatusBadRequest)
			return
		}
		day = parsed
	}

	if _, found, err := s.store.GetHabit(userID, habitID); err != nil {
		logger.Error("Failed to look up habit for toggle", "user_id", userID, "habit_id", habitID, "error", err)
		http.Error(w, `{"error":"storage error"}`, http.StatusInternalServerError)
		return
	} else if !found {
		http.Error(w, `{"error":"habit not found"}`, http.StatusNotFound)
		return
	}

	completed, err := s.store.ToggleCompletion(userID, habitID, day)
	if err != nil {
		logger.Error("Failed to toggle completion", "user_id", userID, "habit_id", habitID, "error", err)
		http.Error(w, `{"error":"database write failed"}`, http.StatusInternalServerError)
		return
	}
	logger.Info("Toggled check-in", "user_id", userID, "habit_id", habitID, "date", day, "completed", completed)
	RecordCheckinToggle(completed)

	resp := ToggleResponse{HabitID: habitID, Date: day, Completed: completed}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		http.Error(w, `{"error":"failed to serialize response"}`, http.StatusInternalServerError)
		return
	}
}

func (s *Server) listCheckins(w http.ResponseWriter, r *http.Request) {
	habitID := chi.URLParam(r, "habit_id")
	userID := userIDFromContext(s.cfg.AuthEnabled, r)
	if userID == "" || habitID == "" {
		http.Error(w, `{"error":"user id and habit id are required"}`, http.StatusBadRequest)
		return
	}

	days, err := s.store.ListCompletions(userID, habitID)
	if err != nil {
		logger.Error("Failed to list check-ins", "user_id", userID, "habit_id", habitID, "error", err)
		http.Error(w, `{"error":"storage error"}`, http.StatusInternalServerError)
		return
	}
	if days == nil {
		days = []stats.Day{}
	}

	resp := CheckinListResponse{HabitID: habitID, Checkins: days}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		http.Error(w, `{"error":"failed to serialize response"}`, http.StatusInternalServerError)
		return
	}
}
