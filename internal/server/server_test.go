package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brk3/habitboard/internal/config"
	"github.com/brk3/habitboard/internal/storage"
	"github.com/brk3/habitboard/pkg/habit"
)

// testToday pins the server clock so streak assertions don't depend on
// when the suite runs. A Wednesday.
var testToday = time.Date(2025, 6, 18, 15, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, st storage.Store) http.Handler {
	t.Helper()

	s, err := New(&config.Config{}, st)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.now = func() time.Time { return testToday }

	return s.Router()
}

func mockRequest(h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	return rr
}

func createTestHabit(t *testing.T, h http.Handler, name string) habit.Habit {
	t.Helper()

	rr := mockRequest(h, http.MethodPost, "/habits/", habit.Habit{Name: name})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create %q: got %d want 201: %s", name, rr.Code, rr.Body.String())
	}
	var created habit.Habit
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal created habit: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created habit has empty id")
	}

	return created
}

func TestCreateHabit_Valid(t *testing.T) {
	h := newTestServer(t, newMemStore())

	created := createTestHabit(t, h, "guitar")
	if created.Name != "guitar" {
		t.Fatalf("got %q want guitar", created.Name)
	}
	if created.Frequency != habit.FrequencyDaily {
		t.Fatalf("got frequency %q want daily default", created.Frequency)
	}
	if created.CreatedAt != testToday.Unix() {
		t.Fatalf("got created_at %d want %d", created.CreatedAt, testToday.Unix())
	}

	rr := mockRequest(h, http.MethodGet, "/habits/"+created.ID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d want 200", rr.Code)
	}
	var got habit.Habit
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if got.ID != created.ID || got.Name != "guitar" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestCreateHabit_Invalid(t *testing.T) {
	h := newTestServer(t, newMemStore())

	cases := []habit.Habit{
		{Name: ""},
		{Name: string(make([]byte, 65))},
		{Name: "stretch", Frequency: habit.FrequencyCustom},
		{Name: "stretch", Frequency: "fortnightly"},
	}
	for _, c := range cases {
		rr := mockRequest(h, http.MethodPost, "/habits/", c)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%+v: got %d want 400", c, rr.Code)
		}
	}
}

func TestListHabits_Empty(t *testing.T) {
	h := newTestServer(t, newMemStore())

	rr := mockRequest(h, http.MethodGet, "/habits/", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d want 200", rr.Code)
	}
	var resp HabitListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if resp.Habits == nil {
		t.Fatal("want empty list, got null")
	}
	if len(resp.Habits) != 0 {
		t.Fatalf("len=%d want 0", len(resp.Habits))
	}
}

func TestGetHabit_NotFound(t *testing.T) {
	h := newTestServer(t, newMemStore())

	rr := mockRequest(h, http.MethodGet, "/habits/nope", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("got %d want 404", rr.Code)
	}
}

func TestUpdateHabit_PreservesIdentity(t *testing.T) {
	h := newTestServer(t, newMemStore())
	created := createTestHabit(t, h, "guitar")

	rr := mockRequest(h, http.MethodPut, "/habits/"+created.ID, habit.Habit{
		ID:        "spoofed",
		Name:      "bass",
		Frequency: habit.FrequencyWeekdays,
		CreatedAt: 42,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d want 200: %s", rr.Code, rr.Body.String())
	}
	var got habit.Habit
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("id changed: got %q want %q", got.ID, created.ID)
	}
	if got.CreatedAt != created.CreatedAt {
		t.Fatalf("created_at changed: got %d want %d", got.CreatedAt, created.CreatedAt)
	}
	if got.Name != "bass" || got.Frequency != habit.FrequencyWeekdays {
		t.Fatalf("update not applied: %+v", got)
	}
}

func TestDeleteHabit(t *testing.T) {
	h := newTestServer(t, newMemStore())
	created := createTestHabit(t, h, "guitar")

	rr := mockRequest(h, http.MethodDelete, "/habits/"+created.ID, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("got %d want 204", rr.Code)
	}

	rr = mockRequest(h, http.MethodGet, "/habits/"+created.ID, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("got %d want 404 after delete", rr.Code)
	}
}

func toggle(t *testing.T, h http.Handler, habitID, date string) ToggleResponse {
	t.Helper()

	var body any
	if date != "" {
		body = map[string]string{"date": date}
	}
	rr := mockRequest(h, http.MethodPost, "/habits/"+habitID+"/toggle", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("toggle: got %d want 200: %s", rr.Code, rr.Body.String())
	}
	var resp ToggleResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal toggle response: %v", err)
	}

	return resp
}

func TestToggleCheckin_Alternates(t *testing.T) {
	h := newTestServer(t, newMemStore())
	created := createTestHabit(t, h, "guitar")

	for i, want := range []bool{true, false, true} {
		resp := toggle(t, h, created.ID, "2025-06-10")
		if resp.Completed != want {
			t.Fatalf("toggle %d: got completed=%v want %v", i, resp.Completed, want)
		}
		if resp.Date.String() != "2025-06-10" {
			t.Fatalf("toggle %d: got date %s want 2025-06-10", i, resp.Date)
		}
	}

	rr := mockRequest(h, http.MethodGet, "/habits/"+created.ID+"/checkins", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d want 200", rr.Code)
	}
	var list CheckinListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("unmarshal checkin list: %v", err)
	}
	if len(list.Checkins) != 1 {
		t.Fatalf("len=%d want 1 after odd number of toggles", len(list.Checkins))
	}
}

func TestToggleCheckin_DefaultsToToday(t *testing.T) {
	h := newTestServer(t, newMemStore())
	created := createTestHabit(t, h, "guitar")

	resp := toggle(t, h, created.ID, "")
	if resp.Date.String() != "2025-06-18" {
		t.Fatalf("got date %s want server today 2025-06-18", resp.Date)
	}
}

func TestToggleCheckin_BadDate(t *testing.T) {
	h := newTestServer(t, newMemStore())
	created := createTestHabit(t, h, "guitar")

	rr := mockRequest(h, http.MethodPost, "/habits/"+created.ID+"/toggle",
		map[string]string{"date": "June 10th"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d want 400", rr.Code)
	}
}

func TestToggleCheckin_UnknownHabit(t *testing.T) {
	h := newTestServer(t, newMemStore())

	rr := mockRequest(h, http.MethodPost, "/habits/nope/toggle", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("got %d want 404", rr.Code)
	}
}

func TestDashboard(t *testing.T) {
	h := newTestServer(t, newMemStore())
	a := createTestHabit(t, h, "guitar")
	b := createTestHabit(t, h, "reading")

	// Three day run ending today, split across two habits, plus an old
	// five day run on a single habit.
	toggle(t, h, a.ID, "2025-06-16")
	toggle(t, h, b.ID, "2025-06-17")
	toggle(t, h, a.ID, "2025-06-18")
	for d := 1; d <= 5; d++ {
		toggle(t, h, b.ID, fmt.Sprintf("2025-05-%02d", d))
	}

	rr := mockRequest(h, http.MethodGet, "/stats/summary", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d want 200: %s", rr.Code, rr.Body.String())
	}
	var resp DashboardResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal dashboard: %v", err)
	}
	if resp.CurrentStreak != 3 {
		t.Fatalf("current streak: got %d want 3", resp.CurrentStreak)
	}
	if resp.LongestStreak != 5 {
		t.Fatalf("longest streak: got %d want 5", resp.LongestStreak)
	}
	if resp.Weekly.WeekStart.String() != "2025-06-16" {
		t.Fatalf("week start: got %s want 2025-06-16", resp.Weekly.WeekStart)
	}
	// 3 completions over 2 habits x 7 days.
	if resp.Weekly.Rate != 21 {
		t.Fatalf("weekly rate: got %d want 21", resp.Weekly.Rate)
	}
}

func TestDashboard_CurrentStreakZeroWhenTodayMissed(t *testing.T) {
	h := newTestServer(t, newMemStore())
	a := createTestHabit(t, h, "guitar")

	toggle(t, h, a.ID, "2025-06-16")
	toggle(t, h, a.ID, "2025-06-17")

	rr := mockRequest(h, http.MethodGet, "/stats/summary", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d want 200", rr.Code)
	}
	var resp DashboardResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal dashboard: %v", err)
	}
	if resp.CurrentStreak != 0 {
		t.Fatalf("current streak: got %d want 0, nothing done today", resp.CurrentStreak)
	}
	if resp.LongestStreak != 2 {
		t.Fatalf("longest streak: got %d want 2", resp.LongestStreak)
	}
}

func TestDashboard_WeekParam(t *testing.T) {
	h := newTestServer(t, newMemStore())
	a := createTestHabit(t, h, "guitar")
	for d := 9; d <= 15; d++ {
		toggle(t, h, a.ID, fmt.Sprintf("2025-06-%02d", d))
	}

	rr := mockRequest(h, http.MethodGet, "/stats/summary?week=2025-06-11", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d want 200", rr.Code)
	}
	var resp DashboardResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal dashboard: %v", err)
	}
	if resp.Weekly.WeekStart.String() != "2025-06-09" {
		t.Fatalf("week start: got %s want 2025-06-09", resp.Weekly.WeekStart)
	}
	if resp.Weekly.Rate != 100 {
		t.Fatalf("weekly rate: got %d want 100", resp.Weekly.Rate)
	}

	rr = mockRequest(h, http.MethodGet, "/stats/summary?week=whenever", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d want 400 for bad week param", rr.Code)
	}
}

func TestHabitSummary(t *testing.T) {
	h := newTestServer(t, newMemStore())
	a := createTestHabit(t, h, "guitar")

	// Two day run ending yesterday. The per habit streak keeps counting
	// until the day is fully over.
	toggle(t, h, a.ID, "2025-06-16")
	toggle(t, h, a.ID, "2025-06-17")
	toggle(t, h, a.ID, "2025-05-01")

	rr := mockRequest(h, http.MethodGet, "/habits/"+a.ID+"/summary", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d want 200: %s", rr.Code, rr.Body.String())
	}
	var resp HabitSummaryResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal summary: %v", err)
	}
	sum := resp.HabitSummary
	if sum.Name != "guitar" {
		t.Fatalf("name: got %q want guitar", sum.Name)
	}
	if sum.CurrentStreak != 2 {
		t.Fatalf("current streak: got %d want 2", sum.CurrentStreak)
	}
	if sum.LongestStreak != 2 {
		t.Fatalf("longest streak: got %d want 2", sum.LongestStreak)
	}
	if sum.TotalDaysDone != 3 {
		t.Fatalf("total days: got %d want 3", sum.TotalDaysDone)
	}
	if sum.ThisMonth != 2 {
		t.Fatalf("this month: got %d want 2", sum.ThisMonth)
	}
	if sum.FirstLogged != "2025-05-01" {
		t.Fatalf("first logged: got %q want 2025-05-01", sum.FirstLogged)
	}
}

func TestHabitSummary_NotFound(t *testing.T) {
	h := newTestServer(t, newMemStore())

	rr := mockRequest(h, http.MethodGet, "/habits/nope/summary", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("got %d want 404", rr.Code)
	}
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t, newMemStore())

	rr := mockRequest(h, http.MethodGet, "/healthz", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d want 200", rr.Code)
	}
}
