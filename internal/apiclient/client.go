package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/brk3/habitboard/internal/server"
	"github.com/brk3/habitboard/pkg/habit"
)

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func New(base, token string) *Client {
	return &Client{
		BaseURL: base,
		Token:   token,
		HTTP:    http.DefaultClient,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return c.HTTP.Do(req)
}

func (c *Client) CreateHabit(ctx context.Context, h habit.Habit) (*habit.Habit, error) {
	res, err := c.do(ctx, "POST", "/habits/", h)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("create habit: %s", res.Status)
	}
	var created habit.Habit
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) ListHabits(ctx context.Context) ([]habit.Habit, error) {
	res, err := c.do(ctx, "GET", "/habits/", nil)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list habits: %s", res.Status)
	}
	var response server.HabitListResponse
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, err
	}
	return response.Habits, nil
}

// ToggleCheckin flips the completion for habitID on date. An empty date
// means the server's current day.
func (c *Client) ToggleCheckin(ctx context.Context, habitID, date string) (*server.ToggleResponse, error) {
	var body any
	if date != "" {
		body = map[string]string{"date": date}
	}
	res, err := c.do(ctx, "POST", "/habits/"+habitID+"/toggle", body)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("toggle %s: %s", habitID, res.Status)
	}
	var out server.ToggleResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetHabitSummary(ctx context.Context, habitID string) (*habit.HabitSummary, error) {
	res, err := c.do(ctx, "GET", "/habits/"+habitID+"/summary", nil)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("summary %s: %s", habitID, res.Status)
	}
	var out server.HabitSummaryResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out.HabitSummary, nil
}

func (c *Client) GetDashboard(ctx context.Context) (*server.DashboardResponse, error) {
	res, err := c.do(ctx, "GET", "/stats/summary", nil)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dashboard: %s", res.Status)
	}
	var out server.DashboardResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
