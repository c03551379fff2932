package storage

import (
	"golang.org/x/oauth2"

	"github.com/brk3/habitboard/pkg/habit"
	"github.com/brk3/habitboard/pkg/stats"
)

// Account is a locally registered username/password user.
type Account struct {
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	PasswordHash []byte `json:"password_hash"`
	CreatedAt    int64  `json:"created_at"`
}

// Store is the persistence boundary. Implementations must guarantee at
// most one completion record per (habit, day); ToggleCompletion performs
// its read-then-write atomically.
type Store interface {
	PutHabit(userID string, h habit.Habit) error
	GetHabit(userID, habitID string) (habit.Habit, bool, error)
	ListHabits(userID string) ([]habit.Habit, error)
	DeleteHabit(userID, habitID string) error

	// ToggleCompletion creates the completion record for (habit, day) if
	// absent and deletes it if present, returning the resulting state.
	ToggleCompletion(userID, habitID string, day stats.Day) (completed bool, err error)
	ListCompletions(userID, habitID string) ([]stats.Day, error)

	// Login-day tracking, backing the login streak. Touching the same
	// day twice is a no-op.
	TouchLogin(userID string, day stats.Day) error
	ListLoginDays(userID string) ([]stats.Day, error)

	PutAccount(a Account) error
	GetAccount(username string) (Account, bool, error)

	PutRefreshToken(userID string, tok *oauth2.Token) error
	GetRefreshToken(userID string) (*oauth2.Token, bool, error)
	DeleteRefreshToken(userID string) error

	PutAPIKey(keyHash, userID string) error
	GetAPIKey(keyHash string) (userID string, found bool, err error)
	ListAPIKeyHashes(userID string) ([]string, error)
	DeleteAPIKey(keyHash string) error

	Close() error
}
