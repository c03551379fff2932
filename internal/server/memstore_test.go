package server

import (
	"sync"

	"golang.org/x/oauth2"

	"github.com/brk3/habitboard/internal/storage"
	"github.com/brk3/habitboard/pkg/habit"
	"github.com/brk3/habitboard/pkg/stats"
)

type memStore struct {
	mu       sync.RWMutex
	habits   map[string]map[string]habit.Habit    // userID -> habitID -> habit
	checkins map[string]map[string]map[stats.Day]bool // userID -> habitID -> days
	logins   map[string]map[stats.Day]bool
	accounts map[string]storage.Account
	tokens   map[string]*oauth2.Token
	apiKeys  map[string]string // keyHash -> userID
}

func newMemStore() *memStore {
	return &memStore{
		habits:   map[string]map[string]habit.Habit{},
		checkins: map[string]map[string]map[stats.Day]bool{},
		logins:   map[string]map[stats.Day]bool{},
		accounts: map[string]storage.Account{},
		tokens:   map[string]*oauth2.Token{},
		apiKeys:  map[string]string{},
	}
}

func (m *memStore) PutHabit(userID string, h habit.Habit) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.habits[userID] == nil {
		m.habits[userID] = map[string]habit.Habit{}
	}
	m.habits[userID][h.ID] = h

	return nil
}

func (m *memStore) GetHabit(userID, habitID string) (habit.Habit, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.habits[userID][habitID]

	return h, ok, nil
}

func (m *memStore) ListHabits(userID string) ([]habit.Habit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []habit.Habit{}
	for _, h := range m.habits[userID] {
		out = append(out, h)
	}

	return out, nil
}

func (m *memStore) DeleteHabit(userID, habitID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.habits[userID], habitID)
	delete(m.checkins[userID], habitID)

	return nil
}

func (m *memStore) ToggleCompletion(userID, habitID string, day stats.Day) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.checkins[userID] == nil {
		m.checkins[userID] = map[string]map[stats.Day]bool{}
	}
	if m.checkins[userID][habitID] == nil {
		m.checkins[userID][habitID] = map[stats.Day]bool{}
	}
	if m.checkins[userID][habitID][day] {
		delete(m.checkins[userID][habitID], day)
		return false, nil
	}
	m.checkins[userID][habitID][day] = true

	return true, nil
}

func (m *memStore) ListCompletions(userID, habitID string) ([]stats.Day, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []stats.Day{}
	for d := range m.checkins[userID][habitID] {
		out = append(out, d)
	}

	return out, nil
}

func (m *memStore) TouchLogin(userID string, day stats.Day) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.logins[userID] == nil {
		m.logins[userID] = map[stats.Day]bool{}
	}
	m.logins[userID][day] = true

	return nil
}

func (m *memStore) ListLoginDays(userID string) ([]stats.Day, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []stats.Day{}
	for d := range m.logins[userID] {
		out = append(out, d)
	}

	return out, nil
}

func (m *memStore) PutAccount(a storage.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.accounts[a.Username] = a

	return nil
}

func (m *memStore) GetAccount(username string) (storage.Account, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.accounts[username]

	return a, ok, nil
}

func (m *memStore) PutRefreshToken(userID string, tok *oauth2.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tokens[userID] = tok

	return nil
}

func (m *memStore) GetRefreshToken(userID string) (*oauth2.Token, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tok, ok := m.tokens[userID]

	return tok, ok, nil
}

func (m *memStore) DeleteRefreshToken(userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.tokens, userID)

	return nil
}

func (m *memStore) PutAPIKey(keyHash, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.apiKeys[keyHash] = userID

	return nil
}

func (m *memStore) GetAPIKey(keyHash string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	userID, ok := m.apiKeys[keyHash]

	return userID, ok, nil
}

func (m *memStore) ListAPIKeyHashes(userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []string{}
	for hash, owner := range m.apiKeys {
		if owner == userID {
			out = append(out, hash)
		}
	}

	return out, nil
}

func (m *memStore) DeleteAPIKey(keyHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.apiKeys, keyHash)

	return nil
}

func (m *memStore) Close() error {
	return nil
}

var _ storage.Store = (*memStore)(nil)
