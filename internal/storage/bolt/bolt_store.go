package bolt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"go.etcd.io/bbolt"
	"golang.org/x/oauth2"

	"github.com/brk3/habitboard/internal/storage"
	"github.com/brk3/habitboard/pkg/habit"
	"github.com/brk3/habitboard/pkg/stats"
)

const (
	usersBucket    = "users"
	accountsBucket = "accounts"
	apiKeysBucket  = "api_keys"
	tokensBucket   = "oauth_tokens"

	habitsSub   = "habits"
	checkinsSub = "checkins"
	loginsSub   = "logins"

	defaultUserID = "default"
)

type Store struct {
	db *bbolt.DB
}

func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}

	if err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{usersBucket, accountsBucket, apiKeysBucket, tokensBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// userSub returns the named sub-bucket for a user, creating it. Only
// valid inside an Update transaction.
func userSub(tx *bbolt.Tx, userID, name string) (*bbolt.Bucket, error) {
	if userID == "" {
		userID = defaultUserID
	}
	user, err := tx.Bucket([]byte(usersBucket)).CreateBucketIfNotExists([]byte(userID))
	if err != nil {
		return nil, err
	}
	return user.CreateBucketIfNotExists([]byte(name))
}

// userSubRead returns the named sub-bucket for a user, or nil if the
// user has never written to it. Safe inside View transactions.
func userSubRead(tx *bbolt.Tx, userID, name string) *bbolt.Bucket {
	if userID == "" {
		userID = defaultUserID
	}
	user := tx.Bucket([]byte(usersBucket)).Bucket([]byte(userID))
	if user == nil {
		return nil
	}
	return user.Bucket([]byte(name))
}

func (s *Store) PutHabit(userID string, h habit.Habit) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := userSub(tx, userID, habitsSub)
		if err != nil {
			return err
		}
		val, err := json.Marshal(h)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(h.ID), val)
	})
}

func (s *Store) GetHabit(userID, habitID string) (habit.Habit, bool, error) {
	var h habit.Habit
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := userSubRead(tx, userID, habitsSub)
		if bucket == nil {
			return nil
		}
		val := bucket.Get([]byte(habitID))
		if val == nil {
			return nil
		}
		found = true
		return json.Unmarshal(val, &h)
	})
	return h, found, err
}

func (s *Store) ListHabits(userID string) ([]habit.Habit, error) {
	var out []habit.Habit
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := userSubRead(tx, userID, habitsSub)
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(_, v []byte) error {
			var h habit.Habit
			if err := json.Unmarshal(v, &h); err != nil {
				return err
			}
			out = append(out, h)
			return nil
		})
	})
	return out, err
}

func (s *Store) DeleteHabit(userID, habitID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		habits, err := userSub(tx, userID, habitsSub)
		if err != nil {
			return err
		}
		if err := habits.Delete([]byte(habitID)); err != nil {
			return err
		}

		// drop the habit's check-ins too
		checkins, err := userSub(tx, userID, checkinsSub)
		if err != nil {
			return err
		}
		c := checkins.Cursor()
		prefix := []byte(habitID + "/")
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			if err := c.Delete(); err != nil {
				return err
			}
		}
		return nil
	})
}

func checkinKey(habitID string, day stats.Day) []byte {
	return fmt.Appendf(nil, "%s/%s", habitID, day)
}

func (s *Store) ToggleCompletion(userID, habitID string, day stats.Day) (bool, error) {
	completed := false
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := userSub(tx, userID, checkinsSub)
		if err != nil {
			return err
		}
		key := checkinKey(habitID, day)
		if bucket.Get(key) != nil {
			return bucket.Delete(key)
		}
		completed = true
		return bucket.Put(key, []byte{1})
	})
	return completed, err
}

func (s *Store) ListCompletions(userID, habitID string) ([]stats.Day, error) {
	var out []stats.Day
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := userSubRead(tx, userID, checkinsSub)
		if bucket == nil {
			return nil
		}
		c := bucket.Cursor()
		prefix := []byte(habitID + "/")
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			day, err := stats.ParseDay(strings.TrimPrefix(string(k), string(prefix)))
			if err != nil {
				return fmt.Errorf("corrupt checkin key %q: %w", k, err)
			}
			out = append(out, day)
		}
		return nil
	})
	return out, err
}

func (s *Store) TouchLogin(userID string, day stats.Day) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := userSub(tx, userID, loginsSub)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(day.String()), []byte{1})
	})
}

func (s *Store) ListLoginDays(userID string) ([]stats.Day, error) {
	var out []stats.Day
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := userSubRead(tx, userID, loginsSub)
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, _ []byte) error {
			day, err := stats.ParseDay(string(k))
			if err != nil {
				return fmt.Errorf("corrupt login key %q: %w", k, err)
			}
			out = append(out, day)
			return nil
		})
	})
	return out, err
}

func (s *Store) PutAccount(a storage.Account) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		val, err := json.Marshal(a)
		if err != nil {
			return err
		}
		return tx.Bucket([]byte(accountsBucket)).Put([]byte(a.Username), val)
	})
}

func (s *Store) GetAccount(username string) (storage.Account, bool, error) {
	var a storage.Account
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		val := tx.Bucket([]byte(accountsBucket)).Get([]byte(username))
		if val == nil {
			return nil
		}
		found = true
		return json.Unmarshal(val, &a)
	})
	return a, found, err
}

func (s *Store) PutRefreshToken(userID string, tok *oauth2.Token) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		val, err := json.Marshal(tok)
		if err != nil {
			return err
		}
		return tx.Bucket([]byte(tokensBucket)).Put([]byte(userID), val)
	})
}

func (s *Store) GetRefreshToken(userID string) (*oauth2.Token, bool, error) {
	var tok *oauth2.Token
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		val := tx.Bucket([]byte(tokensBucket)).Get([]byte(userID))
		if val == nil {
			return nil
		}
		found = true
		tok = &oauth2.Token{}
		return json.Unmarshal(val, tok)
	})
	return tok, found, err
}

func (s *Store) DeleteRefreshToken(userID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(tokensBucket)).Delete([]byte(userID))
	})
}

func (s *Store) PutAPIKey(keyHash, userID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(apiKeysBucket)).Put([]byte(keyHash), []byte(userID))
	})
}

func (s *Store) GetAPIKey(keyHash string) (string, bool, error) {
	var userID string
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		val := tx.Bucket([]byte(apiKeysBucket)).Get([]byte(keyHash))
		if val == nil {
			return nil
		}
		found = true
		userID = string(val)
		return nil
	})
	return userID, found, err
}

func (s *Store) ListAPIKeyHashes(userID string) ([]string, error) {
	var out []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(apiKeysBucket)).ForEach(func(k, v []byte) error {
			if string(v) == userID {
				out = append(out, string(k))
			}
			return nil
		})
	})
	return out, err
}

func (s *Store) DeleteAPIKey(keyHash string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(apiKeysBucket)).Delete([]byte(keyHash))
	})
}

var _ storage.Store = (*Store)(nil)
