package server

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brk3/habitboard/internal/logger"
)

func userFromContext(r *http.Request) (*User, bool) {
	user, ok := r.Context().Value(userCtxKey{}).(*User)
	return user, ok
}

// hashAPIKey derives the storage key for an hbd_ API key. Only this
// hash is ever persisted or compared; the plain key exists client-side.
func hashAPIKey(apiKey string) string {
	hash := sha256.Sum256([]byte(apiKey))
	return fmt.Sprintf("%x", hash)
}

// truncateHash shortens a key hash for logs and list responses, enough
// for a user to match it against their own keys without exposing the
// full lookup value.
func truncateHash(hash string) string {
	if len(hash) <= 16 {
		return hash
	}
	return hash[:16] + "..."
}

// generateAPIKey mints a new key for the authenticated user. The plain
// key is returned exactly once; only its hash is stored.
func (s *Server) generateAPIKey(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		http.Error(w, `{"error":"key generation failed"}`, http.StatusInternalServerError)
		return
	}
	apiKey := apiKeyPrefix + "live_" + base64.RawURLEncoding.EncodeToString(raw)

	keyHash := hashAPIKey(apiKey)
	if err := s.store.PutAPIKey(keyHash, user.UserID); err != nil {
		logger.Error("Failed to store API key", "user_id", user.UserID, "error", err)
		http.Error(w, `{"error":"database write failed"}`, http.StatusInternalServerError)
		return
	}

	logger.Info("Generated API key", "user_id", user.UserID, "keyHash", truncateHash(keyHash))
	RecordAuthEvent("apikey_create", "success", "apikey")
	writeJSON(w, http.StatusOK, map[string]string{"api_key": apiKey})
}

func (s *Server) listAPIKeys(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	hashes, err := s.store.ListAPIKeyHashes(user.UserID)
	if err != nil {
		logger.Error("Failed to list API keys", "user_id", user.UserID, "error", err)
		http.Error(w, `{"error":"storage error"}`, http.StatusInternalServerError)
		return
	}

	keys := make([]map[string]string, 0, len(hashes))
	for _, h := range hashes {
		keys = append(keys, map[string]string{"hash": h, "display": truncateHash(h)})
	}
	writeJSON(w, http.StatusOK, map[string][]map[string]string{"keys": keys})
}

func (s *Server) deleteAPIKey(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	keyHash := chi.URLParam(r, "key_hash")
	owner, found, err := s.store.GetAPIKey(keyHash)
	if err != nil {
		http.Error(w, `{"error":"storage error"}`, http.StatusInternalServerError)
		return
	}
	if !found || owner != user.UserID {
		// don't leak other users' key hashes
		http.Error(w, `{"error":"key not found"}`, http.StatusNotFound)
		return
	}

	if err := s.store.DeleteAPIKey(keyHash); err != nil {
		logger.Error("Failed to delete API key", "user_id", user.UserID, "error", err)
		http.Error(w, `{"error":"storage error"}`, http.StatusInternalServerError)
		return
	}

	logger.Info("Deleted API key", "user_id", user.UserID, "keyHash", truncateHash(keyHash))
	RecordAuthEvent("apikey_delete", "success", "apikey")
	w.WriteHeader(http.StatusNoContent)
}
