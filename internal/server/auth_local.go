package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/brk3/habitboard/internal/logger"
	"github.com/brk3/habitboard/internal/storage"
	"github.com/brk3/habitboard/pkg/stats"
)

// localIssuer is the iss claim for tokens minted by our own /auth/login,
// and feeds the same user ID derivation as OIDC subjects.
const localIssuer = "habitboard/local"

const tokenTTL = 24 * time.Hour

type localClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func localUserID(username string) string {
	return userIDFromClaims(map[string]any{"iss": localIssuer, "sub": username})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	if s.cfg.JWTSecret == "" {
		http.Error(w, `{"error":"local accounts are disabled"}`, http.StatusNotFound)
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if req.Username == "" || len(req.Password) < 8 {
		http.Error(w, `{"error":"username and a password of at least 8 characters are required"}`, http.StatusBadRequest)
		return
	}

	if _, exists, err := s.store.GetAccount(req.Username); err != nil {
		logger.Error("Failed to check existing account", "username", req.Username, "error", err)
		http.Error(w, `{"error":"storage error"}`, http.StatusInternalServerError)
		return
	} else if exists {
		http.Error(w, `{"error":"username already exists"}`, http.StatusConflict)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("Failed to hash password", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	account := storage.Account{
		UserID:       localUserID(req.Username),
		Username:     req.Username,
		PasswordHash: hash,
		CreatedAt:    s.now().Unix(),
	}
	if err := s.store.PutAccount(account); err != nil {
		logger.Error("Failed to store account", "username", req.Username, "error", err)
		http.Error(w, `{"error":"database write failed"}`, http.StatusInternalServerError)
		return
	}

	logger.Info("User registered", "username", req.Username, "user_id", account.UserID)
	RecordAuthEvent("register", "success", "local")
	writeJSON(w, http.StatusCreated, map[string]string{"username": req.Username})
}

func (s *Server) localLogin(w http.ResponseWriter, r *http.Request) {
	if s.cfg.JWTSecret == "" {
		http.Error(w, `{"error":"local accounts are disabled"}`, http.StatusNotFound)
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, `{"error":"username and password are required"}`, http.StatusBadRequest)
		return
	}

	account, found, err := s.store.GetAccount(req.Username)
	if err != nil {
		logger.Error("Failed to get account", "username", req.Username, "error", err)
		http.Error(w, `{"error":"storage error"}`, http.StatusInternalServerError)
		return
	}
	if !found || bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(req.Password)) != nil {
		RecordAuthEvent("login", "failed", "local")
		http.Error(w, `{"error":"invalid credentials"}`, http.StatusUnauthorized)
		return
	}

	token, err := s.issueLocalToken(account)
	if err != nil {
		logger.Error("Failed to sign token", "username", req.Username, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	// every successful login marks a login day for the login streak
	if err := s.store.TouchLogin(account.UserID, stats.DayOf(s.now())); err != nil {
		logger.Warn("Failed to record login day", "user_id", account.UserID, "error", err)
	}

	logger.Info("User logged in", "username", req.Username, "user_id", account.UserID)
	RecordAuthEvent("login", "success", "local")
	writeJSON(w, http.StatusOK, AuthResponse{Token: token, Username: account.Username})
}

func (s *Server) issueLocalToken(account storage.Account) (string, error) {
	now := s.now()
	claims := localClaims{
		Username: account.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    localIssuer,
			Subject:   account.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *Server) verifyLocalToken(tokenString string) (*User, bool) {
	claims := &localClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return []byte(s.cfg.JWTSecret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(localIssuer),
	)
	if err != nil || !token.Valid {
		logger.Debug("Local token verification failed", "error", err)
		return nil, false
	}

	return &User{
		Subject: claims.Subject,
		UserID:  localUserID(claims.Username),
		Claims:  map[string]any{"iss": localIssuer, "sub": claims.Username, "username": claims.Username},
	}, true
}
