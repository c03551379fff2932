package server

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gorilla/securecookie"
	"golang.org/x/oauth2"

	"github.com/brk3/habitboard/internal/config"
	"github.com/brk3/habitboard/internal/logger"
)

const (
	sessionMaxAge = 24 * time.Hour // aligns with typical OIDC refresh token lifetimes
	apiKeyPrefix  = "hbd_"         // currently only hbd_live_ generated, hbd_test_ reserved
)

type userCtxKey struct{}

type User struct {
	Subject string
	Email   string
	UserID  string
	Claims  map[string]any
}

type AuthProvider struct {
	name       string
	oauth2     *oauth2.Config
	oidcProv   *oidc.Provider
	idVerifier *oidc.IDTokenVerifier
	state      *StateStore
}

type StateStore struct {
	ttl time.Duration
	mu  sync.Mutex
	m   map[string]authState
}

type authState struct {
	Verifier string
	Return   string
	ExpireAt time.Time
}

func NewStateStore(ttl time.Duration) *StateStore {
	s := &StateStore{ttl: ttl, m: make(map[string]authState)}
	go func() { // janitor
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			now := time.Now()
			s.mu.Lock()
			for k, v := range s.m {
				if now.After(v.ExpireAt) {
					delete(s.m, k)
				}
			}
			s.mu.Unlock()
		}
	}()
	return s
}

func (s *StateStore) Put(key string, v authState) {
	s.mu.Lock()
	s.m[key] = v
	s.mu.Unlock()
}

func (s *StateStore) GetAndDelete(key string) (authState, bool) {
	s.mu.Lock()
	v, ok := s.m[key]
	if ok {
		delete(s.m, key)
	}
	s.mu.Unlock()
	if ok && time.Now().After(v.ExpireAt) {
		return authState{}, false
	}
	return v, ok
}

func ConfigureOIDCProviders(cfg *config.Config) (map[string]*AuthProvider, *securecookie.SecureCookie, error) {
	logger.Info("Configuring OIDC providers", "count", len(cfg.OIDCProviders))
	providers := make(map[string]*AuthProvider)

	hashKey := securecookie.GenerateRandomKey(64)
	blockKey := securecookie.GenerateRandomKey(32)
	if hashKey == nil || blockKey == nil {
		return nil, nil, fmt.Errorf("failed to generate secure cookie keys")
	}
	sessionCookie := securecookie.New(hashKey, blockKey)
	sessionCookie.MaxAge(int(sessionMaxAge.Seconds()))

	for i := range cfg.OIDCProviders {
		p := cfg.OIDCProviders[i]

		logger.Debug("Setting up OIDC provider", "id", p.Id, "name", p.Name, "issuer", p.IssuerURL)
		prov, err := oidc.NewProvider(context.Background(), p.IssuerURL)
		if err != nil {
			logger.Error("Failed to create OIDC provider", "id", p.Id, "error", err)
			return nil, nil, fmt.Errorf("failed to create OIDC provider: %w", err)
		}

		providers[p.Id] = &AuthProvider{
			name:       p.Name,
			oidcProv:   prov,
			idVerifier: prov.Verifier(&oidc.Config{ClientID: p.ClientID}),
			oauth2: &oauth2.Config{
				ClientID:     p.ClientID,
				ClientSecret: p.ClientSecret,
				Endpoint:     prov.Endpoint(),
				RedirectURL:  p.RedirectURL,
				Scopes:       p.Scopes,
			},
			state: NewStateStore(5 * time.Minute),
		}
		logger.Info("OIDC provider configured successfully", "id", p.Id, "name", p.Name)
	}

	return providers, sessionCookie, nil
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("Auth middleware processing request", "method", r.Method, "path", r.URL.Path)
		var rawIDToken string
		var providerID string

		// 1) Try session cookie first
		if c, err := r.Cookie("session"); err == nil {
			var prefixedToken string
			if err := s.sessionCookie.Decode("session", c.Value, &prefixedToken); err == nil {
				if pID, token, err := parseProviderToken(prefixedToken); err == nil {
					providerID, rawIDToken = pID, token
					logger.Debug("Extracted token from session cookie", "provider", providerID)
				}
			} else {
				logger.Debug("Failed to decode session cookie", "error", err)
			}
		}

		// 2) Try API key, local JWT or provider-prefixed Bearer token
		if rawIDToken == "" {
			if ah := r.Header.Get("Authorization"); strings.HasPrefix(ah, "Bearer ") {
				token := strings.TrimPrefix(ah, "Bearer ")

				if strings.HasPrefix(token, apiKeyPrefix) {
					if user, ok := s.authenticateAPIKey(token); ok {
						RecordAuthEvent("verification", "success", "apikey")
						next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userCtxKey{}, user)))
						return
					}
					RecordAuthEvent("verification", "failed", "apikey")
					s.handleAuthFailure(w, r, false)
					return
				}

				// Provider-prefixed OIDC token: "provider:jwt"
				if parsedProviderID, parsedToken, err := parseProviderToken(token); err == nil {
					if _, exists := s.authProviders[parsedProviderID]; exists {
						providerID = parsedProviderID
						rawIDToken = parsedToken
					} else {
						logger.Debug("Unknown provider in Bearer token", "provider", parsedProviderID)
					}
				} else if s.cfg.JWTSecret != "" {
					// Bare JWT issued by our own /auth/login
					if user, ok := s.verifyLocalToken(token); ok {
						RecordAuthEvent("verification", "success", "local")
						next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userCtxKey{}, user)))
						return
					}
					RecordAuthEvent("verification", "failed", "local")
					s.handleAuthFailure(w, r, false)
					return
				}
			}
		}

		// 3) No valid token: redirect for HTML, 401 for API
		if rawIDToken == "" || providerID == "" {
			RecordAuthEvent("verification", "missing_token", "unknown")
			s.handleAuthFailure(w, r, false)
			return
		}

		// 4) Verify token with the correct provider
		idTok, err := s.authProviders[providerID].idVerifier.Verify(r.Context(), rawIDToken)
		if err != nil {
			logger.Debug("ID token verification failed, attempting refresh", "provider", providerID, "error", err)
			RecordAuthEvent("verification", "failed", providerID)
			newIDToken, refreshed := s.tryRefreshToken(r.Context(), providerID, rawIDToken)
			if !refreshed {
				RecordAuthEvent("refresh", "failed", providerID)
				s.handleAuthFailure(w, r, true)
				return
			}
			newIdTok, verifyErr := s.authProviders[providerID].idVerifier.Verify(r.Context(), newIDToken)
			if verifyErr != nil {
				logger.Debug("Refreshed ID token verification failed", "error", verifyErr)
				RecordAuthEvent("refresh", "verification_failed", providerID)
				s.handleAuthFailure(w, r, true)
				return
			}
			RecordAuthEvent("refresh", "success", providerID)

			// Update cookie with the refreshed token
			val, err := s.sessionCookie.Encode("session", providerID+":"+newIDToken)
			if err != nil {
				logger.Error("Failed to encode refreshed session cookie", "error", err)
				s.handleAuthFailure(w, r, true)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     "session",
				Value:    val,
				Path:     "/",
				HttpOnly: true,
				Secure:   true,
				SameSite: http.SameSiteLaxMode,
				MaxAge:   int(sessionMaxAge.Seconds()),
			})
			idTok = newIdTok
		} else {
			RecordAuthEvent("verification", "success", providerID)
		}

		// 5) Extract claims and create user
		var claims map[string]any
		if err := idTok.Claims(&claims); err != nil {
			logger.Error("Failed to extract claims from token", "error", err)
			s.handleAuthFailure(w, r, true)
			return
		}
		u := &User{
			Subject: idTok.Subject,
			Email:   strClaim(claims, "email"),
			UserID:  userIDFromClaims(claims),
			Claims:  claims,
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userCtxKey{}, u)))
	})
}

// parseProviderToken parses a provider-prefixed token of the format
// "provider:jwt".
func parseProviderToken(token string) (providerID, jwt string, err error) {
	if token == "" {
		return "", "", fmt.Errorf("empty token")
	}

	parts := strings.SplitN(token, ":", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid token format: expected 'provider:jwt'")
	}

	providerID, jwt = parts[0], parts[1]
	if providerID == "" {
		return "", "", fmt.Errorf("empty provider ID")
	}
	if jwt == "" {
		return "", "", fmt.Errorf("empty JWT token")
	}

	return providerID, jwt, nil
}

func strClaim(m map[string]any, k string) string {
	if v, ok := m[k].(string); ok {
		return v
	}
	return ""
}

// userIDFromClaims generates a consistent user ID from token claims.
func userIDFromClaims(claims map[string]any) string {
	iss, ok := claims["iss"].(string)
	if !ok {
		return ""
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return ""
	}

	hash := sha256.Sum256([]byte(iss + "|" + sub))
	return fmt.Sprintf("user-%x", hash[:8])
}

// userIDFromContext extracts the user ID from an authenticated request
// context.
func userIDFromContext(authEnabled bool, r *http.Request) string {
	if !authEnabled {
		return "anonymous"
	}

	user, ok := r.Context().Value(userCtxKey{}).(*User)
	if !ok {
		logger.Error("No user in context")
		return ""
	}

	return user.UserID
}

func (s *Server) parseTokenClaims(providerID, token string) (map[string]any, error) {
	provider := s.authProviders[providerID]

	verifier := provider.oidcProv.Verifier(&oidc.Config{
		ClientID:        provider.oauth2.ClientID,
		SkipExpiryCheck: true,
	})

	idTok, err := verifier.Verify(context.Background(), token)
	if err != nil {
		return nil, fmt.Errorf("failed to parse expired token: %w", err)
	}

	var claims map[string]any
	err = idTok.Claims(&claims)
	return claims, err
}

func (s *Server) handleAuthFailure(w http.ResponseWriter, r *http.Request, clearCookie bool) {
	if clearCookie {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "", Path: "/", MaxAge: -1})
	}

	accept := r.Header.Get("Accept")
	if r.Method == http.MethodGet && (strings.Contains(accept, "text/html") || accept == "") {
		http.Redirect(w, r, "/auth/login", http.StatusFound)
	} else {
		if clearCookie {
			w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
		} else {
			w.Header().Set("WWW-Authenticate", `Bearer realm="habitboard"`)
		}
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}
}

func (s *Server) tryRefreshToken(ctx context.Context, providerID, expiredIDToken string) (string, bool) {
	claims, err := s.parseTokenClaims(providerID, expiredIDToken)
	if err != nil {
		logger.Debug("Failed to parse token claims", "error", err)
		return "", false
	}

	userID := userIDFromClaims(claims)
	if userID == "" {
		return "", false
	}

	storedToken, exists, err := s.store.GetRefreshToken(userID)
	if err != nil {
		logger.Error("Failed to retrieve token from storage", "userID", userID, "error", err)
		return "", false
	}
	if !exists {
		logger.Debug("No stored token found for user", "userID", userID)
		return "", false
	}

	// Let oauth2.TokenSource handle the refresh
	provider := s.authProviders[providerID]
	tokenSource := provider.oauth2.TokenSource(ctx, storedToken)

	freshToken, err := tokenSource.Token()
	if err != nil {
		logger.Debug("Token refresh failed", "error", err, "userID", userID)
		if delErr := s.store.DeleteRefreshToken(userID); delErr != nil {
			logger.Error("Failed to delete refresh token", "userID", userID, "error", delErr)
		}
		return "", false
	}

	// TokenSource may have rotated it
	if err := s.store.PutRefreshToken(userID, freshToken); err != nil {
		logger.Error("Failed to persist refresh token", "userID", userID, "error", err)
	}

	newIDToken, ok := freshToken.Extra("id_token").(string)
	if !ok || newIDToken == "" {
		logger.Debug("No id_token in refreshed token", "userID", userID)
		return "", false
	}

	return newIDToken, true
}

// authenticateAPIKey validates an API key and returns the associated User.
func (s *Server) authenticateAPIKey(apiKey string) (*User, bool) {
	keyHash := hashAPIKey(apiKey)

	userID, found, err := s.store.GetAPIKey(keyHash)
	if err != nil {
		logger.Error("Failed to lookup API key", "error", err)
		return nil, false
	}
	if !found {
		logger.Debug("API key not found in storage", "keyHash", truncateHash(keyHash))
		return nil, false
	}

	// API keys don't carry email or subject from any IDP
	user := &User{
		UserID:  userID,
		Subject: "apikey:" + truncateHash(keyHash),
		Claims:  map[string]any{"auth_method": "api_key"},
	}

	return user, true
}
