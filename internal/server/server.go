package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/securecookie"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brk3/habitboard/internal/config"
	"github.com/brk3/habitboard/internal/storage"
)

type Server struct {
	cfg           *config.Config
	store         storage.Store
	authProviders map[string]*AuthProvider
	sessionCookie *securecookie.SecureCookie

	// now is swapped out in tests to pin "today".
	now func() time.Time
}

func New(cfg *config.Config, store storage.Store) (*Server, error) {
	s := &Server{
		cfg:   cfg,
		store: store,
		now:   time.Now,
	}

	if cfg.AuthEnabled {
		providers, cookie, err := ConfigureOIDCProviders(cfg)
		if err != nil {
			return nil, err
		}
		s.authProviders = providers
		s.sessionCookie = cookie
	}

	return s, nil
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(metricsMiddleware)

	r.Get("/version", s.getVersionInfo)
	r.Get("/healthz", s.healthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.register)
		r.Post("/login", s.localLogin)
		r.Get("/login", s.loginPage)
		r.Get("/login/{id}", s.oidcLogin)
		r.Get("/callback/{id}", s.oidcCallback)
		r.Post("/logout", s.logout)
		r.Get("/token", s.getAPIToken)

		r.Group(func(r chi.Router) {
			if s.cfg.AuthEnabled {
				r.Use(s.authMiddleware)
			}
			r.Use(s.userAwareMetricsMiddleware)
			r.Post("/api_keys", s.generateAPIKey)
			r.Get("/api_keys", s.listAPIKeys)
			r.Delete("/api_keys/{key_hash}", s.deleteAPIKey)
		})
	})

	r.Route("/habits", func(r chi.Router) {
		if s.cfg.AuthEnabled {
			r.Use(s.authMiddleware)
		}
		r.Use(s.userAwareMetricsMiddleware)

		r.Post("/", s.createHabit)
		r.Get("/", s.listHabits)
		r.Get("/{habit_id}", s.getHabit)
		r.Put("/{habit_id}", s.updateHabit)
		r.Delete("/{habit_id}", s.deleteHabit)

		r.Post("/{habit_id}/toggle", s.toggleCheckin)
		r.Get("/{habit_id}/checkins", s.listCheckins)
		r.Get("/{habit_id}/summary", s.getHabitSummary)
	})

	r.Route("/stats", func(r chi.Router) {
		if s.cfg.AuthEnabled {
			r.Use(s.authMiddleware)
		}
		r.Use(s.userAwareMetricsMiddleware)

		r.Get("/summary", s.getDashboard)
	})

	return r
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
