// Package web exposes the portal's HTTP JSON API: authentication, the
// registration wizard, and the administrative listing.
package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"cemsreg/auth"
	"cemsreg/observability"
	"cemsreg/registry"
	"cemsreg/shield"
)

// Config holds the server's runtime parameters.
type Config struct {
	Secret     []byte // HS256 session key, >= auth.MinSecretLen bytes
	SessionTTL time.Duration
	Limits     shield.Limits
	Done       <-chan struct{} // stops background middleware work; nil is fine
}

// Server owns the handlers and their dependencies.
type Server struct {
	store   *registry.Store
	events  *observability.EventLogger
	metrics *observability.HTTPMetrics
	logger  *slog.Logger
	cfg     Config
}

// NewServer wires the API. It fails fast on a weak session secret.
func NewServer(store *registry.Store, events *observability.EventLogger, cfg Config, logger *slog.Logger) (*Server, error) {
	if err := auth.ValidateSecret(cfg.Secret); err != nil {
		return nil, err
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * 24 * time.Hour
	}
	return &Server{
		store:   store,
		events:  events,
		metrics: observability.NewHTTPMetrics(),
		logger:  logger,
		cfg:     cfg,
	}, nil
}

// Router builds the chi router with the full middleware stack.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(observability.RequestLogger(s.logger))
	r.Use(s.metrics.Middleware)
	for _, mw := range shield.Stack(s.cfg.Limits, s.cfg.Done) {
		r.Use(mw)
	}
	r.Use(auth.Middleware(s.cfg.Secret)) // soft parse, no enforcement

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})
	r.Method("GET", "/metrics", s.metrics.Handler())

	r.Post("/api/auth/register", s.handleRegister)
	r.Post("/api/auth/login", s.handleLogin)
	r.Post("/api/auth/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/api/auth/me", s.handleMe)
	})

	// Industry wizard routes: a session bound to an industry.
	r.Group(func(r chi.Router) {
		r.Use(s.requireIndustry)

		r.Get("/api/industry", s.handleIndustry)
		r.Get("/api/wizard", s.handleWizard)
		r.Get("/api/dashboard", s.handleDashboard)

		r.Get("/api/stacks", s.handleListStacks)
		r.Post("/api/stacks", s.handleAddStack)
		r.Get("/api/stacks/{stackID}/parameters", s.handleRemainingParameters)
		r.Get("/api/stacks/{stackID}/instruments", s.handleListInstruments)
		r.Post("/api/stacks/{stackID}/instruments", s.handleAddInstrument)
	})

	// Admin routes: read-only browsing of all submissions.
	r.Group(func(r chi.Router) {
		r.Use(s.requireAdmin)

		r.Get("/api/admin/industries", s.handleAdminListIndustries)
		r.Get("/api/admin/industries/{industryID}", s.handleAdminIndustryDetail)
	})

	return r
}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.GetClaims(r.Context()) == nil {
			writeJSON(w, 401, map[string]string{"error": "authentication required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireIndustry(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := auth.GetClaims(r.Context())
		if c == nil {
			writeJSON(w, 401, map[string]string{"error": "authentication required"})
			return
		}
		if c.Role != auth.RoleIndustry || c.IndustryID == 0 {
			writeJSON(w, 403, map[string]string{"error": "industry session required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := auth.GetClaims(r.Context())
		if c == nil || c.Role != auth.RoleAdmin {
			writeJSON(w, 403, map[string]string{"error": "admin session required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
