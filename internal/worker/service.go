// Package worker provides the main HTTP service for autofocus.
package worker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/thebtf/autofocus/internal/classifier"
	"github.com/thebtf/autofocus/internal/config"
	"github.com/thebtf/autofocus/internal/db/sqlite"
	"github.com/thebtf/autofocus/internal/policy"
)

// Service bundles the HTTP surface with its collaborators. It owns no
// business logic beyond request shaping; classification and aggregation
// live in their packages.
type Service struct {
	version       string
	config        *config.Config
	store         *sqlite.Store
	sessionStore  *sqlite.SessionStore
	analysisStore *sqlite.AnalysisStore
	classifier    *classifier.Classifier
	modes         atomic.Pointer[policy.Registry]
	router        *chi.Mux
	server        *http.Server
	ctx           context.Context
	cancel        context.CancelFunc
	ready         atomic.Bool
	startTime     time.Time
}

// Deps holds the collaborators a Service is built from.
type Deps struct {
	Version       string
	Config        *config.Config
	Store         *sqlite.Store
	SessionStore  *sqlite.SessionStore
	AnalysisStore *sqlite.AnalysisStore
	Classifier    *classifier.Classifier
	Modes         *policy.Registry
}

// New creates a Service and mounts its routes.
func New(deps Deps) *Service {
	ctx, cancel := context.WithCancel(context.Background())

	svc := &Service{
		version:       deps.Version,
		config:        deps.Config,
		store:         deps.Store,
		sessionStore:  deps.SessionStore,
		analysisStore: deps.AnalysisStore,
		classifier:    deps.Classifier,
		router:        chi.NewRouter(),
		ctx:           ctx,
		cancel:        cancel,
		startTime:     time.Now(),
	}
	svc.modes.Store(deps.Modes)

	svc.setupRoutes()
	return svc
}

// Router returns the HTTP handler, for tests and embedding.
func (s *Service) Router() http.Handler {
	return s.router
}

// SetModes swaps the mode policy registry. Called from the settings
// watcher goroutine while requests are in flight; registries are
// immutable after load, so an atomic pointer swap is enough.
func (s *Service) SetModes(modes *policy.Registry) {
	s.modes.Store(modes)
}

func (s *Service) setupRoutes() {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/", s.handleRoot)
	r.Get("/api/health", s.handleHealth)
	r.Get("/api/ready", s.handleReady)

	r.Group(func(r chi.Router) {
		r.Use(s.requireReady)

		r.Post("/sessions/", s.handleCreateSession)
		r.Get("/sessions/", s.handleListSessions)
		r.Put("/sessions/{id}/end", s.handleEndSession)
		r.Put("/sessions/{id}/distractions", s.handleSetDistractions)
		r.Get("/analytics/weekly", s.handleWeeklyAnalytics)
		r.Post("/analyze/page", s.handleAnalyzePage)
		r.Get("/modes", s.handleModes)
		r.Get("/api/stats", s.handleStats)
	})
}

// Start marks the service ready and serves HTTP until ctx is cancelled
// or the listener fails.
func (s *Service) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.ready.Store(true)
	log.Info().Str("addr", addr).Str("version", s.version).Msg("Starting autofocus worker")

	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and drains in-flight ones.
func (s *Service) Shutdown(ctx context.Context) error {
	s.ready.Store(false)
	s.cancel()
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// requireReady rejects requests until the service finished starting.
func (s *Service) requireReady(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.ready.Load() {
			writeError(w, http.StatusServiceUnavailable, "service not ready")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware allows the browser extension origin to call the API.
// Extensions run from their own origin, so the surface is permissive.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeJSON serializes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// writeError emits a client-error body in the {"detail": ...} shape the
// extension expects.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
