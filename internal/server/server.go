// Package server exposes a running simulation over HTTP: state and
// control endpoints plus a websocket tick stream.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/PinkDiamond1/blob-simulation/internal/sim"
	"github.com/PinkDiamond1/blob-simulation/internal/store"
)

// Server is the blobsim HTTP API server.
type Server struct {
	runner   *sim.Runner
	db       *store.DB
	router   chi.Router
	upgrader websocket.Upgrader
	version  string
	started  time.Time
}

// New creates a new Server around a runner. db may be nil when no
// history database is configured; the run endpoints then report 404.
func New(runner *sim.Runner, db *store.DB, version string) *Server {
	s := &Server{
		runner:  runner,
		db:      db,
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/state", s.handleState)
		r.Get("/knowledge", s.handleKnowledge)
		r.Post("/step", s.handleStep)
		r.Post("/board/reset", s.handleBoardReset)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{runID}/ticks", s.handleRunTicks)
		r.Get("/watch", s.handleWatch)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := s.db != nil
	if dbOK {
		if err := s.db.Ping(); err != nil {
			dbOK = false
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"tick":    s.runner.State().Tick,
	})
}
