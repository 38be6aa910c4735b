// Package server exposes the calculator over HTTP and websockets.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pefman/cr-calc/internal/cards"
	"github.com/pefman/cr-calc/internal/session"
	"github.com/pefman/cr-calc/internal/stats"
	"github.com/pefman/cr-calc/internal/storage"
)

type Server struct {
	cards     *cards.Store
	sessions  *session.Manager
	scenarios storage.Repo
	stats     *stats.Tracker
	router    *mux.Router
}

func New(store *cards.Store, scenarios storage.Repo, tracker *stats.Tracker) *Server {
	s := &Server{
		cards:     store,
		sessions:  session.NewManager(store),
		scenarios: scenarios,
		stats:     tracker,
		router:    mux.NewRouter(),
	}
	s.routes()
	return s
}

// Handler is the root handler, CORS included.
func (s *Server) Handler() http.Handler { return withCORS(s.router) }

// Sessions exposes the live websocket sessions (for pruning).
func (s *Server) Sessions() *session.Manager { return s.sessions }

func (s *Server) routes() {
	r := s.router
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "no such route")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, r.Method+" not allowed")
	})

	api := r.PathPrefix("/api").Subrouter()

	// Health
	api.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	// Cards
	api.HandleFunc("/cards", s.handleCards).Methods(http.MethodGet)
	api.HandleFunc("/cards/{id:[0-9]+}", s.handleCard).Methods(http.MethodGet)
	api.HandleFunc("/cards/{id:[0-9]+}/damage-options", s.handleDamageOptions).Methods(http.MethodGet)

	// One-shot calculation
	api.HandleFunc("/calc", s.handleCalc).Methods(http.MethodPost)

	// Saved scenarios
	api.HandleFunc("/scenarios", s.handleListScenarios).Methods(http.MethodGet)
	api.HandleFunc("/scenarios", s.handleSaveScenario).Methods(http.MethodPost)
	api.HandleFunc("/scenarios/{id:[0-9]+}", s.handleGetScenario).Methods(http.MethodGet)
	api.HandleFunc("/scenarios/{id:[0-9]+}", s.handleDeleteScenario).Methods(http.MethodDelete)
	api.HandleFunc("/scenarios/{id:[0-9]+}/result", s.handleScenarioResult).Methods(http.MethodGet)

	// Statistics
	api.HandleFunc("/stats/today", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.stats.Today())
	}).Methods(http.MethodGet)

	// Live calculator
	r.HandleFunc("/ws", s.handleWS)
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":   http.StatusText(code),
		"message": msg,
		"status":  code,
	})
}

// simple CORS for GET/POST/DELETE/OPTIONS
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept-Language")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
