// Package api exposes the read-only HTTP surface: session listing, session
// snapshots, and the liveness probe. All mutation flows through the
// WebSocket gateway.
package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"pollroom/internal/session"
	"pollroom/pkg/interfaces"
	"pollroom/pkg/types"
)

// Server handles the REST endpoints. No business logic lives here, only
// HTTP handling and JSON serialization.
type Server struct {
	store    *session.Store
	registry interfaces.ConnRegistry
	router   *http.ServeMux
}

// NewServer creates the API server and sets up its routes.
func NewServer(store *session.Store, registry interfaces.ConnRegistry) *Server {
	s := &Server{
		store:    store,
		registry: registry,
		router:   http.NewServeMux(),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Handle("/api/sessions", s.corsMiddleware(s.jsonMiddleware(http.HandlerFunc(s.listSessions))))
	s.router.Handle("/api/sessions/", s.corsMiddleware(s.jsonMiddleware(http.HandlerFunc(s.getSession))))
	s.router.Handle("/health", s.corsMiddleware(s.jsonMiddleware(http.HandlerFunc(s.healthCheck))))
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SessionSummary is one row of the session listing.
type SessionSummary struct {
	Key              string `json:"key"`
	ParticipantCount int    `json:"participant_count"`
	HasActivePoll    bool   `json:"has_active_poll"`
}

type ListSessionsResponse struct {
	Sessions []SessionSummary `json:"sessions"`
}

type SessionResponse struct {
	Session *types.Snapshot `json:"session"`
}

type HealthResponse struct {
	Status         string         `json:"status"`
	ActiveSessions int            `json:"active_sessions"`
	Connections    map[string]int `json:"connections"`
	Timestamp      time.Time      `json:"timestamp"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// GET /api/sessions - list sessions with participant counts and poll state.
func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessions := s.store.List()
	summaries := make([]SessionSummary, len(sessions))
	for i, sess := range sessions {
		summaries[i] = SessionSummary{
			Key:              sess.Key(),
			ParticipantCount: sess.ParticipantCount(),
			HasActivePoll:    sess.HasActivePoll(),
		}
	}
	// map iteration order is random; keep the listing stable
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Key < summaries[j].Key })

	json.NewEncoder(w).Encode(ListSessionsResponse{Sessions: summaries})
}

// GET /api/sessions/{key} - full snapshot of one session.
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	key := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	key = strings.Split(key, "/")[0]
	if key == "" {
		s.sendError(w, "Session key required", http.StatusBadRequest)
		return
	}

	sess, ok := s.store.Get(key)
	if !ok {
		s.sendError(w, "Session not found", http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(SessionResponse{Session: sess.Snapshot()})
}

// GET /health - liveness probe with session and connection counts.
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:         "ok",
		ActiveSessions: s.store.Count(),
		Connections:    s.registry.Stats(),
		Timestamp:      time.Now(),
	}

	json.NewEncoder(w).Encode(response)
}

func (s *Server) sendError(w http.ResponseWriter, message string, code int) {
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(code),
		Code:    code,
		Message: message,
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
