// ABOUTME: HTTP server assembly: routes, middleware, and graceful shutdown
// ABOUTME: All JSON error responses share the {error, details?} shape

package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/leafnote/leafnote/internal/auth"
	"github.com/leafnote/leafnote/internal/chat"
	"github.com/leafnote/leafnote/internal/island"
	"github.com/leafnote/leafnote/internal/notes"
	"github.com/leafnote/leafnote/internal/search"
)

// shutdownTimeout bounds how long graceful shutdown waits for in-flight requests.
const shutdownTimeout = 10 * time.Second

// Server wires the HTTP API over the application services.
type Server struct {
	addr    string
	auth    *auth.Service
	notes   *notes.Service
	search  *search.Service
	chat    *chat.Service
	islands *island.Dispatcher
	logger  *slog.Logger

	httpServer *http.Server
}

// New creates a server listening on addr once Run is called.
func New(addr string, authSvc *auth.Service, notesSvc *notes.Service, searchSvc *search.Service, chatSvc *chat.Service, islands *island.Dispatcher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:    addr,
		auth:    authSvc,
		notes:   notesSvc,
		search:  searchSvc,
		chat:    chatSvc,
		islands: islands,
		logger:  logger.With("component", "server"),
	}
}

// Handler builds the full route table wrapped in the session middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/signup", s.handleSignup)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.handleLogout)

	mux.HandleFunc("GET /api/notes", s.handleListNotes)
	mux.HandleFunc("POST /api/notes", s.handleCreateNote)
	mux.HandleFunc("GET /api/notes/{id}", s.handleGetNote)
	mux.HandleFunc("PUT /api/notes/{id}", s.handleUpdateNote)
	mux.HandleFunc("DELETE /api/notes/{id}", s.handleDeleteNote)

	mux.HandleFunc("GET /api/search", s.handleSearch)

	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/suggest-tags", s.handleSuggestTags)
	mux.HandleFunc("POST /api/related-notes", s.handleRelatedNotes)
	mux.HandleFunc("POST /api/island/{id}", s.handleIslandAction)

	mux.HandleFunc("GET /health", s.handleHealth)

	return auth.Middleware(s.auth, s.logger)(mux)
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down http server")
	return s.httpServer.Shutdown(shutdownCtx)
}

// handleHealth handles GET /health requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// errorResponse is the JSON error body shared by every route.
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}

func (s *Server) sendJSONErrorDetails(w http.ResponseWriter, status int, message, details string) {
	s.writeJSON(w, status, errorResponse{Error: message, Details: details})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response failed", "error", err)
	}
}
