// Package api exposes the replay engine, seed scanner, run archive, and
// leaderboard over a localhost HTTP interface.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MJE43/replay2048-go/internal/scan"
	"github.com/MJE43/replay2048-go/internal/scores"
	"github.com/MJE43/replay2048-go/internal/store"
	"github.com/MJE43/replay2048-go/internal/version"
)

// Server handles HTTP requests
type Server struct {
	db           store.DB
	scanner      *scan.Scanner
	scores       *scores.Store
	scoresMu     sync.Mutex // scores.Store does no locking of its own
	errorHandler *ErrorHandler
	logger       *log.Logger
	startTime    time.Time
}

// NewServer creates a new API server
func NewServer(db store.DB, scoreStore *scores.Store) *Server {
	logger := log.New(os.Stdout, "[API] ", log.LstdFlags|log.Lshortfile)

	return &Server{
		db:           db,
		scanner:      scan.NewScanner(),
		scores:       scoreStore,
		errorHandler: NewErrorHandler(logger),
		logger:       logger,
		startTime:    time.Now(),
	}
}

// Routes sets up the HTTP routes with proper middleware
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.RequestLoggingMiddleware)
	r.Use(s.errorHandler.RecoveryHandler)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(s.CORSMiddleware)

	// Health and monitoring endpoints
	r.Get("/health", s.handleHealthCheck)
	r.Get("/health/live", s.handleLiveness)

	// Engine endpoints
	r.Post("/replay", s.handleReplay)
	r.Post("/verify", s.handleVerify)
	r.Post("/scan", s.handleScan)

	// Run archive
	r.Get("/runs", s.handleListRuns)
	r.Get("/runs/{id}", s.handleGetRun)
	r.Get("/runs/{id}/hits", s.handleGetRunHits)

	// Leaderboard
	r.Get("/leaderboard", s.handleGetLeaderboard)
	r.Post("/leaderboard", s.handleAddScore)

	return r
}

// writeJSON writes a JSON response with proper headers
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", version.Engine)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// If encoding fails, try to write a simple error response
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// writeError writes a structured error response
func (s *Server) writeError(w http.ResponseWriter, status int, errType, message string, context map[string]interface{}) {
	errorResponse := EngineError{
		Type:      errType,
		Message:   message,
		Context:   context,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	w.Header().Set("X-Error-Type", errType)
	w.Header().Set("X-Error-Category", string(GetErrorCategory(errType)))
	s.writeJSON(w, status, errorResponse)
}
