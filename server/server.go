package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/metrics"
	"github.com/poiesic/recollect/search"
)

// maxRequestBytes bounds a search request body.
const maxRequestBytes = 64 << 10

// Searcher is the search operation served over HTTP.
type Searcher interface {
	PerformSearchWithMonitor(ctx context.Context, query, userID string, monitor search.SearchMonitor) (*core.Answer, error)
}

// SearchRequest is the body of POST /v1/search.
type SearchRequest struct {
	Query  string `json:"query"`
	UserID string `json:"userId"`
}

// ErrorResponse is returned for every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Server exposes search over HTTP.
type Server struct {
	searcher Searcher
	logger   *slog.Logger
}

// New creates an HTTP server for searcher.
func New(searcher Searcher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		searcher: searcher,
		logger:   logger.With("component", "http"),
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.Middleware())

	r.Get("/health", s.health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Post("/v1/search", s.search)
	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	answer, err := s.searcher.PerformSearchWithMonitor(r.Context(), req.Query, req.UserID, metrics.NewSearchMonitor())
	if err != nil {
		s.handleSearchError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

func (s *Server) handleSearchError(w http.ResponseWriter, r *http.Request, err error) {
	reqID := chiMiddleware.GetReqID(r.Context())
	switch {
	case errors.Is(err, search.ErrInvalidQuery):
		writeError(w, http.StatusBadRequest, "invalid_query", "query and userId are required")
	case errors.Is(err, search.ErrRetrievalFailed):
		s.logger.Warn("search unavailable", "request_id", reqID, "err", err)
		writeError(w, http.StatusServiceUnavailable, "retrieval_unavailable", "search backends are unavailable")
	default:
		s.logger.Error("search failed", "request_id", reqID, "err", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
