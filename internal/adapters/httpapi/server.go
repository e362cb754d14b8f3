// internal/adapters/httpapi/server.go

// Package httpapi exposes the search pipeline over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"pricescout/internal/core/domain"
	"pricescout/internal/core/ports"
	"pricescout/internal/platform/errors"
	"pricescout/internal/platform/logx"
)

const (
	apiTitle        = "Ultimate Price Comparison API"
	maxRequestBytes = 1 << 20
	healthTimeout   = 5 * time.Second
)

// Searcher runs one search. Implemented by usecases.PipelineOrchestrator.
type Searcher interface {
	Run(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error)
}

// Server serves POST /search, GET /health and GET /.
type Server struct {
	searcher Searcher
	checkers []ports.HealthChecker
	version  string
	logger   logx.Logger

	ready atomic.Bool
	mux   *http.ServeMux
}

// NewServer wires handlers onto a mux. The server starts not ready; call
// SetReady once the pipeline is wired.
func NewServer(searcher Searcher, version string, logger logx.Logger, checkers ...ports.HealthChecker) *Server {
	if logger == nil {
		logger = logx.Nop()
	}
	s := &Server{
		searcher: searcher,
		checkers: checkers,
		version:  version,
		logger:   logger.With("component", "httpapi"),
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

// SetReady marks the pipeline as available.
func (s *Server) SetReady(ready bool) { s.ready.Store(ready) }

// ServeHTTP satisfies http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/search", s.handleSearch)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/", s.handleRoot)
}

type errorBody struct {
	Detail string `json:"detail"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	if !s.ready.Load() {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Detail: "Workflow not ready."})
		return
	}

	var req domain.SearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Detail: "invalid json payload: " + err.Error()})
		return
	}

	resp, err := s.searcher.Run(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrInvalidRequest) {
			status = http.StatusBadRequest
		}
		s.logger.Warn("search failed", "query", req.Query, "country", req.Country.String(), "status", status, "error", err.Error())
		writeJSON(w, status, errorBody{Detail: err.Error()})
		return
	}

	s.logger.Info("search served",
		"request_id", resp.Metadata.RequestID,
		"results", resp.TotalResults,
		"duration_ms", resp.SearchTimeMs,
	)
	writeJSON(w, http.StatusOK, resp)
}

type healthBody struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	Initialized   bool              `json:"initialized"`
	WorkflowReady bool              `json:"workflow_ready"`
	Checks        map[string]string `json:"checks,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	ready := s.ready.Load()
	body := healthBody{
		Status:        "healthy",
		Version:       s.version,
		Initialized:   ready,
		WorkflowReady: ready && s.searcher != nil,
	}

	healthy := body.WorkflowReady
	if len(s.checkers) > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		body.Checks = make(map[string]string, len(s.checkers))
		for _, c := range s.checkers {
			if err := c.HealthCheck(ctx); err != nil {
				body.Checks[c.Name()] = err.Error()
				healthy = false
				continue
			}
			body.Checks[c.Name()] = "ok"
		}
	}

	status := http.StatusOK
	if !healthy {
		body.Status = "not_ready"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, body)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"title":       apiTitle,
		"version":     s.version,
		"description": "Product price comparison across retail sites",
		"endpoints": map[string]string{
			"search": "/search",
			"health": "/health",
		},
		"countries": domain.SupportedCountries,
		"features": []string{
			"Multi-country support",
			"Site discovery with persistent caching",
			"Rate-limited LLM extraction with CSS selector fast path",
			"Adaptive backfill",
			"Price-based result ranking",
		},
	})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeJSON(w, http.StatusMethodNotAllowed, errorBody{Detail: "method not allowed"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
