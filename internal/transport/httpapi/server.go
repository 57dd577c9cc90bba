// Package httpapi is the thin HTTP surface for the tracker UI. All matching
// semantics live in the usecase packages; handlers only decode, delegate,
// and encode.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rshaham/job-hunt-buddy/internal/metrics"
	"github.com/rshaham/job-hunt-buddy/internal/store/memory"
	"github.com/rshaham/job-hunt-buddy/internal/usecase/improvements"
	"github.com/rshaham/job-hunt-buddy/internal/usecase/indexer"
	"github.com/rshaham/job-hunt-buddy/internal/usecase/match"
	"github.com/rshaham/job-hunt-buddy/internal/usecase/retrieval"
)

// Readiness reports whether the embedding pipeline can serve.
type Readiness interface {
	Ready() bool
}

// Server wires the usecase services to HTTP.
type Server struct {
	store        *memory.Store
	match        *match.Service
	retrieval    *retrieval.Service
	improvements *improvements.Service
	indexer      *indexer.Service
	readiness    Readiness
	logger       *zap.Logger
}

// NewServer creates the API server.
func NewServer(
	store *memory.Store,
	matchSvc *match.Service,
	retrievalSvc *retrieval.Service,
	improvementsSvc *improvements.Service,
	indexerSvc *indexer.Service,
	readiness Readiness,
	logger *zap.Logger,
) *Server {
	return &Server{
		store:        store,
		match:        matchSvc,
		retrieval:    retrievalSvc,
		improvements: improvementsSvc,
		indexer:      indexerSvc,
		readiness:    readiness,
		logger:       logger,
	}
}

// Router assembles the chi router with middleware and all routes.
func (s *Server) Router(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chimiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Put("/settings", s.handlePutSettings)

		r.Post("/stories", s.handlePostStory)
		r.Delete("/stories/{id}", s.handleDeleteStory)

		r.Post("/documents", s.handlePostDocument)
		r.Delete("/documents/{id}", s.handleDeleteDocument)

		r.Get("/jobs", s.handleListJobs)
		r.Post("/jobs", s.handlePostJob)
		r.Put("/jobs/{id}", s.handlePutJob)
		r.Delete("/jobs/{id}", s.handleDeleteJob)
		r.Get("/jobs/{id}/improvements", s.handleJobImprovements)

		r.Get("/improvements", s.handleListImprovements)

		r.Post("/index/sync", s.handleIndexSync)
		r.Post("/jobs/score", s.handleScoreJobs)
		r.Post("/retrieval/context", s.handleRetrievalContext)
	})

	return r
}

// handleHealth reports process liveness plus pipeline readiness. The process
// is healthy while the pipeline warms up, so this never returns 503 for an
// initializing pipeline.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := "ok"
	if !s.readiness.Ready() {
		status = "initializing"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         status,
		"pipeline_ready": s.readiness.Ready(),
	})
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("Request failed", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, m := range sentinelStatus {
		if errors.Is(err, m.err) {
			writeError(w, m.status, m.code, msg)
			return
		}
	}
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}
