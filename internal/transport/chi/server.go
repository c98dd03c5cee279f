package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docnav/internal/domain"
	"github.com/kailas-cloud/docnav/internal/domain/query"
	"github.com/kailas-cloud/docnav/internal/logger"
	"github.com/kailas-cloud/docnav/internal/metrics"
	healthuc "github.com/kailas-cloud/docnav/internal/usecase/health"
)

// maxBodyBytes bounds request bodies. A full ingest batch of maximum-size documents fits.
const maxBodyBytes = 32 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the query, ingestion and operational endpoints.
type Server struct {
	pipeline      Pipeline
	ingest        Ingester
	safety        SafetyReporter
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	pipeline Pipeline,
	ingest Ingester,
	safety SafetyReporter,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		pipeline: pipeline,
		ingest:   ingest,
		safety:   safety,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidDocument, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProviderError),
	}
	return s
}

// Handler builds the chi router with the full middleware chain.
// Empty apiKeys disables authentication.
func (s *Server) Handler(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeBadRequest, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/query", s.Query)
		r.Get("/search", s.Search)
		r.Post("/ingest", s.Ingest)
		r.Get("/stats", s.Stats)
		r.Get("/cache/stats", s.CacheStats)
		r.Delete("/cache", s.ClearCache)
		r.Get("/safety/status", s.SafetyStatus)
	})
	return r
}

// Query handles POST /api/v1/query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	s.answer(w, r, req.Query, req.NResults, req.IncludeCodeExamples)
}

// Search handles GET /api/v1/search?q=&n_results=&include_code_examples=.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var params SearchParams
	qp := r.URL.Query()

	if err := runtime.BindQueryParameter("form", true, false, "q", qp, &params.Q); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid format for parameter q: "+err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "n_results", qp, &params.NResults); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid format for parameter n_results: "+err.Error())
		return
	}
	err := runtime.BindQueryParameter("form", true, false, "include_code_examples", qp, &params.IncludeCodeExamples)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest,
			"Invalid format for parameter include_code_examples: "+err.Error())
		return
	}

	s.answer(w, r, params.Q, params.NResults, params.IncludeCodeExamples)
}

func (s *Server) answer(w http.ResponseWriter, r *http.Request, text string, nResults *int, includeCode *bool) {
	n := query.DefaultResultCount
	if nResults != nil {
		n = *nResults
	}
	include := true
	if includeCode != nil {
		include = *includeCode
	}

	q, err := query.New(text, n, include)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	res, err := s.pipeline.Run(ctx, q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, resultToResponse(res))
}

// Ingest handles POST /api/v1/ingest.
func (s *Server) Ingest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	report, err := s.ingest.Ingest(ctx, recordsFromRequest(req.Documents))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := IngestResponse{
		Success:        report.Added == len(req.Documents),
		DocumentsAdded: report.Added,
		Results:        make([]IngestItemResult, len(report.Results)),
	}
	for i, item := range report.Results {
		resp.Results[i] = ingestItemToResponse(item)
	}
	if resp.Success {
		resp.Message = fmt.Sprintf("Successfully added %d documents", report.Added)
	} else {
		resp.Message = fmt.Sprintf("Added %d of %d documents", report.Added, len(req.Documents))
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, resp)
}

// Stats handles GET /api/v1/stats.
func (s *Server) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := s.ingest.Stats(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse{TotalDocuments: st.TotalDocuments, CollectionName: st.IndexName})
}

// CacheStats handles GET /api/v1/cache/stats.
func (s *Server) CacheStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, cacheStatsToResponse(s.pipeline.CacheStats()))
}

// ClearCache handles DELETE /api/v1/cache.
func (s *Server) ClearCache(w http.ResponseWriter, r *http.Request) {
	n := s.pipeline.InvalidateCache()
	logger.FromContext(r.Context()).Info("result cache cleared", zap.Int("entries", n))
	writeJSON(w, http.StatusOK, CacheClearResponse{Cleared: n})
}

// SafetyStatus handles GET /api/v1/safety/status.
func (s *Server) SafetyStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, safetyStatusToResponse(s.safety.Status()))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage.Used() {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.Tokens()))
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeMessage returns a client-facing message without exposing internals.
// Validation errors keep their detail since it names the violated constraint.
func safeMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidQuery) || errors.Is(err, domain.ErrInvalidDocument) {
		return err.Error()
	}
	for _, s := range []error{domain.ErrRateLimited, domain.ErrEmbeddingProviderError} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func itemErrorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidDocument):
		return CodeValidationFailed
	case errors.Is(err, domain.ErrEmbeddingProviderError):
		return CodeEmbeddingProviderError
	case errors.Is(err, domain.ErrRateLimited):
		return CodeRateLimited
	default:
		return CodeInternalError
	}
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	msg := safeMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			log.Warn("request rejected", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
