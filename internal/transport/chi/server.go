package chi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/cinematch/internal/domain"
	logpkg "github.com/kailas-cloud/cinematch/internal/logger"
	healthuc "github.com/kailas-cloud/cinematch/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/cinematch/internal/usecase/recommend"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Recommender is the query surface of the recommendation use case.
type Recommender interface {
	Search(ctx context.Context, query string, limit int) ([]recommenduc.Hit, error)
	Recommend(ctx context.Context, query string, n int) (recommenduc.Recommendation, error)
	Movies(ctx context.Context, offset, limit int) ([]recommenduc.Item, int, error)
	Status(ctx context.Context) recommenduc.Status
	Reload(ctx context.Context) (recommenduc.Status, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Limits bounds result sizes accepted from clients.
type Limits struct {
	DefaultResults     int
	MaxResults         int
	DefaultSearchLimit int
	MaxSearchLimit     int
}

// Server serves the JSON API over the recommendation use case.
type Server struct {
	recommend     Recommender
	health        HealthChecker
	limits        Limits
	posterBaseURL string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	recommend Recommender,
	health HealthChecker,
	limits Limits,
	posterBaseURL string,
	logger *zap.Logger,
) *Server {
	s := &Server{
		recommend:     recommend,
		health:        health,
		limits:        limits,
		posterBaseURL: posterBaseURL,
		logger:        logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, ErrorCodeBadRequest),
		sentinelHandler(domain.ErrMovieNotFound, http.StatusNotFound, ErrorCodeMovieNotFound),
		sentinelHandler(domain.ErrNotReady, http.StatusServiceUnavailable, ErrorCodeNotReady),
		sentinelHandler(domain.ErrLoad, http.StatusInternalServerError, ErrorCodeLoadFailed),
	}
	return s
}

// Routes mounts the API on r. adminAuth guards corpus administration.
func (s *Server) Routes(r chi.Router, adminAuth func(http.Handler) http.Handler) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/api", func(r chi.Router) {
		r.Get("/search", s.Search)
		r.Get("/recommend", s.Recommend)
		r.Get("/movies", s.ListMovies)
		r.Get("/status", s.Status)
		r.With(adminAuth).Post("/reload", s.Reload)
	})
}

// Search handles GET /api/search?q=&limit=.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "query parameter q is required")
		return
	}
	limit, ok := s.bindLimit(w, r, "limit", s.limits.DefaultSearchLimit, s.limits.MaxSearchLimit)
	if !ok {
		return
	}

	hits, err := s.recommend.Search(r.Context(), query, limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := SearchResponse{Results: make([]SearchResult, len(hits))}
	for i := range hits {
		resp.Results[i] = s.hitToResponse(&hits[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

// Recommend handles GET /api/recommend?movie=&n=.
func (s *Server) Recommend(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("movie"))
	if query == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "movie name is required")
		return
	}
	n, ok := s.bindLimit(w, r, "n", s.limits.DefaultResults, s.limits.MaxResults)
	if !ok {
		return
	}

	rec, err := s.recommend.Recommend(r.Context(), query, n)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := RecommendResponse{
		Match:           rec.Matched.Movie.Title(),
		MatchScore:      rec.Confidence,
		MatchedMovie:    s.movieToResponse(&rec.Matched),
		Recommendations: make([]MovieResponse, len(rec.Items)),
	}
	for i := range rec.Items {
		resp.Recommendations[i] = s.movieToResponse(&rec.Items[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListMovies handles GET /api/movies?offset=&limit=.
func (s *Server) ListMovies(w http.ResponseWriter, r *http.Request) {
	var offsetParam *int
	if err := runtime.BindQueryParameter("form", true, false, "offset", r.URL.Query(), &offsetParam); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid offset")
		return
	}
	offset := 0
	if offsetParam != nil {
		offset = *offsetParam
	}
	limit, ok := s.bindLimit(w, r, "limit", s.limits.DefaultSearchLimit, s.limits.MaxSearchLimit)
	if !ok {
		return
	}

	items, total, err := s.recommend.Movies(r.Context(), offset, limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := MovieListResponse{
		Movies: make([]MovieListItem, len(items)),
		Total:  total,
		Offset: offset,
		Limit:  limit,
	}
	for i := range items {
		m := &items[i].Movie
		resp.Movies[i] = MovieListItem{
			ID:          m.ID(),
			Title:       m.Title(),
			Rating:      m.Rating(),
			ReleaseDate: optional(m.ReleaseDate()),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Status handles GET /api/status.
func (s *Server) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusToResponse(s.recommend.Status(r.Context())))
}

// Reload handles POST /api/reload.
func (s *Server) Reload(w http.ResponseWriter, r *http.Request) {
	st, err := s.recommend.Reload(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusToResponse(st))
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

// bindLimit reads a positive integer query parameter, falling back to def
// and clamping to maxVal. Writes a 400 and returns false on bad input.
func (s *Server) bindLimit(w http.ResponseWriter, r *http.Request, name string, def, maxVal int) (int, bool) {
	var v *int
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, fmt.Sprintf("invalid %s", name))
		return 0, false
	}
	if v == nil {
		return def, true
	}
	if *v <= 0 {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, fmt.Sprintf("%s must be positive", name))
		return 0, false
	}
	if maxVal > 0 && *v > maxVal {
		return maxVal, true
	}
	return *v, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidArgument,
		domain.ErrMovieNotFound,
		domain.ErrNotReady,
		domain.ErrEmptyCorpus,
		domain.ErrLoad,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logpkg.FromContext(r.Context(), s.logger)
	logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
