package chi

import (
	"time"

	"github.com/kailas-cloud/cinematch/internal/domain/movie"
	recommenduc "github.com/kailas-cloud/cinematch/internal/usecase/recommend"
)

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

// Error codes returned by the API.
const (
	ErrorCodeBadRequest    ErrorCode = "bad_request"
	ErrorCodeUnauthorized  ErrorCode = "unauthorized"
	ErrorCodeMovieNotFound ErrorCode = "movie_not_found"
	ErrorCodeNotReady      ErrorCode = "not_ready"
	ErrorCodeLoadFailed    ErrorCode = "load_failed"
	ErrorCodeRateLimited   ErrorCode = "rate_limited"
	ErrorCodeInternalError ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchResult is one entry of GET /api/search.
type SearchResult struct {
	Title  string   `json:"title"`
	Score  int      `json:"score"`
	Genres string   `json:"genres"`
	Rating *float64 `json:"rating"`
	Year   *string  `json:"year"`
	Poster string   `json:"poster"`
}

// SearchResponse is the body of GET /api/search.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// MovieResponse is a recommended or matched movie.
type MovieResponse struct {
	Title       string   `json:"title"`
	Genres      string   `json:"genres"`
	Rating      *float64 `json:"rating"`
	Overview    *string  `json:"overview"`
	ReleaseDate *string  `json:"releaseDate"`
	Homepage    *string  `json:"homepage"`
	Cast        string   `json:"cast"`
	Director    string   `json:"director"`
	Poster      string   `json:"poster"`
	Similarity  float64  `json:"similarity"`
}

// RecommendResponse is the body of GET /api/recommend.
type RecommendResponse struct {
	Match           string          `json:"match"`
	MatchScore      int             `json:"matchScore"`
	MatchedMovie    MovieResponse   `json:"matched_movie"`
	Recommendations []MovieResponse `json:"recommendations"`
}

// MovieListItem is one entry of GET /api/movies.
type MovieListItem struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Rating      *float64 `json:"rating"`
	ReleaseDate *string  `json:"releaseDate"`
}

// MovieListResponse is the body of GET /api/movies.
type MovieListResponse struct {
	Movies []MovieListItem `json:"movies"`
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Limit  int             `json:"limit"`
}

// StatusResponse is the body of GET /api/status and POST /api/reload.
type StatusResponse struct {
	Status             string     `json:"status"`
	DatabaseLoaded     bool       `json:"database_loaded"`
	SimilarityComputed bool       `json:"similarity_computed"`
	MovieCount         int        `json:"movie_count"`
	VocabularySize     int        `json:"vocabulary_size"`
	LoadedAt           *time.Time `json:"loaded_at,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *Server) posterURL(m *movie.Movie) string {
	return s.posterBaseURL + m.PosterPath()
}

func (s *Server) movieToResponse(it *recommenduc.Item) MovieResponse {
	m := &it.Movie
	return MovieResponse{
		Title:       m.Title(),
		Genres:      it.Features.Genres,
		Rating:      m.Rating(),
		Overview:    optional(m.Overview()),
		ReleaseDate: optional(m.ReleaseDate()),
		Homepage:    optional(m.Homepage()),
		Cast:        it.Features.Cast,
		Director:    it.Features.Director,
		Poster:      s.posterURL(m),
		Similarity:  it.Score,
	}
}

func (s *Server) hitToResponse(h *recommenduc.Hit) SearchResult {
	m := &h.Movie
	return SearchResult{
		Title:  m.Title(),
		Score:  h.Confidence,
		Genres: h.Features.Genres,
		Rating: m.Rating(),
		Year:   optional(m.Year()),
		Poster: s.posterURL(m),
	}
}

func statusToResponse(st recommenduc.Status) StatusResponse {
	resp := StatusResponse{
		Status:             "ok",
		DatabaseLoaded:     st.Ready,
		SimilarityComputed: st.Ready,
		MovieCount:         st.EntityCount,
		VocabularySize:     st.VocabularySize,
	}
	if st.Ready {
		t := st.LoadedAt.UTC()
		resp.LoadedAt = &t
	}
	return resp
}
