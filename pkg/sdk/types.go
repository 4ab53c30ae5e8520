package cinematch

import (
	"context"
	"time"

	"github.com/kailas-cloud/cinematch/internal/domain/movie"
	recommenduc "github.com/kailas-cloud/cinematch/internal/usecase/recommend"
)

// RawMovie is one unparsed dataset row. The list-valued fields hold JSON or
// Python-literal arrays of {"name": ...} objects as found in TMDB exports.
type RawMovie = movie.Raw

// Source supplies raw movie rows to the client.
type Source interface {
	Load(ctx context.Context) ([]RawMovie, error)
	Name() string
}

// Movie is a movie with its extracted features.
type Movie struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Genres      string   `json:"genres"`
	Keywords    string   `json:"keywords"`
	Companies   string   `json:"companies"`
	Cast        string   `json:"cast"`
	Director    string   `json:"director"`
	Rating      *float64 `json:"rating"`
	ReleaseDate string   `json:"release_date"`
	Year        string   `json:"year"`
	Overview    string   `json:"overview"`
	PosterPath  string   `json:"poster_path"`
	Homepage    string   `json:"homepage"`
	// Similarity to the matched movie: 1 for the match itself, 0 in search results.
	Similarity  float64  `json:"similarity"`
}

// SearchResult is a title match with its confidence (0-100).
type SearchResult struct {
	Movie
	Confidence int `json:"confidence"`
}

// Recommendation is the matched movie and its most similar neighbours,
// most similar first.
type Recommendation struct {
	Match      Movie   `json:"match"`
	Confidence int     `json:"confidence"`
	Movies     []Movie `json:"movies"`
}

// Status describes the loaded corpus.
type Status struct {
	Ready          bool      `json:"ready"`
	MovieCount     int       `json:"movie_count"`
	VocabularySize int       `json:"vocabulary_size"`
	LoadedAt       time.Time `json:"loaded_at"`
}

func fromItem(it *recommenduc.Item) Movie {
	m := &it.Movie
	return Movie{
		ID:          m.ID(),
		Title:       m.Title(),
		Genres:      it.Features.Genres,
		Keywords:    it.Features.Keywords,
		Companies:   it.Features.Companies,
		Cast:        it.Features.Cast,
		Director:    it.Features.Director,
		Rating:      m.Rating(),
		ReleaseDate: m.ReleaseDate(),
		Year:        m.Year(),
		Overview:    m.Overview(),
		PosterPath:  m.PosterPath(),
		Homepage:    m.Homepage(),
		Similarity:  it.Score,
	}
}

func fromStatus(st recommenduc.Status) Status {
	return Status{
		Ready:          st.Ready,
		MovieCount:     st.EntityCount,
		VocabularySize: st.VocabularySize,
		LoadedAt:       st.LoadedAt,
	}
}
