package recommend

import (
	"errors"
	"time"

	"github.com/kailas-cloud/cinematch/internal/domain/movie"
	"github.com/kailas-cloud/cinematch/internal/feature"
	"github.com/kailas-cloud/cinematch/internal/resolve"
	"github.com/kailas-cloud/cinematch/internal/similarity"
	"github.com/kailas-cloud/cinematch/internal/vectorize"
)

// snapshot is one immutable corpus generation. It is published as a whole
// and never modified afterwards.
type snapshot struct {
	movies     []movie.Movie
	features   []movie.Features
	vocab      *vectorize.Vocabulary
	matrix     *vectorize.Matrix
	similarity *similarity.Matrix
	titles     *resolve.Index
	loadedAt   time.Time
}

// buildStats summarizes a build for logging and metrics.
type buildStats struct {
	parseErrors map[string]int
	duration    time.Duration
}

func (b buildStats) totalParseErrors() int {
	var n int
	for _, c := range b.parseErrors {
		n += c
	}
	return n
}

// buildSnapshot runs the whole pipeline: features, vectors, similarity and
// the title index.
func buildSnapshot(raws []movie.Raw, ex feature.Extractor, now time.Time) (*snapshot, buildStats) {
	start := time.Now()
	stats := buildStats{parseErrors: make(map[string]int)}

	s := &snapshot{
		movies:   make([]movie.Movie, len(raws)),
		features: make([]movie.Features, len(raws)),
		loadedAt: now,
	}
	docs := make([]string, len(raws))
	titles := make([]string, len(raws))

	for i, r := range raws {
		s.movies[i] = movie.FromRaw(r)
		f, errs := ex.Extract(&s.movies[i])
		for _, err := range errs {
			var pe *feature.ParseError
			if errors.As(err, &pe) {
				stats.parseErrors[pe.Field]++
			}
		}
		s.features[i] = f
		docs[i] = f.Document()
		titles[i] = s.movies[i].Title()
	}

	s.vocab, s.matrix = vectorize.Build(docs)
	s.similarity = similarity.ComputeAll(s.matrix)
	s.titles = resolve.NewIndex(titles)

	stats.duration = time.Since(start)
	return s, stats
}

func (s *snapshot) item(i int, score float64) Item {
	return Item{Index: i, Movie: s.movies[i], Features: s.features[i], Score: score}
}
