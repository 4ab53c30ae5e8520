package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/cinematch/internal/domain"
	"github.com/kailas-cloud/cinematch/internal/domain/movie"
	"github.com/kailas-cloud/cinematch/internal/feature"
	logpkg "github.com/kailas-cloud/cinematch/internal/logger"
	"github.com/kailas-cloud/cinematch/internal/metrics"
	"github.com/kailas-cloud/cinematch/internal/resolve"
)

// DefaultAcceptanceThreshold is the minimum title confidence Recommend accepts.
const DefaultAcceptanceThreshold = 60

// Config tunes feature extraction and title acceptance.
type Config struct {
	AcceptanceThreshold int
	CastLimit           int
	DirectorJob         string
}

// Item is one movie of a result with its derived features.
// Score is the similarity to the matched movie, or 1 for the match itself.
type Item struct {
	Index    int
	Movie    movie.Movie
	Features movie.Features
	Score    float64
}

// Hit is a search result.
type Hit struct {
	Item
	Confidence int
}

// Recommendation is the answer to Recommend.
type Recommendation struct {
	Matched    Item
	Confidence int
	Items      []Item
}

// Status describes the published snapshot.
type Status struct {
	Ready          bool
	EntityCount    int
	VocabularySize int
	LoadedAt       time.Time
}

// Service answers search and recommendation queries from an immutable
// snapshot. Loads build a new snapshot off to the side and swap it in;
// queries never lock.
type Service struct {
	source    Source
	extractor feature.Extractor
	threshold int
	logger    *zap.Logger
	now       func() time.Time

	loadMu sync.Mutex
	snap   atomic.Pointer[snapshot]
}

// New creates a Service in the not-ready state. source may be nil, in which
// case only Load can publish a snapshot.
func New(source Source, cfg Config, logger *zap.Logger) *Service {
	threshold := cfg.AcceptanceThreshold
	if threshold <= 0 {
		threshold = DefaultAcceptanceThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source: source,
		extractor: feature.Extractor{
			CastLimit:   cfg.CastLimit,
			DirectorJob: cfg.DirectorJob,
		},
		threshold: threshold,
		logger:    logger,
		now:       time.Now,
	}
}

// Threshold returns the acceptance threshold in use.
func (s *Service) Threshold() int { return s.threshold }

// Load builds a snapshot from raws and publishes it. On failure the previous
// snapshot, if any, stays active.
func (s *Service) Load(ctx context.Context, raws []movie.Raw) (Status, error) {
	return s.load(ctx, "inline", raws)
}

// Reload pulls rows from the configured source and loads them.
func (s *Service) Reload(ctx context.Context) (Status, error) {
	if s.source == nil {
		return s.Status(ctx), domain.NewLoadError("", errors.New("no source configured"))
	}
	raws, err := s.source.Load(ctx)
	if err != nil {
		metrics.CorpusLoadsTotal.WithLabelValues("error").Inc()
		logpkg.FromContext(ctx, s.logger).Error("Corpus source failed",
			zap.String("source", s.source.Name()),
			zap.Error(err),
		)
		return s.Status(ctx), domain.NewLoadError(s.source.Name(), err)
	}
	return s.load(ctx, s.source.Name(), raws)
}

func (s *Service) load(ctx context.Context, source string, raws []movie.Raw) (Status, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if len(raws) == 0 {
		metrics.CorpusLoadsTotal.WithLabelValues("error").Inc()
		return s.Status(ctx), domain.NewLoadError(source, domain.ErrEmptyCorpus)
	}
	if err := ctx.Err(); err != nil {
		metrics.CorpusLoadsTotal.WithLabelValues("error").Inc()
		return s.Status(ctx), domain.NewLoadError(source, err)
	}

	snap, stats := buildSnapshot(raws, s.extractor, s.now())
	s.snap.Store(snap)

	metrics.CorpusLoadsTotal.WithLabelValues("ok").Inc()
	metrics.CorpusMovies.Set(float64(len(snap.movies)))
	metrics.CorpusVocabularyTerms.Set(float64(snap.vocab.Len()))
	metrics.CorpusBuildDuration.Observe(stats.duration.Seconds())
	for field, n := range stats.parseErrors {
		metrics.FeatureParseErrorsTotal.WithLabelValues(field).Add(float64(n))
	}

	logpkg.FromContext(ctx, s.logger).Info("Corpus snapshot published",
		zap.String("source", source),
		zap.Int("movies", len(snap.movies)),
		zap.Int("vocabulary", snap.vocab.Len()),
		zap.Int("parse_errors", stats.totalParseErrors()),
		zap.Duration("duration", stats.duration),
	)
	return s.Status(ctx), nil
}

// Status reports readiness and snapshot size.
func (s *Service) Status(_ context.Context) Status {
	snap := s.snap.Load()
	if snap == nil {
		return Status{}
	}
	return Status{
		Ready:          true,
		EntityCount:    len(snap.movies),
		VocabularySize: snap.vocab.Len(),
		LoadedAt:       snap.loadedAt,
	}
}

// Ready returns domain.ErrNotReady until the first snapshot is published.
func (s *Service) Ready(_ context.Context) error {
	if s.snap.Load() == nil {
		return domain.ErrNotReady
	}
	return nil
}

// Search returns up to limit titles ranked by match confidence. Any non-empty
// corpus yields results, however poor.
func (s *Service) Search(_ context.Context, query string, limit int) ([]Hit, error) {
	snap := s.snap.Load()
	if snap == nil {
		return nil, domain.ErrNotReady
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidArgument)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", domain.ErrInvalidArgument, limit)
	}

	matches := snap.titles.ResolveMany(query, limit)
	hits := make([]Hit, len(matches))
	for i, m := range matches {
		hits[i] = Hit{Item: snap.item(m.Index, 0), Confidence: m.Confidence}
	}
	if len(matches) > 0 {
		metrics.ResolveConfidence.WithLabelValues("search").Observe(float64(matches[0].Confidence))
	}
	return hits, nil
}

// Recommend resolves query to a movie and returns the n most similar others.
// Similarity ties are broken by corpus order.
func (s *Service) Recommend(ctx context.Context, query string, n int) (Recommendation, error) {
	snap := s.snap.Load()
	if snap == nil {
		metrics.RecommendTotal.WithLabelValues("not_ready").Inc()
		return Recommendation{}, domain.ErrNotReady
	}
	if strings.TrimSpace(query) == "" {
		metrics.RecommendTotal.WithLabelValues("invalid").Inc()
		return Recommendation{}, fmt.Errorf("%w: query is required", domain.ErrInvalidArgument)
	}
	if n <= 0 {
		metrics.RecommendTotal.WithLabelValues("invalid").Inc()
		return Recommendation{}, fmt.Errorf("%w: n must be positive, got %d", domain.ErrInvalidArgument, n)
	}

	match, err := snap.titles.Resolve(query)
	if errors.Is(err, resolve.ErrNoCandidates) {
		metrics.RecommendTotal.WithLabelValues("not_found").Inc()
		return Recommendation{}, domain.ErrMovieNotFound
	}
	if err != nil {
		return Recommendation{}, fmt.Errorf("resolve title: %w", err)
	}
	metrics.ResolveConfidence.WithLabelValues("recommend").Observe(float64(match.Confidence))

	if match.Confidence < s.threshold {
		metrics.RecommendTotal.WithLabelValues("not_found").Inc()
		s.logger.Debug("Title match below threshold",
			zap.String("query", query),
			zap.String("best", match.Title),
			zap.Int("confidence", match.Confidence),
			zap.Int("threshold", s.threshold),
		)
		return Recommendation{}, fmt.Errorf("%w: best match %q scored %d",
			domain.ErrMovieNotFound, match.Title, match.Confidence)
	}

	items := rankNeighbours(snap, match.Index, n)
	metrics.RecommendTotal.WithLabelValues("ok").Inc()

	return Recommendation{
		Matched:    snap.item(match.Index, 1),
		Confidence: match.Confidence,
		Items:      items,
	}, nil
}

// rankNeighbours orders every movie except target by descending similarity,
// ties by ascending index, and keeps the first n.
func rankNeighbours(snap *snapshot, target, n int) []Item {
	row := snap.similarity.Row(target)
	idx := make([]int, 0, len(row)-1)
	for i := range row {
		if i != target {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return row[idx[a]] > row[idx[b]]
	})
	if len(idx) > n {
		idx = idx[:n]
	}

	items := make([]Item, len(idx))
	for i, j := range idx {
		items[i] = snap.item(j, row[j])
	}
	return items
}

// Movies lists the corpus in load order. total is the corpus size.
func (s *Service) Movies(_ context.Context, offset, limit int) ([]Item, int, error) {
	snap := s.snap.Load()
	if snap == nil {
		return nil, 0, domain.ErrNotReady
	}
	if offset < 0 || limit <= 0 {
		return nil, 0, fmt.Errorf("%w: offset must be >= 0 and limit > 0", domain.ErrInvalidArgument)
	}

	total := len(snap.movies)
	if offset > total {
		offset = total
	}
	end := min(offset+limit, total)

	items := make([]Item, 0, end-offset)
	for i := offset; i < end; i++ {
		items = append(items, snap.item(i, 0))
	}
	return items, total, nil
}
