package cinematch

import (
	"context"
	"fmt"
	"time"

	healthuc "github.com/kailas-cloud/cinematch/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/cinematch/internal/usecase/recommend"
)

// Internal interfaces for substitution in tests.
type recommendUseCase interface {
	Load(ctx context.Context, raws []RawMovie) (recommenduc.Status, error)
	Reload(ctx context.Context) (recommenduc.Status, error)
	Status(ctx context.Context) recommenduc.Status
	Search(ctx context.Context, query string, limit int) ([]recommenduc.Hit, error)
	Recommend(ctx context.Context, query string, n int) (recommenduc.Recommendation, error)
	Movies(ctx context.Context, offset, limit int) ([]recommenduc.Item, int, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the cinematch SDK entry point. It is safe for concurrent use;
// queries keep working against the previous corpus while a reload runs.
type Client struct {
	recSvc    recommendUseCase
	healthSvc healthUseCase
	hasSource bool
	obs       *observer
}

// New creates a Client. When a source is configured (WithCSV, WithParquet,
// WithSource) the corpus is loaded before New returns, using ctx.
// Without a source the client stays not ready until LoadMovies.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{threshold: recommenduc.DefaultAcceptanceThreshold}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.threshold < 1 || cfg.threshold > 100 {
		return nil, fmt.Errorf("cinematch: acceptance threshold must be within 1..100, got %d", cfg.threshold)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	c := wireClient(cfg, obs)
	if c.hasSource {
		if _, err := c.Reload(ctx); err != nil {
			return nil, fmt.Errorf("cinematch: initial load: %w", err)
		}
	}
	return c, nil
}

func wireClient(cfg *clientConfig, obs *observer) *Client {
	var source recommenduc.Source
	if cfg.source != nil {
		source = cfg.source
	}
	recSvc := recommenduc.New(source, recommenduc.Config{
		AcceptanceThreshold: cfg.threshold,
		CastLimit:           cfg.castLimit,
		DirectorJob:         cfg.directorJob,
	}, nil)

	// Sources that can verify their files also feed the health report.
	var checker healthuc.SourceChecker
	if sc, ok := cfg.source.(healthuc.SourceChecker); ok {
		checker = sc
	}

	return &Client{
		recSvc:    recSvc,
		healthSvc: healthuc.New(recSvc, checker),
		hasSource: cfg.source != nil,
		obs:       obs,
	}
}

// LoadMovies replaces the corpus with rows. On error the previous corpus,
// if any, stays in use.
func (c *Client) LoadMovies(ctx context.Context, rows []RawMovie) (st Status, err error) {
	start := time.Now()
	defer func() { c.obs.observe("load", start, st.MovieCount, err) }()

	s, err := c.recSvc.Load(ctx, rows)
	if err != nil {
		return fromStatus(s), fmt.Errorf("load movies: %w", err)
	}
	return fromStatus(s), nil
}

// Reload re-reads the configured source.
func (c *Client) Reload(ctx context.Context) (st Status, err error) {
	start := time.Now()
	defer func() { c.obs.observe("reload", start, st.MovieCount, err) }()

	s, err := c.recSvc.Reload(ctx)
	if err != nil {
		return fromStatus(s), fmt.Errorf("reload: %w", err)
	}
	return fromStatus(s), nil
}

// Status reports whether a corpus is loaded and how large it is.
func (c *Client) Status(ctx context.Context) Status {
	return fromStatus(c.recSvc.Status(ctx))
}

// Search returns up to limit titles ranked by match confidence.
func (c *Client) Search(ctx context.Context, query string, limit int) (out []SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, len(out), err) }()

	hits, err := c.recSvc.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	out = make([]SearchResult, len(hits))
	for i := range hits {
		out[i] = SearchResult{Movie: fromItem(&hits[i].Item), Confidence: hits[i].Confidence}
	}
	return out, nil
}

// Recommend resolves title and returns the n most similar other movies.
// Returns ErrMovieNotFound when no title matches confidently enough.
func (c *Client) Recommend(ctx context.Context, title string, n int) (rec Recommendation, err error) {
	start := time.Now()
	defer func() { c.obs.observe("recommend", start, len(rec.Movies), err) }()

	r, err := c.recSvc.Recommend(ctx, title, n)
	if err != nil {
		return Recommendation{}, fmt.Errorf("recommend: %w", err)
	}
	rec = Recommendation{
		Match:      fromItem(&r.Matched),
		Confidence: r.Confidence,
		Movies:     make([]Movie, len(r.Items)),
	}
	for i := range r.Items {
		rec.Movies[i] = fromItem(&r.Items[i])
	}
	return rec, nil
}

// Movies lists the corpus in load order along with its total size.
func (c *Client) Movies(ctx context.Context, offset, limit int) (out []Movie, total int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("movies", start, len(out), err) }()

	items, total, err := c.recSvc.Movies(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list movies: %w", err)
	}
	out = make([]Movie, len(items))
	for i := range items {
		out[i] = fromItem(&items[i])
	}
	return out, total, nil
}
