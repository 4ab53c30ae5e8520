package cinematch

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/cinematch/internal/dataset"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	source Source

	threshold   int
	castLimit   int
	directorJob string

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithCSV loads the corpus from the TMDB movies and credits CSV files.
func WithCSV(moviesPath, creditsPath string) Option {
	return optionFunc(func(c *clientConfig) {
		c.source = &dataset.CSVSource{MoviesPath: moviesPath, CreditsPath: creditsPath}
	})
}

// WithParquet loads the corpus from a single pre-joined Parquet file.
func WithParquet(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.source = &dataset.ParquetSource{Path: path}
	})
}

// WithSource loads the corpus from a custom source.
func WithSource(s Source) Option {
	return optionFunc(func(c *clientConfig) {
		c.source = s
	})
}

// WithAcceptanceThreshold sets the minimum title confidence (1-100) that
// Recommend accepts. Default: 60.
func WithAcceptanceThreshold(threshold int) Option {
	return optionFunc(func(c *clientConfig) {
		c.threshold = threshold
	})
}

// WithCastLimit sets how many leading cast members feed the features.
// Default: 3.
func WithCastLimit(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.castLimit = n
	})
}

// WithDirectorJob sets the crew job treated as the director.
func WithDirectorJob(job string) Option {
	return optionFunc(func(c *clientConfig) {
		c.directorJob = job
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
