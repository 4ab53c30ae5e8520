package dataset

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/cinematch/internal/config"
	"github.com/kailas-cloud/cinematch/internal/domain/movie"
)

// Source loads raw movie rows and can report whether its files exist.
type Source interface {
	Load(ctx context.Context) ([]movie.Raw, error)
	Check(ctx context.Context) error
	Name() string
}

var (
	_ Source = (*CSVSource)(nil)
	_ Source = (*ParquetSource)(nil)
)

// NewSource selects a source for the configured dataset format.
func NewSource(cfg config.DatasetConfig) (Source, error) {
	switch cfg.Format {
	case config.DatasetCSV, "":
		return &CSVSource{MoviesPath: cfg.MoviesPath, CreditsPath: cfg.CreditsPath}, nil
	case config.DatasetParquet:
		return &ParquetSource{Path: cfg.ParquetPath}, nil
	default:
		return nil, fmt.Errorf("unknown dataset format %q", cfg.Format)
	}
}
