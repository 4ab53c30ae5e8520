package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/kailas-cloud/cinematch/internal/domain/movie"
)

// parquetRow is one pre-merged movie+credits row. Column names follow the
// TMDB CSV headers.
type parquetRow struct {
	ID                  int64    `parquet:"id"`
	OriginalTitle       string   `parquet:"original_title,optional"`
	Genres              string   `parquet:"genres,optional"`
	Keywords            string   `parquet:"keywords,optional"`
	ProductionCompanies string   `parquet:"production_companies,optional"`
	Cast                string   `parquet:"cast,optional"`
	Crew                string   `parquet:"crew,optional"`
	VoteAverage         *float64 `parquet:"vote_average,optional"`
	ReleaseDate         string   `parquet:"release_date,optional"`
	Overview            string   `parquet:"overview,optional"`
	PosterPath          string   `parquet:"poster_path,optional"`
	Homepage            string   `parquet:"homepage,optional"`
}

// ParquetSource reads a single parquet file holding already joined rows.
type ParquetSource struct {
	Path string
}

// Name identifies the source in logs and errors.
func (s *ParquetSource) Name() string { return "parquet:" + filepath.Base(s.Path) }

// Check verifies the file is present.
func (s *ParquetSource) Check(_ context.Context) error {
	if _, err := os.Stat(filepath.Clean(s.Path)); err != nil {
		return fmt.Errorf("stat %s: %w", s.Path, err)
	}
	return nil
}

// Load reads every row of the file.
func (s *ParquetSource) Load(ctx context.Context) ([]movie.Raw, error) {
	rows, err := parquet.ReadFile[parquetRow](filepath.Clean(s.Path))
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", s.Path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err //nolint:wrapcheck // context error
	}

	out := make([]movie.Raw, len(rows))
	for i, r := range rows {
		out[i] = movie.Raw{
			ID:                  int(r.ID),
			Title:               r.OriginalTitle,
			Genres:              r.Genres,
			Keywords:            r.Keywords,
			ProductionCompanies: r.ProductionCompanies,
			Cast:                r.Cast,
			Crew:                r.Crew,
			Rating:              r.VoteAverage,
			ReleaseDate:         r.ReleaseDate,
			Overview:            r.Overview,
			PosterPath:          r.PosterPath,
			Homepage:            r.Homepage,
		}
	}
	return out, nil
}
