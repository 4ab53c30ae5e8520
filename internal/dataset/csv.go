// Package dataset reads TMDB movie metadata into raw movie rows.
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/cinematch/internal/domain/movie"
)

// ErrMissingColumn signals a dataset file without a required column.
var ErrMissingColumn = errors.New("missing column")

// CSVSource joins the TMDB movies and credits CSV files on movie id.
// Rows keep the movies file order; movies without credits are dropped.
type CSVSource struct {
	MoviesPath  string
	CreditsPath string
}

// Name identifies the source in logs and errors.
func (s *CSVSource) Name() string { return "csv:" + filepath.Base(s.MoviesPath) }

// Check verifies both files are present.
func (s *CSVSource) Check(_ context.Context) error {
	for _, p := range []string{s.MoviesPath, s.CreditsPath} {
		if _, err := os.Stat(filepath.Clean(p)); err != nil {
			return fmt.Errorf("stat %s: %w", p, err)
		}
	}
	return nil
}

// Load reads both files concurrently and joins them.
func (s *CSVSource) Load(ctx context.Context) ([]movie.Raw, error) {
	var movies []movie.Raw
	var credits map[int]creditRow

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		movies, err = readMovies(gctx, s.MoviesPath)
		return err
	})
	g.Go(func() error {
		var err error
		credits, err = readCredits(gctx, s.CreditsPath)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // errors already carry the file path
	}

	out := movies[:0]
	for _, m := range movies {
		c, ok := credits[m.ID]
		if !ok {
			continue
		}
		m.Cast = c.cast
		m.Crew = c.crew
		out = append(out, m)
	}
	return out, nil
}

type creditRow struct {
	cast string
	crew string
}

// table is a CSV file with a header-derived column index.
type table struct {
	r    *csv.Reader
	cols map[string]int
	f    *os.File
}

func openTable(path string, required ...string) (*table, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("read header %s: %w", path, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range required {
		if _, ok := cols[c]; !ok {
			_ = f.Close()
			return nil, fmt.Errorf("%s: %w %q", path, ErrMissingColumn, c)
		}
	}
	return &table{r: r, cols: cols, f: f}, nil
}

func (t *table) Close() { _ = t.f.Close() }

// get returns column name of rec, or "" when absent.
func (t *table) get(rec []string, name string) string {
	i, ok := t.cols[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return rec[i]
}

// each calls fn for every record, checking ctx between rows.
func (t *table) each(ctx context.Context, fn func(rec []string, line int) error) error {
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return err //nolint:wrapcheck // context error
		}
		rec, err := t.r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if err := fn(rec, line); err != nil {
			return err
		}
	}
}

func readMovies(ctx context.Context, path string) ([]movie.Raw, error) {
	t, err := openTable(path, "id", "genres", "keywords", "production_companies")
	if err != nil {
		return nil, err
	}
	defer t.Close()

	titleCol := "original_title"
	if _, ok := t.cols[titleCol]; !ok {
		titleCol = "title"
	}
	if _, ok := t.cols[titleCol]; !ok {
		return nil, fmt.Errorf("%s: %w %q", path, ErrMissingColumn, "original_title")
	}

	var out []movie.Raw
	err = t.each(ctx, func(rec []string, line int) error {
		id, err := strconv.Atoi(strings.TrimSpace(t.get(rec, "id")))
		if err != nil {
			return fmt.Errorf("%s line %d: invalid id: %w", path, line, err)
		}
		out = append(out, movie.Raw{
			ID:                  id,
			Title:               t.get(rec, titleCol),
			Genres:              t.get(rec, "genres"),
			Keywords:            t.get(rec, "keywords"),
			ProductionCompanies: t.get(rec, "production_companies"),
			Rating:              parseRating(t.get(rec, "vote_average")),
			ReleaseDate:         t.get(rec, "release_date"),
			Overview:            t.get(rec, "overview"),
			PosterPath:          t.get(rec, "poster_path"),
			Homepage:            t.get(rec, "homepage"),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read movies %s: %w", path, err)
	}
	return out, nil
}

func readCredits(ctx context.Context, path string) (map[int]creditRow, error) {
	t, err := openTable(path, "movie_id", "cast", "crew")
	if err != nil {
		return nil, err
	}
	defer t.Close()

	out := make(map[int]creditRow)
	err = t.each(ctx, func(rec []string, line int) error {
		id, err := strconv.Atoi(strings.TrimSpace(t.get(rec, "movie_id")))
		if err != nil {
			return fmt.Errorf("%s line %d: invalid movie_id: %w", path, line, err)
		}
		out[id] = creditRow{cast: t.get(rec, "cast"), crew: t.get(rec, "crew")}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read credits %s: %w", path, err)
	}
	return out, nil
}

func parseRating(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
