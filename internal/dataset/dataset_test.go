package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"

	"github.com/kailas-cloud/cinematch/internal/config"
)

const moviesCSV = `budget,genres,homepage,id,keywords,original_title,overview,production_companies,release_date,title,vote_average
237000000,"[{""id"": 28, ""name"": ""Action""}]",http://www.avatarmovie.com/,19995,"[{""id"": 1463, ""name"": ""culture clash""}]",Avatar,In the 22nd century...,"[{""name"": ""Lightstorm""}]",2009-12-10,Avatar,7.2
0,[],,42,[],Orphan Without Credits,,[],,Orphan,
1000,"[{""id"": 18, ""name"": ""Drama""}]",,7,[],Amélie,Paris.,[],2001-04-25,Amelie,
`

const creditsCSV = `movie_id,title,cast,crew
19995,Avatar,"[{""name"": ""Sam Worthington""}]","[{""name"": ""James Cameron"", ""job"": ""Director""}]"
7,Amelie,[],"[{""name"": ""Jean-Pierre Jeunet"", ""job"": ""Director""}]"
`

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(data), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestCSVSource_Load(t *testing.T) {
	dir := t.TempDir()
	src := &CSVSource{
		MoviesPath:  writeFile(t, dir, "movies.csv", moviesCSV),
		CreditsPath: writeFile(t, dir, "credits.csv", creditsCSV),
	}

	if err := src.Check(context.Background()); err != nil {
		t.Fatalf("unexpected check error: %v", err)
	}

	raws, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(raws) != 2 {
		t.Fatalf("rows = %d, want 2 (movie without credits dropped)", len(raws))
	}

	avatar := raws[0]
	if avatar.ID != 19995 || avatar.Title != "Avatar" {
		t.Errorf("unexpected first row: %+v", avatar)
	}
	if avatar.Rating == nil || *avatar.Rating != 7.2 {
		t.Errorf("rating = %v, want 7.2", avatar.Rating)
	}
	if avatar.Genres != `[{"id": 28, "name": "Action"}]` {
		t.Errorf("genres = %q", avatar.Genres)
	}
	if avatar.Crew != `[{"name": "James Cameron", "job": "Director"}]` {
		t.Errorf("crew = %q", avatar.Crew)
	}
	if avatar.Homepage != "http://www.avatarmovie.com/" {
		t.Errorf("homepage = %q", avatar.Homepage)
	}

	if raws[1].Title != "Amélie" {
		t.Errorf("title = %q, want original title", raws[1].Title)
	}
	if raws[1].Rating != nil {
		t.Errorf("rating = %v, want nil", *raws[1].Rating)
	}
}

func TestCSVSource_MissingColumn(t *testing.T) {
	dir := t.TempDir()
	src := &CSVSource{
		MoviesPath:  writeFile(t, dir, "movies.csv", "id,original_title\n1,A\n"),
		CreditsPath: writeFile(t, dir, "credits.csv", creditsCSV),
	}
	_, err := src.Load(context.Background())
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestCSVSource_MissingFile(t *testing.T) {
	dir := t.TempDir()
	src := &CSVSource{
		MoviesPath:  writeFile(t, dir, "movies.csv", moviesCSV),
		CreditsPath: filepath.Join(dir, "absent.csv"),
	}
	if _, err := src.Load(context.Background()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
	if err := src.Check(context.Background()); err == nil {
		t.Error("expected check error for missing credits file")
	}
}

func TestCSVSource_InvalidID(t *testing.T) {
	dir := t.TempDir()
	src := &CSVSource{
		MoviesPath: writeFile(t, dir, "movies.csv",
			"id,genres,keywords,production_companies,original_title\nabc,[],[],[],A\n"),
		CreditsPath: writeFile(t, dir, "credits.csv", creditsCSV),
	}
	if _, err := src.Load(context.Background()); err == nil {
		t.Fatal("expected error for invalid id")
	}
}

func TestParquetSource_Load(t *testing.T) {
	rating := 8.1
	path := filepath.Join(t.TempDir(), "movies.parquet")
	rows := []parquetRow{
		{
			ID: 155, OriginalTitle: "The Dark Knight",
			Genres:      `[{"name": "Action"}]`,
			Crew:        `[{"name": "Christopher Nolan", "job": "Director"}]`,
			VoteAverage: &rating,
			ReleaseDate: "2008-07-16",
		},
		{ID: 27205, OriginalTitle: "Inception"},
	}
	if err := parquet.WriteFile(path, rows); err != nil {
		t.Fatalf("write parquet: %v", err)
	}

	src := &ParquetSource{Path: path}
	if err := src.Check(context.Background()); err != nil {
		t.Fatalf("unexpected check error: %v", err)
	}
	raws, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(raws) != 2 {
		t.Fatalf("rows = %d, want 2", len(raws))
	}
	if raws[0].ID != 155 || raws[0].Title != "The Dark Knight" {
		t.Errorf("unexpected first row: %+v", raws[0])
	}
	if raws[0].Rating == nil || *raws[0].Rating != 8.1 {
		t.Errorf("rating = %v, want 8.1", raws[0].Rating)
	}
	if raws[1].Rating != nil {
		t.Errorf("rating = %v, want nil", *raws[1].Rating)
	}
}

func TestParquetSource_Missing(t *testing.T) {
	src := &ParquetSource{Path: filepath.Join(t.TempDir(), "absent.parquet")}
	if _, err := src.Load(context.Background()); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNewSource(t *testing.T) {
	s, err := NewSource(config.DatasetConfig{Format: config.DatasetParquet, ParquetPath: "x.parquet"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.(*ParquetSource); !ok {
		t.Errorf("expected *ParquetSource, got %T", s)
	}

	s, err = NewSource(config.DatasetConfig{Format: config.DatasetCSV, MoviesPath: "m", CreditsPath: "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.(*CSVSource); !ok {
		t.Errorf("expected *CSVSource, got %T", s)
	}

	if _, err := NewSource(config.DatasetConfig{Format: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
}
