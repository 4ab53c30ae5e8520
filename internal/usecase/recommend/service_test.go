package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/cinematch/internal/domain"
	"github.com/kailas-cloud/cinematch/internal/domain/movie"
	"github.com/kailas-cloud/cinematch/internal/feature"
)

// --- Mocks ---

type mockSource struct {
	raws []movie.Raw
	err  error
}

func (m *mockSource) Load(_ context.Context) ([]movie.Raw, error) {
	return m.raws, m.err
}

func (m *mockSource) Name() string { return "mock" }

// --- Helpers ---

func genre(name string) string {
	return fmt.Sprintf(`[{"id": 1, "name": %q}]`, name)
}

func threeMovies() []movie.Raw {
	return []movie.Raw{
		{ID: 1, Title: "Alpha", Genres: genre("action")},
		{ID: 2, Title: "Beta", Genres: genre("action")},
		{ID: 3, Title: "Gamma", Genres: genre("drama")},
	}
}

func catalog() []movie.Raw {
	return []movie.Raw{
		{
			ID: 10, Title: "The Dark Knight",
			Genres:   `[{"name": "Action"}, {"name": "Crime"}]`,
			Keywords: `[{"name": "joker"}, {"name": "vigilante"}]`,
			Cast:     `[{"name": "Christian Bale"}, {"name": "Heath Ledger"}]`,
			Crew:     `[{"name": "Christopher Nolan", "job": "Director"}]`,
		},
		{
			ID: 11, Title: "Batman Begins",
			Genres:   `[{"name": "Action"}, {"name": "Crime"}]`,
			Keywords: `[{"name": "vigilante"}]`,
			Cast:     `[{"name": "Christian Bale"}]`,
			Crew:     `[{"name": "Christopher Nolan", "job": "Director"}]`,
		},
		{
			ID: 12, Title: "Inception",
			Genres: `[{"name": "Action"}, {"name": "Science Fiction"}]`,
			Crew:   `[{"name": "Christopher Nolan", "job": "Director"}]`,
		},
		{
			ID: 13, Title: "Notting Hill",
			Genres: `[{"name": "Romance"}, {"name": "Comedy"}]`,
		},
		{
			ID: 14, Title: "Broken Metadata",
			Genres:   `{{{ not a list`,
			Keywords: `nan`,
		},
		{
			ID: 15, Title: "Amélie",
			Genres: `[{'name': 'Romance'}, {'name': 'Comedy'}]`,
		},
	}
}

func loaded(t *testing.T, raws []movie.Raw) *Service {
	t.Helper()
	svc := New(nil, Config{}, nil)
	if _, err := svc.Load(context.Background(), raws); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return svc
}

// --- Tests ---

func TestNotReady(t *testing.T) {
	svc := New(nil, Config{}, nil)
	ctx := context.Background()

	if _, err := svc.Search(ctx, "alpha", 5); !errors.Is(err, domain.ErrNotReady) {
		t.Errorf("Search: expected ErrNotReady, got %v", err)
	}
	if _, err := svc.Recommend(ctx, "alpha", 3); !errors.Is(err, domain.ErrNotReady) {
		t.Errorf("Recommend: expected ErrNotReady, got %v", err)
	}
	if _, _, err := svc.Movies(ctx, 0, 10); !errors.Is(err, domain.ErrNotReady) {
		t.Errorf("Movies: expected ErrNotReady, got %v", err)
	}
	if err := svc.Ready(ctx); !errors.Is(err, domain.ErrNotReady) {
		t.Errorf("Ready: expected ErrNotReady, got %v", err)
	}
	if st := svc.Status(ctx); st.Ready || st.EntityCount != 0 {
		t.Errorf("unexpected status: %+v", st)
	}
}

func TestLoad_Status(t *testing.T) {
	svc := loaded(t, threeMovies())
	st := svc.Status(context.Background())
	if !st.Ready || st.EntityCount != 3 {
		t.Errorf("unexpected status: %+v", st)
	}
	if st.VocabularySize != 2 {
		t.Errorf("vocabulary = %d, want 2", st.VocabularySize)
	}
	if st.LoadedAt.IsZero() {
		t.Error("expected LoadedAt to be set")
	}
}

func TestLoad_EmptyKeepsPrevious(t *testing.T) {
	svc := loaded(t, threeMovies())

	_, err := svc.Load(context.Background(), nil)
	if !errors.Is(err, domain.ErrLoad) || !errors.Is(err, domain.ErrEmptyCorpus) {
		t.Fatalf("expected load error wrapping ErrEmptyCorpus, got %v", err)
	}
	var le *domain.LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LoadError, got %T", err)
	}
	if st := svc.Status(context.Background()); st.EntityCount != 3 {
		t.Errorf("previous snapshot lost: %+v", st)
	}
}

func TestLoad_EmptyWhileUninitialized(t *testing.T) {
	svc := New(nil, Config{}, nil)
	if _, err := svc.Load(context.Background(), []movie.Raw{}); !errors.Is(err, domain.ErrEmptyCorpus) {
		t.Fatalf("expected ErrEmptyCorpus, got %v", err)
	}
	if err := svc.Ready(context.Background()); !errors.Is(err, domain.ErrNotReady) {
		t.Errorf("expected service to stay not ready, got %v", err)
	}
}

func TestLoad_CancelledContext(t *testing.T) {
	svc := New(nil, Config{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Load(ctx, threeMovies()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestReload(t *testing.T) {
	src := &mockSource{raws: threeMovies()}
	svc := New(src, Config{}, nil)

	st, err := svc.Reload(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !st.Ready || st.EntityCount != 3 {
		t.Errorf("unexpected status: %+v", st)
	}

	src.raws = catalog()
	st, err = svc.Reload(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.EntityCount != len(catalog()) {
		t.Errorf("entity count = %d, want %d", st.EntityCount, len(catalog()))
	}
}

func TestReload_SourceErrorKeepsPrevious(t *testing.T) {
	src := &mockSource{raws: threeMovies()}
	svc := New(src, Config{}, nil)
	if _, err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	src.err = errors.New("file missing")
	_, err := svc.Reload(context.Background())
	var le *domain.LoadError
	if !errors.As(err, &le) || le.Source != "mock" {
		t.Fatalf("expected *LoadError from mock, got %v", err)
	}
	if _, err := svc.Recommend(context.Background(), "alpha", 2); err != nil {
		t.Errorf("previous snapshot should still serve: %v", err)
	}
}

func TestReload_NoSource(t *testing.T) {
	svc := New(nil, Config{}, nil)
	if _, err := svc.Reload(context.Background()); !errors.Is(err, domain.ErrLoad) {
		t.Errorf("expected ErrLoad, got %v", err)
	}
}

func TestRecommend_SharedGenreRanksFirst(t *testing.T) {
	svc := loaded(t, threeMovies())

	rec, err := svc.Recommend(context.Background(), "alpha", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Matched.Movie.Title() != "Alpha" {
		t.Errorf("matched = %q, want Alpha", rec.Matched.Movie.Title())
	}
	if rec.Confidence != 100 {
		t.Errorf("confidence = %d, want 100", rec.Confidence)
	}
	if len(rec.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(rec.Items))
	}
	if rec.Items[0].Movie.Title() != "Beta" || rec.Items[1].Movie.Title() != "Gamma" {
		t.Errorf("order = [%s %s], want [Beta Gamma]",
			rec.Items[0].Movie.Title(), rec.Items[1].Movie.Title())
	}
	if rec.Items[0].Score <= rec.Items[1].Score {
		t.Errorf("scores = %v, %v", rec.Items[0].Score, rec.Items[1].Score)
	}
}

func TestRecommend_NeverIncludesSelfAndSorted(t *testing.T) {
	raws := catalog()
	svc := loaded(t, raws)

	for _, r := range raws {
		t.Run(r.Title, func(t *testing.T) {
			rec, err := svc.Recommend(context.Background(), r.Title, len(raws))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(rec.Items) != len(raws)-1 {
				t.Errorf("items = %d, want %d", len(rec.Items), len(raws)-1)
			}
			for i, it := range rec.Items {
				if it.Index == rec.Matched.Index {
					t.Errorf("matched movie %q returned as its own recommendation", r.Title)
				}
				if i > 0 && it.Score > rec.Items[i-1].Score {
					t.Errorf("scores increase at %d: %v > %v", i, it.Score, rec.Items[i-1].Score)
				}
				if i > 0 && it.Score == rec.Items[i-1].Score && it.Index < rec.Items[i-1].Index {
					t.Errorf("tie at %d not in corpus order", i)
				}
			}
		})
	}
}

func TestRecommend_ContentSimilarity(t *testing.T) {
	svc := loaded(t, catalog())

	rec, err := svc.Recommend(context.Background(), "the dark knight", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rec.Items[0].Movie.Title(); got != "Batman Begins" {
		t.Errorf("top recommendation = %q, want Batman Begins", got)
	}
	if rec.Matched.Features.Director != "Christopher Nolan" {
		t.Errorf("director = %q", rec.Matched.Features.Director)
	}
}

func TestRecommend_MalformedEntityParticipates(t *testing.T) {
	svc := loaded(t, catalog())

	rec, err := svc.Recommend(context.Background(), "Broken Metadata", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Matched.Features.Document() != "" {
		t.Errorf("document = %q, want empty", rec.Matched.Features.Document())
	}
	for _, it := range rec.Items {
		if it.Score != 0 {
			t.Errorf("empty document similarity to %q = %v, want 0", it.Movie.Title(), it.Score)
		}
	}
}

func TestRecommend_ObjectValuedGenresShareNothing(t *testing.T) {
	svc := loaded(t, []movie.Raw{
		{ID: 1, Title: "Alpha", Genres: `{'id': 1, 'name': 'Action'}`},
		{ID: 2, Title: "Beta", Genres: `{'id': 2, 'name': 'Drama'}`},
		{ID: 3, Title: "Gamma", Genres: `[{"name": "Comedy"}]`},
	})

	rec, err := svc.Recommend(context.Background(), "Alpha", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Matched.Features.Genres != "" {
		t.Errorf("genres = %q, want empty", rec.Matched.Features.Genres)
	}
	for _, it := range rec.Items {
		if it.Score != 0 {
			t.Errorf("similarity to %q = %v, want 0", it.Movie.Title(), it.Score)
		}
	}
}

func TestBuildSnapshot_CountsOnlyMalformedFields(t *testing.T) {
	_, stats := buildSnapshot(catalog(), feature.Extractor{}, time.Now())

	if got := stats.totalParseErrors(); got != 1 {
		t.Fatalf("parse errors = %d (%v), want 1", got, stats.parseErrors)
	}
	if stats.parseErrors[feature.FieldGenres] != 1 {
		t.Errorf("genres parse errors = %d, want 1", stats.parseErrors[feature.FieldGenres])
	}
}

func TestRecommend_GibberishNotFound(t *testing.T) {
	svc := loaded(t, threeMovies())

	_, err := svc.Recommend(context.Background(), "completely unrelated gibberish query", 3)
	if !errors.Is(err, domain.ErrMovieNotFound) {
		t.Errorf("expected ErrMovieNotFound, got %v", err)
	}
}

func TestRecommend_ConfigurableThreshold(t *testing.T) {
	svc := New(nil, Config{AcceptanceThreshold: 101}, nil)
	if _, err := svc.Load(context.Background(), threeMovies()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.Threshold() != 101 {
		t.Errorf("threshold = %d, want 101", svc.Threshold())
	}
	if _, err := svc.Recommend(context.Background(), "Alpha", 1); !errors.Is(err, domain.ErrMovieNotFound) {
		t.Errorf("expected ErrMovieNotFound, got %v", err)
	}
}

func TestRecommend_InvalidArguments(t *testing.T) {
	svc := loaded(t, threeMovies())
	ctx := context.Background()

	if _, err := svc.Recommend(ctx, "  ", 3); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("blank query: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := svc.Recommend(ctx, "alpha", 0); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("zero n: expected ErrInvalidArgument, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	svc := loaded(t, catalog())

	hits, err := svc.Search(context.Background(), "amelie", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("hits = %d, want 3", len(hits))
	}
	if hits[0].Movie.Title() != "Amélie" || hits[0].Confidence != 100 {
		t.Errorf("top hit = %q (%d)", hits[0].Movie.Title(), hits[0].Confidence)
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Confidence > hits[i-1].Confidence {
			t.Errorf("hits not sorted at %d", i)
		}
	}
}

func TestSearch_BestEffort(t *testing.T) {
	svc := loaded(t, threeMovies())

	hits, err := svc.Search(context.Background(), "xyz-not-a-movie", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) == 0 {
		t.Error("expected a non-empty best-effort result")
	}
}

func TestSearch_InvalidArguments(t *testing.T) {
	svc := loaded(t, threeMovies())
	if _, err := svc.Search(context.Background(), "", 5); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := svc.Search(context.Background(), "alpha", -1); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestMovies(t *testing.T) {
	svc := loaded(t, catalog())
	ctx := context.Background()

	page, total, err := svc.Movies(ctx, 4, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 6 || len(page) != 2 {
		t.Errorf("total = %d, page = %d; want 6, 2", total, len(page))
	}
	if page[0].Movie.ID() != 14 {
		t.Errorf("first id = %d, want 14", page[0].Movie.ID())
	}

	page, _, err = svc.Movies(ctx, 100, 10)
	if err != nil || len(page) != 0 {
		t.Errorf("offset past end: page = %d, err = %v", len(page), err)
	}
	if _, _, err := svc.Movies(ctx, -1, 10); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestConcurrentQueriesDuringReload(t *testing.T) {
	src := &mockSource{raws: catalog()}
	svc := New(src, Config{}, nil)
	if _, err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				rec, err := svc.Recommend(context.Background(), "Inception", 3)
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				if len(rec.Items) != 3 {
					t.Errorf("items = %d, want 3", len(rec.Items))
					return
				}
			}
		}()
	}
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Reload(context.Background()); err != nil {
				t.Errorf("unexpected reload error: %v", err)
			}
		}()
	}
	wg.Wait()
}
