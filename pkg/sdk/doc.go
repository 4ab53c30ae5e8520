// Package cinematch embeds the content-based movie recommender in a Go
// program without running the HTTP server.
//
// # Loading from files
//
//	client, _ := cinematch.New(ctx,
//	    cinematch.WithCSV("tmdb_5000_movies.csv", "tmdb_5000_credits.csv"),
//	)
//	rec, _ := client.Recommend(ctx, "the dark knight", 6)
//	for _, m := range rec.Movies {
//	    fmt.Println(m.Title, m.Similarity)
//	}
//
// # Loading rows directly
//
//	client, _ := cinematch.New(ctx)
//	_, _ = client.LoadMovies(ctx, []cinematch.RawMovie{...})
//	hits, _ := client.Search(ctx, "avatr", 5)
package cinematch
