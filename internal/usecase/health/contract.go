package health

import "context"

// CorpusChecker reports whether a corpus snapshot is published.
type CorpusChecker interface {
	Ready(ctx context.Context) error
}

// SourceChecker checks that the dataset behind reloads is reachable.
type SourceChecker interface {
	Check(ctx context.Context) error
}
