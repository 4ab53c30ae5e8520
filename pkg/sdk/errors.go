package cinematch

import "github.com/kailas-cloud/cinematch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotReady        = domain.ErrNotReady
	ErrMovieNotFound   = domain.ErrMovieNotFound
	ErrEmptyCorpus     = domain.ErrEmptyCorpus
	ErrInvalidArgument = domain.ErrInvalidArgument
	ErrLoad            = domain.ErrLoad
)
