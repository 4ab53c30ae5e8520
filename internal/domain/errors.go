package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady signals a query issued before the first successful corpus load.
	ErrNotReady = errors.New("service not ready: corpus not loaded")
	// ErrMovieNotFound signals that no title matched the query with enough confidence.
	ErrMovieNotFound = errors.New("movie not found")
	// ErrEmptyCorpus signals a load that produced zero movies.
	ErrEmptyCorpus = errors.New("corpus is empty")
	// ErrInvalidArgument signals a malformed query (blank text, non-positive limit).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrLoad signals a failed load or reload. The previous snapshot stays active.
	ErrLoad = errors.New("corpus load failed")
)

// LoadError wraps a load failure together with the source it came from.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("%s: %v", ErrLoad.Error(), e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", ErrLoad.Error(), e.Source, e.Err)
}

// Unwrap exposes both ErrLoad and the underlying cause to errors.Is.
func (e *LoadError) Unwrap() []error { return []error{ErrLoad, e.Err} }

// NewLoadError creates a load error for the given source.
func NewLoadError(source string, err error) error {
	return &LoadError{Source: source, Err: err}
}
