package recommend

import (
	"context"

	"github.com/kailas-cloud/cinematch/internal/domain/movie"
)

// Source supplies raw movie rows for a (re)load.
type Source interface {
	Load(ctx context.Context) ([]movie.Raw, error)
	Name() string
}
