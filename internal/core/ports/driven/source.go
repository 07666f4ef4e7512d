package driven

import (
	"context"

	"github.com/moatlabs/omaha/internal/core/domain"
)

// LetterSource reads raw letter files from the configured directory.
type LetterSource interface {
	// List returns all source files, ordered by name. An empty result
	// is not an error; the ingest orchestrator decides how to report it.
	List(ctx context.Context) ([]domain.RawFile, error)

	// Watch emits a RawFile whenever a source file is created or
	// modified, until ctx is cancelled. Errors are reported on the
	// second channel. Both channels close when watching stops.
	Watch(ctx context.Context) (<-chan domain.RawFile, <-chan error, error)
}
