package postprocessors

import (
	"fmt"

	"github.com/moatlabs/omaha/internal/core/domain"
	"github.com/moatlabs/omaha/internal/core/ports/driven"
	"github.com/moatlabs/omaha/internal/postprocessors/chunker"
)

// DefaultRegistry returns a registry with all built-in processors.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register("chunker", func(cfg map[string]any) (driven.PostProcessor, error) {
		var opts []chunker.Option
		if size, ok := intValue(cfg["size"]); ok {
			opts = append(opts, chunker.WithChunkSize(size))
		}
		if overlap, ok := intValue(cfg["overlap"]); ok {
			opts = append(opts, chunker.WithOverlap(overlap))
		}
		return chunker.New(opts...)
	})

	return r
}

// DefaultPipeline builds the standard processing pipeline from chunker
// settings.
func DefaultPipeline(settings domain.ChunkerSettings) (*Pipeline, error) {
	c, err := chunker.New(
		chunker.WithChunkSize(settings.Size),
		chunker.WithOverlap(settings.Overlap),
	)
	if err != nil {
		return nil, fmt.Errorf("build chunker: %w", err)
	}
	return NewPipeline(c), nil
}

// intValue coerces TOML-decoded numeric config values to int.
func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
