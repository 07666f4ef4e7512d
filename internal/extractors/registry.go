package extractors

import (
	"context"
	"fmt"

	"github.com/moatlabs/omaha/internal/core/domain"
	"github.com/moatlabs/omaha/internal/core/ports/driven"
	"github.com/moatlabs/omaha/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry selects extractors by MIME type and priority.
type Registry struct {
	byMIME map[string][]driven.Extractor
}

// NewRegistry creates a registry with the given extractors.
func NewRegistry(extractors ...driven.Extractor) *Registry {
	r := &Registry{
		byMIME: make(map[string][]driven.Extractor),
	}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// Register adds an extractor for all its supported MIME types.
func (r *Registry) Register(e driven.Extractor) {
	for _, mime := range e.SupportedMIMETypes() {
		r.byMIME[mime] = append(r.byMIME[mime], e)
	}
}

// ForMIMEType returns the highest-priority extractor for the MIME type,
// or nil if none is registered.
func (r *Registry) ForMIMEType(mimeType string) driven.Extractor {
	candidates := r.byMIME[mimeType]
	var best driven.Extractor
	for _, c := range candidates {
		if best == nil || c.Priority() > best.Priority() {
			best = c
		}
	}
	return best
}

// Extract picks the best extractor for the raw file and runs it.
func (r *Registry) Extract(ctx context.Context, raw *domain.RawFile) (*driven.ExtractResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	e := r.ForMIMEType(raw.MIMEType)
	if e == nil {
		return nil, fmt.Errorf("%w: no extractor for MIME type %q", domain.ErrExtraction, raw.MIMEType)
	}

	logger.Debug("extracting %s with priority-%d extractor", raw.SourceID, e.Priority())
	return e.Extract(ctx, raw)
}
