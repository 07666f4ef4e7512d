package driven

import (
	"context"

	"github.com/moatlabs/omaha/internal/core/domain"
)

// Extractor converts raw letter files into plain text documents.
// Each extractor handles specific MIME types (e.g., PDF, plain text).
type Extractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific extractors should return 50-89.
	// Fallback extractors should return 1-9.
	Priority() int

	// Extract transforms a raw file into a document with Content set.
	// It fails with domain.ErrExtraction for corrupt or unsupported
	// input, and for zero-length extracted text - a condition the
	// ingestion batch skips rather than aborts on.
	Extract(ctx context.Context, raw *domain.RawFile) (*ExtractResult, error)
}

// ExtractResult contains the output of extraction.
// Note: extraction only produces a Document with Content.
// Chunking is handled by the PostProcessor pipeline.
type ExtractResult struct {
	// Document is the extracted document with Content populated.
	Document domain.Document
}

// ExtractorRegistry selects the appropriate extractor for a raw file.
type ExtractorRegistry interface {
	// Extract picks the highest-priority extractor for the file's MIME
	// type and runs it.
	Extract(ctx context.Context, raw *domain.RawFile) (*ExtractResult, error)
}
