package driven

import (
	"context"
	"fmt"

	"github.com/moatlabs/omaha/internal/core/domain"
)

// VectorIndex stores (vector, metadata) entries and answers
// nearest-neighbour queries. It is the only stateful, persisted component
// of the retrieval pipeline; all mutation is append-style upsert.
//
// Implementations: Postgres + pgvector (managed), SQLite (local).
// The similarity metric is cosine for both.
type VectorIndex interface {
	// EnsureSchema provisions the index storage for the given dimension.
	// It is idempotent: an already-provisioned index is success, and
	// existing entries are left untouched.
	EnsureSchema(ctx context.Context) error

	// Upsert appends entries. All vectors must match the index dimension.
	// Entries are keyed by (SourceID, ChunkIndex), so re-ingesting a
	// document replaces its previous entries.
	Upsert(ctx context.Context, entries []IndexEntry) error

	// Query returns the topK nearest entries by cosine similarity,
	// descending by score. Zero matches returns an empty slice, never
	// an error; errors indicate connectivity or schema failure only.
	Query(ctx context.Context, vector []float32, topK int) ([]VectorHit, error)

	// DeleteBySource removes all entries for one source document.
	DeleteBySource(ctx context.Context, sourceID string) error

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

// EntryMetadata is the payload stored alongside each vector. The named
// fields are required; Extra carries anything else.
type EntryMetadata struct {
	// Text is the chunk content.
	Text string `json:"text"`

	// SourceID identifies the originating file.
	SourceID string `json:"source_id"`

	// Year is the letter year used in citations.
	Year string `json:"year"`

	// ChunkIndex is the 0-based chunk position.
	ChunkIndex int `json:"chunk_index"`

	// TotalChunks is the chunk count of the originating document.
	TotalChunks int `json:"total_chunks"`

	// Extra is an open extension map for additional fields.
	Extra map[string]any `json:"extra,omitempty"`
}

// Validate checks the required fields at the ingestion boundary.
func (m EntryMetadata) Validate() error {
	if m.Text == "" {
		return fmt.Errorf("%w: metadata text is empty", domain.ErrInvalidInput)
	}
	if m.SourceID == "" {
		return fmt.Errorf("%w: metadata source id is empty", domain.ErrInvalidInput)
	}
	if m.ChunkIndex < 0 || m.TotalChunks <= m.ChunkIndex {
		return fmt.Errorf("%w: chunk index %d out of range (total %d)",
			domain.ErrInvalidInput, m.ChunkIndex, m.TotalChunks)
	}
	return nil
}

// IndexEntry is one persisted (vector, metadata) tuple.
type IndexEntry struct {
	// ID is an opaque identifier assigned at insertion.
	ID string

	// Vector is the embedding. Its length must equal the index dimension.
	Vector []float32

	// Metadata is the stored payload.
	Metadata EntryMetadata
}

// VectorHit is a single similarity search result.
type VectorHit struct {
	// Metadata is the stored payload of the matched entry.
	Metadata EntryMetadata

	// Score is the cosine similarity (higher = more relevant).
	Score float64
}
