package domain

import "time"

// Document represents one shareholder letter after extraction.
// It is the canonical representation before chunking.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// SourceID identifies the originating file (e.g., "1994.pdf").
	SourceID string

	// URI is the original location on disk.
	URI string

	// Title is the human-readable title.
	Title string

	// Year is the letter year derived from the filename (e.g., "1994").
	// Empty if no year could be determined.
	Year string

	// Content is the full extracted text before chunking.
	Content string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last re-ingested.
	UpdatedAt time.Time
}

// Chunk represents a contiguous span of a document's text.
// Chunks are the unit of embedding and retrieval. They are immutable:
// re-ingestion supersedes a document's chunks rather than updating them.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// SourceID identifies the originating file, carried for citations.
	SourceID string

	// Year is the letter year, carried for citations.
	Year string

	// Content is the text content of this chunk.
	Content string

	// Index is the 0-based position within the document.
	Index int

	// TotalChunks is the number of chunks the document was split into.
	TotalChunks int

	// Embedding is the vector representation of Content.
	Embedding []float32

	// Metadata contains chunk-specific key-value pairs beyond the
	// required fields above.
	Metadata map[string]any
}
