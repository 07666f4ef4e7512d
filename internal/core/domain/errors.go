package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Ingestion pipeline errors.

	// ErrExtraction indicates a source file could not be converted to text
	// (corrupt, unsupported, or empty output). Ingestion skips the file
	// and continues with the rest of the batch.
	ErrExtraction = errors.New("extraction failed")

	// ErrChunking indicates a chunker invariant violation, such as an
	// overlap not smaller than the chunk size. It is never raised for
	// arbitrary input text, only for programmer error.
	ErrChunking = errors.New("chunking invariant violated")

	// ErrEmbedding indicates an upstream embedding call failed (quota,
	// auth, timeout). Batch calls fail atomically: no partial results.
	ErrEmbedding = errors.New("embedding failed")

	// ErrIndexWrite indicates the vector index rejected a write
	// (dimension mismatch or storage unavailability).
	ErrIndexWrite = errors.New("vector index write failed")

	// ErrIndexQuery indicates a vector index query failed for
	// connectivity or schema reasons. Zero matches is not an error.
	ErrIndexQuery = errors.New("vector index query failed")

	// ErrGeneration indicates the language model call failed. Generation
	// failures abort the turn and must surface to the user, distinct
	// from an empty-but-successful retrieval.
	ErrGeneration = errors.New("generation failed")

	// ErrNoDocuments indicates ingestion found no source files at all.
	ErrNoDocuments = errors.New("no source documents found")

	// Service availability errors.

	// ErrLLMUnavailable indicates the LLM provider is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding provider is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")
)
