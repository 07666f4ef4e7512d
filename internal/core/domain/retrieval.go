package domain

// DefaultTopK is the default number of chunks requested per retrieval.
const DefaultTopK = 10

// RetrievedChunk is a single ranked retrieval hit with the metadata
// needed to cite it.
type RetrievedChunk struct {
	// Content is the chunk text.
	Content string

	// SourceID identifies the originating file.
	SourceID string

	// Year is the letter year for citation rendering.
	Year string

	// ChunkIndex is the chunk's position within its document.
	ChunkIndex int

	// TotalChunks is the chunk count of the originating document.
	TotalChunks int

	// Score is the similarity score (higher = more relevant).
	Score float64
}

// RetrievalResult is the outcome of one retrieval attempt.
// Retrieval is advisory: a failed embedding or index call degrades to an
// empty result rather than propagating, so the answer path always has
// something well-formed to work with.
type RetrievalResult struct {
	// Chunks is the ranked hit list, descending by score, at most the
	// requested topK entries. Ties keep insertion order.
	Chunks []RetrievedChunk

	// Degraded is true when retrieval failed and the empty result is a
	// fallback rather than a genuine no-match outcome.
	Degraded bool

	// Warning records the failure for observability when Degraded is set.
	Warning string
}

// Empty returns true if no chunks were retrieved.
func (r RetrievalResult) Empty() bool {
	return len(r.Chunks) == 0
}
