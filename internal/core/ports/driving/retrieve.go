package driving

import (
	"context"

	"github.com/moatlabs/omaha/internal/core/domain"
)

// Retriever finds the passages most relevant to a question.
type Retriever interface {
	// Retrieve embeds the question and queries the vector index for the
	// topK most similar chunks. If topK <= 0 the configured default is
	// used. Retrieval is fail-soft: infrastructure errors produce a
	// degraded empty result rather than an error, so answering can
	// proceed without sources.
	Retrieve(ctx context.Context, question string, topK int) (*domain.RetrievalResult, error)
}
