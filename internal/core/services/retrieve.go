package services

import (
	"context"
	"strings"

	"github.com/moatlabs/omaha/internal/core/domain"
	"github.com/moatlabs/omaha/internal/core/ports/driven"
	"github.com/moatlabs/omaha/internal/core/ports/driving"
	"github.com/moatlabs/omaha/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.Retriever = (*RetrievalService)(nil)

// RetrievalService embeds questions and queries the vector index.
// It is fail-soft: infrastructure failures degrade to an empty result
// with a warning, so the answer path can proceed without sources
// rather than aborting the whole turn.
type RetrievalService struct {
	embedding driven.EmbeddingService
	index     driven.VectorIndex
	topK      int
}

// NewRetrievalService creates a new retrieval service. The embedding
// service and index are optional; a nil value means every retrieval
// degrades. If topK <= 0, domain.DefaultTopK is used.
func NewRetrievalService(
	embedding driven.EmbeddingService,
	index driven.VectorIndex,
	topK int,
) *RetrievalService {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	return &RetrievalService{
		embedding: embedding,
		index:     index,
		topK:      topK,
	}
}

// Retrieve embeds the question and returns the topK most similar
// chunks, descending by score. An empty hit list with Degraded unset
// is a genuine no-match outcome, not a failure.
func (s *RetrievalService) Retrieve(
	ctx context.Context, question string, topK int,
) (*domain.RetrievalResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return &domain.RetrievalResult{}, nil
	}
	if topK <= 0 {
		topK = s.topK
	}

	if s.embedding == nil {
		return s.degraded("embedding service not configured"), nil
	}
	if s.index == nil {
		return s.degraded("vector index not configured"), nil
	}

	logger.Debug("Retrieve: query=%q topK=%d", question, topK)

	vector, err := s.embedding.Embed(ctx, question)
	if err != nil {
		logger.Warn("Retrieve: embedding failed: %v", err)
		return s.degraded("question embedding failed: " + err.Error()), nil
	}

	hits, err := s.index.Query(ctx, vector, topK)
	if err != nil {
		logger.Warn("Retrieve: index query failed: %v", err)
		return s.degraded("index query failed: " + err.Error()), nil
	}

	logger.Debug("Retrieve: %d hits", len(hits))

	chunks := make([]domain.RetrievedChunk, len(hits))
	for i, hit := range hits {
		chunks[i] = domain.RetrievedChunk{
			Content:     hit.Metadata.Text,
			SourceID:    hit.Metadata.SourceID,
			Year:        hit.Metadata.Year,
			ChunkIndex:  hit.Metadata.ChunkIndex,
			TotalChunks: hit.Metadata.TotalChunks,
			Score:       hit.Score,
		}
	}

	return &domain.RetrievalResult{Chunks: chunks}, nil
}

func (s *RetrievalService) degraded(warning string) *domain.RetrievalResult {
	return &domain.RetrievalResult{
		Degraded: true,
		Warning:  warning,
	}
}
