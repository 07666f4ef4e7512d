package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/moatlabs/omaha/internal/core/domain"
	"github.com/moatlabs/omaha/internal/core/ports/driven"
	"github.com/moatlabs/omaha/internal/core/ports/driving"
	"github.com/moatlabs/omaha/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestOrchestrator = (*IngestService)(nil)

// IngestService coordinates the full ingestion pipeline: extract,
// chunk, embed, index. Files are processed independently so one corrupt
// letter never sinks the batch.
type IngestService struct {
	source     driven.LetterSource
	extractors driven.ExtractorRegistry
	pipeline   driven.PostProcessorPipeline
	docStore   driven.DocumentStore
	embedding  driven.EmbeddingService
	index      driven.VectorIndex
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	source driven.LetterSource,
	extractors driven.ExtractorRegistry,
	pipeline driven.PostProcessorPipeline,
	docStore driven.DocumentStore,
	embedding driven.EmbeddingService,
	index driven.VectorIndex,
) *IngestService {
	return &IngestService{
		source:     source,
		extractors: extractors,
		pipeline:   pipeline,
		docStore:   docStore,
		embedding:  embedding,
		index:      index,
	}
}

// IngestAll processes every file in the letters directory. Per-file
// failures are recorded in the report; the run only errors as a whole
// when no files exist or the embedding service or index is missing.
func (s *IngestService) IngestAll(ctx context.Context, opts driving.IngestOptions) (*driving.IngestReport, error) {
	if err := s.checkServices(); err != nil {
		return nil, err
	}

	logger.Section("Ingestion")

	files, err := s.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing letter files: %w", err)
	}
	if len(files) == 0 {
		return nil, domain.ErrNoDocuments
	}

	logger.Info("Ingesting %d files", len(files))

	report := &driving.IngestReport{}
	for i := range files {
		result, err := s.IngestFile(ctx, &files[i])
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			result = &driving.FileResult{
				SourceID: files[i].SourceID,
				Year:     files[i].Year,
				Err:      err,
			}
		}

		if result.Err != nil {
			logger.Warn("Skipping %s: %v", result.SourceID, result.Err)
			report.Failed++
		} else {
			report.Processed++
			report.TotalChunks += result.Chunks
		}
		report.Results = append(report.Results, *result)

		if opts.Progress != nil {
			opts.Progress(*result, i+1, len(files))
		}
	}

	logger.Info("Ingestion complete: %d processed, %d failed, %d chunks",
		report.Processed, report.Failed, report.TotalChunks)
	return report, nil
}

// IngestFile processes a single raw file end to end. Re-ingesting a
// file deletes its previous index entries before the new ones are
// written, so stale chunks never linger.
func (s *IngestService) IngestFile(ctx context.Context, raw *domain.RawFile) (*driving.FileResult, error) {
	if err := s.checkServices(); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: raw file is nil", domain.ErrInvalidInput)
	}

	result := &driving.FileResult{SourceID: raw.SourceID, Year: raw.Year}

	extracted, err := s.extractors.Extract(ctx, raw)
	if err != nil {
		result.Err = err
		return result, nil
	}

	doc := extracted.Document
	doc.SourceID = raw.SourceID
	doc.URI = raw.URI
	doc.Year = raw.Year
	// Extractors mint a fresh ID; a known source keeps its identity so
	// re-ingestion updates the same document instead of orphaning chunks
	// under a new one.
	if existing, err := s.docStore.GetDocumentBySourceID(ctx, raw.SourceID); err == nil {
		doc.ID = existing.ID
		doc.CreatedAt = existing.CreatedAt
	} else if doc.ID == "" {
		doc.ID = uuid.New().String()
	}

	chunks, err := s.pipeline.Process(ctx, &doc)
	if err != nil {
		result.Err = err
		return result, nil
	}
	logger.Debug("%s: %d chunks", raw.SourceID, len(chunks))

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}

	vectors, err := s.embedding.EmbedBatch(ctx, texts)
	if err != nil {
		result.Err = err
		return result, nil
	}
	if len(vectors) != len(chunks) {
		result.Err = fmt.Errorf("%w: got %d vectors for %d chunks",
			domain.ErrEmbedding, len(vectors), len(chunks))
		return result, nil
	}

	entries := make([]driven.IndexEntry, len(chunks))
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
		entries[i] = driven.IndexEntry{
			ID:     chunks[i].ID,
			Vector: vectors[i],
			Metadata: driven.EntryMetadata{
				Text:        chunks[i].Content,
				SourceID:    chunks[i].SourceID,
				Year:        chunks[i].Year,
				ChunkIndex:  chunks[i].Index,
				TotalChunks: chunks[i].TotalChunks,
			},
		}
	}

	if err := s.docStore.SaveDocument(ctx, &doc); err != nil {
		result.Err = err
		return result, nil
	}
	for i := range chunks {
		chunks[i].DocumentID = doc.ID
	}
	if err := s.docStore.SaveChunks(ctx, chunks); err != nil {
		result.Err = err
		return result, nil
	}

	// Supersede, then append: a re-ingested letter replaces its old
	// entries rather than accumulating duplicates.
	if err := s.index.DeleteBySource(ctx, raw.SourceID); err != nil {
		result.Err = err
		return result, nil
	}
	if err := s.index.Upsert(ctx, entries); err != nil {
		result.Err = err
		return result, nil
	}

	result.Chunks = len(chunks)
	return result, nil
}

// Watch processes files as they appear or change, until ctx is
// cancelled. Per-file failures are logged and skipped.
func (s *IngestService) Watch(ctx context.Context, opts driving.IngestOptions) error {
	if err := s.checkServices(); err != nil {
		return err
	}

	files, errs, err := s.source.Watch(ctx)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}

	logger.Info("Watching for letter changes")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case raw, ok := <-files:
			if !ok {
				return ctx.Err()
			}
			result, err := s.IngestFile(ctx, &raw)
			if err != nil {
				logger.Warn("Watch: %s: %v", raw.SourceID, err)
				continue
			}
			if result.Err != nil {
				logger.Warn("Watch: skipping %s: %v", result.SourceID, result.Err)
			} else {
				logger.Info("Watch: re-indexed %s (%d chunks)", result.SourceID, result.Chunks)
			}
			if opts.Progress != nil {
				opts.Progress(*result, 0, 0)
			}

		case err, ok := <-errs:
			if !ok {
				return ctx.Err()
			}
			logger.Warn("Watch error: %v", err)
		}
	}
}

// checkServices verifies the hard dependencies of ingestion.
func (s *IngestService) checkServices() error {
	if s.embedding == nil {
		return domain.ErrEmbeddingUnavailable
	}
	if s.index == nil {
		return domain.ErrVectorIndexUnavailable
	}
	return nil
}
