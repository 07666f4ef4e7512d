package driving

import (
	"context"

	"github.com/moatlabs/omaha/internal/core/domain"
)

// IngestOrchestrator coordinates the extraction, chunking, embedding and
// indexing of letter files.
type IngestOrchestrator interface {
	// IngestAll processes every file in the letters directory. File
	// failures are isolated: one bad file is recorded in the report and
	// the rest of the batch continues. The returned error is non-nil
	// only for failures that invalidate the whole run (no files found,
	// embedding or index unavailable).
	IngestAll(ctx context.Context, opts IngestOptions) (*IngestReport, error)

	// IngestFile processes a single raw file end to end. Re-ingesting a
	// file replaces its previous chunks in the index.
	IngestFile(ctx context.Context, raw *domain.RawFile) (*FileResult, error)

	// Watch processes files as they appear or change in the letters
	// directory, until ctx is cancelled.
	Watch(ctx context.Context, opts IngestOptions) error
}

// IngestOptions configures an ingestion run.
type IngestOptions struct {
	// Progress, if set, is invoked after each file completes.
	Progress ProgressFunc
}

// ProgressFunc reports per-file ingestion progress.
type ProgressFunc func(result FileResult, done, total int)

// FileResult records the outcome of ingesting one file.
type FileResult struct {
	// SourceID is the file's base name.
	SourceID string

	// Year is the letter year, if derivable from the filename.
	Year string

	// Chunks is the number of chunks indexed.
	Chunks int

	// Err is the failure, nil on success.
	Err error
}

// IngestReport summarises an ingestion run.
type IngestReport struct {
	// Processed is the number of files successfully indexed.
	Processed int

	// Failed is the number of files that errored.
	Failed int

	// TotalChunks is the number of chunks indexed across all files.
	TotalChunks int

	// Results holds the per-file outcomes in processing order.
	Results []FileResult
}
