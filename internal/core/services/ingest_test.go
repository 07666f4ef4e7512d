package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moatlabs/omaha/internal/core/domain"
	"github.com/moatlabs/omaha/internal/core/ports/driven"
	"github.com/moatlabs/omaha/internal/core/ports/driving"
	"github.com/moatlabs/omaha/internal/extractors"
	"github.com/moatlabs/omaha/internal/extractors/plaintext"
	"github.com/moatlabs/omaha/internal/postprocessors"
)

// ingestFakeSource implements driven.LetterSource over a fixed file list.
type ingestFakeSource struct {
	files   []domain.RawFile
	listErr error
}

var _ driven.LetterSource = (*ingestFakeSource)(nil)

func (s *ingestFakeSource) List(context.Context) ([]domain.RawFile, error) {
	return s.files, s.listErr
}

func (s *ingestFakeSource) Watch(ctx context.Context) (<-chan domain.RawFile, <-chan error, error) {
	files := make(chan domain.RawFile)
	errs := make(chan error)
	go func() {
		defer close(files)
		defer close(errs)
		for _, f := range s.files {
			select {
			case <-ctx.Done():
				return
			case files <- f:
			}
		}
		<-ctx.Done()
	}()
	return files, errs, nil
}

func textFile(sourceID, year, content string) domain.RawFile {
	return domain.RawFile{
		SourceID: sourceID,
		URI:      "/letters/" + sourceID,
		MIMEType: "text/plain",
		Year:     year,
		Content:  []byte(content),
	}
}

func newTestIngestService(t *testing.T, source driven.LetterSource,
	embedding driven.EmbeddingService, index driven.VectorIndex,
) (*IngestService, *memDocStore) {
	t.Helper()

	pipeline, err := postprocessors.DefaultPipeline(domain.ChunkerSettings{Size: 100, Overlap: 20})
	require.NoError(t, err)

	docStore := newMemDocStore()
	svc := NewIngestService(
		source,
		extractors.NewRegistry(plaintext.New()),
		pipeline,
		docStore,
		embedding,
		index,
	)
	return svc, docStore
}

func TestIngestAll(t *testing.T) {
	source := &ingestFakeSource{files: []domain.RawFile{
		textFile("1994.txt", "1994", "Our insurance float grew substantially this year."),
		textFile("1995.txt", "1995", "See's Candies again demonstrated its pricing power."),
	}}
	index := newMemIndex()
	svc, docStore := newTestIngestService(t, source, newStubEmbedder(), index)

	var progress []driving.FileResult
	report, err := svc.IngestAll(context.Background(), driving.IngestOptions{
		Progress: func(result driving.FileResult, done, total int) {
			progress = append(progress, result)
			assert.Equal(t, 2, total)
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, report.TotalChunks, countIndexEntries(t, index))
	assert.Len(t, progress, 2)

	docs, err := docStore.ListDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "1994", docs[0].Year)
}

func TestIngestAll_NoFiles(t *testing.T) {
	svc, _ := newTestIngestService(t, &ingestFakeSource{}, newStubEmbedder(), newMemIndex())

	_, err := svc.IngestAll(context.Background(), driving.IngestOptions{})
	assert.ErrorIs(t, err, domain.ErrNoDocuments)
}

func TestIngestAll_FileFailureIsolated(t *testing.T) {
	source := &ingestFakeSource{files: []domain.RawFile{
		textFile("1994.txt", "1994", ""), // empty extraction output fails this file
		textFile("1995.txt", "1995", "A good business earns high returns on capital."),
	}}
	svc, _ := newTestIngestService(t, source, newStubEmbedder(), newMemIndex())

	report, err := svc.IngestAll(context.Background(), driving.IngestOptions{})
	require.NoError(t, err, "one bad file must not abort the batch")

	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Results, 2)
	assert.ErrorIs(t, report.Results[0].Err, domain.ErrExtraction)
	assert.NoError(t, report.Results[1].Err)
}

func TestIngestAll_EmbeddingFailureIsolated(t *testing.T) {
	source := &ingestFakeSource{files: []domain.RawFile{
		textFile("1994.txt", "1994", "content"),
	}}
	embedder := newStubEmbedder()
	embedder.batchErr = domain.ErrEmbedding
	index := newMemIndex()
	svc, _ := newTestIngestService(t, source, embedder, index)

	report, err := svc.IngestAll(context.Background(), driving.IngestOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Failed)
	assert.Zero(t, countIndexEntries(t, index), "no partial writes on embedding failure")
}

func TestIngestAll_MissingServices(t *testing.T) {
	source := &ingestFakeSource{files: []domain.RawFile{textFile("1994.txt", "1994", "x")}}

	svc, _ := newTestIngestService(t, source, nil, newMemIndex())
	_, err := svc.IngestAll(context.Background(), driving.IngestOptions{})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	svc, _ = newTestIngestService(t, source, newStubEmbedder(), nil)
	_, err = svc.IngestAll(context.Background(), driving.IngestOptions{})
	assert.ErrorIs(t, err, domain.ErrVectorIndexUnavailable)
}

func TestIngestFile_ReingestReplaces(t *testing.T) {
	index := newMemIndex()
	svc, docStore := newTestIngestService(t, &ingestFakeSource{}, newStubEmbedder(), index)
	ctx := context.Background()

	first := textFile("1994.txt", "1994", "First version of the letter.")
	result, err := svc.IngestFile(ctx, &first)
	require.NoError(t, err)
	require.NoError(t, result.Err)
	firstCount := countIndexEntries(t, index)

	second := textFile("1994.txt", "1994", "Second version of the letter, revised.")
	result, err = svc.IngestFile(ctx, &second)
	require.NoError(t, err)
	require.NoError(t, result.Err)

	assert.Equal(t, result.Chunks, countIndexEntries(t, index),
		"old entries are superseded, not accumulated")
	assert.GreaterOrEqual(t, firstCount, 1)

	docs, err := docStore.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1, "the document keeps a single identity across re-ingestion")
}

func TestIngestFile_StampsProvenance(t *testing.T) {
	index := newMemIndex()
	svc, _ := newTestIngestService(t, &ingestFakeSource{}, newStubEmbedder(), index)

	raw := textFile("2020.txt", "2020",
		"Berkshire's moat, as discussed at length, remains its culture.")
	result, err := svc.IngestFile(context.Background(), &raw)
	require.NoError(t, err)
	require.NoError(t, result.Err)

	for _, entry := range index.entries {
		assert.Equal(t, "2020.txt", entry.Metadata.SourceID)
		assert.Equal(t, "2020", entry.Metadata.Year)
		assert.Equal(t, result.Chunks, entry.Metadata.TotalChunks)
	}
}

func TestWatch_ProcessesEvents(t *testing.T) {
	source := &ingestFakeSource{files: []domain.RawFile{
		textFile("1994.txt", "1994", "Watched content about float."),
	}}
	index := newMemIndex()
	svc, _ := newTestIngestService(t, source, newStubEmbedder(), index)

	ctx, cancel := context.WithCancel(context.Background())
	processed := make(chan struct{})

	go func() {
		_ = svc.Watch(ctx, driving.IngestOptions{
			Progress: func(driving.FileResult, int, int) {
				close(processed)
			},
		})
	}()

	<-processed
	cancel()

	assert.GreaterOrEqual(t, countIndexEntries(t, index), 1)
}

func TestWatch_ReturnsOnCancel(t *testing.T) {
	svc, _ := newTestIngestService(t, &ingestFakeSource{}, newStubEmbedder(), newMemIndex())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := svc.Watch(ctx, driving.IngestOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func countIndexEntries(t *testing.T, index *memIndex) int {
	t.Helper()
	count, err := index.Count(context.Background())
	require.NoError(t, err)
	return count
}

var errBoom = errors.New("boom")

func TestIngestAll_ListError(t *testing.T) {
	svc, _ := newTestIngestService(t, &ingestFakeSource{listErr: errBoom}, newStubEmbedder(), newMemIndex())

	_, err := svc.IngestAll(context.Background(), driving.IngestOptions{})
	assert.ErrorIs(t, err, errBoom)
}
