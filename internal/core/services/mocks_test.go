package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/moatlabs/omaha/internal/core/domain"
	"github.com/moatlabs/omaha/internal/core/ports/driven"
)

// --- Shared in-memory test doubles ---

// memDocStore is an in-memory driven.DocumentStore.
type memDocStore struct {
	mu     sync.Mutex
	docs   map[string]domain.Document
	chunks map[string][]domain.Chunk
}

var _ driven.DocumentStore = (*memDocStore)(nil)

func newMemDocStore() *memDocStore {
	return &memDocStore{
		docs:   make(map[string]domain.Document),
		chunks: make(map[string][]domain.Chunk),
	}
}

func (m *memDocStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = *doc
	return nil
}

func (m *memDocStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range chunks {
		m.chunks[c.DocumentID] = append(m.chunks[c.DocumentID], c)
	}
	return nil
}

func (m *memDocStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

func (m *memDocStore) GetDocumentBySourceID(_ context.Context, sourceID string) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range m.docs {
		if doc.SourceID == sourceID {
			d := doc
			return &d, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memDocStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Chunk(nil), m.chunks[documentID]...), nil
}

func (m *memDocStore) DeleteDocument(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
	delete(m.chunks, id)
	return nil
}

func (m *memDocStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs := make([]domain.Document, 0, len(m.docs))
	for _, doc := range m.docs {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].SourceID < docs[j].SourceID })
	return docs, nil
}

// memThreadStore is an in-memory driven.ThreadStore.
type memThreadStore struct {
	mu       sync.Mutex
	threads  map[string]domain.Thread
	messages map[string][]domain.Message
}

var _ driven.ThreadStore = (*memThreadStore)(nil)

func newMemThreadStore() *memThreadStore {
	return &memThreadStore{
		threads:  make(map[string]domain.Thread),
		messages: make(map[string][]domain.Message),
	}
}

func (m *memThreadStore) SaveThread(_ context.Context, thread *domain.Thread) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if thread.CreatedAt.IsZero() {
		thread.CreatedAt = time.Now().UTC()
	}
	thread.UpdatedAt = time.Now().UTC()
	m.threads[thread.ID] = *thread
	return nil
}

func (m *memThreadStore) GetThread(_ context.Context, id string) (*domain.Thread, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	thread, ok := m.threads[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &thread, nil
}

func (m *memThreadStore) ListThreads(_ context.Context) ([]domain.Thread, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	threads := make([]domain.Thread, 0, len(m.threads))
	for _, t := range m.threads {
		threads = append(threads, t)
	}
	sort.Slice(threads, func(i, j int) bool { return threads[i].UpdatedAt.After(threads[j].UpdatedAt) })
	return threads, nil
}

func (m *memThreadStore) DeleteThread(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.threads, id)
	delete(m.messages, id)
	return nil
}

func (m *memThreadStore) AppendMessage(_ context.Context, msg *domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.threads[msg.ThreadID]; !ok {
		return domain.ErrNotFound
	}
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	m.messages[msg.ThreadID] = append(m.messages[msg.ThreadID], *msg)
	return nil
}

func (m *memThreadStore) ListMessages(_ context.Context, threadID string) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Message(nil), m.messages[threadID]...), nil
}

// memIndex is an in-memory driven.VectorIndex. Query returns entries in
// insertion order with a fixed score; ranking is the real backends' job.
type memIndex struct {
	mu       sync.Mutex
	entries  []driven.IndexEntry
	queryErr error
}

var _ driven.VectorIndex = (*memIndex)(nil)

func newMemIndex() *memIndex { return &memIndex{} }

func (m *memIndex) EnsureSchema(context.Context) error { return nil }

func (m *memIndex) Upsert(_ context.Context, entries []driven.IndexEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *memIndex) Query(_ context.Context, _ []float32, topK int) ([]driven.VectorHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	hits := make([]driven.VectorHit, 0, topK)
	for _, e := range m.entries {
		if len(hits) == topK {
			break
		}
		hits = append(hits, driven.VectorHit{Metadata: e.Metadata, Score: 0.9})
	}
	return hits, nil
}

func (m *memIndex) DeleteBySource(_ context.Context, sourceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.Metadata.SourceID != sourceID {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	return nil
}

func (m *memIndex) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries), nil
}

func (m *memIndex) Close() error { return nil }

// stubEmbedder is a deterministic driven.EmbeddingService.
type stubEmbedder struct {
	dimensions int
	embedErr   error
	batchErr   error
}

var _ driven.EmbeddingService = (*stubEmbedder)(nil)

func newStubEmbedder() *stubEmbedder { return &stubEmbedder{dimensions: 3} }

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if s.embedErr != nil {
		return nil, s.embedErr
	}
	return s.vector(text), nil
}

func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if s.batchErr != nil {
		return nil, s.batchErr
	}
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		vectors[i] = s.vector(t)
	}
	return vectors, nil
}

func (s *stubEmbedder) vector(text string) []float32 {
	v := make([]float32, s.dimensions)
	for i, r := range text {
		v[i%s.dimensions] += float32(r)
	}
	return v
}

func (s *stubEmbedder) Dimensions() int            { return s.dimensions }
func (s *stubEmbedder) ModelName() string          { return "stub-embed" }
func (s *stubEmbedder) Ping(context.Context) error { return nil }
func (s *stubEmbedder) Close() error               { return nil }
