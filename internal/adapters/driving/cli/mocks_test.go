package cli

import (
	"context"
	"errors"
	"time"

	"github.com/moatlabs/omaha/internal/core/domain"
	"github.com/moatlabs/omaha/internal/core/ports/driven"
	"github.com/moatlabs/omaha/internal/core/ports/driving"
)

// setupTestServices installs mock services and returns a cleanup
// function restoring the previous wiring.
func setupTestServices() func() {
	oldIngest := ingestOrchestrator
	oldFactory := ingestFactory
	oldAnswer := answerService
	oldRetriever := retrievalService
	oldThreads := threadService
	oldSettings := settingsService
	oldWarnings := initWarnings

	mock := &mockIngestOrchestrator{}
	ingestOrchestrator = mock
	ingestFactory = func(string) driving.IngestOrchestrator { return mock }
	answerService = &mockAnswerService{}
	retrievalService = &mockRetriever{}
	threadService = &mockThreadManager{}
	settingsService = &mockSettingsManager{}
	initWarnings = nil

	return func() {
		ingestOrchestrator = oldIngest
		ingestFactory = oldFactory
		answerService = oldAnswer
		retrievalService = oldRetriever
		threadService = oldThreads
		settingsService = oldSettings
		initWarnings = oldWarnings
	}
}

type mockIngestOrchestrator struct{}

func (m *mockIngestOrchestrator) IngestAll(_ context.Context, opts driving.IngestOptions) (*driving.IngestReport, error) {
	results := []driving.FileResult{
		{SourceID: "1994.txt", Year: "1994", Chunks: 4},
		{SourceID: "2020.txt", Year: "2020", Chunks: 6},
	}
	for i, r := range results {
		if opts.Progress != nil {
			opts.Progress(r, i+1, len(results))
		}
	}
	return &driving.IngestReport{
		Processed:   2,
		TotalChunks: 10,
		Results:     results,
	}, nil
}

func (m *mockIngestOrchestrator) IngestFile(context.Context, *domain.RawFile) (*driving.FileResult, error) {
	return &driving.FileResult{SourceID: "1994.txt", Chunks: 4}, nil
}

func (m *mockIngestOrchestrator) Watch(ctx context.Context, _ driving.IngestOptions) error {
	<-ctx.Done()
	return ctx.Err()
}

type mockIngestOrchestratorEmpty struct {
	mockIngestOrchestrator
}

func (m *mockIngestOrchestratorEmpty) IngestAll(context.Context, driving.IngestOptions) (*driving.IngestReport, error) {
	return nil, domain.ErrNoDocuments
}

type mockIngestOrchestratorAllFailed struct {
	mockIngestOrchestrator
}

func (m *mockIngestOrchestratorAllFailed) IngestAll(context.Context, driving.IngestOptions) (*driving.IngestReport, error) {
	return &driving.IngestReport{
		Failed: 2,
		Results: []driving.FileResult{
			{SourceID: "1994.txt", Err: errors.New("extraction failed")},
			{SourceID: "2020.txt", Err: errors.New("extraction failed")},
		},
	}, nil
}

type mockAnswerService struct{}

func (m *mockAnswerService) Ask(_ context.Context, threadID, _ string) (*driving.TurnResult, error) {
	if threadID == "" {
		threadID = "thread-1"
	}
	return &driving.TurnResult{
		ThreadID: threadID,
		Answer: domain.Answer{
			Text:      "See's Candies shows pricing power (1994).",
			Citations: []string{"(1994)"},
		},
		Retrieved: 2,
	}, nil
}

func (m *mockAnswerService) AskStream(
	ctx context.Context, threadID, question string, fn driven.StreamFunc,
) (*driving.TurnResult, error) {
	result, _ := m.Ask(ctx, threadID, question) //nolint:errcheck // mock never fails
	for _, word := range []string{"See's ", "Candies ", "shows ", "pricing ", "power ", "(1994)."} {
		if err := fn(word); err != nil {
			return nil, err
		}
	}
	return result, nil
}

type mockAnswerServiceError struct{}

func (m *mockAnswerServiceError) Ask(context.Context, string, string) (*driving.TurnResult, error) {
	return nil, errors.New("model unavailable")
}

func (m *mockAnswerServiceError) AskStream(
	context.Context, string, string, driven.StreamFunc,
) (*driving.TurnResult, error) {
	return nil, errors.New("model unavailable")
}

type mockRetriever struct{}

func (m *mockRetriever) Retrieve(context.Context, string, int) (*domain.RetrievalResult, error) {
	return &domain.RetrievalResult{Chunks: []domain.RetrievedChunk{
		{Content: "pricing power", SourceID: "1994.txt", Year: "1994", Score: 0.9},
	}}, nil
}

type mockThreadManager struct{}

func (m *mockThreadManager) Create(_ context.Context, title string) (*domain.Thread, error) {
	return &domain.Thread{ID: "thread-1", Title: title}, nil
}

func (m *mockThreadManager) Get(_ context.Context, id string) (*domain.Thread, error) {
	if id != "thread-1" {
		return nil, domain.ErrNotFound
	}
	return &domain.Thread{ID: "thread-1", Title: "Moat questions"}, nil
}

func (m *mockThreadManager) List(context.Context) ([]domain.Thread, error) {
	return []domain.Thread{
		{ID: "thread-1", Title: "Moat questions", UpdatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
	}, nil
}

func (m *mockThreadManager) Delete(context.Context, string) error {
	return nil
}

func (m *mockThreadManager) Messages(context.Context, string) ([]domain.Message, error) {
	return []domain.Message{
		{ThreadID: "thread-1", Role: domain.RoleUser, Content: "What is a moat?"},
		{ThreadID: "thread-1", Role: domain.RoleAssistant, Content: "Durable advantage (2007)."},
	}, nil
}

type mockThreadManagerEmpty struct {
	mockThreadManager
}

func (m *mockThreadManagerEmpty) List(context.Context) ([]domain.Thread, error) {
	return nil, nil
}

type mockSettingsManager struct {
	lastChunkSize int
	lastOverlap   int
	lastTopK      int
}

func (m *mockSettingsManager) Get() domain.AppSettings {
	settings := domain.DefaultAppSettings()
	settings.Embedding = domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		Model:    "nomic-embed-text",
		BaseURL:  "http://localhost:11434",
	}
	settings.LLM = domain.LLMSettings{
		Provider: domain.AIProviderOpenAI,
		Model:    "gpt-4o-mini",
		APIKey:   "sk-test-1234567890",
	}
	return settings
}

func (m *mockSettingsManager) SetEmbedding(domain.AIProvider, string, string, string) error {
	return nil
}

func (m *mockSettingsManager) SetLLM(domain.AIProvider, string, string, string) error {
	return nil
}

func (m *mockSettingsManager) SetChunking(size, overlap int) error {
	m.lastChunkSize = size
	m.lastOverlap = overlap
	return nil
}

func (m *mockSettingsManager) SetTopK(topK int) error {
	m.lastTopK = topK
	return nil
}

func (m *mockSettingsManager) Path() string {
	return "/home/test/.omaha/config.toml"
}
