package mcp

import (
	"context"
	"time"

	"github.com/moatlabs/omaha/internal/core/domain"
	"github.com/moatlabs/omaha/internal/core/ports/driven"
	"github.com/moatlabs/omaha/internal/core/ports/driving"
)

// mockRetriever returns canned retrieval results.
type mockRetriever struct {
	result *domain.RetrievalResult
	err    error
}

var _ driving.Retriever = (*mockRetriever)(nil)

func (m *mockRetriever) Retrieve(context.Context, string, int) (*domain.RetrievalResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &domain.RetrievalResult{}, nil
	}
	return m.result, nil
}

// mockAnswer returns a canned turn result.
type mockAnswer struct {
	result *driving.TurnResult
	err    error
}

var _ driving.AnswerOrchestrator = (*mockAnswer)(nil)

func (m *mockAnswer) Ask(context.Context, string, string) (*driving.TurnResult, error) {
	return m.result, m.err
}

func (m *mockAnswer) AskStream(
	ctx context.Context, threadID, question string, _ driven.StreamFunc,
) (*driving.TurnResult, error) {
	return m.Ask(ctx, threadID, question)
}

// mockThreads serves a fixed thread with two messages.
type mockThreads struct {
	listErr error
}

var _ driving.ThreadManager = (*mockThreads)(nil)

func (m *mockThreads) Create(_ context.Context, title string) (*domain.Thread, error) {
	return &domain.Thread{ID: "thread-1", Title: title}, nil
}

func (m *mockThreads) Get(_ context.Context, id string) (*domain.Thread, error) {
	if id != "thread-1" {
		return nil, domain.ErrNotFound
	}
	return &domain.Thread{ID: "thread-1", Title: "Moats"}, nil
}

func (m *mockThreads) List(context.Context) ([]domain.Thread, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return []domain.Thread{
		{ID: "thread-1", Title: "Moats", UpdatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
	}, nil
}

func (m *mockThreads) Delete(context.Context, string) error {
	return nil
}

func (m *mockThreads) Messages(_ context.Context, threadID string) ([]domain.Message, error) {
	if threadID != "thread-1" {
		return nil, domain.ErrNotFound
	}
	return []domain.Message{
		{ThreadID: threadID, Role: domain.RoleUser, Content: "What is a moat?"},
		{ThreadID: threadID, Role: domain.RoleAssistant, Content: "Durable advantage (2007)."},
	}, nil
}
