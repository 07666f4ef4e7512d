package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/moatlabs/omaha/internal/core/domain"
	"github.com/moatlabs/omaha/internal/core/ports/driven"
	"github.com/moatlabs/omaha/internal/core/ports/driving"
)

// Ensure ThreadService implements the interface.
var _ driving.ThreadManager = (*ThreadService)(nil)

// ThreadService exposes conversation thread operations.
type ThreadService struct {
	store driven.ThreadStore
}

// NewThreadService creates a new thread service.
func NewThreadService(store driven.ThreadStore) *ThreadService {
	return &ThreadService{store: store}
}

// Create starts a new thread with the given title.
func (s *ThreadService) Create(ctx context.Context, title string) (*domain.Thread, error) {
	thread := &domain.Thread{
		ID:    uuid.New().String(),
		Title: title,
	}
	if err := s.store.SaveThread(ctx, thread); err != nil {
		return nil, fmt.Errorf("creating thread: %w", err)
	}
	return thread, nil
}

// Get returns a thread by ID.
func (s *ThreadService) Get(ctx context.Context, id string) (*domain.Thread, error) {
	return s.store.GetThread(ctx, id)
}

// List returns all threads, most recently updated first.
func (s *ThreadService) List(ctx context.Context) ([]domain.Thread, error) {
	return s.store.ListThreads(ctx)
}

// Delete removes a thread and its messages.
func (s *ThreadService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteThread(ctx, id)
}

// Messages returns a thread's messages in insertion order.
func (s *ThreadService) Messages(ctx context.Context, threadID string) ([]domain.Message, error) {
	return s.store.ListMessages(ctx, threadID)
}
