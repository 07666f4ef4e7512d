package driving

import (
	"context"

	"github.com/moatlabs/omaha/internal/core/domain"
)

// ThreadManager exposes conversation thread operations.
type ThreadManager interface {
	// Create starts a new thread with the given title. An empty title
	// is allowed; the first question becomes the title.
	Create(ctx context.Context, title string) (*domain.Thread, error)

	// Get returns a thread by ID.
	Get(ctx context.Context, id string) (*domain.Thread, error)

	// List returns all threads, most recently updated first.
	List(ctx context.Context) ([]domain.Thread, error)

	// Delete removes a thread and its messages.
	Delete(ctx context.Context, id string) error

	// Messages returns a thread's messages in insertion order.
	Messages(ctx context.Context, threadID string) ([]domain.Message, error)
}
