package driven

import (
	"context"

	"github.com/moatlabs/omaha/internal/core/domain"
)

// ThreadStore persists conversation threads and their messages.
// The message log is append-only; the answer service reads prior
// messages but never rewrites them.
type ThreadStore interface {
	// SaveThread stores or updates a thread.
	SaveThread(ctx context.Context, thread *domain.Thread) error

	// GetThread retrieves a thread by ID.
	GetThread(ctx context.Context, id string) (*domain.Thread, error)

	// ListThreads returns all threads, most recently updated first.
	ListThreads(ctx context.Context) ([]domain.Thread, error)

	// DeleteThread removes a thread and its messages.
	DeleteThread(ctx context.Context, id string) error

	// AppendMessage appends a message to a thread.
	AppendMessage(ctx context.Context, msg *domain.Message) error

	// ListMessages returns a thread's messages in insertion order.
	ListMessages(ctx context.Context, threadID string) ([]domain.Message, error)
}
