package domain

import "time"

// MessageRole identifies the author of a conversation message.
type MessageRole string

// Available message roles.
const (
	// RoleUser is a message written by the user.
	RoleUser MessageRole = "user"

	// RoleAssistant is a message generated by the agent.
	RoleAssistant MessageRole = "assistant"
)

// IsValid returns true if the role is recognised.
func (r MessageRole) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Thread is a persisted conversation between a user and the agent.
type Thread struct {
	// ID is the unique thread identifier.
	ID string

	// Title is a short human-readable label, usually derived from the
	// first question.
	Title string

	// CreatedAt is when the thread was started.
	CreatedAt time.Time

	// UpdatedAt is when the last message was appended.
	UpdatedAt time.Time
}

// Message is one turn in a thread. Messages are append-only.
type Message struct {
	// ID is the unique message identifier.
	ID string

	// ThreadID links to the parent thread.
	ThreadID string

	// Role is the message author.
	Role MessageRole

	// Content is the message text.
	Content string

	// CreatedAt is when the message was stored.
	CreatedAt time.Time
}
