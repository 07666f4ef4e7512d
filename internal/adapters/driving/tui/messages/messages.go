// Package messages defines Bubbletea message types for the chat TUI.
// Messages represent events that flow through the Elm architecture.
package messages

import (
	"github.com/moatlabs/omaha/internal/core/domain"
	"github.com/moatlabs/omaha/internal/core/ports/driving"
)

// AnswerDelta carries one streamed fragment of the answer being generated.
type AnswerDelta struct {
	Delta string
}

// TurnCompleted signals that a question-answering turn finished.
type TurnCompleted struct {
	Result *driving.TurnResult
	Err    error
}

// TurnCancelled signals that the user cancelled generation.
type TurnCancelled struct{}

// HistoryLoaded carries a thread's prior messages when resuming.
type HistoryLoaded struct {
	ThreadID string
	Messages []domain.Message
	Err      error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}
