package driving

import (
	"context"

	"github.com/moatlabs/omaha/internal/core/domain"
	"github.com/moatlabs/omaha/internal/core/ports/driven"
)

// AnswerOrchestrator runs the full question-answering turn: decide
// whether to retrieve, gather sources, compose the prompt, and generate
// the answer.
type AnswerOrchestrator interface {
	// Ask answers a question within a thread. If threadID is empty a
	// new thread is created. The user message and the assistant reply
	// are both appended to the thread. Turns on the same thread are
	// serialised; concurrent turns on different threads are independent.
	Ask(ctx context.Context, threadID, question string) (*TurnResult, error)

	// AskStream behaves like Ask but passes each generated delta to fn
	// in model order as it arrives. Cancelling ctx stops generation;
	// the partial reply is not persisted.
	AskStream(ctx context.Context, threadID, question string, fn driven.StreamFunc) (*TurnResult, error)
}

// TurnResult is the outcome of one completed question-answering turn.
type TurnResult struct {
	// ThreadID identifies the thread the turn belongs to. Set even when
	// the thread was created by this turn.
	ThreadID string

	// Answer is the generated answer with citations.
	Answer domain.Answer

	// Retrieved is the number of source chunks used in the prompt.
	Retrieved int
}
