package driven

import "context"

// LLMService provides language model operations for answer generation.
//
// Implementations may include:
//   - OpenAI (GPT-4o family)
//   - Anthropic (Claude)
//   - Ollama (local models)
type LLMService interface {
	// Chat conducts a multi-turn conversation and returns the full reply.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ChatStream conducts a conversation in streaming mode. Each partial
	// output token is passed to fn in the order produced by the model;
	// no reordering or buffering. The full reply is returned once the
	// stream ends. If fn returns an error the stream is terminated early
	// and that error is returned.
	ChatStream(ctx context.Context, messages []ChatMessage, opts ChatOptions, fn StreamFunc) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// StreamFunc receives one streamed output delta.
type StreamFunc func(delta string) error

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
