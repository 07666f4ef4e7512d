package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/moatlabs/omaha/internal/core/domain"
	"github.com/moatlabs/omaha/internal/core/ports/driven"
	"github.com/moatlabs/omaha/internal/core/ports/driving"
	"github.com/moatlabs/omaha/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerOrchestrator = (*AnswerService)(nil)

// maxTitleLength bounds thread titles derived from the first question.
const maxTitleLength = 60

// systemPrompt is the standing policy for answer generation.
const systemPrompt = `You are an assistant that answers questions about Warren Buffett's ` +
	`annual shareholder letters. Answer using only the excerpts provided in the ` +
	`context. When you draw on an excerpt, cite its letter year in parentheses, ` +
	`for example (1994). If the context does not contain the answer, say so ` +
	`plainly instead of guessing.`

// citationPattern matches year citations such as (1994) or (2020).
var citationPattern = regexp.MustCompile(`\((19|20)\d{2}\)`)

// AnswerService runs one question-answering turn through the
// Start → Decide → Retrieve → Compose → Generate state machine.
// Retrieval failures degrade the answer; generation failures abort it.
type AnswerService struct {
	threads   driven.ThreadStore
	retriever driving.Retriever
	llm       driven.LLMService

	// mu guards threadLocks. Turns on one thread are serialised so the
	// message log stays an ordered conversation; different threads
	// proceed concurrently.
	mu          sync.Mutex
	threadLocks map[string]*sync.Mutex
}

// NewAnswerService creates a new answer service. The LLM service may be
// nil, in which case every turn fails with domain.ErrLLMUnavailable.
func NewAnswerService(
	threads driven.ThreadStore,
	retriever driving.Retriever,
	llm driven.LLMService,
) *AnswerService {
	return &AnswerService{
		threads:     threads,
		retriever:   retriever,
		llm:         llm,
		threadLocks: make(map[string]*sync.Mutex),
	}
}

// Ask answers a question within a thread without streaming.
func (s *AnswerService) Ask(ctx context.Context, threadID, question string) (*driving.TurnResult, error) {
	return s.run(ctx, threadID, question, nil)
}

// AskStream answers a question, passing each generated delta to fn in
// model order as it arrives.
func (s *AnswerService) AskStream(
	ctx context.Context, threadID, question string, fn driven.StreamFunc,
) (*driving.TurnResult, error) {
	return s.run(ctx, threadID, question, fn)
}

// run executes one turn of the answer state machine.
func (s *AnswerService) run(
	ctx context.Context, threadID, question string, fn driven.StreamFunc,
) (*driving.TurnResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	thread, err := s.resolveThread(ctx, threadID, question)
	if err != nil {
		return nil, err
	}

	lock := s.lockFor(thread.ID)
	lock.Lock()
	defer lock.Unlock()

	state := domain.TurnStart
	logger.Debug("Turn %s: state=%s", thread.ID, state)

	history, err := s.threads.ListMessages(ctx, thread.ID)
	if err != nil {
		return nil, fmt.Errorf("loading thread history: %w", err)
	}

	// Decide: this domain always retrieves for a substantive question.
	state = domain.TurnDecide
	logger.Debug("Turn %s: state=%s", thread.ID, state)

	state = domain.TurnRetrieve
	logger.Debug("Turn %s: state=%s", thread.ID, state)

	retrieval := &domain.RetrievalResult{}
	if s.retriever != nil {
		retrieval, err = s.retriever.Retrieve(ctx, question, 0)
		if err != nil {
			// The retriever is fail-soft; treat a hard error the same way.
			logger.Warn("Turn %s: retrieval error: %v", thread.ID, err)
			retrieval = &domain.RetrievalResult{Degraded: true, Warning: err.Error()}
		}
	}
	if retrieval.Degraded {
		logger.Warn("Turn %s: degraded retrieval: %s", thread.ID, retrieval.Warning)
	}

	state = domain.TurnCompose
	logger.Debug("Turn %s: state=%s (%d chunks)", thread.ID, state, len(retrieval.Chunks))

	messages := s.compose(history, retrieval, question)

	if err := s.threads.AppendMessage(ctx, &domain.Message{
		ThreadID: thread.ID,
		Role:     domain.RoleUser,
		Content:  question,
	}); err != nil {
		return nil, fmt.Errorf("saving user message: %w", err)
	}

	state = domain.TurnGenerate
	logger.Debug("Turn %s: state=%s", thread.ID, state)

	text, err := s.generate(ctx, messages, fn)
	if err != nil {
		state = domain.TurnFailed
		logger.Warn("Turn %s: state=%s: %v", thread.ID, state, err)
		if !errors.Is(err, domain.ErrGeneration) && !errors.Is(err, context.Canceled) {
			err = fmt.Errorf("%w: %w", domain.ErrGeneration, err)
		}
		// The partial reply is discarded, not persisted.
		return nil, err
	}

	if err := s.threads.AppendMessage(ctx, &domain.Message{
		ThreadID: thread.ID,
		Role:     domain.RoleAssistant,
		Content:  text,
	}); err != nil {
		return nil, fmt.Errorf("saving assistant message: %w", err)
	}

	state = domain.TurnDone
	logger.Debug("Turn %s: state=%s", thread.ID, state)

	return &driving.TurnResult{
		ThreadID: thread.ID,
		Answer: domain.Answer{
			Text:      text,
			Citations: ExtractCitations(text),
			Degraded:  retrieval.Degraded || retrieval.Empty(),
		},
		Retrieved: len(retrieval.Chunks),
	}, nil
}

// resolveThread loads the thread, or creates one titled after the first
// question when threadID is empty.
func (s *AnswerService) resolveThread(ctx context.Context, threadID, question string) (*domain.Thread, error) {
	if threadID != "" {
		return s.threads.GetThread(ctx, threadID)
	}

	thread := &domain.Thread{
		ID:    uuid.New().String(),
		Title: truncateTitle(question),
	}
	if err := s.threads.SaveThread(ctx, thread); err != nil {
		return nil, fmt.Errorf("creating thread: %w", err)
	}
	return thread, nil
}

// lockFor returns the mutex serialising turns on one thread.
func (s *AnswerService) lockFor(threadID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.threadLocks[threadID]
	if !ok {
		lock = &sync.Mutex{}
		s.threadLocks[threadID] = lock
	}
	return lock
}

// compose builds the model conversation: policy, prior turns, then the
// question with its retrieved context.
func (s *AnswerService) compose(
	history []domain.Message, retrieval *domain.RetrievalResult, question string,
) []driven.ChatMessage {
	messages := make([]driven.ChatMessage, 0, len(history)+2)
	messages = append(messages, driven.ChatMessage{Role: "system", Content: systemPrompt})

	for _, msg := range history {
		messages = append(messages, driven.ChatMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	var b strings.Builder
	if retrieval.Empty() {
		b.WriteString("No letter excerpts were found for this question. ")
		b.WriteString("Say that the letters do not appear to cover it; do not invent citations.\n\n")
	} else {
		b.WriteString("Context from the shareholder letters:\n\n")
		for _, chunk := range retrieval.Chunks {
			if chunk.Year != "" {
				fmt.Fprintf(&b, "[%s letter (%s)]\n", chunk.Year, chunk.Year)
			} else {
				fmt.Fprintf(&b, "[%s]\n", chunk.SourceID)
			}
			b.WriteString(chunk.Content)
			b.WriteString("\n\n")
		}
	}
	b.WriteString("Question: ")
	b.WriteString(question)

	return append(messages, driven.ChatMessage{Role: "user", Content: b.String()})
}

// generate runs the model call, streaming when fn is set.
func (s *AnswerService) generate(
	ctx context.Context, messages []driven.ChatMessage, fn driven.StreamFunc,
) (string, error) {
	opts := driven.ChatOptions{}
	if fn == nil {
		return s.llm.Chat(ctx, messages, opts)
	}
	return s.llm.ChatStream(ctx, messages, opts, fn)
}

// ExtractCitations returns the deduplicated year citations in text, in
// order of first appearance, e.g. ["(1994)", "(2008)"].
func ExtractCitations(text string) []string {
	matches := citationPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	citations := make([]string, 0, len(matches))
	for _, m := range matches {
		if !seen[m] {
			seen[m] = true
			citations = append(citations, m)
		}
	}
	return citations
}

// truncateTitle derives a thread title from the first question.
func truncateTitle(question string) string {
	runes := []rune(question)
	if len(runes) <= maxTitleLength {
		return question
	}
	return string(runes[:maxTitleLength-1]) + "…"
}
