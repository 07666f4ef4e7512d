package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moatlabs/omaha/internal/core/domain"
	"github.com/moatlabs/omaha/internal/core/ports/driven"
)

// fakeLLM replays a canned reply and records the messages it was given.
type fakeLLM struct {
	reply    string
	err      error
	received []driven.ChatMessage
}

var _ driven.LLMService = (*fakeLLM)(nil)

func (f *fakeLLM) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	f.received = messages
	return f.reply, f.err
}

func (f *fakeLLM) ChatStream(
	_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions, fn driven.StreamFunc,
) (string, error) {
	f.received = messages
	if f.err != nil {
		return "", f.err
	}
	// Stream word by word to exercise delta accumulation.
	for _, word := range strings.SplitAfter(f.reply, " ") {
		if err := fn(word); err != nil {
			return "", err
		}
	}
	return f.reply, nil
}

func (f *fakeLLM) ModelName() string          { return "fake-llm" }
func (f *fakeLLM) Ping(context.Context) error { return nil }
func (f *fakeLLM) Close() error               { return nil }

// fixedRetriever returns the same result for every question.
type fixedRetriever struct {
	result *domain.RetrievalResult
	err    error
}

func (f *fixedRetriever) Retrieve(context.Context, string, int) (*domain.RetrievalResult, error) {
	return f.result, f.err
}

func retrieverWith(chunks ...domain.RetrievedChunk) *fixedRetriever {
	return &fixedRetriever{result: &domain.RetrievalResult{Chunks: chunks}}
}

func TestAsk(t *testing.T) {
	threads := newMemThreadStore()
	llm := &fakeLLM{reply: "Buffett describes See's Candies as a moat business (1994)."}
	retriever := retrieverWith(domain.RetrievedChunk{
		Content: "See's Candies has pricing power.", SourceID: "1994.txt", Year: "1994",
	})
	svc := NewAnswerService(threads, retriever, llm)

	result, err := svc.Ask(context.Background(), "", "What did Buffett say about See's?")
	require.NoError(t, err)

	assert.NotEmpty(t, result.ThreadID)
	assert.Equal(t, llm.reply, result.Answer.Text)
	assert.Equal(t, []string{"(1994)"}, result.Answer.Citations)
	assert.False(t, result.Answer.Degraded)
	assert.Equal(t, 1, result.Retrieved)

	thread, err := threads.GetThread(context.Background(), result.ThreadID)
	require.NoError(t, err)
	assert.Equal(t, "What did Buffett say about See's?", thread.Title)

	messages, err := threads.ListMessages(context.Background(), result.ThreadID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, domain.RoleUser, messages[0].Role)
	assert.Equal(t, "What did Buffett say about See's?", messages[0].Content)
	assert.Equal(t, domain.RoleAssistant, messages[1].Role)
	assert.Equal(t, llm.reply, messages[1].Content)
}

func TestAsk_ComposesContext(t *testing.T) {
	llm := &fakeLLM{reply: "ok"}
	retriever := retrieverWith(domain.RetrievedChunk{
		Content: "Float is money we hold but don't own.", SourceID: "1997.txt", Year: "1997",
	})
	svc := NewAnswerService(newMemThreadStore(), retriever, llm)

	_, err := svc.Ask(context.Background(), "", "What is float?")
	require.NoError(t, err)

	require.NotEmpty(t, llm.received)
	assert.Equal(t, "system", llm.received[0].Role)

	last := llm.received[len(llm.received)-1]
	assert.Equal(t, "user", last.Role)
	assert.Contains(t, last.Content, "1997 letter (1997)")
	assert.Contains(t, last.Content, "Float is money we hold but don't own.")
	assert.Contains(t, last.Content, "Question: What is float?")
}

func TestAsk_ExistingThreadCarriesHistory(t *testing.T) {
	threads := newMemThreadStore()
	llm := &fakeLLM{reply: "second answer"}
	svc := NewAnswerService(threads, retrieverWith(), llm)

	first, err := svc.Ask(context.Background(), "", "first question")
	require.NoError(t, err)

	_, err = svc.Ask(context.Background(), first.ThreadID, "second question")
	require.NoError(t, err)

	// Prior user and assistant turns precede the new composed question.
	roles := make([]string, 0, len(llm.received))
	for _, m := range llm.received {
		roles = append(roles, m.Role)
	}
	assert.Equal(t, []string{"system", "user", "assistant", "user"}, roles)

	messages, err := threads.ListMessages(context.Background(), first.ThreadID)
	require.NoError(t, err)
	assert.Len(t, messages, 4)
}

func TestAsk_UnknownThread(t *testing.T) {
	svc := NewAnswerService(newMemThreadStore(), retrieverWith(), &fakeLLM{reply: "x"})

	_, err := svc.Ask(context.Background(), "no-such-thread", "question")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAsk_EmptyQuestion(t *testing.T) {
	svc := NewAnswerService(newMemThreadStore(), retrieverWith(), &fakeLLM{reply: "x"})

	_, err := svc.Ask(context.Background(), "", "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAsk_NoLLM(t *testing.T) {
	svc := NewAnswerService(newMemThreadStore(), retrieverWith(), nil)

	_, err := svc.Ask(context.Background(), "", "question")
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestAsk_EmptyRetrievalStillAnswers(t *testing.T) {
	llm := &fakeLLM{reply: "The letters do not appear to cover this."}
	svc := NewAnswerService(newMemThreadStore(), retrieverWith(), llm)

	result, err := svc.Ask(context.Background(), "", "What about quantum computing?")
	require.NoError(t, err)

	assert.True(t, result.Answer.Degraded)
	assert.Zero(t, result.Retrieved)
	assert.Nil(t, result.Answer.Citations)

	last := llm.received[len(llm.received)-1]
	assert.Contains(t, last.Content, "do not invent citations")
}

func TestAsk_DegradedRetrieval(t *testing.T) {
	retriever := &fixedRetriever{result: &domain.RetrievalResult{
		Degraded: true, Warning: "embedding service not configured",
	}}
	svc := NewAnswerService(newMemThreadStore(), retriever, &fakeLLM{reply: "best effort"})

	result, err := svc.Ask(context.Background(), "", "question")
	require.NoError(t, err)
	assert.True(t, result.Answer.Degraded)
}

func TestAsk_RetrieverHardErrorDegrades(t *testing.T) {
	retriever := &fixedRetriever{err: errors.New("index on fire")}
	svc := NewAnswerService(newMemThreadStore(), retriever, &fakeLLM{reply: "still answering"})

	result, err := svc.Ask(context.Background(), "", "question")
	require.NoError(t, err, "retrieval failure must not abort the turn")
	assert.True(t, result.Answer.Degraded)
	assert.Equal(t, "still answering", result.Answer.Text)
}

func TestAsk_GenerationFailureNotPersisted(t *testing.T) {
	threads := newMemThreadStore()
	llm := &fakeLLM{err: errors.New("model overloaded")}
	svc := NewAnswerService(threads, retrieverWith(), llm)

	_, err := svc.Ask(context.Background(), "", "a doomed question")
	require.ErrorIs(t, err, domain.ErrGeneration)

	// The failed turn left only the user message behind.
	all, listErr := threads.ListThreads(context.Background())
	require.NoError(t, listErr)
	require.Len(t, all, 1)
	messages, listErr := threads.ListMessages(context.Background(), all[0].ID)
	require.NoError(t, listErr)
	require.Len(t, messages, 1)
	assert.Equal(t, domain.RoleUser, messages[0].Role)
}

func TestAskStream(t *testing.T) {
	threads := newMemThreadStore()
	llm := &fakeLLM{reply: "Moats protect returns (2020)."}
	svc := NewAnswerService(threads, retrieverWith(domain.RetrievedChunk{
		Content: "moat talk", SourceID: "2020.txt", Year: "2020",
	}), llm)

	var streamed strings.Builder
	result, err := svc.AskStream(context.Background(), "", "What protects returns?",
		func(delta string) error {
			streamed.WriteString(delta)
			return nil
		})
	require.NoError(t, err)

	assert.Equal(t, llm.reply, streamed.String(), "deltas reassemble into the full reply")
	assert.Equal(t, llm.reply, result.Answer.Text)
	assert.Equal(t, []string{"(2020)"}, result.Answer.Citations)
}

func TestAsk_TitleTruncation(t *testing.T) {
	threads := newMemThreadStore()
	svc := NewAnswerService(threads, retrieverWith(), &fakeLLM{reply: "x"})

	long := strings.Repeat("why ", 40)
	result, err := svc.Ask(context.Background(), "", long)
	require.NoError(t, err)

	thread, err := threads.GetThread(context.Background(), result.ThreadID)
	require.NoError(t, err)
	assert.LessOrEqual(t, len([]rune(thread.Title)), maxTitleLength)
	assert.True(t, strings.HasSuffix(thread.Title, "…"))
}

func TestExtractCitations(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			"single citation",
			"Buffett discussed this in his letter (1994).",
			[]string{"(1994)"},
		},
		{
			"deduplicated in first-appearance order",
			"First (2008), then (1994), then (2008) again.",
			[]string{"(2008)", "(1994)"},
		},
		{
			"no citations",
			"The letters do not cover this topic.",
			nil,
		},
		{
			"ignores non-year parentheticals",
			"Berkshire (BRK.A) grew by 20% (roughly).",
			nil,
		},
		{
			"ignores implausible years",
			"Some event in (1812) and (2150).",
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCitations(tt.text))
		})
	}
}
