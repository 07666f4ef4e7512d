package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	server, err := NewServer(&Ports{Retriever: &mockRetriever{}})

	require.NoError(t, err)
	assert.NotNil(t, server)
}

func TestNewServer_RequiresRetriever(t *testing.T) {
	_, err := NewServer(&Ports{})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingRetriever)
}

func TestNewServer_AnswerAndThreadsOptional(t *testing.T) {
	server, err := NewServer(&Ports{
		Retriever: &mockRetriever{},
		Answer:    &mockAnswer{},
		Threads:   &mockThreads{},
	})

	require.NoError(t, err)
	assert.NotNil(t, server)
}
