package mcp

import (
	"github.com/moatlabs/omaha/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retriever finds letter passages relevant to a query.
	Retriever driving.Retriever

	// Answer runs full question-answering turns. Optional; without it
	// only the search tool is exposed.
	Answer driving.AnswerOrchestrator

	// Threads exposes stored conversations as resources. Optional.
	Threads driving.ThreadManager
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Retriever == nil {
		return ErrMissingRetriever
	}
	// Answer and Threads are optional
	return nil
}
