// Package tui provides the interactive chat terminal interface for omaha.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/moatlabs/omaha/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Answer runs question-answering turns.
	Answer driving.AnswerOrchestrator

	// Threads manages conversation threads.
	Threads driving.ThreadManager
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(answer driving.AnswerOrchestrator, threads driving.ThreadManager) *Ports {
	return &Ports{
		Answer:  answer,
		Threads: threads,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	// Threads is optional; without it the chat simply starts fresh.
	return nil
}
