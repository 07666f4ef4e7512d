// Package cli implements the omaha command-line interface.
// It is a driving adapter: commands call core services through the
// driving ports and hold no business logic of their own.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/moatlabs/omaha/internal/core/ports/driving"
	"github.com/moatlabs/omaha/internal/logger"
)

// version is the omaha release version.
var version = "0.1.0"

// Services wired in by the composition root before Execute.
var (
	ingestOrchestrator driving.IngestOrchestrator
	answerService      driving.AnswerOrchestrator
	retrievalService   driving.Retriever
	threadService      driving.ThreadManager
	settingsService    driving.SettingsManager

	// ingestFactory builds an orchestrator over a specific letters
	// directory, for `omaha ingest [dir]` with an explicit argument.
	ingestFactory func(dir string) driving.IngestOrchestrator

	// initWarnings carries non-fatal initialisation problems (an AI
	// provider that failed its ping, for example). Commands that need
	// the affected service surface them.
	initWarnings []string
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "omaha",
	Short: "Chat with Warren Buffett's shareholder letters",
	Long: `Omaha ingests Warren Buffett's annual shareholder letters, indexes
them for semantic search, and answers questions about them with
year citations like (1994).

Typical workflow:
  omaha settings embedding   configure an embedding provider
  omaha settings llm         configure a language model
  omaha ingest ./letters     index the letters directory
  omaha chat                 start an interactive conversation`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Dependencies aggregates everything the CLI needs from the
// composition root.
type Dependencies struct {
	Ingest    driving.IngestOrchestrator
	Answer    driving.AnswerOrchestrator
	Retriever driving.Retriever
	Threads   driving.ThreadManager
	Settings  driving.SettingsManager

	// IngestFor builds an orchestrator over an explicit directory.
	IngestFor func(dir string) driving.IngestOrchestrator

	// Warnings are non-fatal initialisation problems to surface.
	Warnings []string
}

// SetDependencies installs the wired services. Call before Execute.
func SetDependencies(deps *Dependencies) {
	if deps == nil {
		return
	}
	ingestOrchestrator = deps.Ingest
	ingestFactory = deps.IngestFor
	answerService = deps.Answer
	retrievalService = deps.Retriever
	threadService = deps.Threads
	settingsService = deps.Settings
	initWarnings = deps.Warnings
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// printInitWarnings writes any initialisation warnings to the command
// output. Commands that depend on a degraded service call this first.
func printInitWarnings(cmd *cobra.Command) {
	for _, w := range initWarnings {
		cmd.Printf("Warning: %s\n", w)
	}
}
