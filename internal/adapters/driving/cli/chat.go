package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/moatlabs/omaha/internal/adapters/driving/tui"
)

var chatThreadID string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat about the letters",
	Long: `Launch the interactive chat interface. Answers stream in as they are
generated and cite letter years like (1994).

Controls:
  Enter - Send question
  Esc   - Cancel generation / quit
  Ctrl-C - Quit`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatThreadID, "thread", "t", "", "thread ID to resume")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	// Recover with a stack trace rather than leaving the terminal broken.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in chat: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	printInitWarnings(cmd)

	app, err := tui.NewApp(tui.NewPorts(answerService, threadService))
	if err != nil {
		return fmt.Errorf("failed to create chat UI: %w", err)
	}

	app.WithContext(cmd.Context())
	if chatThreadID != "" {
		app.WithThread(chatThreadID)
	}

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat UI error: %w", err)
	}

	return nil
}
