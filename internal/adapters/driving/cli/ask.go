package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	askThreadID string
	askNoStream bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the letters",
	Long: `Asks a single question and prints the answer with year citations.

The question and answer are stored in a conversation thread. Pass
--thread to continue an existing conversation; otherwise a new thread
is created, titled after the question.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askThreadID, "thread", "t", "", "thread ID to continue")
	askCmd.Flags().BoolVar(&askNoStream, "no-stream", false, "print the answer only when complete")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	printInitWarnings(cmd)

	question := args[0]
	ctx := cmd.Context()

	if askNoStream {
		result, err := answerService.Ask(ctx, askThreadID, question)
		if err != nil {
			return fmt.Errorf("ask failed: %w", err)
		}
		cmd.Println(result.Answer.Text)
		printTurnFooter(cmd, result.Answer.Degraded, result.Answer.Citations, result.ThreadID)
		return nil
	}

	result, err := answerService.AskStream(ctx, askThreadID, question, func(delta string) error {
		cmd.Print(delta)
		return nil
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}
	cmd.Println()
	printTurnFooter(cmd, result.Answer.Degraded, result.Answer.Citations, result.ThreadID)

	return nil
}

func printTurnFooter(cmd *cobra.Command, degraded bool, citations []string, threadID string) {
	if degraded {
		cmd.Println("\nNote: answered without letter sources; retrieval was unavailable or empty.")
	}
	if len(citations) > 0 {
		cmd.Printf("\nCited letters: %s\n", strings.Join(citations, ", "))
	}
	cmd.Printf("Thread: %s\n", threadID)
}
