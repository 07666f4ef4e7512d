package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moatlabs/omaha/internal/core/domain"
)

var threadsCmd = &cobra.Command{
	Use:   "threads",
	Short: "Manage conversation threads",
	Long:  `List, inspect and delete stored conversations.`,
	RunE:  runThreadsList,
}

var threadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List threads, most recent first",
	RunE:  runThreadsList,
}

var threadsShowCmd = &cobra.Command{
	Use:   "show [thread-id]",
	Short: "Show a thread's messages",
	Args:  cobra.ExactArgs(1),
	RunE:  runThreadsShow,
}

var threadsRemoveCmd = &cobra.Command{
	Use:   "rm [thread-id]",
	Short: "Delete a thread and its messages",
	Args:  cobra.ExactArgs(1),
	RunE:  runThreadsRemove,
}

func init() {
	threadsCmd.AddCommand(threadsListCmd)
	threadsCmd.AddCommand(threadsShowCmd)
	threadsCmd.AddCommand(threadsRemoveCmd)
	rootCmd.AddCommand(threadsCmd)
}

func runThreadsList(cmd *cobra.Command, _ []string) error {
	if threadService == nil {
		return errors.New("thread service not configured")
	}

	threads, err := threadService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list threads: %w", err)
	}

	if len(threads) == 0 {
		cmd.Println("No threads yet. Start one with 'omaha ask' or 'omaha chat'.")
		return nil
	}

	cmd.Println("Threads:")
	for _, t := range threads {
		title := t.Title
		if title == "" {
			title = "(untitled)"
		}
		cmd.Printf("  %s  %s  %s\n", t.ID, t.UpdatedAt.Format("2006-01-02 15:04"), title)
	}

	return nil
}

func runThreadsShow(cmd *cobra.Command, args []string) error {
	if threadService == nil {
		return errors.New("thread service not configured")
	}

	ctx := cmd.Context()
	thread, err := threadService.Get(ctx, args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("thread %s not found", args[0])
		}
		return fmt.Errorf("failed to load thread: %w", err)
	}

	messages, err := threadService.Messages(ctx, thread.ID)
	if err != nil {
		return fmt.Errorf("failed to load messages: %w", err)
	}

	cmd.Printf("Thread: %s\n", thread.Title)
	cmd.Println()
	for _, m := range messages {
		switch m.Role {
		case domain.RoleUser:
			cmd.Printf("You: %s\n\n", m.Content)
		case domain.RoleAssistant:
			cmd.Printf("Omaha: %s\n\n", m.Content)
		}
	}

	return nil
}

func runThreadsRemove(cmd *cobra.Command, args []string) error {
	if threadService == nil {
		return errors.New("thread service not configured")
	}

	if err := threadService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete thread: %w", err)
	}

	cmd.Printf("Deleted thread: %s\n", args[0])
	return nil
}
