package cli

import (
	"errors"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/moatlabs/omaha/internal/core/domain"
	"github.com/moatlabs/omaha/internal/core/ports/driving"
)

var ingestWatch bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Index shareholder letters from a directory",
	Long: `Reads letter files (.pdf, .txt, .md, .html) from a directory,
extracts their text, chunks and embeds it, and writes the result to the
vector index. Re-running ingest on the same files replaces their
previous entries rather than duplicating them.

With --watch, keeps running and re-ingests files as they are created
or modified.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "keep watching the directory for changes")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	orchestrator := ingestOrchestrator
	if len(args) > 0 {
		if ingestFactory == nil {
			return errors.New("ingest service not configured")
		}
		orchestrator = ingestFactory(args[0])
	}
	if orchestrator == nil {
		return errors.New("ingest service not configured")
	}

	printInitWarnings(cmd)

	if ingestWatch {
		cmd.Println("Watching for letter changes. Press Ctrl-C to stop.")
		opts := driving.IngestOptions{
			Progress: func(result driving.FileResult, _, _ int) {
				if result.Err != nil {
					cmd.Printf("  %s: %v\n", result.SourceID, result.Err)
					return
				}
				cmd.Printf("  %s: %d chunks\n", result.SourceID, result.Chunks)
			},
		}
		return orchestrator.Watch(cmd.Context(), opts)
	}

	var bar *progressbar.ProgressBar
	opts := driving.IngestOptions{
		Progress: func(_ driving.FileResult, _, total int) {
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetWriter(cmd.OutOrStdout()),
					progressbar.OptionSetDescription("Ingesting letters"),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
			}
			bar.Add(1) //nolint:errcheck // progress display is best effort
		},
	}

	report, err := orchestrator.IngestAll(cmd.Context(), opts)
	if err != nil {
		if errors.Is(err, domain.ErrNoDocuments) {
			cmd.Println("No letter files found. Supported extensions: .pdf, .txt, .md, .html")
			return err
		}
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Ingested %d letters (%d chunks).\n", report.Processed, report.TotalChunks)
	if report.Failed > 0 {
		cmd.Printf("%d files failed:\n", report.Failed)
		for _, r := range report.Results {
			if r.Err != nil {
				cmd.Printf("  %s: %v\n", r.SourceID, r.Err)
			}
		}
	}

	if report.Processed == 0 {
		return fmt.Errorf("ingest failed: none of the %d files could be ingested", report.Failed)
	}

	return nil
}
