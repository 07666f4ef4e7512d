// Command omaha is a retrieval-augmented chat over Warren Buffett's
// annual shareholder letters.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/moatlabs/omaha/internal/adapters/driven/ai"
	configfile "github.com/moatlabs/omaha/internal/adapters/driven/config/file"
	"github.com/moatlabs/omaha/internal/adapters/driven/storage/sqlite"
	"github.com/moatlabs/omaha/internal/adapters/driving/cli"
	"github.com/moatlabs/omaha/internal/connectors/filesystem"
	"github.com/moatlabs/omaha/internal/core/ports/driving"
	"github.com/moatlabs/omaha/internal/core/services"
	"github.com/moatlabs/omaha/internal/extractors"
	"github.com/moatlabs/omaha/internal/extractors/html"
	"github.com/moatlabs/omaha/internal/extractors/pdf"
	"github.com/moatlabs/omaha/internal/extractors/plaintext"
	"github.com/moatlabs/omaha/internal/postprocessors"
)

func main() {
	// Best effort; a missing .env file is fine.
	godotenv.Load() //nolint:errcheck

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	settingsService := services.NewSettingsService(configStore)
	settings := settingsService.Get()

	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("opening metadata store: %w", err)
	}
	defer store.Close() //nolint:errcheck

	aiServices := ai.Initialise(settings)
	defer aiServices.Close()

	retriever := services.NewRetrievalService(
		aiServices.EmbeddingService, aiServices.VectorIndex, settings.TopK)
	answer := services.NewAnswerService(
		store.ThreadStore(), retriever, aiServices.LLMService)
	threads := services.NewThreadService(store.ThreadStore())

	registry := extractors.NewRegistry(plaintext.New(), html.New(), pdf.New())
	pipeline, err := postprocessors.DefaultPipeline(settings.Chunker)
	if err != nil {
		return fmt.Errorf("building chunking pipeline: %w", err)
	}

	ingestFor := func(dir string) driving.IngestOrchestrator {
		return services.NewIngestService(
			filesystem.New(dir),
			registry,
			pipeline,
			store.DocumentStore(),
			aiServices.EmbeddingService,
			aiServices.VectorIndex,
		)
	}

	cli.SetDependencies(&cli.Dependencies{
		Ingest:    ingestFor(defaultLettersDir()),
		IngestFor: ingestFor,
		Answer:    answer,
		Retriever: retriever,
		Threads:   threads,
		Settings:  settingsService,
		Warnings:  aiServices.Warnings,
	})

	return cli.Execute()
}

// defaultLettersDir is where `omaha ingest` looks without an explicit
// directory argument.
func defaultLettersDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "letters"
	}
	return filepath.Join(home, ".omaha", "letters")
}
