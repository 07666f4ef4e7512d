package driving

import "github.com/moatlabs/omaha/internal/core/domain"

// SettingsManager exposes configuration operations to the CLI.
type SettingsManager interface {
	// Get returns the current application settings.
	Get() domain.AppSettings

	// SetEmbedding configures the embedding provider and model.
	SetEmbedding(provider domain.AIProvider, model, endpoint, apiKey string) error

	// SetLLM configures the language model provider and model.
	SetLLM(provider domain.AIProvider, model, endpoint, apiKey string) error

	// SetChunking configures chunk size and overlap. Overlap must be
	// smaller than size.
	SetChunking(size, overlap int) error

	// SetTopK configures the default retrieval depth.
	SetTopK(topK int) error

	// Path returns the configuration file path.
	Path() string
}
