package services

import (
	"fmt"
	"os"

	"github.com/moatlabs/omaha/internal/core/domain"
	"github.com/moatlabs/omaha/internal/core/ports/driven"
	"github.com/moatlabs/omaha/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsManager = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedAPIKey   = "embedding.api_key"
	keyLLMProvider   = "llm.provider"
	keyLLMModel      = "llm.model"
	keyLLMBaseURL    = "llm.base_url"
	keyLLMAPIKey     = "llm.api_key"
	keyChunkSize     = "chunking.size"
	keyChunkOverlap  = "chunking.overlap"
	keyTopK          = "retrieval.top_k"
)

// SettingsService manages application settings. Values come from the
// config file, with environment variables (OPENAI_API_KEY,
// ANTHROPIC_API_KEY, DATABASE_URL) filling unset credentials.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get returns the current application settings.
func (s *SettingsService) Get() domain.AppSettings {
	defaults := domain.DefaultAppSettings()

	settings := domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.configStore.GetString(keyEmbedModel),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL),
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.configStore.GetString(keyLLMModel),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Index: defaults.Index,
		Chunker: domain.ChunkerSettings{
			Size:    s.getInt(keyChunkSize, defaults.Chunker.Size),
			Overlap: s.getInt(keyChunkOverlap, defaults.Chunker.Overlap),
		},
		TopK: s.getInt(keyTopK, defaults.TopK),
	}

	s.applyEnvironment(&settings)

	// The index dimension follows the embedding model.
	if d, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
		settings.Index.Dimensions = d
	}

	return settings
}

// applyEnvironment fills unset credentials from the environment.
func (s *SettingsService) applyEnvironment(settings *domain.AppSettings) {
	if settings.Embedding.APIKey == "" && settings.Embedding.Provider == domain.AIProviderOpenAI {
		settings.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if settings.LLM.APIKey == "" {
		switch settings.LLM.Provider {
		case domain.AIProviderOpenAI:
			settings.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case domain.AIProviderAnthropic:
			settings.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		settings.Index.Backend = domain.IndexBackendPgvector
		settings.Index.DatabaseURL = url
	}
}

// SetEmbedding configures the embedding provider and model.
func (s *SettingsService) SetEmbedding(provider domain.AIProvider, model, endpoint, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, provider)
	}

	supported := false
	for _, p := range domain.AllEmbeddingProviders() {
		if p == provider {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, provider)
	}

	if provider.RequiresAPIKey() && apiKey == "" && os.Getenv("OPENAI_API_KEY") == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	if model == "" {
		model = domain.DefaultEmbeddingModels()[provider]
	}

	if err := s.configStore.Set(keyEmbedProvider, provider.String()); err != nil {
		return fmt.Errorf("save embedding provider: %w", err)
	}
	if err := s.configStore.Set(keyEmbedModel, model); err != nil {
		return fmt.Errorf("save embedding model: %w", err)
	}
	if err := s.configStore.Set(keyEmbedBaseURL, endpoint); err != nil {
		return fmt.Errorf("save embedding base_url: %w", err)
	}
	if apiKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, apiKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	return nil
}

// SetLLM configures the language model provider and model.
func (s *SettingsService) SetLLM(provider domain.AIProvider, model, endpoint, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, provider)
	}

	if provider.RequiresAPIKey() && apiKey == "" {
		envKey := "OPENAI_API_KEY"
		if provider == domain.AIProviderAnthropic {
			envKey = "ANTHROPIC_API_KEY"
		}
		if os.Getenv(envKey) == "" {
			return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
		}
	}

	if model == "" {
		model = domain.DefaultLLMModels()[provider]
	}

	if err := s.configStore.Set(keyLLMProvider, provider.String()); err != nil {
		return fmt.Errorf("save llm provider: %w", err)
	}
	if err := s.configStore.Set(keyLLMModel, model); err != nil {
		return fmt.Errorf("save llm model: %w", err)
	}
	if err := s.configStore.Set(keyLLMBaseURL, endpoint); err != nil {
		return fmt.Errorf("save llm base_url: %w", err)
	}
	if apiKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, apiKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}
	return nil
}

// SetChunking configures chunk size and overlap.
func (s *SettingsService) SetChunking(size, overlap int) error {
	if size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive", domain.ErrInvalidInput)
	}
	if overlap < 0 || overlap >= size {
		return fmt.Errorf("%w: overlap must be in [0, size)", domain.ErrInvalidInput)
	}

	if err := s.configStore.Set(keyChunkSize, size); err != nil {
		return fmt.Errorf("save chunk size: %w", err)
	}
	if err := s.configStore.Set(keyChunkOverlap, overlap); err != nil {
		return fmt.Errorf("save chunk overlap: %w", err)
	}
	return nil
}

// SetTopK configures the default retrieval depth.
func (s *SettingsService) SetTopK(topK int) error {
	if topK <= 0 {
		return fmt.Errorf("%w: top_k must be positive", domain.ErrInvalidInput)
	}
	if err := s.configStore.Set(keyTopK, topK); err != nil {
		return fmt.Errorf("save top_k: %w", err)
	}
	return nil
}

// Path returns the configuration file path.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
