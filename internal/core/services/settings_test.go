package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moatlabs/omaha/internal/core/domain"
	"github.com/moatlabs/omaha/internal/core/ports/driven"
)

// mapConfigStore is an in-memory driven.ConfigStore.
type mapConfigStore struct {
	values map[string]any
	setErr error
}

var _ driven.ConfigStore = (*mapConfigStore)(nil)

func newMapConfigStore() *mapConfigStore {
	return &mapConfigStore{values: make(map[string]any)}
}

func (m *mapConfigStore) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mapConfigStore) GetString(key string) string {
	if s, ok := m.values[key].(string); ok {
		return s
	}
	return ""
}

func (m *mapConfigStore) GetInt(key string) int {
	if i, ok := m.values[key].(int); ok {
		return i
	}
	return 0
}

func (m *mapConfigStore) GetBool(key string) bool {
	if b, ok := m.values[key].(bool); ok {
		return b
	}
	return false
}

func (m *mapConfigStore) Set(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mapConfigStore) Save() error { return nil }
func (m *mapConfigStore) Load() error { return nil }
func (m *mapConfigStore) Path() string {
	return "/tmp/omaha-test/config.toml"
}

func clearAIEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("DATABASE_URL", "")
}

func TestSettings_GetDefaults(t *testing.T) {
	clearAIEnv(t)
	svc := NewSettingsService(newMapConfigStore())

	settings := svc.Get()

	assert.Equal(t, domain.IndexBackendSQLite, settings.Index.Backend)
	assert.Equal(t, 1536, settings.Index.Dimensions)
	assert.Equal(t, 1000, settings.Chunker.Size)
	assert.Equal(t, 200, settings.Chunker.Overlap)
	assert.Equal(t, domain.DefaultTopK, settings.TopK)
	assert.Empty(t, settings.Embedding.Model)
	assert.Empty(t, settings.LLM.Model)
}

func TestSettings_GetReadsConfig(t *testing.T) {
	clearAIEnv(t)
	store := newMapConfigStore()
	require.NoError(t, store.Set("embedding.provider", "ollama"))
	require.NoError(t, store.Set("embedding.model", "nomic-embed-text"))
	require.NoError(t, store.Set("chunking.size", 500))
	require.NoError(t, store.Set("retrieval.top_k", 3))
	svc := NewSettingsService(store)

	settings := svc.Get()

	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
	assert.Equal(t, 500, settings.Chunker.Size)
	assert.Equal(t, 3, settings.TopK)
}

func TestSettings_DimensionsFollowModel(t *testing.T) {
	clearAIEnv(t)
	store := newMapConfigStore()
	require.NoError(t, store.Set("embedding.model", "nomic-embed-text"))
	svc := NewSettingsService(store)

	assert.Equal(t, 768, svc.Get().Index.Dimensions)

	require.NoError(t, store.Set("embedding.model", "text-embedding-3-large"))
	assert.Equal(t, 3072, svc.Get().Index.Dimensions)
}

func TestSettings_UnknownModelKeepsDefaultDimensions(t *testing.T) {
	clearAIEnv(t)
	store := newMapConfigStore()
	require.NoError(t, store.Set("embedding.model", "mystery-model"))
	svc := NewSettingsService(store)

	assert.Equal(t, 1536, svc.Get().Index.Dimensions)
}

func TestSettings_EnvironmentFallbacks(t *testing.T) {
	clearAIEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	store := newMapConfigStore()
	require.NoError(t, store.Set("embedding.provider", "openai"))
	require.NoError(t, store.Set("llm.provider", "openai"))
	svc := NewSettingsService(store)

	settings := svc.Get()
	assert.Equal(t, "sk-test", settings.Embedding.APIKey)
	assert.Equal(t, "sk-test", settings.LLM.APIKey)
}

func TestSettings_AnthropicEnvFallback(t *testing.T) {
	clearAIEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	store := newMapConfigStore()
	require.NoError(t, store.Set("llm.provider", "anthropic"))
	svc := NewSettingsService(store)

	assert.Equal(t, "sk-ant-test", svc.Get().LLM.APIKey)
}

func TestSettings_ConfigKeyWinsOverEnvironment(t *testing.T) {
	clearAIEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")
	store := newMapConfigStore()
	require.NoError(t, store.Set("llm.provider", "openai"))
	require.NoError(t, store.Set("llm.api_key", "sk-config"))
	svc := NewSettingsService(store)

	assert.Equal(t, "sk-config", svc.Get().LLM.APIKey)
}

func TestSettings_DatabaseURLSelectsPgvector(t *testing.T) {
	clearAIEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/omaha")
	svc := NewSettingsService(newMapConfigStore())

	settings := svc.Get()
	assert.Equal(t, domain.IndexBackendPgvector, settings.Index.Backend)
	assert.Equal(t, "postgres://localhost/omaha", settings.Index.DatabaseURL)
}

func TestSettings_SetEmbedding(t *testing.T) {
	clearAIEnv(t)
	store := newMapConfigStore()
	svc := NewSettingsService(store)

	require.NoError(t, svc.SetEmbedding(domain.AIProviderOllama, "", "http://localhost:11434", ""))

	assert.Equal(t, "ollama", store.GetString("embedding.provider"))
	assert.Equal(t, "nomic-embed-text", store.GetString("embedding.model"), "default model fills in")
	assert.Equal(t, "http://localhost:11434", store.GetString("embedding.base_url"))
	_, hasKey := store.Get("embedding.api_key")
	assert.False(t, hasKey, "empty API keys are not written")
}

func TestSettings_SetEmbedding_Validation(t *testing.T) {
	clearAIEnv(t)
	svc := NewSettingsService(newMapConfigStore())

	err := svc.SetEmbedding(domain.AIProvider("mistral"), "", "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = svc.SetEmbedding(domain.AIProviderAnthropic, "", "", "sk-x")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "anthropic has no embedding endpoint")

	err = svc.SetEmbedding(domain.AIProviderOpenAI, "", "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "openai needs a key from flag or environment")
}

func TestSettings_SetEmbedding_EnvKeySatisfiesRequirement(t *testing.T) {
	clearAIEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")
	svc := NewSettingsService(newMapConfigStore())

	assert.NoError(t, svc.SetEmbedding(domain.AIProviderOpenAI, "", "", ""))
}

func TestSettings_SetLLM(t *testing.T) {
	clearAIEnv(t)
	store := newMapConfigStore()
	svc := NewSettingsService(store)

	require.NoError(t, svc.SetLLM(domain.AIProviderAnthropic, "", "", "sk-ant-x"))

	assert.Equal(t, "anthropic", store.GetString("llm.provider"))
	assert.Equal(t, "claude-3-5-sonnet-latest", store.GetString("llm.model"))
	assert.Equal(t, "sk-ant-x", store.GetString("llm.api_key"))
}

func TestSettings_SetLLM_Validation(t *testing.T) {
	clearAIEnv(t)
	svc := NewSettingsService(newMapConfigStore())

	err := svc.SetLLM(domain.AIProvider("grok"), "", "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = svc.SetLLM(domain.AIProviderAnthropic, "", "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettings_SetChunking(t *testing.T) {
	store := newMapConfigStore()
	svc := NewSettingsService(store)

	require.NoError(t, svc.SetChunking(800, 100))
	assert.Equal(t, 800, store.GetInt("chunking.size"))
	assert.Equal(t, 100, store.GetInt("chunking.overlap"))

	assert.ErrorIs(t, svc.SetChunking(0, 0), domain.ErrInvalidInput)
	assert.ErrorIs(t, svc.SetChunking(100, 100), domain.ErrInvalidInput)
	assert.ErrorIs(t, svc.SetChunking(100, -1), domain.ErrInvalidInput)
}

func TestSettings_SetTopK(t *testing.T) {
	store := newMapConfigStore()
	svc := NewSettingsService(store)

	require.NoError(t, svc.SetTopK(8))
	assert.Equal(t, 8, store.GetInt("retrieval.top_k"))

	assert.ErrorIs(t, svc.SetTopK(0), domain.ErrInvalidInput)
}
