package services

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragdesk/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

type mockAIValidator struct {
	embeddingErr error
	llmErr       error
	embedding    *domain.EmbeddingSettings
	llm          *domain.LLMSettings
}

func (m *mockAIValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	m.embedding = config
	return m.embeddingErr
}

func (m *mockAIValidator) ValidateLLM(config *domain.LLMSettings) error {
	m.llm = config
	return m.llmErr
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAppSettings(), *settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		"llm.provider":     "anthropic",
		"llm.api_key":      "sk-ant",
		"index.docs_dir":   "/srv/docs",
		"index.extensions": []any{".md", ".txt"},
		"chunking.size":    int64(400),
		"retrieval.top_k":  2.0,
		"provider.timeout": "30s",
	})
	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderAnthropic, settings.LLM.Provider)
	assert.Equal(t, "claude-3-5-haiku-latest", settings.LLM.Model)
	assert.Equal(t, "sk-ant", settings.LLM.APIKey)
	assert.Equal(t, "/srv/docs", settings.Index.DocsDir)
	assert.Equal(t, []string{".md", ".txt"}, settings.Index.Extensions)
	assert.Equal(t, 400, settings.Chunking.Size)
	assert.Equal(t, 2, settings.Retrieval.TopK)
	assert.Equal(t, 30*time.Second, settings.ProviderTimeout)
}

func TestSettingsService_Get_MarkerFollowsStoreDir(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{"index.store_dir": "/var/ragdesk"})
	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/var/ragdesk", domain.DefaultMarkerFile), settings.Index.MarkerPath)
}

func TestSettingsService_Get_InvalidStoredValuesFallBack(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		"embedding.provider": "cohere",
		"index.backend":      "chroma",
		"watch.debounce":     "soon",
	})
	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, domain.StoreBackendSQLite, settings.Index.Backend)
	assert.Equal(t, domain.DefaultWatchDebounce, settings.WatchDebounce)
}

func TestSettingsService_SaveThenGet(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	want := domain.DefaultAppSettings()
	want.Embedding.Provider = domain.AIProviderOpenAI
	want.Embedding.Model = "text-embedding-3-large"
	want.Embedding.APIKey = "sk-test"
	want.Embedding.RequestsPerSecond = 2.5
	want.Index.Backend = domain.StoreBackendBolt
	want.Chunking.Overlap = 0
	want.WatchDebounce = 500 * time.Millisecond

	require.NoError(t, service.Save(&want))

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestSettingsService_Set(t *testing.T) {
	tests := []struct {
		key   string
		value string
		check func(t *testing.T, s *domain.AppSettings)
	}{
		{"chunking.size", "512", func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, 512, s.Chunking.Size)
		}},
		{"llm.temperature", "0.7", func(t *testing.T, s *domain.AppSettings) {
			assert.InDelta(t, 0.7, s.LLM.Temperature, 1e-9)
		}},
		{"index.extensions", ".md, .txt ,", func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, []string{".md", ".txt"}, s.Index.Extensions)
		}},
		{"index.backend", "BOLT", func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, domain.StoreBackendBolt, s.Index.Backend)
		}},
		{"provider.timeout", "45s", func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, 45*time.Second, s.ProviderTimeout)
		}},
		{"llm.provider", "openai", func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, domain.AIProviderOpenAI, s.LLM.Provider)
			assert.Equal(t, "gpt-4o-mini", s.LLM.Model)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore(), nil)

			require.NoError(t, service.Set(tt.key, tt.value))

			settings, err := service.Get()
			require.NoError(t, err)
			tt.check(t, settings)
		})
	}
}

func TestSettingsService_Set_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown key", "search.mode", "hybrid"},
		{"bad int", "chunking.size", "big"},
		{"bad float", "llm.temperature", "warm"},
		{"bad duration", "provider.timeout", "10"},
		{"negative duration", "watch.debounce", "-1s"},
		{"empty list", "index.extensions", " , "},
		{"bad provider", "embedding.provider", "cohere"},
		{"bad backend", "index.backend", "chroma"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore(), nil)

			err := service.Set(tt.key, tt.value)

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestSettingsService_Validate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		service := NewSettingsService(memory.NewConfigStore(), nil)
		assert.NoError(t, service.Validate())
	})

	t.Run("openai without key", func(t *testing.T) {
		store := memory.NewConfigStore(map[string]any{"llm.provider": "openai"})
		service := NewSettingsService(store, nil)

		err := service.Validate()

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)
	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}

func TestSettingsService_ValidateProviderConfig(t *testing.T) {
	validator := &mockAIValidator{llmErr: errors.New("connection refused")}
	store := memory.NewConfigStore(map[string]any{"embedding.model": "all-minilm"})
	service := NewSettingsService(store, validator)

	require.NoError(t, service.ValidateEmbeddingConfig())
	require.NotNil(t, validator.embedding)
	assert.Equal(t, "all-minilm", validator.embedding.Model)

	err := service.ValidateLLMConfig()
	assert.EqualError(t, err, "connection refused")
	require.NotNil(t, validator.llm)
	assert.Equal(t, domain.AIProviderOllama, validator.llm.Provider)
}

func TestSettingsService_ValidateProviderConfig_NoValidator(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	assert.NoError(t, service.ValidateEmbeddingConfig())
	assert.NoError(t, service.ValidateLLMConfig())
}

func TestSettingKeys_Sorted(t *testing.T) {
	keys := SettingKeys()

	assert.IsIncreasing(t, keys)
	assert.Contains(t, keys, "retrieval.top_k")
	assert.NotContains(t, keys, "search.mode")
}
