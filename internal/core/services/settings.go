package services

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driven"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedAPIKey   = "embedding.api_key"
	keyEmbedRate     = "embedding.requests_per_second"
	keyEmbedBurst    = "embedding.burst"
	keyEmbedBatch    = "embedding.batch_size"
	keyLLMProvider   = "llm.provider"
	keyLLMModel      = "llm.model"
	keyLLMBaseURL    = "llm.base_url"
	keyLLMAPIKey     = "llm.api_key"
	keyLLMTemp       = "llm.temperature"
	keyLLMMaxTokens  = "llm.max_tokens"
	keyDocsDir       = "index.docs_dir"
	keyExtensions    = "index.extensions"
	keyStoreDir      = "index.store_dir"
	keyBackend       = "index.backend"
	keyMarkerPath    = "index.marker_path"
	keyChunkSize     = "chunking.size"
	keyChunkOverlap  = "chunking.overlap"
	keyTopK          = "retrieval.top_k"
	keyTimeout       = "provider.timeout"
	keyDebounce      = "watch.debounce"
)

// keyKind is how a config value is parsed from text.
type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
	kindDuration
	kindList
	kindProvider
	kindBackend
)

var settingKinds = map[string]keyKind{
	keyEmbedProvider: kindProvider,
	keyEmbedModel:    kindString,
	keyEmbedBaseURL:  kindString,
	keyEmbedAPIKey:   kindString,
	keyEmbedRate:     kindFloat,
	keyEmbedBurst:    kindInt,
	keyEmbedBatch:    kindInt,
	keyLLMProvider:   kindProvider,
	keyLLMModel:      kindString,
	keyLLMBaseURL:    kindString,
	keyLLMAPIKey:     kindString,
	keyLLMTemp:       kindFloat,
	keyLLMMaxTokens:  kindInt,
	keyDocsDir:       kindString,
	keyExtensions:    kindList,
	keyStoreDir:      kindString,
	keyBackend:       kindBackend,
	keyMarkerPath:    kindString,
	keyChunkSize:     kindInt,
	keyChunkOverlap:  kindInt,
	keyTopK:          kindInt,
	keyTimeout:       kindDuration,
	keyDebounce:      kindDuration,
}

// SettingKeys returns every key Set accepts, sorted.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SettingsService maps config store keys onto domain.AppSettings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service. aiValidator may be nil.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get builds settings from stored values, filling gaps with defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	storeDir := s.getString(keyStoreDir, d.Index.StoreDir)
	marker := s.getString(keyMarkerPath, filepath.Join(storeDir, domain.DefaultMarkerFile))

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			Model:             s.getString(keyEmbedModel, d.Embedding.Model),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL), // empty means provider default
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			RequestsPerSecond: s.getFloat(keyEmbedRate, d.Embedding.RequestsPerSecond),
			Burst:             s.getInt(keyEmbedBurst, d.Embedding.Burst),
			BatchSize:         s.getInt(keyEmbedBatch, d.Embedding.BatchSize),
		},
		LLM: domain.LLMSettings{
			Provider:    s.getProvider(keyLLMProvider, d.LLM.Provider),
			Model:       s.getString(keyLLMModel, d.LLM.Model),
			BaseURL:     s.configStore.GetString(keyLLMBaseURL),
			APIKey:      s.configStore.GetString(keyLLMAPIKey),
			Temperature: s.getFloat(keyLLMTemp, d.LLM.Temperature),
			MaxTokens:   s.getInt(keyLLMMaxTokens, d.LLM.MaxTokens),
		},
		Index: domain.IndexSettings{
			DocsDir:    s.getString(keyDocsDir, d.Index.DocsDir),
			Extensions: s.getList(keyExtensions, d.Index.Extensions),
			StoreDir:   storeDir,
			Backend:    s.getBackend(keyBackend, d.Index.Backend),
			MarkerPath: marker,
		},
		Chunking: domain.ChunkSettings{
			Size:    s.getInt(keyChunkSize, d.Chunking.Size),
			Overlap: s.getInt(keyChunkOverlap, d.Chunking.Overlap),
		},
		Retrieval: domain.RetrievalSettings{
			TopK: s.getInt(keyTopK, d.Retrieval.TopK),
		},
		ProviderTimeout: s.getDuration(keyTimeout, d.ProviderTimeout),
		WatchDebounce:   s.getDuration(keyDebounce, d.WatchDebounce),
	}

	// A model from another provider's default set makes no sense after a switch.
	if !s.has(keyEmbedModel) {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[settings.Embedding.Provider]
	}
	if !s.has(keyLLMModel) {
		settings.LLM.Model = domain.DefaultLLMModels()[settings.LLM.Provider]
	}

	return settings, nil
}

// Save persists every setting.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, string(settings.Embedding.Provider)},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedAPIKey, settings.Embedding.APIKey},
		{keyEmbedRate, settings.Embedding.RequestsPerSecond},
		{keyEmbedBurst, settings.Embedding.Burst},
		{keyEmbedBatch, settings.Embedding.BatchSize},
		{keyLLMProvider, string(settings.LLM.Provider)},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMAPIKey, settings.LLM.APIKey},
		{keyLLMTemp, settings.LLM.Temperature},
		{keyLLMMaxTokens, settings.LLM.MaxTokens},
		{keyDocsDir, settings.Index.DocsDir},
		{keyExtensions, settings.Index.Extensions},
		{keyStoreDir, settings.Index.StoreDir},
		{keyBackend, string(settings.Index.Backend)},
		{keyMarkerPath, settings.Index.MarkerPath},
		{keyChunkSize, settings.Chunking.Size},
		{keyChunkOverlap, settings.Chunking.Overlap},
		{keyTopK, settings.Retrieval.TopK},
		{keyTimeout, settings.ProviderTimeout.String()},
		{keyDebounce, settings.WatchDebounce.String()},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set parses value according to key and stores it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	parsed, err := parseSetting(kind, strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Validate checks that the stored settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// Keys lists the setting keys accepted by Set.
func (s *SettingsService) Keys() []string {
	return SettingKeys()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

func parseSetting(kind keyKind, value string) (any, error) {
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("not an integer: %q", value)
		}
		return n, nil
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", value)
		}
		return f, nil
	case kindDuration:
		d, err := time.ParseDuration(value)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("not a duration: %q", value)
		}
		return d.String(), nil
	case kindList:
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			return nil, fmt.Errorf("empty list")
		}
		return items, nil
	case kindProvider:
		p := domain.AIProvider(strings.ToLower(value))
		if !p.IsValid() {
			return nil, fmt.Errorf("unknown provider %q", value)
		}
		return string(p), nil
	case kindBackend:
		b := domain.StoreBackend(strings.ToLower(value))
		if !b.IsValid() {
			return nil, fmt.Errorf("unknown backend %q", value)
		}
		return string(b), nil
	default:
		return value, nil
	}
}

// Helper methods for reading config with defaults.

func (s *SettingsService) has(key string) bool {
	_, ok := s.configStore.Get(key)
	return ok
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if !s.has(key) {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if !s.has(key) {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getList(key string, defaultVal []string) []string {
	if val := s.configStore.GetStringSlice(key); len(val) > 0 {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(s.configStore.GetString(key))
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	if p := domain.AIProvider(s.configStore.GetString(key)); p.IsValid() {
		return p
	}
	return defaultVal
}

func (s *SettingsService) getBackend(key string, defaultVal domain.StoreBackend) domain.StoreBackend {
	if b := domain.StoreBackend(s.configStore.GetString(key)); b.IsValid() {
		return b
	}
	return defaultVal
}
