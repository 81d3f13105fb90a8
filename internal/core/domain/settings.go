package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API or any compatible endpoint.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// StoreBackend identifies a vector store implementation.
type StoreBackend string

// Available vector store backends.
const (
	// StoreBackendSQLite keeps each index generation in a SQLite file.
	StoreBackendSQLite StoreBackend = "sqlite"

	// StoreBackendBolt keeps each index generation in a bbolt file.
	StoreBackendBolt StoreBackend = "bolt"

	// StoreBackendMemory keeps the index in process memory only.
	StoreBackendMemory StoreBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	switch b {
	case StoreBackendSQLite, StoreBackendBolt, StoreBackendMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StoreBackend) String() string {
	return string(b)
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// RequestsPerSecond throttles embedding calls during a rebuild. Zero disables it.
	RequestsPerSecond float64

	// Burst is the token bucket size used with RequestsPerSecond.
	Burst int

	// BatchSize is how many chunks are embedded per provider call.
	BatchSize int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// Temperature is the sampling temperature for answers.
	Temperature float64

	// MaxTokens caps the answer length. Zero uses the provider default.
	MaxTokens int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// IndexSettings locates the documents, the vector store and the staleness marker.
type IndexSettings struct {
	// DocsDir is the document root.
	DocsDir string

	// Extensions is the file-type allowlist, e.g. ".md".
	Extensions []string

	// StoreDir is the directory owned by the vector store.
	StoreDir string

	// Backend selects the vector store implementation.
	Backend StoreBackend

	// MarkerPath is the staleness marker file.
	MarkerPath string
}

// ChunkSettings controls document splitting.
type ChunkSettings struct {
	// Size is the maximum chunk length in bytes.
	Size int

	// Overlap is how many bytes consecutive chunks share.
	Overlap int
}

// RetrievalSettings controls the query side.
type RetrievalSettings struct {
	// TopK is the number of passages retrieved per question.
	TopK int
}

// AppSettings holds all application settings.
// It is built once at startup and passed to each component.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Index holds document and storage locations.
	Index IndexSettings

	// Chunking holds splitter settings.
	Chunking ChunkSettings

	// Retrieval holds query settings.
	Retrieval RetrievalSettings

	// ProviderTimeout bounds every embedding and generation call.
	ProviderTimeout time.Duration

	// WatchDebounce is how long the watcher waits for changes to settle.
	WatchDebounce time.Duration
}

// Default settings values.
const (
	DefaultDocsDir         = "./docs"
	DefaultStoreDir        = "./index"
	DefaultMarkerFile      = "index.stamp"
	DefaultChunkSize       = 900
	DefaultChunkOverlap    = 150
	DefaultTopK            = 4
	DefaultTemperature     = 0.2
	DefaultEmbedBatchSize  = 16
	DefaultProviderTimeout = 120 * time.Second
	DefaultWatchDebounce   = 2 * time.Second
)

// DefaultAppSettings returns settings with explicit defaults.
// The defaults target a local Ollama install with markdown documents in ./docs.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider:  AIProviderOllama,
			Model:     DefaultEmbeddingModels()[AIProviderOllama],
			Burst:     1,
			BatchSize: DefaultEmbedBatchSize,
		},
		LLM: LLMSettings{
			Provider:    AIProviderOllama,
			Model:       DefaultLLMModels()[AIProviderOllama],
			Temperature: DefaultTemperature,
		},
		Index: IndexSettings{
			DocsDir:    DefaultDocsDir,
			Extensions: []string{".md"},
			StoreDir:   DefaultStoreDir,
			Backend:    StoreBackendSQLite,
			MarkerPath: filepath.Join(DefaultStoreDir, DefaultMarkerFile),
		},
		Chunking: ChunkSettings{
			Size:    DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
		},
		Retrieval: RetrievalSettings{
			TopK: DefaultTopK,
		},
		ProviderTimeout: DefaultProviderTimeout,
		WatchDebounce:   DefaultWatchDebounce,
	}
}

// Validate reports the first setting that cannot be used.
func (s AppSettings) Validate() error {
	switch {
	case strings.TrimSpace(s.Index.DocsDir) == "":
		return fmt.Errorf("%w: docs dir is empty", ErrInvalidInput)
	case strings.TrimSpace(s.Index.StoreDir) == "":
		return fmt.Errorf("%w: store dir is empty", ErrInvalidInput)
	case strings.TrimSpace(s.Index.MarkerPath) == "":
		return fmt.Errorf("%w: marker path is empty", ErrInvalidInput)
	case len(s.Index.Extensions) == 0:
		return fmt.Errorf("%w: no document extensions configured", ErrInvalidInput)
	case !s.Index.Backend.IsValid():
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalidInput, s.Index.Backend)
	case s.Chunking.Size <= 0:
		return fmt.Errorf("%w: chunk size must be positive", ErrInvalidInput)
	case s.Chunking.Overlap < 0:
		return fmt.Errorf("%w: chunk overlap must not be negative", ErrInvalidInput)
	case s.Retrieval.TopK <= 0:
		return fmt.Errorf("%w: top-k must be positive", ErrInvalidInput)
	case !s.Embedding.IsConfigured():
		return fmt.Errorf("%w: embedding provider %q is not configured", ErrInvalidInput, s.Embedding.Provider)
	case !s.LLM.IsConfigured():
		return fmt.Errorf("%w: llm provider %q is not configured", ErrInvalidInput, s.LLM.Provider)
	}
	return nil
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "gemma3:1b",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-haiku-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
