// Package env applies environment variable overrides to application settings.
//
// Each setting has a RAGDESK_* name. The variable names used by earlier
// deployments (OLLAMA_LLM, DOCS_DIR, CHROMA_DIR, ...) are still honoured,
// with the RAGDESK_* name taking precedence when both are set.
package env

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

type binding struct {
	names []string
	apply func(s *domain.AppSettings, v string) error
}

//nolint:gosec // G101: These are variable names, not credentials.
var bindings = []binding{
	{[]string{"RAGDESK_EMBED_PROVIDER"}, setProvider(func(s *domain.AppSettings) *domain.AIProvider { return &s.Embedding.Provider })},
	{[]string{"RAGDESK_EMBED_MODEL", "OLLAMA_EMBED"}, setString(func(s *domain.AppSettings) *string { return &s.Embedding.Model })},
	{[]string{"RAGDESK_EMBED_BASE_URL"}, setString(func(s *domain.AppSettings) *string { return &s.Embedding.BaseURL })},
	{[]string{"RAGDESK_EMBED_API_KEY"}, setString(func(s *domain.AppSettings) *string { return &s.Embedding.APIKey })},
	{[]string{"RAGDESK_LLM_PROVIDER"}, setProvider(func(s *domain.AppSettings) *domain.AIProvider { return &s.LLM.Provider })},
	{[]string{"RAGDESK_LLM_MODEL", "OLLAMA_LLM"}, setString(func(s *domain.AppSettings) *string { return &s.LLM.Model })},
	{[]string{"RAGDESK_LLM_BASE_URL"}, setString(func(s *domain.AppSettings) *string { return &s.LLM.BaseURL })},
	{[]string{"RAGDESK_LLM_API_KEY"}, setString(func(s *domain.AppSettings) *string { return &s.LLM.APIKey })},
	{[]string{"RAGDESK_LLM_TEMPERATURE"}, setFloat(func(s *domain.AppSettings) *float64 { return &s.LLM.Temperature })},
	{[]string{"RAGDESK_DOCS_DIR", "DOCS_DIR"}, setString(func(s *domain.AppSettings) *string { return &s.Index.DocsDir })},
	{[]string{"RAGDESK_EXTENSIONS"}, func(s *domain.AppSettings, v string) error {
		s.Index.Extensions = splitList(v)
		return nil
	}},
	{[]string{"RAGDESK_BACKEND"}, func(s *domain.AppSettings, v string) error {
		s.Index.Backend = domain.StoreBackend(strings.ToLower(v))
		return nil
	}},
	{[]string{"RAGDESK_CHUNK_SIZE", "CHUNK_SIZE"}, setInt(func(s *domain.AppSettings) *int { return &s.Chunking.Size })},
	{[]string{"RAGDESK_CHUNK_OVERLAP", "CHUNK_OVERLAP"}, setInt(func(s *domain.AppSettings) *int { return &s.Chunking.Overlap })},
	{[]string{"RAGDESK_TOP_K", "TOP_K"}, setInt(func(s *domain.AppSettings) *int { return &s.Retrieval.TopK })},
	{[]string{"RAGDESK_PROVIDER_TIMEOUT"}, setDuration(func(s *domain.AppSettings) *time.Duration { return &s.ProviderTimeout })},
}

// Apply overrides fields of s from the environment.
// The marker follows a changed store directory unless it is set explicitly.
func Apply(s *domain.AppSettings, lookup LookupFunc) error {
	oldDefaultMarker := filepath.Join(s.Index.StoreDir, domain.DefaultMarkerFile)

	for _, b := range bindings {
		name, value, ok := first(lookup, b.names)
		if !ok {
			continue
		}
		if err := b.apply(s, value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	if _, storeDir, ok := first(lookup, []string{"RAGDESK_STORE_DIR", "CHROMA_DIR"}); ok {
		s.Index.StoreDir = storeDir
		if s.Index.MarkerPath == oldDefaultMarker {
			s.Index.MarkerPath = filepath.Join(storeDir, domain.DefaultMarkerFile)
		}
	}
	if _, marker, ok := first(lookup, []string{"RAGDESK_MARKER_PATH", "STAMP_FILE"}); ok {
		s.Index.MarkerPath = marker
	}

	applyProviderKeys(s, lookup)
	return nil
}

// applyProviderKeys falls back to the providers' conventional key variables.
func applyProviderKeys(s *domain.AppSettings, lookup LookupFunc) {
	keyFor := map[domain.AIProvider]string{
		domain.AIProviderOpenAI:    "OPENAI_API_KEY",
		domain.AIProviderAnthropic: "ANTHROPIC_API_KEY",
	}
	if s.Embedding.APIKey == "" {
		if name, ok := keyFor[s.Embedding.Provider]; ok {
			if v, ok := lookup(name); ok {
				s.Embedding.APIKey = v
			}
		}
	}
	if s.LLM.APIKey == "" {
		if name, ok := keyFor[s.LLM.Provider]; ok {
			if v, ok := lookup(name); ok {
				s.LLM.APIKey = v
			}
		}
	}
}

func first(lookup LookupFunc, names []string) (string, string, bool) {
	for _, name := range names {
		if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
			return name, strings.TrimSpace(v), true
		}
	}
	return "", "", false
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func setString(field func(*domain.AppSettings) *string) func(*domain.AppSettings, string) error {
	return func(s *domain.AppSettings, v string) error {
		*field(s) = v
		return nil
	}
}

func setProvider(field func(*domain.AppSettings) *domain.AIProvider) func(*domain.AppSettings, string) error {
	return func(s *domain.AppSettings, v string) error {
		p := domain.AIProvider(strings.ToLower(v))
		if !p.IsValid() {
			return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, v)
		}
		*field(s) = p
		return nil
	}
}

func setInt(field func(*domain.AppSettings) *int) func(*domain.AppSettings, string) error {
	return func(s *domain.AppSettings, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %q is not an integer", domain.ErrInvalidInput, v)
		}
		*field(s) = n
		return nil
	}
}

func setFloat(field func(*domain.AppSettings) *float64) func(*domain.AppSettings, string) error {
	return func(s *domain.AppSettings, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %q is not a number", domain.ErrInvalidInput, v)
		}
		*field(s) = f
		return nil
	}
}

func setDuration(field func(*domain.AppSettings) *time.Duration) func(*domain.AppSettings, string) error {
	return func(s *domain.AppSettings, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %q is not a duration", domain.ErrInvalidInput, v)
		}
		*field(s) = d
		return nil
	}
}
