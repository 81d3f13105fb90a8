package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage application settings",
	Long: `View and change ragdesk settings.

Settings are stored in ~/.ragdesk/config.toml (or the file given with --config).
Environment variables such as RAGDESK_LLM_MODEL or DOCS_DIR override the file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long: `Change a single setting in the config file.

List values such as index.extensions are comma separated.
Run 'ragdesk config keys' for the available keys.`,
	Example: `  ragdesk config set llm.model llama3.2
  ragdesk config set index.extensions .md,.txt`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the setting keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if settingsService == nil {
			return errors.New("settings service not configured")
		}
		for _, k := range settingsService.Keys() {
			cmd.Println(k)
		}
		return nil
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the AI providers are reachable",
	Args:  cobra.NoArgs,
	RunE:  runConfigCheck,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configKeysCmd)
	configCmd.AddCommand(configCheckCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	settings, err := effectiveSettings()
	if err != nil {
		return err
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Embedding]")
	printProvider(cmd, settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.BaseURL, settings.Embedding.APIKey)
	if settings.Embedding.RequestsPerSecond > 0 {
		cmd.Printf("  Rate limit: %g/s (burst %d)\n",
			settings.Embedding.RequestsPerSecond, settings.Embedding.Burst)
	}
	cmd.Printf("  Batch size: %d\n", settings.Embedding.BatchSize)
	cmd.Println()

	cmd.Println("[LLM]")
	printProvider(cmd, settings.LLM.Provider, settings.LLM.Model,
		settings.LLM.BaseURL, settings.LLM.APIKey)
	cmd.Printf("  Temperature: %g\n", settings.LLM.Temperature)
	if settings.LLM.MaxTokens > 0 {
		cmd.Printf("  Max tokens: %d\n", settings.LLM.MaxTokens)
	}
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Documents: %s\n", settings.Index.DocsDir)
	cmd.Printf("  Extensions: %s\n", strings.Join(settings.Index.Extensions, ", "))
	cmd.Printf("  Store: %s (%s)\n", settings.Index.StoreDir, settings.Index.Backend)
	cmd.Printf("  Marker: %s\n", settings.Index.MarkerPath)
	cmd.Printf("  Chunks: %d bytes, %d overlap\n", settings.Chunking.Size, settings.Chunking.Overlap)
	cmd.Printf("  Top-k: %d\n", settings.Retrieval.TopK)
	cmd.Println()

	cmd.Printf("Provider timeout: %s\n", settings.ProviderTimeout)
	cmd.Printf("Watch debounce: %s\n", settings.WatchDebounce)
	cmd.Println()

	if err := settings.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'ragdesk config set <key> <value>' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func printProvider(cmd *cobra.Command, provider domain.AIProvider, model, baseURL, apiKey string) {
	cmd.Printf("  Provider: %s\n", provider.Description())
	cmd.Printf("  Model: %s\n", model)
	if baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	if strings.HasSuffix(key, ".api_key") {
		value = maskAPIKey(value)
	}
	cmd.Printf("%s = %s\n", key, value)
	return nil
}

func runConfigCheck(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	var failed bool
	for _, check := range []struct {
		name string
		fn   func() error
	}{
		{"Embedding", settingsService.ValidateEmbeddingConfig},
		{"LLM", settingsService.ValidateLLMConfig},
	} {
		if err := check.fn(); err != nil {
			cmd.Printf("%s: %v\n", check.name, err)
			failed = true
			continue
		}
		cmd.Printf("%s: ok\n", check.name)
	}

	if failed {
		return errors.New("provider check failed")
	}
	return nil
}

// maskAPIKey masks an API key for display, showing only first and last 4 chars.
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
