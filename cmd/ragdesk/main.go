// Command ragdesk answers helpdesk tickets from a folder of documents.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/ragdesk/internal/adapters/driven/ai"
	"github.com/custodia-labs/ragdesk/internal/adapters/driven/config/env"
	"github.com/custodia-labs/ragdesk/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ragdesk/internal/adapters/driven/marker"
	"github.com/custodia-labs/ragdesk/internal/adapters/driven/storage"
	"github.com/custodia-labs/ragdesk/internal/adapters/driving/cli"
	"github.com/custodia-labs/ragdesk/internal/connectors/filesystem"
	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driving"
	"github.com/custodia-labs/ragdesk/internal/core/services"
	"github.com/custodia-labs/ragdesk/internal/logger"
	"github.com/custodia-labs/ragdesk/internal/postprocessors/chunker"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

// promptDir is where answer prompts live, next to the config file.
var promptDir string

func main() {
	// A missing .env is normal.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetWiring(cli.Wiring{
		Settings: openSettings,
		Overrides: func(s *domain.AppSettings) error {
			return env.Apply(s, os.LookupEnv)
		},
		Services: buildServices,
	})

	err := cli.Execute(ctx)
	if cerr := cli.Shutdown(); cerr != nil {
		logger.Warn("closing services: %v", cerr)
	}
	if err != nil {
		os.Exit(1)
	}
}

func openSettings(path string) (driving.SettingsService, error) {
	var (
		store *file.ConfigStore
		err   error
	)
	if path != "" {
		store, err = file.OpenConfigStore(path)
	} else {
		store, err = file.NewConfigStore("")
	}
	if err != nil {
		return nil, err
	}
	promptDir = filepath.Join(filepath.Dir(store.Path()), "prompts")
	return services.NewSettingsService(store, ai.NewConfigValidator()), nil
}

func buildServices(ctx context.Context, settings *domain.AppSettings) (*cli.Services, error) {
	providers, err := ai.NewServices(settings)
	if err != nil {
		return nil, err
	}

	factory, err := storage.NewFactory(settings.Index)
	if err != nil {
		providers.Close()
		return nil, err
	}
	gateway, err := services.OpenGateway(ctx, factory)
	if err != nil {
		providers.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrVectorStoreUnavailable, err)
	}

	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		providers.Close()
		_ = gateway.Close()
		return nil, err
	}

	source := filesystem.New(settings.Index.DocsDir, settings.Index.Extensions...)
	tracker := services.NewStalenessTracker(source, marker.NewFileStore(settings.Index.MarkerPath))
	splitter := chunker.New(
		chunker.WithChunkSize(settings.Chunking.Size),
		chunker.WithOverlap(settings.Chunking.Overlap),
	)

	index := services.NewIndexService(source, splitter, providers.Embedding, factory, gateway, tracker,
		services.IndexOptions{
			BatchSize:       settings.Embedding.BatchSize,
			ProviderTimeout: settings.ProviderTimeout,
		})
	retrieval := services.NewRetrievalService(providers.Embedding, gateway,
		settings.Retrieval.TopK, settings.ProviderTimeout)
	synthesis := services.NewSynthesisService(providers.LLM, prompts, services.SynthesisOptions{
		Temperature:     settings.LLM.Temperature,
		MaxTokens:       settings.LLM.MaxTokens,
		ProviderTimeout: settings.ProviderTimeout,
	})
	answers := services.NewAnswerService(index, retrieval, synthesis)

	logger.Debug("docs=%s backend=%s embed=%s llm=%s",
		settings.Index.DocsDir, settings.Index.Backend, settings.Embedding.Model, settings.LLM.Model)

	return &cli.Services{
		Answer:    answers,
		Index:     index,
		Retrieval: retrieval,
		Pipeline:  answers,
		Refresh:   services.NewRefresher(source, index, settings.WatchDebounce),
		Close: func() error {
			providers.Close()
			return gateway.Close()
		},
	}, nil
}
