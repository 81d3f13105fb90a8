// Package cli provides the ragdesk command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driving"
	"github.com/custodia-labs/ragdesk/internal/logger"
)

// version is set at build time.
var version = "dev"

var (
	verbose    bool
	configPath string
)

// Services are the core services the commands drive.
type Services struct {
	Answer    driving.AnswerService
	Index     driving.IndexService
	Retrieval driving.RetrievalService
	Pipeline  driving.PipelineObserver
	Refresh   driving.RefreshService

	// Close releases providers and the vector store. It may be nil.
	Close func() error
}

// Wiring builds the services once flags are parsed.
type Wiring struct {
	// Settings opens the settings service for the config file at path.
	// An empty path selects the default location.
	Settings func(path string) (driving.SettingsService, error)

	// Overrides applies environment overrides to stored settings.
	Overrides func(settings *domain.AppSettings) error

	// Services builds the core services from the effective settings.
	Services func(ctx context.Context, settings *domain.AppSettings) (*Services, error)
}

// Services used by commands. Tests assign them directly.
var (
	answerService    driving.AnswerService
	indexService     driving.IndexService
	retrievalService driving.RetrievalService
	pipelineObserver driving.PipelineObserver
	refreshService   driving.RefreshService
	settingsService  driving.SettingsService
)

var (
	wiring       Wiring
	closeService func() error
)

var rootCmd = &cobra.Command{
	Use:   "ragdesk",
	Short: "Answer helpdesk tickets from your own documents",
	Long: `ragdesk indexes a folder of support documents and answers helpdesk
questions with a local or hosted language model, citing the documents
each answer was drawn from.

The index is rebuilt automatically when a document changes.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if settingsService != nil || wiring.Settings == nil {
			return nil
		}
		svc, err := wiring.Settings(configPath)
		if err != nil {
			return fmt.Errorf("opening config: %w", err)
		}
		settingsService = svc
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline progress to stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.ragdesk/config.toml)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetWiring sets how services are built.
func SetWiring(w Wiring) {
	wiring = w
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// Shutdown releases services built during Execute.
func Shutdown() error {
	if closeService == nil {
		return nil
	}
	err := closeService()
	closeService = nil
	return err
}

// effectiveSettings returns stored settings with environment overrides applied.
func effectiveSettings() (*domain.AppSettings, error) {
	if settingsService == nil {
		return nil, errors.New("settings service not configured")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	if wiring.Overrides != nil {
		if err := wiring.Overrides(settings); err != nil {
			return nil, fmt.Errorf("applying environment: %w", err)
		}
	}
	return settings, nil
}

// requireServices builds the core services on first use.
func requireServices(ctx context.Context) error {
	if answerService != nil && indexService != nil {
		return nil
	}
	if wiring.Services == nil {
		return errors.New("services not configured")
	}

	settings, err := effectiveSettings()
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("%w. Run 'ragdesk config show' to check", err)
	}

	svc, err := wiring.Services(ctx, settings)
	if err != nil {
		return err
	}
	answerService = svc.Answer
	indexService = svc.Index
	retrievalService = svc.Retrieval
	pipelineObserver = svc.Pipeline
	refreshService = svc.Refresh
	closeService = svc.Close
	return nil
}
