// Package cli provides the policyshield command line interface.
// It implements a driving adapter following hexagonal architecture principles.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/policyshield/internal/core/domain"
	"github.com/custodia-labs/policyshield/internal/core/ports/driving"
	"github.com/custodia-labs/policyshield/internal/logger"
)

// version is set at build time via -ldflags "-X ...cli.version=...".
var version = "dev"

// Services bundles the long-lived services commands run against.
type Services struct {
	Shield  driving.ShieldService
	History driving.HistoryService

	// Watch reloads guardrails and prompts on change until ctx ends. Optional.
	Watch func(ctx context.Context) error

	// Close releases stores and LLM connections. Optional.
	Close func() error
}

// SettingsFactory opens the settings for a config directory.
// An empty directory selects the default location.
type SettingsFactory func(configDir string) (driving.SettingsService, error)

// ServicesFactory builds Services from resolved settings.
type ServicesFactory func(ctx context.Context, settings *domain.AppSettings, configDir string) (*Services, error)

// LLMValidator checks that an LLM configuration can serve requests.
type LLMValidator func(ctx context.Context, settings *domain.LLMSettings) error

var (
	settingsFactory SettingsFactory
	servicesFactory ServicesFactory
	llmValidator    LLMValidator

	// settingsService and currentServices are built on first use; tests set them directly.
	settingsService driving.SettingsService
	currentServices *Services

	// ownsServices is true when services were built here and must be closed.
	ownsServices bool

	verbose   bool
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "policyshield",
	Short: "Secure Network Policy Assistant",
	Long: `PolicyShield wraps an LLM in a multi-layered safety shield.

Every request passes an authorization phrase check, a prompt guardrail and an
output filter before a network security policy is returned. Each evaluation is
recorded with its process log.

Run 'policyshield serve' for the web UI on port 8501, or 'policyshield tui'
for the terminal UI.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "",
		"configuration directory (default ~/.policyshield)")
}

// SetVersion sets the version reported by 'policyshield version'.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetSettingsFactory sets how settings are opened.
func SetSettingsFactory(f SettingsFactory) {
	settingsFactory = f
}

// SetServicesFactory sets how services are built.
func SetServicesFactory(f ServicesFactory) {
	servicesFactory = f
}

// SetLLMValidator sets the check run after 'settings llm'.
func SetLLMValidator(v LLMValidator) {
	llmValidator = v
}

// SetSettingsService injects a ready settings service.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetServices injects ready services. They are not closed by the CLI.
func SetServices(s *Services) {
	currentServices = s
	ownsServices = false
}

// Execute runs the root command and releases any services it opened.
func Execute() error {
	defer func() {
		if err := releaseServices(); err != nil {
			logger.Warn("closing services: %v", err)
		}
	}()
	return rootCmd.ExecuteContext(context.Background())
}

// loadSettingsService returns the settings service, opening it on first use.
func loadSettingsService() (driving.SettingsService, error) {
	if settingsService != nil {
		return settingsService, nil
	}
	if settingsFactory == nil {
		return nil, errors.New("settings service not configured")
	}

	svc, err := settingsFactory(configDir)
	if err != nil {
		return nil, fmt.Errorf("open settings: %w", err)
	}
	settingsService = svc
	return svc, nil
}

// loadSettings returns the resolved application settings.
func loadSettings() (*domain.AppSettings, error) {
	svc, err := loadSettingsService()
	if err != nil {
		return nil, err
	}
	settings, err := svc.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}

// loadServices returns the services, building them on first use.
func loadServices(ctx context.Context) (*Services, error) {
	if currentServices != nil {
		return currentServices, nil
	}
	if servicesFactory == nil {
		return nil, errors.New("services not configured")
	}

	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("%w. Run 'policyshield settings show' to check", err)
	}

	built, err := servicesFactory(ctx, settings, configDir)
	if err != nil {
		return nil, err
	}
	currentServices = built
	ownsServices = true
	return built, nil
}

// releaseServices closes services built by loadServices.
func releaseServices() error {
	if currentServices == nil || !ownsServices {
		return nil
	}
	s := currentServices
	currentServices = nil
	ownsServices = false
	if s.Close != nil {
		return s.Close()
	}
	return nil
}
