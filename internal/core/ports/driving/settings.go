package driving

import "github.com/custodia-labs/policyshield/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, defaults applied.
	Get() (*domain.AppSettings, error)

	// Set stores a single setting by its dotted key (e.g. "llm.provider").
	Set(key, value string) error

	// SetLLMProvider configures the LLM provider, model and API key together.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// Keys returns every settable key in display order.
	Keys() []string

	// Validate checks if current settings are usable.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// Path returns where settings are persisted.
	Path() string
}
