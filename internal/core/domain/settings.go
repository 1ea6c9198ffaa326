package domain

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

const unknownDescription = "Unknown"

// DefaultModel is the model name the assistant reports out of the box.
const DefaultModel = "gemini-2.0-flash-lite"

// DefaultPort is the port the web UI listens on.
const DefaultPort = 8501

// AIProvider identifies an LLM service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderMock is the built-in deterministic generator.
	AIProviderMock AIProvider = "mock"

	// AIProviderGemini is the Google Generative Language API.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderMock, AIProviderGemini, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderGemini || p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs without network access to a cloud API.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderMock
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderMock:
		return "Mock (built-in, offline)"
	case AIProviderGemini:
		return "Gemini (cloud)"
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

// AllLLMProviders returns every supported provider.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderMock,
		AIProviderGemini,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderMock:      DefaultModel,
		AIProviderGemini:    DefaultModel,
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL overrides the API endpoint.
	BaseURL string

	// APIKey is the API key for cloud providers.
	APIKey string

	// Timeout bounds a single generation call.
	Timeout time.Duration

	// MockLatency is the simulated network delay of the mock provider.
	MockLatency time.Duration
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

// ShieldSettings configures the guardrail layers.
type ShieldSettings struct {
	// AuthPhrase is the phrase required by the authorization layer.
	AuthPhrase string

	// RulesFile optionally points at a YAML, JSON(C) or TOML guardrail file.
	RulesFile string

	// Guardrails are the deny lists used when no rules file is set.
	Guardrails GuardrailSet
}

// ServerSettings configures the web UI listener.
type ServerSettings struct {
	Address           string
	Port              int
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// Addr returns the listen address in host:port form.
func (s ServerSettings) Addr() string {
	return net.JoinHostPort(s.Address, strconv.Itoa(s.Port))
}

// RateLimitSettings configures per-client request throttling.
// A non-positive RequestsPerSecond disables throttling.
type RateLimitSettings struct {
	RequestsPerSecond float64
	Burst             int
}

// Enabled returns true if throttling is active.
func (r RateLimitSettings) Enabled() bool {
	return r.RequestsPerSecond > 0
}

// HistoryBackend selects where evaluations are recorded.
type HistoryBackend string

// Available history backends.
const (
	HistoryBackendSQLite HistoryBackend = "sqlite"
	HistoryBackendMemory HistoryBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b HistoryBackend) IsValid() bool {
	return b == HistoryBackendSQLite || b == HistoryBackendMemory
}

// HistorySettings configures evaluation history.
type HistorySettings struct {
	Backend HistoryBackend

	// DataDir is where the SQLite database lives. Empty means ~/.policyshield/data.
	DataDir string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Shield    ShieldSettings
	LLM       LLMSettings
	Server    ServerSettings
	RateLimit RateLimitSettings
	History   HistorySettings
}

// Validate checks the settings for values that would fail at startup.
func (s AppSettings) Validate() error {
	var problems []string

	if strings.TrimSpace(s.Shield.AuthPhrase) == "" {
		problems = append(problems, "authorization phrase is empty")
	}
	if err := s.Shield.Guardrails.Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if !s.LLM.Provider.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown llm provider %q", s.LLM.Provider))
	} else if !s.LLM.IsConfigured() {
		problems = append(problems, fmt.Sprintf("llm provider %s requires an API key", s.LLM.Provider))
	}
	if s.Server.Port <= 0 || s.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server port %d out of range", s.Server.Port))
	}
	if !s.History.Backend.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown history backend %q", s.History.Backend))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}

// DefaultAppSettings returns settings that run fully offline with the mock provider.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Shield: ShieldSettings{
			AuthPhrase: DefaultAuthPhrase,
			Guardrails: DefaultGuardrails(),
		},
		LLM: LLMSettings{
			Provider:    AIProviderMock,
			Model:       DefaultModel,
			Timeout:     2 * time.Minute,
			MockLatency: 2 * time.Second,
		},
		Server: ServerSettings{
			Address:           "0.0.0.0",
			Port:              DefaultPort,
			ReadHeaderTimeout: 10 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		RateLimit: RateLimitSettings{
			RequestsPerSecond: 1,
			Burst:             5,
		},
		History: HistorySettings{
			Backend: HistoryBackendSQLite,
		},
	}
}
