package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/policyshield/internal/core/domain"
	"github.com/custodia-labs/policyshield/internal/core/ports/driven"
	"github.com/custodia-labs/policyshield/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// envPrefix prefixes environment overrides: llm.api_key -> POLICYSHIELD_LLM_API_KEY.
const envPrefix = "POLICYSHIELD_"

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyAuthPhrase        = "shield.auth_phrase"
	keyRulesFile         = "shield.rules_file"
	keyPromptDenyList    = "shield.prompt_deny_list"
	keyOutputDenyList    = "shield.output_deny_list"
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyLLMTimeout        = "llm.timeout"
	keyLLMMockLatency    = "llm.mock_latency"
	keyServerAddress     = "server.address"
	keyServerPort        = "server.port"
	keyServerReadTimeout = "server.read_header_timeout"
	keyServerShutdown    = "server.shutdown_timeout"
	keyRateLimitRPS      = "ratelimit.requests_per_second"
	keyRateLimitBurst    = "ratelimit.burst"
	keyHistoryBackend    = "history.backend"
	keyHistoryDataDir    = "history.data_dir"
)

// settingKind describes how a raw value is parsed.
type settingKind int

const (
	kindString settingKind = iota
	kindList
	kindInt
	kindFloat
	kindDuration
	kindProvider
	kindBackend
)

// settingKeys lists every key in display order.
var settingKeys = []struct {
	key  string
	kind settingKind
}{
	{keyAuthPhrase, kindString},
	{keyRulesFile, kindString},
	{keyPromptDenyList, kindList},
	{keyOutputDenyList, kindList},
	{keyLLMProvider, kindProvider},
	{keyLLMModel, kindString},
	{keyLLMBaseURL, kindString},
	{keyLLMAPIKey, kindString},
	{keyLLMTimeout, kindDuration},
	{keyLLMMockLatency, kindDuration},
	{keyServerAddress, kindString},
	{keyServerPort, kindInt},
	{keyServerReadTimeout, kindDuration},
	{keyServerShutdown, kindDuration},
	{keyRateLimitRPS, kindFloat},
	{keyRateLimitBurst, kindInt},
	{keyHistoryBackend, kindBackend},
	{keyHistoryDataDir, kindString},
}

// SettingsService manages application settings.
// Values resolve in order: environment override, config store, default.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
}

// WithEnv replaces the environment lookup. Useful for testing.
func (s *SettingsService) WithEnv(lookup func(string) (string, bool)) *SettingsService {
	s.lookupEnv = lookup
	return s
}

// EnvName returns the environment variable that overrides key.
func EnvName(key string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	provider := s.getProvider(d.LLM.Provider)
	model := s.getString(keyLLMModel, "")
	if model == "" {
		model = domain.DefaultLLMModels()[provider]
	}

	settings := &domain.AppSettings{
		Shield: domain.ShieldSettings{
			AuthPhrase: s.getString(keyAuthPhrase, d.Shield.AuthPhrase),
			RulesFile:  s.getString(keyRulesFile, ""),
			Guardrails: domain.GuardrailSet{
				PromptDenyList: s.getList(keyPromptDenyList, d.Shield.Guardrails.PromptDenyList),
				OutputDenyList: s.getList(keyOutputDenyList, d.Shield.Guardrails.OutputDenyList),
			},
		},
		LLM: domain.LLMSettings{
			Provider:    provider,
			Model:       model,
			BaseURL:     s.getString(keyLLMBaseURL, ""),
			APIKey:      s.getString(keyLLMAPIKey, ""),
			Timeout:     s.getDuration(keyLLMTimeout, d.LLM.Timeout),
			MockLatency: s.getDuration(keyLLMMockLatency, d.LLM.MockLatency),
		},
		Server: domain.ServerSettings{
			Address:           s.getString(keyServerAddress, d.Server.Address),
			Port:              s.getInt(keyServerPort, d.Server.Port),
			ReadHeaderTimeout: s.getDuration(keyServerReadTimeout, d.Server.ReadHeaderTimeout),
			ShutdownTimeout:   s.getDuration(keyServerShutdown, d.Server.ShutdownTimeout),
		},
		RateLimit: domain.RateLimitSettings{
			RequestsPerSecond: s.getFloat(keyRateLimitRPS, d.RateLimit.RequestsPerSecond),
			Burst:             s.getInt(keyRateLimitBurst, d.RateLimit.Burst),
		},
		History: domain.HistorySettings{
			Backend: s.getBackend(d.History.Backend),
			DataDir: s.getString(keyHistoryDataDir, ""),
		},
	}

	return settings, nil
}

// Set parses value according to key's type and persists it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := kindOf(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	parsed, err := parseValue(kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// SetLLMProvider configures the LLM provider in one step.
// An empty model selects the provider's default model.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}
	if model == "" {
		model = domain.DefaultLLMModels()[provider]
	}

	if err := s.configStore.Set(keyLLMProvider, provider.String()); err != nil {
		return fmt.Errorf("save llm provider: %w", err)
	}
	if err := s.configStore.Set(keyLLMModel, model); err != nil {
		return fmt.Errorf("save llm model: %w", err)
	}
	if apiKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, apiKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}
	return nil
}

// Keys returns every settable key in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingKeys))
	for i, k := range settingKeys {
		keys[i] = k.key
	}
	return keys
}

// Validate checks if current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Path returns the config file path.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

func kindOf(key string) (settingKind, bool) {
	for _, k := range settingKeys {
		if k.key == key {
			return k.kind, true
		}
	}
	return 0, false
}

func parseValue(kind settingKind, value string) (any, error) {
	value = strings.TrimSpace(value)

	switch kind {
	case kindList:
		return splitList(value), nil
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("not an integer: %q", value)
		}
		return int64(n), nil
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", value)
		}
		return f, nil
	case kindDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return nil, fmt.Errorf("not a duration: %q", value)
		}
		return value, nil
	case kindProvider:
		if !domain.AIProvider(value).IsValid() {
			return nil, fmt.Errorf("unknown provider %q", value)
		}
		return value, nil
	case kindBackend:
		if !domain.HistoryBackend(value).IsValid() {
			return nil, fmt.Errorf("unknown backend %q", value)
		}
		return value, nil
	default:
		return value, nil
	}
}

// splitList parses a comma-separated list, dropping blank entries.
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// raw returns the environment override for key, then the stored value.
func (s *SettingsService) raw(key string) (any, bool) {
	if s.lookupEnv != nil {
		if v, ok := s.lookupEnv(EnvName(key)); ok && v != "" {
			return v, true
		}
	}
	return s.configStore.Get(key)
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val, ok := s.raw(key)
	if !ok {
		return defaultVal
	}
	if str, ok := val.(string); ok && str != "" {
		return str
	}
	return defaultVal
}

func (s *SettingsService) getList(key string, defaultVal []string) []string {
	val, ok := s.raw(key)
	if !ok {
		return append([]string(nil), defaultVal...)
	}

	switch v := val.(type) {
	case string:
		return splitList(v)
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return append([]string(nil), defaultVal...)
	}
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val, ok := s.raw(key)
	if !ok {
		return defaultVal
	}

	// TOML integers are parsed as int64
	switch v := val.(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val, ok := s.raw(key)
	if !ok {
		return defaultVal
	}

	switch v := val.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	str := s.getString(key, "")
	if str == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(str)
	if err != nil {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(defaultVal domain.AIProvider) domain.AIProvider {
	p := domain.AIProvider(s.getString(keyLLMProvider, ""))
	if !p.IsValid() {
		return defaultVal
	}
	return p
}

func (s *SettingsService) getBackend(defaultVal domain.HistoryBackend) domain.HistoryBackend {
	b := domain.HistoryBackend(s.getString(keyHistoryBackend, ""))
	if !b.IsValid() {
		return defaultVal
	}
	return b
}
