package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/policyshield/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the authorization phrase, guardrails, LLM provider,
server and history options.

Settings live in config.toml inside the config directory. Any key can be
overridden by an environment variable: POLICYSHIELD_ followed by the key in
upper case with dots as underscores, e.g. POLICYSHIELD_LLM_API_KEY.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a single setting",
	Long: `Set a single setting by its dotted key.

List values such as shield.prompt_deny_list are comma separated.
Durations use Go syntax (2s, 1m30s).

Examples:
  policyshield settings set shield.auth_phrase "correct horse battery staple"
  policyshield settings set shield.prompt_deny_list "exploit, bypass, DDoS"
  policyshield settings set ratelimit.requests_per_second 0.5`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Interactively choose the LLM provider, model and API key used for generation.`,
	Args:  cobra.NoArgs,
	RunE:  runSettingsLLM,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	svc, err := loadSettingsService()
	if err != nil {
		return err
	}
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Printf("File: %s\n", svc.Path())
	cmd.Println()

	cmd.Println("[Shield]")
	cmd.Printf("  Authorization phrase: %s\n", maskPhrase(settings.Shield.AuthPhrase))
	if settings.Shield.RulesFile != "" {
		cmd.Printf("  Rules file: %s\n", settings.Shield.RulesFile)
	}
	cmd.Printf("  Prompt deny list: %s\n", strings.Join(settings.Shield.Guardrails.PromptDenyList, ", "))
	cmd.Printf("  Output deny list: %s\n", strings.Join(settings.Shield.Guardrails.OutputDenyList, ", "))
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	if settings.LLM.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	if settings.LLM.Provider.RequiresAPIKey() {
		if settings.LLM.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.LLM.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	cmd.Printf("  Timeout: %s\n", settings.LLM.Timeout)
	if settings.LLM.Provider == domain.AIProviderMock {
		cmd.Printf("  Simulated latency: %s\n", settings.LLM.MockLatency)
	}
	status := "configured"
	if !settings.LLM.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Listen: %s\n", settings.Server.Addr())
	if settings.RateLimit.Enabled() {
		cmd.Printf("  Rate limit: %g req/s per client (burst %d)\n",
			settings.RateLimit.RequestsPerSecond, settings.RateLimit.Burst)
	} else {
		cmd.Printf("  Rate limit: off\n")
	}
	cmd.Println()

	cmd.Println("[History]")
	cmd.Printf("  Backend: %s\n", settings.History.Backend)
	if settings.History.Backend == domain.HistoryBackendSQLite {
		dir := settings.History.DataDir
		if dir == "" {
			dir = "(default)"
		}
		cmd.Printf("  Data directory: %s\n", dir)
	}
	cmd.Println()

	if err := svc.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'policyshield settings set <key> <value>' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	svc, err := loadSettingsService()
	if err != nil {
		return err
	}

	if err := svc.Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("Set %s\n", args[0])
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	svc, err := loadSettingsService()
	if err != nil {
		return err
	}
	for _, k := range svc.Keys() {
		cmd.Println(k)
	}
	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	svc, err := loadSettingsService()
	if err != nil {
		return err
	}

	in := cmd.InOrStdin()
	reader := bufio.NewReader(in)

	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selectedProvider := providers[idx-1]

	defaultModel := domain.DefaultLLMModels()[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readSecret(in, reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := svc.SetLLMProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	if llmValidator != nil {
		settings, err := svc.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		cmd.Print("Validating configuration... ")
		if err := llmValidator(cmd.Context(), &settings.LLM); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			return fmt.Errorf("LLM configuration validation failed: %w", err)
		}
		cmd.Println("OK")
	}

	cmd.Printf("LLM provider configured: %s (%s)\n", selectedProvider.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads a line from in without echo when in is a terminal.
func readPassword(in io.Reader) string {
	return readSecret(in, bufio.NewReader(in))
}

// readSecret reads without echo from a terminal, falling back to reader.
func readSecret(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

// maskPhrase never reveals any part of the phrase.
func maskPhrase(phrase string) string {
	if phrase == "" {
		return "(not set)"
	}
	return "********"
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
