package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/policyshield/internal/adapters/driven/llm/mock"
	"github.com/custodia-labs/policyshield/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/policyshield/internal/core/domain"
	coreservices "github.com/custodia-labs/policyshield/internal/core/services"
)

// testEnv holds the services wired into the commands for one test.
type testEnv struct {
	shield   *coreservices.ShieldService
	store    *memory.EvaluationStore
	settings *coreservices.SettingsService
}

func noEnv(string) (string, bool) { return "", false }

// setupTestServices wires real services over in-memory stores and an instant mock LLM.
func setupTestServices(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewEvaluationStore()
	shield, err := coreservices.NewShieldService(coreservices.ShieldConfig{
		AuthPhrase: domain.DefaultAuthPhrase,
		Guardrails: domain.DefaultGuardrails(),
		LLM:        mock.NewLLMService(mock.Config{Model: domain.DefaultModel}),
		Store:      store,
	})
	require.NoError(t, err)
	settings := coreservices.NewSettingsService(memory.NewConfigStore()).WithEnv(noEnv)

	oldSettings, oldServices, oldOwns := settingsService, currentServices, ownsServices
	SetSettingsService(settings)
	SetServices(&Services{Shield: shield, History: coreservices.NewHistoryService(store)})
	t.Cleanup(func() {
		settingsService, currentServices, ownsServices = oldSettings, oldServices, oldOwns
	})

	return &testEnv{shield: shield, store: store, settings: settings}
}

// setupSettingsOnly injects default in-memory settings without services.
func setupSettingsOnly(t *testing.T) *coreservices.SettingsService {
	t.Helper()
	settings := coreservices.NewSettingsService(memory.NewConfigStore()).WithEnv(noEnv)
	old := settingsService
	SetSettingsService(settings)
	t.Cleanup(func() { settingsService = old })
	return settings
}

// executeCommand runs the root command with args and stdin, returning combined output.
func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	return executeCommandContext(t, context.Background(), stdin, args...)
}

func executeCommandContext(t *testing.T, ctx context.Context, stdin string, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		resetFlags(rootCmd)
	})

	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}

// resetFlags restores every flag to its default; cobra keeps parsed values between runs.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue) //nolint:errcheck // defaults always parse
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// findCommand returns the subcommand of rootCmd named by path.
func findCommand(t *testing.T, path ...string) *cobra.Command {
	t.Helper()
	cmd, _, err := rootCmd.Find(path)
	require.NoError(t, err)
	return cmd
}
