package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/policyshield/internal/core/domain"
	"github.com/custodia-labs/policyshield/internal/logger"
)

func TestTUICmd_Exists(t *testing.T) {
	found := false
	for _, cmd := range rootCmd.Commands() {
		if cmd.Use == "tui" {
			found = true
			break
		}
	}
	assert.True(t, found, "tui command should be registered")
}

func TestTUICmd_ShortDescription(t *testing.T) {
	assert.Equal(t, "Launch the interactive terminal UI", tuiCmd.Short)
}

func TestTUICmd_HelpOutput(t *testing.T) {
	out, err := executeCommand(t, "", "tui", "--help")

	require.NoError(t, err)
	assert.Contains(t, out, "interactive terminal user interface")
	assert.Contains(t, out, "Controls:")
	assert.Contains(t, out, "ctrl+s")
}

func TestTUICmd_ServicesError(t *testing.T) {
	saveGlobals(t)
	currentServices = nil
	servicesFactory = func(context.Context, *domain.AppSettings, string) (*Services, error) {
		return nil, domain.ErrLLMUnavailable
	}
	setupSettingsOnly(t)

	_, err := executeCommand(t, "", "tui")

	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestTUICmd_LogFileFlag(t *testing.T) {
	flag := tuiCmd.Flags().Lookup("log-file")
	require.NotNil(t, flag)
	assert.Equal(t, "", flag.DefValue)
}

func TestRedirectLogs(t *testing.T) {
	buf := new(bytes.Buffer)
	logger.SetOutput(buf)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	path := filepath.Join(t.TempDir(), "tui.log")
	restore, err := redirectLogs(path)
	require.NoError(t, err)

	logger.Warn("failed to record evaluation %s", "eval-1")
	restore()
	logger.Warn("back on the terminal")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "failed to record evaluation eval-1")
	assert.NotContains(t, buf.String(), "eval-1")
	assert.Contains(t, buf.String(), "back on the terminal")
}

func TestRedirectLogs_BadPath(t *testing.T) {
	_, err := redirectLogs(filepath.Join(t.TempDir(), "missing", "tui.log"))
	assert.ErrorContains(t, err, "open log file")
}
