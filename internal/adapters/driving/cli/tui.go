package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/policyshield/internal/adapters/driving/tui"
	"github.com/custodia-labs/policyshield/internal/logger"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for PolicyShield.

The TUI shows the request form, a masked authorization field, the process
log of each submission and the final policy. Recent evaluations are one key
away.

Controls:
  tab / shift+tab - Switch field
  ctrl+s          - Generate policy
  ctrl+n          - New request
  ctrl+r          - Recent evaluations (↑/k, ↓/j to move, esc to go back)
  ctrl+c          - Quit

Log messages are written to --log-file while the TUI is open.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().String("log-file", "", "log file used while the TUI runs (default $TMPDIR/policyshield-tui.log)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	svc, err := loadServices(cmd.Context())
	if err != nil {
		return err
	}

	app, err := tui.NewApp(tui.NewPorts(svc.Shield, svc.History))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	logPath, _ := cmd.Flags().GetString("log-file") //nolint:errcheck // flag is registered above
	if logPath == "" {
		logPath = filepath.Join(os.TempDir(), "policyshield-tui.log")
	}
	restore, err := redirectLogs(logPath)
	if err != nil {
		return err
	}
	defer restore()

	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// redirectLogs appends log output to path until restore is called,
// so warnings never draw over the alternate screen.
func redirectLogs(path string) (restore func(), err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	prev := logger.Output()
	logger.SetOutput(f)
	return func() {
		logger.SetOutput(prev)
		f.Close()
	}, nil
}
