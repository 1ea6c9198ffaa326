package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/policyshield/internal/adapters/driving/web"
	"github.com/custodia-labs/policyshield/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web UI",
	Long: `Start the Secure Network Policy Assistant web UI.

The server listens on 0.0.0.0:8501 unless server.address / server.port say
otherwise. It serves the request form at /, a JSON API under /api/v1 and a
health check at /healthz.

Guardrail rule files and prompt templates are reloaded when they change.
SIGINT or SIGTERM shut the server down gracefully.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("address", "", "listen address (overrides server.address)")
	serveCmd.Flags().IntP("port", "p", 0, "listen port (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	cfg := web.Config{
		Server:    settings.Server,
		RateLimit: settings.RateLimit,
	}
	if cmd.Flags().Changed("address") {
		cfg.Server.Address, _ = cmd.Flags().GetString("address") //nolint:errcheck // flag is registered above
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port, _ = cmd.Flags().GetInt("port") //nolint:errcheck // flag is registered above
	}

	svc, err := loadServices(cmd.Context())
	if err != nil {
		return err
	}

	server, err := web.NewServer(&web.Ports{Shield: svc.Shield, History: svc.History}, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if svc.Watch != nil {
		go func() {
			if err := svc.Watch(ctx); err != nil && !errors.Is(err, ctx.Err()) {
				logger.Warn("config watcher stopped: %v", err)
			}
		}()
	}

	fmt.Fprintf(cmd.OutOrStdout(), "PolicyShield listening on http://%s (model: %s)\n",
		server.Addr(), svc.Shield.ModelName())
	return server.Run(ctx)
}
