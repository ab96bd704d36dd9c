package cli

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/galapa/internal/factory"
	"github.com/mcoot/galapa/internal/platform/config"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the launcher API",
		Long: `serve runs the launcher API the other commands talk to. It is configured
from GALAPA_* environment variables.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			settings, err := config.Load()
			if err != nil {
				return err
			}
			if addr != "" {
				settings.APIAddr = addr
			}

			app, err := factory.New(factory.Config{Settings: settings, Logger: logger})
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return app.Serve(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (env: GALAPA_API_ADDR)")

	return cmd
}

