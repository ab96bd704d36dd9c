package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "galapa",
		Short: "CLI tool for the Galapa launcher",
		Long: `galapa logs in to Dragon Quest X and starts the game.

Roster, login and status commands talk to a running launcher API (see
"galapa serve"). The file commands work on the game's config files directly.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			client = NewClient(cfg.ServerURL, cfg.Token, cfg.Verbose, cmd.ErrOrStderr())
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Launcher API URL (env: GALAPA_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "api-token", cfg.Token, "Launcher API token (env: GALAPA_API_TOKEN)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newPlayersCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLaunchCmd())
	rootCmd.AddCommand(newMaintenanceCmd())
	rootCmd.AddCommand(newBannersCmd())
	rootCmd.AddCommand(newFileCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
