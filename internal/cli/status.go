package cli

import (
	"github.com/spf13/cobra"
)

func newMaintenanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "maintenance",
		Short: "Check whether the game servers are up",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result MaintenanceResult

			if err := client.Get("/api/v1/maintenance", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newBannersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "banners",
		Short: "Show the news banners",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result BannerList

			if err := client.Get("/api/v1/banners", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the launcher API is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result HealthResult
			if err := client.Get("/api/v1/health", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}
