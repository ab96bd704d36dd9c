package cli

import (
	"github.com/spf13/cobra"
)

func newLaunchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "launch <flow-id>",
		Short: "Start the game with a completed login flow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result LaunchResult

			if err := client.Post(flowPath(args[0], "/launch"), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}
