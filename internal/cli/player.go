package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newPlayersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "players",
		Short: "Saved player management commands",
	}

	cmd.AddCommand(newPlayersListCmd())
	cmd.AddCommand(newPlayersAddCmd())
	cmd.AddCommand(newPlayersRemoveCmd())
	cmd.AddCommand(newPlayersSelectCmd())
	cmd.AddCommand(newPlayersSecretsCmd())

	return cmd
}

func playerPath(token string, rest string) string {
	return "/api/v1/players/" + url.PathEscape(token) + rest
}

func newPlayersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved players",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PlayerList

			if err := client.Get("/api/v1/players", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newPlayersAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <token>",
		Short: "Add an account to the saved players",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"token": args[0]}
			var result Player

			if err := client.Post("/api/v1/players", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newPlayersRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <token>",
		Short: "Remove a saved player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(playerPath(args[0], "")); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.PrintMessage("Player removed")
			return nil
		},
	}
}

func newPlayersSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <token>",
		Short: "Mark a saved player as the last one used",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post(playerPath(args[0], "/select"), nil, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.PrintMessage("Player selected")
			return nil
		},
	}
}

func newPlayersSecretsCmd() *cobra.Command {
	var password, totpSecret string
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "secrets <token>",
		Short: "Store the password and TOTP secret used for auto-login",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !clearAll && password == "" && totpSecret == "" {
				return fmt.Errorf("--password or --totp-secret is required (or --clear)")
			}

			req := map[string]string{"password": password, "totp_secret": totpSecret}
			if err := client.Put(playerPath(args[0], "/secrets"), req, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.PrintMessage("Secrets updated")
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.Flags().StringVar(&totpSecret, "totp-secret", "", "Base32 TOTP secret")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Remove all stored secrets")

	return cmd
}
