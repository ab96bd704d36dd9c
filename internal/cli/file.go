package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mcoot/galapa/internal/codec"
	"github.com/mcoot/galapa/internal/configfile"
)

func newFileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "file",
		Short: "Inspect the game's obfuscated config files",
	}

	cmd.AddCommand(newFileNameCmd())
	cmd.AddCommand(newFileTransformCmd("decode", "Decode a config file"))
	cmd.AddCommand(newFileTransformCmd("encode", "Encode a config file"))

	return cmd
}

func newFileNameCmd() *cobra.Command {
	var seed int
	var reverse bool

	cmd := &cobra.Command{
		Use:   "name <name>",
		Short: "Convert between a config file's plain and on-disk names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if !cmd.Flags().Changed("seed") {
				lookup := configfile.LookupName
				if reverse {
					lookup = configfile.Lookup
				}
				known, ok := lookup(filepath.Base(name))
				if !ok {
					return fmt.Errorf("%q is not a known config file, --seed is required", name)
				}
				seed = known.Seed
			}

			result := FileName{Name: codec.ObfuscateName(name, seed)}
			if reverse {
				result.Name = codec.DeobfuscateName(name, seed)
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&seed, "seed", 0, "Name cipher seed (default: the known file's seed)")
	cmd.Flags().BoolVar(&reverse, "reverse", false, "Recover the plain name from an on-disk name")

	return cmd
}

func newFileTransformCmd(use, short string) *cobra.Command {
	var username, output string

	cmd := &cobra.Command{
		Use:   use + " <path>",
		Short: short,
		Long: short + `. The file is recognised by its plain or on-disk name.
The codec is symmetric, so decode and encode differ only in intent.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			base := filepath.Base(path)
			known, ok := configfile.Lookup(base)
			if !ok {
				known, ok = configfile.LookupName(base)
			}
			if !ok {
				return fmt.Errorf("%q is not a known config file", base)
			}
			if known.UserKeyed && username == "" {
				return fmt.Errorf("--username is required for %s", known.Name)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			result, err := codec.Transform(data, known.Key(username))
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(result)
				return err
			}
			return os.WriteFile(output, result, 0o644)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Windows user name the file is keyed to")
	cmd.Flags().StringVar(&output, "out", "", "Output file (default: stdout)")

	return cmd
}
