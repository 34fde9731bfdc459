package cli

import (
	"github.com/spf13/cobra"

	cliadapter "github.com/example/pebble/internal/adapters/cli"
	"github.com/example/pebble/internal/wire"
)

// ArchiveCmd returns the archive command
func ArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Browse finished stones",
	}

	cmd.AddCommand(archiveListCmd())
	cmd.AddCommand(archiveShowCmd())
	cmd.AddCommand(archiveExportCmd())

	return cmd
}

func archiveListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List finished stones, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.PebbleAdapterWithOutput(cmd.OutOrStdout()).List(cmd.Context(), limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most this many stones (0 for all)")

	return cmd
}

func archiveShowCmd() *cobra.Command {
	var pngPath string

	cmd := &cobra.Command{
		Use:   "show <stone-id>",
		Short: "Show a finished stone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.PebbleAdapterWithOutput(cmd.OutOrStdout()).Show(cmd.Context(), args[0], pngPath)
		},
	}

	cmd.Flags().StringVar(&pngPath, "png", "", "write the stone's snapshot to this file")

	return cmd
}

func archiveExportCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the archive as JSON or YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.PebbleAdapterWithOutput(cmd.OutOrStdout()).Export(cmd.Context(), format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", cliadapter.FormatJSON, "output format: json or yaml")

	return cmd
}
