package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/pebble/internal/wire"
)

// LogCmd returns the log command
func LogCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent activity",
		Long:  "Show recent starts, cleanings, finishes, abandons and repairs (default 20)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				limit = 20
			}
			return wire.PebbleAdapterWithOutput(cmd.OutOrStdout()).Log(cmd.Context(), limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries")

	return cmd
}
