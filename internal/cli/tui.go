package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/pebble/internal/tui"
	"github.com/example/pebble/internal/wire"
)

// TUICmd returns the tui command
func TUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the pebble in the terminal",
		Long: `Open the pebble full screen. Drag across it with the mouse to clean it.

  f      finish and archive the stone
  n      engrave a new commitment
  q      quit

Logs go to tui.log next to the database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := wire.Config()
			return tui.Run(cmd.Context(), tui.Options{
				Service:  wire.PebbleService(),
				Cleaning: cfg.Cleaning.Core(),
				Tick:     cfg.Tick,
				Clock:    wire.Clock,
				Logger:   wire.Logger(),
			}, wire.StageEngine())
		},
	}
}
