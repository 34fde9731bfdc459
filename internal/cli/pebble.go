package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/pebble/internal/app"
	"github.com/example/pebble/internal/ports/primary"
	"github.com/example/pebble/internal/wire"
)

// settle recomputes the stage and waits for any rewrite it started, so the
// printed display is final.
func settle(ctx context.Context) error {
	if _, err := wire.PebbleService().Tick(ctx); err != nil {
		return err
	}
	wire.StageEngine().Wait()
	return nil
}

// StartCmd returns the start command
func StartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <text...>",
		Short: "Engrave a new commitment",
		Long: `Engrave a new commitment on a fresh stone. Quotes are stripped and
whitespace is collapsed. Any active commitment is replaced without archiving.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.PebbleAdapterWithOutput(cmd.OutOrStdout()).Start(cmd.Context(), strings.Join(args, " "))
		},
	}
}

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	var after time.Duration
	var watch bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the commitment and how worn it is",
		Long: `Show the engraved commitment as it currently reads, its stage and how long
since it was last cleaned.

--after previews the stone as it will look after the given time has passed.
--watch keeps running and prints again whenever the stone changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if after < 0 {
				return fmt.Errorf("--after must not be negative")
			}
			wire.SetClockOffset(after)

			ctx := cmd.Context()
			adapter := wire.PebbleAdapterWithOutput(cmd.OutOrStdout())
			if err := settle(ctx); err != nil {
				return err
			}
			last, err := adapter.Status(ctx)
			if err != nil {
				return err
			}
			if !watch {
				return nil
			}

			svc := wire.PebbleService()
			ticker := app.NewTicker(svc, wire.Config().Tick, wire.Logger(), func(*primary.Status) {
				wire.StageEngine().Wait()
				st, err := svc.Status(ctx)
				if err != nil || sameStatus(last, st) {
					return
				}
				adapter.PrintStatus(st)
				last = st
			})
			if err := ticker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&after, "after", 0, "preview the stone this far in the future (e.g. 13h)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep printing as the stone changes")

	return cmd
}

func sameStatus(a, b *primary.Status) bool {
	return a.Active == b.Active && a.Text == b.Text && a.Display == b.Display && a.Stage == b.Stage && a.DayCount == b.DayCount
}

// CleanCmd returns the clean command
func CleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Clean the stone without the drag gesture",
		Long: `Mark the stone as cleaned now, restoring the original engraving.
At the final stage cleaning finishes the stone instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := settle(ctx); err != nil {
				return err
			}
			return wire.PebbleAdapterWithOutput(cmd.OutOrStdout()).Clean(ctx)
		},
	}
}

// FinishCmd returns the finish command
func FinishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "finish",
		Short: "Archive the stone and start over",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := settle(ctx); err != nil {
				return err
			}
			return wire.PebbleAdapterWithOutput(cmd.OutOrStdout()).Finish(ctx)
		},
	}
}

// AbandonCmd returns the abandon command
func AbandonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "abandon",
		Short: "Discard the commitment without archiving it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.PebbleAdapterWithOutput(cmd.OutOrStdout()).Abandon(cmd.Context())
		},
	}
}
