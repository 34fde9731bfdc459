// Package cli provides CLI commands for pebble.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/example/pebble/internal/config"
	"github.com/example/pebble/internal/logging"
	"github.com/example/pebble/internal/wire"
)

// RootCmd returns the pebble root command with every subcommand registered.
func RootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pebble",
		Short: "A pebble that wears away your commitment unless you clean it",
		Long: `Pebble engraves one short commitment on a stone. Left alone, the stone
gathers grime and the words drift, crack and finally wear away. Cleaning it
resets the decay; finishing it moves the stone to your archive.`,
		SilenceUsage:      true,
		PersistentPreRunE: Bootstrap,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default .pebble.yaml)")
	flags.String("db", "", "database path (default ~/.pebble/pebble.db)")
	flags.BoolP("verbose", "v", false, "debug logging")
	_ = viper.BindPFlag("db_path", flags.Lookup("db"))
	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))

	rootCmd.AddCommand(StartCmd())
	rootCmd.AddCommand(StatusCmd())
	rootCmd.AddCommand(CleanCmd())
	rootCmd.AddCommand(FinishCmd())
	rootCmd.AddCommand(AbandonCmd())
	rootCmd.AddCommand(ArchiveCmd())
	rootCmd.AddCommand(LogCmd())
	rootCmd.AddCommand(ServeCmd())
	rootCmd.AddCommand(TUICmd())

	return rootCmd
}

// Bootstrap loads configuration and hands it to wire. It runs before every
// subcommand via PersistentPreRunE.
func Bootstrap(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	if err := config.Init(cfgFile); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	opts, err := logOptions(cmd.Name(), cfg)
	if err != nil {
		return err
	}
	logger, err := logging.New(opts)
	if err != nil {
		return err
	}

	wire.Configure(cfg, logger)
	return nil
}

// logOptions keeps CLI output clean: only serve logs at info to stderr, and
// the TUI logs to a file next to the database.
func logOptions(command string, cfg config.Config) (logging.Options, error) {
	switch command {
	case "serve":
		return logging.Options{Level: logging.LevelFor(cfg.Verbose, "info")}, nil
	case "tui":
		dir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return logging.Options{}, fmt.Errorf("failed to create log directory: %w", err)
		}
		return logging.Options{
			Level:       logging.LevelFor(cfg.Verbose, "info"),
			OutputPaths: []string{filepath.Join(dir, "tui.log")},
		}, nil
	default:
		return logging.Options{Level: logging.LevelFor(cfg.Verbose, "warn")}, nil
	}
}
