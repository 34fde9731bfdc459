package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/pebble/internal/cli"
	"github.com/example/pebble/internal/version"
	"github.com/example/pebble/internal/wire"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer wire.Shutdown()

	rootCmd := cli.RootCmd()
	rootCmd.Version = version.String()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
