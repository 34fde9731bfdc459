package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/pebble/internal/config"
	"github.com/example/pebble/internal/server"
	"github.com/example/pebble/internal/wire"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	var addr string
	var withArchive bool
	var noWatch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the rewrite server",
		Long: `Run the HTTP rewrite server the stage engine talks to.

  POST /api/mutate   {text, stage} -> {ok, result}
  GET  /health       liveness

With --archive the finished stones are served too:

  GET /api/archive
  GET /api/archive/{id}/snapshot.png

Edits to the config file are picked up without a restart (temperature,
max tokens and prompt catalog).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := wire.Config()
			logger := wire.Logger()
			if addr == "" {
				addr = cfg.Server.Addr
			}

			rewriteSvc, err := wire.RewriteService()
			if err != nil {
				return err
			}

			deps := &server.Deps{Rewrite: rewriteSvc, Logger: logger}
			if withArchive {
				deps.Archive = wire.PebbleService()
			}

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				return server.Serve(ctx, addr, deps.Routes(), logger)
			})

			if path := config.File(); path != "" && !noWatch {
				g.Go(func() error {
					return config.Watch(ctx, path, logger, func(c config.Config) {
						settings, err := wire.RewriteSettings(c)
						if err != nil {
							logger.Warn("prompt catalog reload failed", zap.Error(err))
							return
						}
						rewriteSvc.Update(settings)
					})
				})
			}

			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 0.0.0.0:3001)")
	cmd.Flags().BoolVar(&withArchive, "archive", false, "also serve the local archive")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload the config file on change")

	return cmd
}
