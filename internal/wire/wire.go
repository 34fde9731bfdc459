// Package wire provides dependency injection for pebble.
// It creates singleton services with lazy initialization.
package wire

import (
	"io"
	"log"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	cliadapter "github.com/example/pebble/internal/adapters/cli"
	"github.com/example/pebble/internal/adapters/llm"
	"github.com/example/pebble/internal/adapters/rewrite"
	"github.com/example/pebble/internal/adapters/sqlite"
	"github.com/example/pebble/internal/app"
	"github.com/example/pebble/internal/config"
	"github.com/example/pebble/internal/db"
	"github.com/example/pebble/internal/prompt"
	"github.com/example/pebble/internal/render"
)

// Snapshot dimensions for archived stones.
const (
	SnapshotWidth  = 480
	SnapshotHeight = 360
)

var (
	cfg    config.Config
	logger = zap.NewNop()
	offset time.Duration

	pebbleService *app.PebbleServiceImpl
	engine        *app.StageEngine
	once          sync.Once

	rewriteService *app.RewriteServiceImpl
	rewriteErr     error
	rewriteOnce    sync.Once
)

// Configure sets the configuration and logger used by every singleton.
// It must be called before the first accessor.
func Configure(c config.Config, l *zap.Logger) {
	cfg = c
	if l != nil {
		logger = l
	}
	if c.DBPath != "" {
		db.SetPath(c.DBPath)
	}
}

// SetClockOffset shifts every clock reading by d, to preview later stages.
func SetClockOffset(d time.Duration) {
	offset = d
}

// Clock returns the current time as seen by the services.
func Clock() time.Time {
	return time.Now().Add(offset)
}

// Logger returns the configured logger.
func Logger() *zap.Logger {
	return logger
}

// Config returns the configuration passed to Configure.
func Config() config.Config {
	return cfg
}

// PebbleService returns the singleton PebbleService instance.
func PebbleService() *app.PebbleServiceImpl {
	once.Do(initServices)
	return pebbleService
}

// StageEngine returns the engine behind PebbleService.
func StageEngine() *app.StageEngine {
	once.Do(initServices)
	return engine
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	database, err := db.GetDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	store := sqlite.NewStateStore(database)
	cache := sqlite.NewRewriteCache(database)
	archiveRepo := sqlite.NewArchiveRepository(database)
	activity := sqlite.NewActivityLog(database)
	client := rewrite.NewClient(cfg.Rewrite.Endpoint, cfg.Rewrite.Timeout)
	renderer := render.NewRenderer(SnapshotWidth, SnapshotHeight)

	executor := app.NewEffectExecutor(sqlite.NewTransactor(database), store, archiveRepo, activity, renderer, logger, Clock)
	engine = app.NewStageEngine(cache, client, logger, Clock)
	pebbleService = app.NewPebbleService(store, archiveRepo, activity, executor, engine, logger, Clock)
}

// RewriteService returns the singleton RewriteService backed by the
// configured language model.
func RewriteService() (*app.RewriteServiceImpl, error) {
	rewriteOnce.Do(func() {
		model, err := llm.New(cfg.LLM.Adapter())
		if err != nil {
			rewriteErr = err
			return
		}
		settings, err := RewriteSettings(cfg)
		if err != nil {
			rewriteErr = err
			return
		}
		logger.Info("rewrite model selected", zap.String("model", model.Name()))
		rewriteService = app.NewRewriteService(model, settings, logger)
	})
	return rewriteService, rewriteErr
}

// RewriteSettings derives the hot-swappable rewrite settings from c.
func RewriteSettings(c config.Config) (app.RewriteSettings, error) {
	catalog, err := prompt.Load(c.Prompt.Catalog)
	if err != nil {
		return app.RewriteSettings{}, err
	}
	return app.RewriteSettings{
		Temperature: c.LLM.Temperature,
		MaxTokens:   c.LLM.MaxTokens,
		Catalog:     catalog,
	}, nil
}

// PebbleAdapter returns a new PebbleAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func PebbleAdapter() *cliadapter.PebbleAdapter {
	return PebbleAdapterWithOutput(os.Stdout)
}

// PebbleAdapterWithOutput returns a new PebbleAdapter writing to the given output.
func PebbleAdapterWithOutput(out io.Writer) *cliadapter.PebbleAdapter {
	once.Do(initServices)
	return cliadapter.NewPebbleAdapter(pebbleService, out)
}

// Shutdown waits for in-flight rewrites and closes the database.
func Shutdown() {
	if engine != nil {
		engine.Wait()
	}
	if err := db.Close(); err != nil {
		logger.Warn("failed to close database", zap.Error(err))
	}
	_ = logger.Sync()
}
