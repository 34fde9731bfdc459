package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/example/pebble/internal/ports/primary"
)

// Ticker periodically recomputes the stage.
type Ticker struct {
	svc      primary.PebbleService
	interval time.Duration
	logger   *zap.Logger
	onTick   func(*primary.Status)
}

// NewTicker creates a Ticker. onTick may be nil.
func NewTicker(svc primary.PebbleService, interval time.Duration, logger *zap.Logger, onTick func(*primary.Status)) *Ticker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Ticker{svc: svc, interval: interval, logger: logger, onTick: onTick}
}

// Run ticks until ctx is done and returns ctx.Err().
func (t *Ticker) Run(ctx context.Context) error {
	tk := time.NewTicker(t.interval)
	defer tk.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tk.C:
			st, err := t.svc.Tick(ctx)
			if err != nil {
				t.logger.Warn("tick failed", zap.Error(err))
				continue
			}
			if t.onTick != nil {
				t.onTick(st)
			}
		}
	}
}
