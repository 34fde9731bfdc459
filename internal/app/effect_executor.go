// Package app contains the application layer - service implementations and effect execution.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/pebble/internal/core/effects"
	"github.com/example/pebble/internal/ports/secondary"
)

// EffectExecutor interprets and executes effects.
// This is the "Imperative Shell" - the only place I/O happens.
type EffectExecutor interface {
	Execute(ctx context.Context, effs []effects.Effect) error
}

// DefaultEffectExecutor implements EffectExecutor against the secondary ports.
type DefaultEffectExecutor struct {
	tx       secondary.Transactor
	store    secondary.StateStore
	archive  secondary.ArchiveRepository
	activity secondary.ActivityLog
	renderer secondary.SnapshotRenderer
	logger   *zap.Logger
	clock    func() time.Time
}

// NewEffectExecutor creates a new DefaultEffectExecutor. A nil tx runs each
// effect on its own.
func NewEffectExecutor(
	tx secondary.Transactor,
	store secondary.StateStore,
	archive secondary.ArchiveRepository,
	activity secondary.ActivityLog,
	renderer secondary.SnapshotRenderer,
	logger *zap.Logger,
	clock func() time.Time,
) *DefaultEffectExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = time.Now
	}
	return &DefaultEffectExecutor{
		tx:       tx,
		store:    store,
		archive:  archive,
		activity: activity,
		renderer: renderer,
		logger:   logger,
		clock:    clock,
	}
}

// Execute runs the persistence effects as one transaction, in order. Log
// effects run only after the writes have committed.
func (e *DefaultEffectExecutor) Execute(ctx context.Context, effs []effects.Effect) error {
	var writes []effects.Effect
	var logs []effects.LogEffect
	for _, eff := range effs {
		if l, ok := eff.(effects.LogEffect); ok {
			logs = append(logs, l)
			continue
		}
		writes = append(writes, eff)
	}

	run := func(ctx context.Context) error {
		for _, eff := range writes {
			if err := e.executeOne(ctx, eff); err != nil {
				return fmt.Errorf("failed to execute %s effect: %w", eff.EffectType(), err)
			}
		}
		return nil
	}
	var err error
	if e.tx != nil && len(writes) > 1 {
		err = e.tx.WithinTx(ctx, run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		return err
	}

	for _, l := range logs {
		e.executeLog(l)
	}
	return nil
}

func (e *DefaultEffectExecutor) executeOne(ctx context.Context, eff effects.Effect) error {
	switch typed := eff.(type) {
	case effects.StateEffect:
		return e.store.Apply(ctx, typed.Set, typed.Delete)
	case effects.ArchiveEffect:
		return e.executeArchive(ctx, typed)
	case effects.ActivityEffect:
		return e.executeActivity(ctx, typed)
	default:
		return fmt.Errorf("unknown effect type: %T", eff)
	}
}

func (e *DefaultEffectExecutor) executeArchive(ctx context.Context, eff effects.ArchiveEffect) error {
	stone := eff.Stone
	if e.renderer != nil {
		png, err := e.renderer.Render(eff.Snapshot)
		if err != nil {
			return fmt.Errorf("failed to render snapshot: %w", err)
		}
		stone.Snapshot = png
	}
	return e.archive.Prepend(ctx, &stone)
}

func (e *DefaultEffectExecutor) executeActivity(ctx context.Context, eff effects.ActivityEffect) error {
	if e.activity == nil {
		return nil
	}
	return e.activity.Record(ctx, &secondary.ActivityRecord{
		Kind:      eff.Kind,
		Detail:    eff.Detail,
		Stage:     eff.Stage,
		CreatedAt: e.clock(),
	})
}

func (e *DefaultEffectExecutor) executeLog(eff effects.LogEffect) {
	fields := make([]zap.Field, 0, len(eff.Fields))
	for k, v := range eff.Fields {
		fields = append(fields, zap.Any(k, v))
	}
	switch eff.Level {
	case "debug":
		e.logger.Debug(eff.Message, fields...)
	case "warn":
		e.logger.Warn(eff.Message, fields...)
	case "error":
		e.logger.Error(eff.Message, fields...)
	default:
		e.logger.Info(eff.Message, fields...)
	}
}
