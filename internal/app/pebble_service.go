package app

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/pebble/internal/core/archive"
	"github.com/example/pebble/internal/core/entry"
	"github.com/example/pebble/internal/core/session"
	"github.com/example/pebble/internal/core/stage"
	"github.com/example/pebble/internal/ports/primary"
	"github.com/example/pebble/internal/ports/secondary"
)

// PebbleServiceImpl implements the PebbleService interface.
// It owns the single session state; the store is written through the executor.
type PebbleServiceImpl struct {
	store    secondary.StateStore
	archive  secondary.ArchiveRepository
	activity secondary.ActivityLog
	executor EffectExecutor
	engine   *StageEngine
	logger   *zap.Logger
	clock    func() time.Time

	// RollVariant picks the shape for a new entry. prev is -1 when there is
	// no previous shape to avoid.
	RollVariant func(prev int) int
	// NewID returns a unique token for archived stone identifiers.
	NewID func() string

	mu          sync.Mutex
	state       session.State
	loaded      bool
	lastVariant int
}

// NewPebbleService creates a new PebbleService with injected dependencies.
func NewPebbleService(
	store secondary.StateStore,
	archiveRepo secondary.ArchiveRepository,
	activity secondary.ActivityLog,
	executor EffectExecutor,
	engine *StageEngine,
	logger *zap.Logger,
	clock func() time.Time,
) *PebbleServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = time.Now
	}
	return &PebbleServiceImpl{
		store:       store,
		archive:     archiveRepo,
		activity:    activity,
		executor:    executor,
		engine:      engine,
		logger:      logger,
		clock:       clock,
		RollVariant: rollVariant,
		NewID:       uuid.NewString,
		lastVariant: -1,
	}
}

// rollVariant picks a shape different from prev.
func rollVariant(prev int) int {
	if prev < 0 || prev >= session.VariantCount {
		return rand.IntN(session.VariantCount)
	}
	return (prev + 1 + rand.IntN(session.VariantCount-1)) % session.VariantCount
}

// Load reads and repairs the stored session. Other operations load lazily.
func (s *PebbleServiceImpl) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *PebbleServiceImpl) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.loadLocked(ctx)
}

func (s *PebbleServiceImpl) loadLocked(ctx context.Context) error {
	values, err := s.store.Load(ctx, session.Keys())
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	now := s.clock()
	st, report := session.Decode(values, now)

	rolled := false
	if st.Entry.Active() && !st.HasVariant {
		st.Variant = s.RollVariant(-1)
		st.HasVariant = true
		rolled = true
	}

	plan := session.RepairPlan(st, report)
	if rolled && len(plan.StateOps) == 0 {
		plan = session.RepairPlan(st, session.DecodeReport{VariantDropped: true})
	}
	if err := s.executor.Execute(ctx, plan.Effects()); err != nil {
		return fmt.Errorf("failed to persist repaired session: %w", err)
	}

	s.state = plan.Next
	s.loaded = true
	if s.state.HasVariant {
		s.lastVariant = s.state.Variant
	}
	s.engine.Recompute(ctx, s.state)
	return nil
}

// Start begins a new commitment, replacing any active one.
func (s *PebbleServiceImpl) Start(ctx context.Context, text string) (*primary.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	prev := s.lastVariant
	if s.state.HasVariant {
		prev = s.state.Variant
	}
	plan, err := session.PlanStart(text, s.clock(), s.RollVariant(prev))
	if err != nil {
		return nil, err
	}
	if err := s.executor.Execute(ctx, plan.Effects()); err != nil {
		return nil, fmt.Errorf("failed to start entry: %w", err)
	}

	s.state = plan.Next
	s.lastVariant = s.state.Variant
	s.engine.Invalidate()
	s.engine.Recompute(ctx, s.state)
	return s.statusLocked(), nil
}

// CompleteClean applies a completed cleaning gesture. At the terminal stage it
// finishes the stone instead.
func (s *PebbleServiceImpl) CompleteClean(ctx context.Context) (*primary.Status, *archive.Stone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, nil, err
	}

	now := s.clock()
	if s.state.Entry.Active() && s.state.StageAt(now).IsTerminal() {
		stone, err := s.finishLocked(ctx)
		if err != nil {
			return nil, nil, err
		}
		return s.statusLocked(), stone, nil
	}

	plan, err := session.PlanClean(s.state, now)
	if err != nil {
		return nil, nil, err
	}
	if err := s.executor.Execute(ctx, plan.Effects()); err != nil {
		return nil, nil, fmt.Errorf("failed to clean: %w", err)
	}

	s.state = plan.Next
	s.engine.Invalidate()
	s.engine.Recompute(ctx, s.state)
	return s.statusLocked(), nil, nil
}

// Finish archives the active commitment and resets.
func (s *PebbleServiceImpl) Finish(ctx context.Context) (*archive.Stone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.finishLocked(ctx)
}

func (s *PebbleServiceImpl) finishLocked(ctx context.Context) (*archive.Stone, error) {
	display := s.state.Entry.Text
	if view := s.engine.View(); view.Text == s.state.Entry.Text {
		display = view.Display
	}

	id := archive.FormatID(s.NewID())
	plan, err := session.PlanFinish(s.state, s.clock(), id, display)
	if err != nil {
		return nil, err
	}
	if err := s.executor.Execute(ctx, plan.Effects()); err != nil {
		return nil, fmt.Errorf("failed to finish entry: %w", err)
	}

	s.lastVariant = s.state.Variant
	s.state = plan.Next
	s.engine.Recompute(ctx, s.state)

	stone, err := s.archive.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read archived stone: %w", err)
	}
	return stone, nil
}

// Abandon clears the active commitment without archiving it.
func (s *PebbleServiceImpl) Abandon(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	plan := session.PlanAbandon(s.state, s.clock())
	if err := s.executor.Execute(ctx, plan.Effects()); err != nil {
		return fmt.Errorf("failed to abandon entry: %w", err)
	}
	if s.state.HasVariant {
		s.lastVariant = s.state.Variant
	}
	s.state = plan.Next
	s.engine.Recompute(ctx, s.state)
	return nil
}

// Status reports the current state and display.
func (s *PebbleServiceImpl) Status(ctx context.Context) (*primary.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.statusLocked(), nil
}

// Tick recomputes the stage from the clock.
func (s *PebbleServiceImpl) Tick(ctx context.Context) (*primary.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	s.engine.Recompute(ctx, s.state)
	return s.statusLocked(), nil
}

// Archive lists finished stones, newest first.
func (s *PebbleServiceImpl) Archive(ctx context.Context, limit int) ([]*archive.Stone, error) {
	stones, err := s.archive.List(ctx, secondary.ArchiveFilters{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to list archive: %w", err)
	}
	return stones, nil
}

// Stone retrieves a finished stone with its snapshot.
func (s *PebbleServiceImpl) Stone(ctx context.Context, id string) (*archive.Stone, error) {
	return s.archive.GetByID(ctx, id)
}

// Activity lists recent activity, newest first.
func (s *PebbleServiceImpl) Activity(ctx context.Context, limit int) ([]*primary.ActivityEntry, error) {
	records, err := s.activity.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	out := make([]*primary.ActivityEntry, len(records))
	for i, r := range records {
		out[i] = &primary.ActivityEntry{Kind: r.Kind, Detail: r.Detail, Stage: r.Stage, At: r.CreatedAt}
	}
	return out, nil
}

func (s *PebbleServiceImpl) statusLocked() *primary.Status {
	now := s.clock()
	e := s.state.Entry
	if !e.Active() {
		return &primary.Status{Stage: stage.Terminal, Label: stage.Label(stage.Terminal)}
	}

	st := e.Stage(now)
	view := s.engine.View()
	display := view.Display
	pending := view.Pending
	if view.Text != e.Text || view.Stage != st {
		// Time has moved past the engine's last recompute.
		display, pending = e.Text, false
		if st.IsTerminal() {
			display = ""
		}
	}

	return &primary.Status{
		Active:      true,
		Text:        e.Text,
		Display:     display,
		Stage:       st,
		Label:       stage.Label(st),
		Elapsed:     e.Elapsed(now),
		DayCount:    entry.DayCount(e.Created, now),
		Variant:     s.state.Variant,
		Created:     e.Created,
		LastCleaned: e.LastCleaned,
		Pending:     pending,
	}
}

var _ primary.PebbleService = (*PebbleServiceImpl)(nil)
