package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/example/pebble/internal/core/session"
	"github.com/example/pebble/internal/core/stage"
	"github.com/example/pebble/internal/ports/secondary"
)

// EngineView is what the stone currently shows.
type EngineView struct {
	Text    string // active entry text, empty when none
	Stage   stage.Stage
	Display string // engraved text
	Pending bool   // a rewrite for Stage is in flight
}

// StageEngine maps elapsed time to a stage and keeps the engraved text in step
// with it. A rewrite is requested only when the stage changes, and a result
// that completes after a newer stage has been computed is dropped.
type StageEngine struct {
	cache  secondary.RewriteCache
	client secondary.RewriteClient
	logger *zap.Logger
	clock  func() time.Time

	group singleflight.Group
	wg    sync.WaitGroup

	mu       sync.Mutex
	view     EngineView
	tracked  bool
	onChange func(EngineView)
}

// NewStageEngine creates a StageEngine.
func NewStageEngine(cache secondary.RewriteCache, client secondary.RewriteClient, logger *zap.Logger, clock func() time.Time) *StageEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = time.Now
	}
	return &StageEngine{
		cache:  cache,
		client: client,
		logger: logger,
		clock:  clock,
		view:   EngineView{Stage: stage.Terminal},
	}
}

// OnChange registers fn to be called after the view changes. fn must not call
// back into the engine synchronously.
func (e *StageEngine) OnChange(fn func(EngineView)) {
	e.mu.Lock()
	e.onChange = fn
	e.mu.Unlock()
}

// Invalidate forgets the last computed stage so the next Recompute is treated
// as a transition.
func (e *StageEngine) Invalidate() {
	e.mu.Lock()
	e.tracked = false
	e.mu.Unlock()
}

// View returns the current view.
func (e *StageEngine) View() EngineView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view
}

// Display returns the engraved text.
func (e *StageEngine) Display() string {
	return e.View().Display
}

// Wait blocks until all in-flight rewrites have been applied or discarded.
func (e *StageEngine) Wait() {
	e.wg.Wait()
}

// Recompute derives the stage for st at the current time and, on a transition,
// updates the display from the cache or starts an asynchronous rewrite.
func (e *StageEngine) Recompute(ctx context.Context, st session.State) stage.Stage {
	text := strings.TrimSpace(st.Entry.Text)
	now := e.clock()

	e.mu.Lock()
	if text == "" {
		e.view = EngineView{Stage: stage.Terminal}
		e.tracked = false
		e.notifyLocked()
		return stage.Terminal
	}

	s := st.StageAt(now)
	if text != e.view.Text {
		e.tracked = false
	}
	if e.tracked && s == e.view.Stage {
		e.mu.Unlock()
		return s
	}

	prevText := e.view.Text
	e.tracked = true
	e.view.Text = text
	e.view.Stage = s
	e.view.Pending = false

	switch {
	case s == stage.Untouched:
		e.view.Display = text
	case s.IsTerminal():
		e.view.Display = ""
	default:
		cached, ok, err := e.cache.Get(ctx, text, s)
		if err != nil {
			e.logger.Warn("rewrite cache read failed", zap.String("text", text), zap.Int("stage", int(s)), zap.Error(err))
		}
		if ok {
			e.view.Display = cached
			break
		}
		if prevText != text {
			e.view.Display = text
		}
		e.view.Pending = true
		e.wg.Add(1)
		go e.fetch(ctx, text, s)
	}

	e.notifyLocked()
	return s
}

// notifyLocked releases e.mu and then calls the change callback.
func (e *StageEngine) notifyLocked() {
	fn, view := e.onChange, e.view
	e.mu.Unlock()
	if fn != nil {
		fn(view)
	}
}

func (e *StageEngine) fetch(ctx context.Context, text string, s stage.Stage) {
	defer e.wg.Done()

	v, err, _ := e.group.Do(session.RewriteCacheKey(text, s), func() (any, error) {
		out, err := e.client.Rewrite(ctx, text, s)
		if err != nil {
			return "", err
		}
		out = strings.TrimSpace(out)
		if out == "" {
			out = text
		}
		// Stale results are still cached; the key is exact.
		if err := e.cache.Put(ctx, text, s, out); err != nil {
			e.logger.Warn("rewrite cache write failed", zap.String("text", text), zap.Int("stage", int(s)), zap.Error(err))
		}
		return out, nil
	})

	e.mu.Lock()
	if e.view.Text != text || e.view.Stage != s {
		e.mu.Unlock()
		e.logger.Debug("discarding stale rewrite", zap.String("text", text), zap.Int("stage", int(s)))
		return
	}
	e.view.Pending = false
	if err != nil {
		e.logger.Warn("rewrite failed", zap.String("text", text), zap.Int("stage", int(s)), zap.Error(err))
		e.view.Display = text
	} else {
		e.view.Display = v.(string)
	}
	e.notifyLocked()
}
