package app

import (
	"context"
	"sync"
	"time"

	"github.com/example/pebble/internal/core/archive"
	"github.com/example/pebble/internal/core/cleaning"
	"github.com/example/pebble/internal/ports/primary"
)

// CleanResult reports what a pointer move did.
type CleanResult struct {
	Outcome cleaning.Outcome
	Status  *primary.Status // set when Outcome is not None
	Stone   *archive.Stone  // set when the stone was finished
}

// CleaningSession feeds pointer events into a cleaning gesture and applies its
// completion to the pebble service.
type CleaningSession struct {
	svc   primary.PebbleService
	clock func() time.Time

	mu      sync.Mutex
	gesture *cleaning.Gesture
}

// NewCleaningSession creates a CleaningSession over a surface of the given size.
func NewCleaningSession(svc primary.PebbleService, cfg cleaning.Config, surface cleaning.Surface, clock func() time.Time) *CleaningSession {
	if clock == nil {
		clock = time.Now
	}
	return &CleaningSession{
		svc:     svc,
		clock:   clock,
		gesture: cleaning.NewGesture(cfg, surface),
	}
}

// Resize updates the render surface.
func (c *CleaningSession) Resize(surface cleaning.Surface) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gesture.Resize(surface)
}

// Begin starts a gesture at p.
func (c *CleaningSession) Begin(p cleaning.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gesture.Start(c.clock(), p)
}

// Move extends the gesture to p. On completion it cleans the stone or, at the
// terminal stage, finishes it.
func (c *CleaningSession) Move(ctx context.Context, p cleaning.Point) (CleanResult, error) {
	status, err := c.svc.Status(ctx)
	if err != nil {
		return CleanResult{}, err
	}
	if !status.Active {
		return CleanResult{}, nil
	}

	c.mu.Lock()
	outcome := c.gesture.Move(c.clock(), p, status.Stage)
	c.mu.Unlock()

	switch outcome {
	case cleaning.Cleaned:
		st, stone, err := c.svc.CompleteClean(ctx)
		if err != nil {
			return CleanResult{}, err
		}
		if stone != nil {
			outcome = cleaning.Finished
		}
		return CleanResult{Outcome: outcome, Status: st, Stone: stone}, nil
	case cleaning.Finished:
		stone, err := c.svc.Finish(ctx)
		if err != nil {
			return CleanResult{}, err
		}
		st, err := c.svc.Status(ctx)
		if err != nil {
			return CleanResult{}, err
		}
		return CleanResult{Outcome: outcome, Status: st, Stone: stone}, nil
	default:
		return CleanResult{Outcome: cleaning.None}, nil
	}
}

// End releases the pointer. Progress toward an unfinished clean is lost.
func (c *CleaningSession) End() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gesture.End()
}

// Progress reports the gesture's completion in [0, 1].
func (c *CleaningSession) Progress() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gesture.Progress()
}

// Dragging reports whether a gesture is in progress.
func (c *CleaningSession) Dragging() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gesture.Phase() == cleaning.Dragging
}
