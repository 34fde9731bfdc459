// Package cleaning contains the pure state machine behind a cleaning gesture: a
// continuous pointer drag that must last long enough and cover enough of the
// pebble before it resets the clock.
// This is part of the Functional Core - no I/O, only pure functions.
package cleaning

import (
	"math"
	"time"

	"github.com/example/pebble/internal/core/stage"
)

// Config holds the thresholds a gesture must meet.
type Config struct {
	BrushRadius float64
	AreaRatio   float64
	MinDuration time.Duration
}

// DefaultConfig returns the thresholds used by the canvas client.
func DefaultConfig() Config {
	return Config{
		BrushRadius: 22,
		AreaRatio:   0.72,
		MinDuration: 5 * time.Second,
	}
}

// Surface is the render surface the pebble is drawn on.
type Surface struct {
	Width  float64
	Height float64
}

// PebbleRadius is the approximate pebble radius on s.
func (s Surface) PebbleRadius() float64 {
	return math.Min(s.Width, s.Height) * 0.40 * 0.8
}

// PebbleArea approximates the pebble as a circle.
func (s Surface) PebbleArea() float64 {
	r := s.PebbleRadius()
	return math.Pi * r * r
}

// Point is a pointer position on the surface.
type Point struct {
	X, Y float64
}

// Phase is the gesture state.
type Phase int

const (
	Idle Phase = iota
	Dragging
)

func (p Phase) String() string {
	if p == Dragging {
		return "dragging"
	}
	return "idle"
}

// Outcome is what a move event achieved.
type Outcome int

const (
	// None means keep dragging.
	None Outcome = iota
	// Cleaned means the clock should restart.
	Cleaned
	// Finished means the eroded stone should be archived and reset.
	Finished
)

// Gesture tracks one drag at a time.
type Gesture struct {
	cfg     Config
	surface Surface

	phase   Phase
	started time.Time
	last    Point
	erased  float64
	held    time.Duration
}

// NewGesture returns an idle gesture.
func NewGesture(cfg Config, surface Surface) *Gesture {
	return &Gesture{cfg: cfg, surface: surface}
}

// Resize changes the surface used for the area threshold.
func (g *Gesture) Resize(surface Surface) {
	g.surface = surface
}

// Start begins a drag, discarding any previous progress.
func (g *Gesture) Start(at time.Time, p Point) {
	g.phase = Dragging
	g.started = at
	g.last = p
	g.erased = 0
	g.held = 0
}

// Move accumulates erased area and checks the completion condition against the
// stage the pebble is currently at. Completion ends the gesture; later moves in
// the same drag are ignored.
func (g *Gesture) Move(at time.Time, p Point, current stage.Stage) Outcome {
	if g.phase != Dragging {
		return None
	}

	g.held = at.Sub(g.started)
	g.erased += math.Hypot(p.X-g.last.X, p.Y-g.last.Y) * g.cfg.BrushRadius * 2
	g.last = p

	switch {
	case current.IsTerminal():
		g.reset()
		return Finished
	case g.held >= g.cfg.MinDuration && g.erased >= g.Required():
		g.reset()
		return Cleaned
	default:
		return None
	}
}

// End releases the pointer without side effects.
func (g *Gesture) End() {
	g.reset()
}

func (g *Gesture) reset() {
	g.phase = Idle
	g.started = time.Time{}
	g.erased = 0
	g.held = 0
}

// Required is the erased area needed to complete a clean.
func (g *Gesture) Required() float64 {
	return g.surface.PebbleArea() * g.cfg.AreaRatio
}

// Phase returns the current state.
func (g *Gesture) Phase() Phase { return g.phase }

// Erased returns the accumulated erased-area estimate.
func (g *Gesture) Erased() float64 { return g.erased }

// Held returns how long the current drag has lasted as of the last move.
func (g *Gesture) Held() time.Duration { return g.held }

// Progress reports completion in [0,1] as the lesser of the two thresholds.
func (g *Gesture) Progress() float64 {
	if g.phase != Dragging {
		return 0
	}
	area := 1.0
	if req := g.Required(); req > 0 {
		area = math.Min(1, g.erased/req)
	}
	hold := 1.0
	if g.cfg.MinDuration > 0 {
		hold = math.Min(1, float64(g.held)/float64(g.cfg.MinDuration))
	}
	return math.Min(area, hold)
}
