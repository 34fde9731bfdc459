// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces the CLI, TUI, and HTTP server drive.
package primary

import (
	"context"
	"time"

	"github.com/example/pebble/internal/core/archive"
	"github.com/example/pebble/internal/core/stage"
)

// PebbleService defines the primary port for the active commitment.
type PebbleService interface {
	// Start begins a new commitment, replacing any active one.
	Start(ctx context.Context, text string) (*Status, error)

	// CompleteClean applies a completed cleaning gesture. At the terminal stage
	// it finishes the stone instead; the returned stone is non-nil in that case.
	CompleteClean(ctx context.Context) (*Status, *archive.Stone, error)

	// Finish archives the active commitment and resets.
	Finish(ctx context.Context) (*archive.Stone, error)

	// Abandon clears the active commitment without archiving it.
	Abandon(ctx context.Context) error

	// Status reports the current state and display.
	Status(ctx context.Context) (*Status, error)

	// Tick recomputes the stage from the clock.
	Tick(ctx context.Context) (*Status, error)

	// Archive lists finished stones, newest first.
	Archive(ctx context.Context, limit int) ([]*archive.Stone, error)

	// Stone retrieves a finished stone with its snapshot.
	Stone(ctx context.Context, id string) (*archive.Stone, error)

	// Activity lists recent activity, newest first.
	Activity(ctx context.Context, limit int) ([]*ActivityEntry, error)
}

// Status is a point-in-time view of the session.
type Status struct {
	Active      bool
	Text        string
	Display     string
	Stage       stage.Stage
	Label       string
	Elapsed     time.Duration
	DayCount    int
	Variant     int
	Created     time.Time
	LastCleaned time.Time
	Pending     bool // a rewrite for Stage is in flight
}

// ActivityEntry is one line of the activity history.
type ActivityEntry struct {
	Kind   string
	Detail string
	Stage  int
	At     time.Time
}
