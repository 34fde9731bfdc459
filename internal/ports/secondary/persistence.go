// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"errors"
	"time"

	"github.com/example/pebble/internal/core/archive"
	"github.com/example/pebble/internal/core/stage"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// StateStore defines the secondary port for the string key/value store at the
// persistence boundary.
type StateStore interface {
	// Load returns the stored values for keys. Absent keys are omitted.
	Load(ctx context.Context, keys []string) (map[string]string, error)

	// Apply writes set and removes remove as one unit.
	Apply(ctx context.Context, set map[string]string, remove []string) error
}

// Transactor defines the secondary port for running several writes as one
// unit. Repositories called with the context passed to fn join the same
// transaction; if fn fails nothing it wrote is kept.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// RewriteCache defines the secondary port for memoized rewrites keyed by
// exact (text, stage). Stage 0 is never stored.
type RewriteCache interface {
	// Get returns the cached rewrite and whether it was present.
	Get(ctx context.Context, text string, s stage.Stage) (string, bool, error)

	// Put stores a rewrite. Entries are never evicted.
	Put(ctx context.Context, text string, s stage.Stage, rewritten string) error
}

// ArchiveRepository defines the secondary port for finished stones.
type ArchiveRepository interface {
	// Prepend stores a stone as the newest archive entry.
	Prepend(ctx context.Context, stone *archive.Stone) error

	// List returns stones newest first, without snapshot bytes.
	List(ctx context.Context, filters ArchiveFilters) ([]*archive.Stone, error)

	// GetByID returns a stone including its snapshot.
	GetByID(ctx context.Context, id string) (*archive.Stone, error)
}

// ArchiveFilters contains filter options for listing the archive.
type ArchiveFilters struct {
	Limit int
}

// ActivityLog defines the secondary port for the activity history.
type ActivityLog interface {
	// Record appends an activity entry.
	Record(ctx context.Context, rec *ActivityRecord) error

	// List returns entries newest first.
	List(ctx context.Context, limit int) ([]*ActivityRecord, error)
}

// ActivityRecord represents an activity entry as stored in persistence.
type ActivityRecord struct {
	ID        int64
	Kind      string
	Detail    string
	Stage     int
	CreatedAt time.Time
}
