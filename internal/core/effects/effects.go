// Package effects defines effect types as data structures representing I/O operations.
// This is the foundation of the Functional Core / Imperative Shell pattern.
// Effects are pure data - they describe what should happen, not how.
package effects

import "github.com/example/pebble/internal/core/archive"

// Effect is the base interface for all effects.
// Effects represent I/O operations as data that can be interpreted by the shell.
type Effect interface {
	// EffectType returns a string identifier for the effect type.
	EffectType() string
}

// StateEffect writes and removes keys at the persistence boundary.
// Deletes are applied after sets.
type StateEffect struct {
	Set    map[string]string
	Delete []string
}

func (e StateEffect) EffectType() string { return "state" }

// ArchiveEffect prepends a stone to the archive after rendering its snapshot.
type ArchiveEffect struct {
	Stone    archive.Stone
	Snapshot archive.SnapshotSpec
}

func (e ArchiveEffect) EffectType() string { return "archive" }

// ActivityEffect records a line in the activity log.
type ActivityEffect struct {
	Kind   string // e.g., "start", "clean", "finish", "abandon", "repair"
	Detail string
	Stage  int
}

func (e ActivityEffect) EffectType() string { return "activity" }

// LogEffect represents a logging operation.
type LogEffect struct {
	Level   string
	Message string
	Fields  map[string]any
}

func (e LogEffect) EffectType() string { return "log" }
