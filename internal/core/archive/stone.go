// Package archive defines the terminal snapshot of a finished commitment.
// This is part of the Functional Core - no I/O, only pure functions.
package archive

import (
	"fmt"
	"time"
)

// Stone is an archived commitment. Immutable once created.
type Stone struct {
	ID       string
	Text     string
	Created  time.Time
	Finished time.Time
	DayCount int
	Snapshot []byte // PNG
}

// SnapshotSpec describes the visual state to flatten into Stone.Snapshot.
type SnapshotSpec struct {
	Variant     int
	Stage       int
	DisplayText string
}

// Badge returns the D+N label shown next to the stone.
func (s Stone) Badge() string {
	return fmt.Sprintf("D+%d", s.DayCount)
}

// IDPrefix prefixes every stone identifier.
const IDPrefix = "stone_"

// FormatID builds a stone identifier from a unique token.
func FormatID(token string) string {
	return IDPrefix + token
}
