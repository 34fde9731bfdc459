// Package entry contains the pure business logic for the active commitment:
// text normalization, elapsed time, repair of partially written state, and the
// inclusive day count shown as D+N.
// This is part of the Functional Core - no I/O, only pure functions.
package entry

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/example/pebble/internal/core/stage"
)

var (
	// ErrEmptyText is returned when a commitment normalizes to nothing.
	ErrEmptyText = errors.New("commitment text is required")
	// ErrNoActiveEntry is returned by operations that need an active entry.
	ErrNoActiveEntry = errors.New("no active commitment")
)

// Entry is the active commitment. A zero time means the field was never written.
type Entry struct {
	Text        string
	Created     time.Time
	LastCleaned time.Time
}

// Active reports whether the entry carries non-blank text.
func (e Entry) Active() bool {
	return strings.TrimSpace(e.Text) != ""
}

// Elapsed returns the time since the last cleaning, or stage.Unbounded when
// there is no active entry or no usable timestamp.
func (e Entry) Elapsed(now time.Time) time.Duration {
	if !e.Active() || e.LastCleaned.IsZero() {
		return stage.Unbounded
	}
	return now.Sub(e.LastCleaned)
}

// Stage is shorthand for stage.For(e.Elapsed(now)).
func (e Entry) Stage(now time.Time) stage.Stage {
	return stage.For(e.Elapsed(now))
}

var quoteReplacer = strings.NewReplacer(
	`"`, "", `'`, "",
	"“", "", "”", "",
	"‘", "", "’", "",
)

// Normalize strips quote characters and collapses whitespace.
func Normalize(text string) string {
	return collapseSpace(quoteReplacer.Replace(text))
}

func collapseSpace(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// RepairReport lists the fields Repair had to default.
type RepairReport struct {
	CreatedDefaulted     bool
	LastCleanedDefaulted bool
	LastCleanedClamped   bool
}

// Repaired reports whether any field changed.
func (r RepairReport) Repaired() bool {
	return r.CreatedDefaulted || r.LastCleanedDefaulted || r.LastCleanedClamped
}

// Repair fills in timestamps missing from an active entry.
// Rules:
// - Created defaults to now
// - LastCleaned defaults to Created
// - LastCleaned is never earlier than Created
func Repair(e Entry, now time.Time) (Entry, RepairReport) {
	var report RepairReport
	if !e.Active() {
		return e, report
	}

	if e.Created.IsZero() {
		e.Created = now
		report.CreatedDefaulted = true
	}
	if e.LastCleaned.IsZero() {
		e.LastCleaned = e.Created
		report.LastCleanedDefaulted = true
	}
	if e.LastCleaned.Before(e.Created) {
		e.LastCleaned = e.Created
		report.LastCleanedClamped = true
	}

	return e, report
}

// DayCount returns the inclusive number of calendar days between created and
// finished, aligned to midnight in finished's location. The result is at least 1.
func DayCount(created, finished time.Time) int {
	loc := finished.Location()
	n := civilDay(finished.In(loc)) - civilDay(created.In(loc)) + 1
	if n < 1 {
		return 1
	}
	return n
}

// civilDay numbers calendar dates so that DST shifts do not skew differences.
func civilDay(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}
