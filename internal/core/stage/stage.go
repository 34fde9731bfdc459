// Package stage contains the pure business logic mapping elapsed time since the
// last cleaning to a corruption stage.
// This is part of the Functional Core - no I/O, only pure functions.
package stage

import (
	"fmt"
	"math"
	"time"
)

// Stage is one of five discrete corruption levels. 0 is untouched, 4 is eroded.
type Stage int

const (
	Untouched Stage = 0
	Wearing   Stage = 1
	Drifting  Stage = 2
	Cracking  Stage = 3
	Eroded    Stage = 4
)

// Terminal is the stage at which the engraved text is gone.
const Terminal = Eroded

// Unbounded is the elapsed duration reported when there is no active entry.
const Unbounded = time.Duration(math.MaxInt64)

var thresholds = [...]time.Duration{
	Untouched: 0,
	Wearing:   6 * time.Hour,
	Drifting:  12 * time.Hour,
	Cracking:  18 * time.Hour,
	Eroded:    24 * time.Hour,
}

var labels = [...]string{
	Untouched: "steady",
	Wearing:   "wearing",
	Drifting:  "drifting",
	Cracking:  "last chance to recover",
	Eroded:    "ended",
}

// For maps an elapsed duration to its stage.
func For(elapsed time.Duration) Stage {
	for s := Terminal; s > Untouched; s-- {
		if elapsed >= thresholds[s] {
			return s
		}
	}
	return Untouched
}

// Threshold returns the elapsed time at which s begins.
func Threshold(s Stage) time.Duration {
	if !s.Valid() {
		return Unbounded
	}
	return thresholds[s]
}

// Clamp floors v and clamps it into [0,4]. ok is false for NaN and infinities.
func Clamp(v float64) (s Stage, ok bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Untouched, false
	}
	n := math.Floor(v)
	if n < 0 {
		return Untouched, true
	}
	if n > float64(Terminal) {
		return Terminal, true
	}
	return Stage(n), true
}

// Label returns the companion text shown next to the pebble.
func Label(s Stage) string {
	if !s.Valid() {
		return ""
	}
	return labels[s]
}

// Valid reports whether s is one of the five stages.
func (s Stage) Valid() bool {
	return s >= Untouched && s <= Terminal
}

// IsTerminal reports whether s is the eroded stage.
func (s Stage) IsTerminal() bool { return s == Terminal }

func (s Stage) String() string {
	return fmt.Sprintf("stage-%d", int(s))
}
