// Package session contains the pure business logic for the single typed session
// state: its versioned decode/encode at the persistence boundary and the plans
// for starting, cleaning, finishing, and abandoning a commitment.
// This is part of the Functional Core - no I/O, only pure functions.
package session

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/example/pebble/internal/core/entry"
	"github.com/example/pebble/internal/core/stage"
)

// CurrentVersion is written alongside every encoded state.
// Version 2 is the legacy layout that had no version key.
const CurrentVersion = 3

// Logical keys at the persistence boundary. All values are strings.
const (
	KeyVersion     = "pebble_state_version"
	KeyText        = "pebble_text_v2"
	KeyCreated     = "pebble_created_v2"
	KeyLastCleaned = "pebble_last_clean_v2"
	KeyVariant     = "pebble_stone_variant_v1"
)

// RewriteCachePrefix namespaces cached rewrites by stage and text.
const RewriteCachePrefix = "pebble_mutated_v3"

// VariantCount is the number of pebble shapes.
const VariantCount = 3

// Keys lists every key owned by the session state.
func Keys() []string {
	return []string{KeyVersion, KeyText, KeyCreated, KeyLastCleaned, KeyVariant}
}

// RewriteCacheKey builds the cache key for a (text, stage) pair.
func RewriteCacheKey(text string, s stage.Stage) string {
	return RewriteCachePrefix + ":" + strconv.Itoa(int(s)) + ":" + text
}

// State is the whole client-held session.
type State struct {
	Version    int
	Entry      entry.Entry
	Variant    int
	HasVariant bool
}

// Empty returns a state with no active commitment.
func Empty() State {
	return State{Version: CurrentVersion}
}

// DecodeReport describes what Decode had to fix.
type DecodeReport struct {
	StoredVersion  int
	Migrated       bool
	UnknownVersion bool
	Malformed      []string
	VariantDropped bool
	StaleCleared   bool
	Repair         entry.RepairReport
}

// NeedsWrite reports whether the decoded state differs from what was stored.
func (r DecodeReport) NeedsWrite() bool {
	return r.Migrated || len(r.Malformed) > 0 || r.VariantDropped || r.StaleCleared || r.Repair.Repaired()
}

// Decode validates raw stored values into a State, repairing anything missing or
// malformed rather than failing.
func Decode(values map[string]string, now time.Time) (State, DecodeReport) {
	var report DecodeReport
	st := State{Version: CurrentVersion}

	switch raw, ok := values[KeyVersion]; {
	case !ok:
		report.StoredVersion = 2
		report.Migrated = hasAny(values, KeyText, KeyCreated, KeyLastCleaned, KeyVariant)
	default:
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		switch {
		case err != nil:
			report.Malformed = append(report.Malformed, KeyVersion)
			report.StoredVersion = 2
		case v > CurrentVersion:
			report.UnknownVersion = true
			report.StoredVersion = v
		default:
			report.StoredVersion = v
			report.Migrated = v < CurrentVersion
		}
	}

	st.Entry.Text = strings.TrimSpace(values[KeyText])
	st.Entry.Created = decodeMillis(values, KeyCreated, &report)
	st.Entry.LastCleaned = decodeMillis(values, KeyLastCleaned, &report)

	if raw, ok := values[KeyVariant]; ok {
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || v < 0 || v >= VariantCount {
			report.VariantDropped = true
		} else {
			st.Variant = v
			st.HasVariant = true
		}
	}

	if !st.Entry.Active() {
		if !st.Entry.Created.IsZero() || !st.Entry.LastCleaned.IsZero() {
			report.StaleCleared = true
		}
		st.Entry = entry.Entry{}
		return st, report
	}

	st.Entry, report.Repair = entry.Repair(st.Entry, now)
	return st, report
}

func decodeMillis(values map[string]string, key string, report *DecodeReport) time.Time {
	raw, ok := values[key]
	if !ok || strings.TrimSpace(raw) == "" {
		return time.Time{}
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || ms <= 0 {
		report.Malformed = append(report.Malformed, key)
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

func hasAny(values map[string]string, keys ...string) bool {
	for _, k := range keys {
		if _, ok := values[k]; ok {
			return true
		}
	}
	return false
}

// Encode renders st as the key/value pairs to store and the keys to remove.
// Timestamps are decimal milliseconds since the Unix epoch.
func Encode(st State) (set map[string]string, remove []string) {
	set = map[string]string{KeyVersion: strconv.Itoa(CurrentVersion)}

	if st.Entry.Active() {
		set[KeyText] = st.Entry.Text
		putMillis(set, &remove, KeyCreated, st.Entry.Created)
		putMillis(set, &remove, KeyLastCleaned, st.Entry.LastCleaned)
	} else {
		remove = append(remove, KeyText, KeyCreated, KeyLastCleaned)
	}

	if st.HasVariant {
		set[KeyVariant] = strconv.Itoa(st.Variant)
	} else {
		remove = append(remove, KeyVariant)
	}

	sort.Strings(remove)
	return set, remove
}

func putMillis(set map[string]string, remove *[]string, key string, t time.Time) {
	if t.IsZero() {
		*remove = append(*remove, key)
		return
	}
	set[key] = strconv.FormatInt(t.UnixMilli(), 10)
}
