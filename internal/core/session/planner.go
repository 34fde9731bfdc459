package session

import (
	"errors"
	"time"

	"github.com/example/pebble/internal/core/archive"
	"github.com/example/pebble/internal/core/effects"
	"github.com/example/pebble/internal/core/entry"
	"github.com/example/pebble/internal/core/stage"
)

// ErrEroded is returned by PlanClean once the stone has reached the terminal stage.
var ErrEroded = errors.New("stone has eroded; finish it to start a new one")

// Plan represents the next state and the planned effects that persist it.
type Plan struct {
	Next        State
	ArchiveOps  []effects.ArchiveEffect
	StateOps    []effects.StateEffect
	ActivityOps []effects.ActivityEffect
	LogOps      []effects.LogEffect
}

// Effects returns all effects as a flat slice for execution.
// Archive writes run before the state is cleared.
func (p Plan) Effects() []effects.Effect {
	result := make([]effects.Effect, 0, len(p.ArchiveOps)+len(p.StateOps)+len(p.ActivityOps)+len(p.LogOps))
	for _, e := range p.ArchiveOps {
		result = append(result, e)
	}
	for _, e := range p.StateOps {
		result = append(result, e)
	}
	for _, e := range p.ActivityOps {
		result = append(result, e)
	}
	for _, e := range p.LogOps {
		result = append(result, e)
	}
	return result
}

func persist(st State) effects.StateEffect {
	set, remove := Encode(st)
	return effects.StateEffect{Set: set, Delete: remove}
}

// RepairPlan persists a decoded state when Decode reported changes.
func RepairPlan(st State, report DecodeReport) Plan {
	plan := Plan{Next: st}
	if !report.NeedsWrite() {
		return plan
	}
	plan.StateOps = append(plan.StateOps, persist(st))
	if report.Repair.Repaired() {
		plan.ActivityOps = append(plan.ActivityOps, effects.ActivityEffect{
			Kind:   "repair",
			Detail: describeRepair(report.Repair),
		})
	}
	if report.Repair.Repaired() || len(report.Malformed) > 0 || report.UnknownVersion {
		plan.LogOps = append(plan.LogOps, effects.LogEffect{
			Level:   "info",
			Message: "repaired stored session",
			Fields: map[string]any{
				"stored_version":         report.StoredVersion,
				"malformed":              report.Malformed,
				"created_defaulted":      report.Repair.CreatedDefaulted,
				"last_cleaned_defaulted": report.Repair.LastCleanedDefaulted,
				"last_cleaned_clamped":   report.Repair.LastCleanedClamped,
			},
		})
	}
	return plan
}

func describeRepair(r entry.RepairReport) string {
	detail := ""
	add := func(s string) {
		if detail != "" {
			detail += ", "
		}
		detail += s
	}
	if r.CreatedDefaulted {
		add("created defaulted")
	}
	if r.LastCleanedDefaulted {
		add("last cleaned defaulted")
	}
	if r.LastCleanedClamped {
		add("last cleaned clamped to created")
	}
	return detail
}

// PlanStart plans a new commitment. variant is the freshly rolled pebble shape.
func PlanStart(rawText string, now time.Time, variant int) (Plan, error) {
	text := entry.Normalize(rawText)
	if err := entry.CanStart(entry.StartContext{NormalizedText: text}).Error(); err != nil {
		return Plan{}, entry.ErrEmptyText
	}

	next := State{
		Version:    CurrentVersion,
		Entry:      entry.Entry{Text: text, Created: now, LastCleaned: now},
		Variant:    variant % VariantCount,
		HasVariant: true,
	}

	return Plan{
		Next:        next,
		StateOps:    []effects.StateEffect{persist(next)},
		ActivityOps: []effects.ActivityEffect{{Kind: "start", Detail: text}},
	}, nil
}

// PlanClean plans a successful cleaning: the clock restarts at now.
func PlanClean(st State, now time.Time) (Plan, error) {
	if err := entry.CanClean(entry.ActiveContext{Current: st.Entry}).Error(); err != nil {
		return Plan{}, entry.ErrNoActiveEntry
	}
	was := st.Entry.Stage(now)
	if was.IsTerminal() {
		return Plan{}, ErrEroded
	}

	next := st
	next.Version = CurrentVersion
	next.Entry.LastCleaned = now

	return Plan{
		Next:        next,
		StateOps:    []effects.StateEffect{persist(next)},
		ActivityOps: []effects.ActivityEffect{{Kind: "clean", Detail: st.Entry.Text, Stage: int(was)}},
	}, nil
}

// PlanFinish plans archiving the active commitment followed by a full reset.
// displayText is what is currently engraved on the stone.
func PlanFinish(st State, now time.Time, id, displayText string) (Plan, error) {
	if err := entry.CanFinish(entry.ActiveContext{Current: st.Entry}).Error(); err != nil {
		return Plan{}, entry.ErrNoActiveEntry
	}

	created := st.Entry.Created
	if created.IsZero() {
		created = now
	}
	at := st.Entry.Stage(now)

	stone := archive.Stone{
		ID:       id,
		Text:     st.Entry.Text,
		Created:  created,
		Finished: now,
		DayCount: entry.DayCount(created, now),
	}

	next := Empty()
	return Plan{
		Next: next,
		ArchiveOps: []effects.ArchiveEffect{{
			Stone:    stone,
			Snapshot: archive.SnapshotSpec{Variant: st.Variant, Stage: int(at), DisplayText: displayText},
		}},
		StateOps:    []effects.StateEffect{persist(next)},
		ActivityOps: []effects.ActivityEffect{{Kind: "finish", Detail: st.Entry.Text, Stage: int(at)}},
	}, nil
}

// PlanAbandon plans clearing the active commitment without archiving it.
func PlanAbandon(st State, now time.Time) Plan {
	next := Empty()
	plan := Plan{
		Next:     next,
		StateOps: []effects.StateEffect{persist(next)},
	}
	if st.Entry.Active() {
		plan.ActivityOps = append(plan.ActivityOps, effects.ActivityEffect{
			Kind:   "abandon",
			Detail: st.Entry.Text,
			Stage:  int(st.Entry.Stage(now)),
		})
	}
	return plan
}

// StageAt is a convenience for callers holding a State.
func (s State) StageAt(now time.Time) stage.Stage {
	return s.Entry.Stage(now)
}
