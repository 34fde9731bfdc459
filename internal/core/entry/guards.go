package entry

import "fmt"

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// StartContext provides context for starting a new commitment.
type StartContext struct {
	NormalizedText string
}

// ActiveContext provides context for operations on the current commitment.
type ActiveContext struct {
	Current Entry
}

// CanStart evaluates whether a new commitment can begin.
// Rules:
// - Text must be non-empty after normalization
func CanStart(ctx StartContext) GuardResult {
	if ctx.NormalizedText == "" {
		return GuardResult{Allowed: false, Reason: ErrEmptyText.Error()}
	}
	return GuardResult{Allowed: true}
}

// CanFinish evaluates whether the current commitment can be archived.
// Rules:
// - There must be an active commitment with text
func CanFinish(ctx ActiveContext) GuardResult {
	if !ctx.Current.Active() {
		return GuardResult{Allowed: false, Reason: "nothing to finish: " + ErrNoActiveEntry.Error()}
	}
	return GuardResult{Allowed: true}
}

// CanClean evaluates whether a cleaning gesture may reset the clock.
// Rules:
// - There must be an active commitment with text
func CanClean(ctx ActiveContext) GuardResult {
	if !ctx.Current.Active() {
		return GuardResult{Allowed: false, Reason: "nothing to clean: " + ErrNoActiveEntry.Error()}
	}
	return GuardResult{Allowed: true}
}
