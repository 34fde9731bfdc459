// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle output formatting but delegate
// business logic to services.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/example/pebble/internal/core/archive"
	"github.com/example/pebble/internal/core/stage"
	"github.com/example/pebble/internal/ports/primary"
)

// Export formats accepted by Export.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// PebbleAdapter translates CLI operations to PebbleService calls.
type PebbleAdapter struct {
	service primary.PebbleService
	out     io.Writer
}

// NewPebbleAdapter creates a new PebbleAdapter with the given service.
func NewPebbleAdapter(service primary.PebbleService, out io.Writer) *PebbleAdapter {
	return &PebbleAdapter{
		service: service,
		out:     out,
	}
}

var stageColors = [...]color.Attribute{
	stage.Untouched: color.FgGreen,
	stage.Wearing:   color.FgCyan,
	stage.Drifting:  color.FgYellow,
	stage.Cracking:  color.FgMagenta,
	stage.Eroded:    color.FgRed,
}

func stageColor(s stage.Stage) *color.Color {
	if !s.Valid() {
		return color.New(color.Reset)
	}
	return color.New(stageColors[s])
}

// Start begins a new commitment.
func (a *PebbleAdapter) Start(ctx context.Context, text string) error {
	st, err := a.service.Start(ctx, text)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Engraved: %s\n", st.Text)
	return nil
}

// Status prints the current commitment and its decay.
func (a *PebbleAdapter) Status(ctx context.Context) (*primary.Status, error) {
	st, err := a.service.Status(ctx)
	if err != nil {
		return nil, err
	}
	a.PrintStatus(st)
	return st, nil
}

// PrintStatus renders a status without fetching it.
func (a *PebbleAdapter) PrintStatus(st *primary.Status) {
	if !st.Active {
		fmt.Fprintln(a.out, "No commitment. Start one with: pebble start <text>")
		return
	}

	c := stageColor(st.Stage)
	display := st.Display
	switch {
	case display == "" && st.Stage.IsTerminal():
		display = "(worn away)"
	case st.Pending:
		display += " …"
	}

	fmt.Fprintf(a.out, "\n%s  %s\n", c.Sprintf("D+%d", st.DayCount), c.Sprint(display))
	fmt.Fprintf(a.out, "Stage:   %d (%s)\n", int(st.Stage), stage.Label(st.Stage))
	fmt.Fprintf(a.out, "Cleaned: %s ago\n", formatElapsed(st.Elapsed))
	if st.Display != st.Text {
		fmt.Fprintf(a.out, "Original: %s\n", st.Text)
	}
	fmt.Fprintln(a.out)
}

// Clean applies a completed cleaning.
func (a *PebbleAdapter) Clean(ctx context.Context) error {
	st, stone, err := a.service.CompleteClean(ctx)
	if err != nil {
		return err
	}
	if stone != nil {
		a.printFinished(stone)
		return nil
	}
	fmt.Fprintf(a.out, "✓ Cleaned: %s\n", st.Display)
	return nil
}

// Finish archives the active commitment.
func (a *PebbleAdapter) Finish(ctx context.Context) error {
	stone, err := a.service.Finish(ctx)
	if err != nil {
		return err
	}
	a.printFinished(stone)
	return nil
}

func (a *PebbleAdapter) printFinished(stone *archive.Stone) {
	fmt.Fprintf(a.out, "✓ Archived %s [%s]: %s\n", stone.ID, stone.Badge(), stone.Text)
}

// Abandon discards the active commitment.
func (a *PebbleAdapter) Abandon(ctx context.Context) error {
	if err := a.service.Abandon(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "✓ Commitment abandoned")
	return nil
}

// List prints archived stones, newest first.
func (a *PebbleAdapter) List(ctx context.Context, limit int) error {
	stones, err := a.service.Archive(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list archive: %w", err)
	}

	if len(stones) == 0 {
		fmt.Fprintln(a.out, "No stones yet")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-44s %-6s %-10s %s\n", "ID", "DAYS", "FINISHED", "TEXT")
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────")
	for _, s := range stones {
		fmt.Fprintf(a.out, "%-44s %-6s %-10s %s\n", s.ID, s.Badge(), s.Finished.Local().Format("2006-01-02"), s.Text)
	}
	fmt.Fprintln(a.out)

	return nil
}

// Show prints one stone and, when pngPath is set, writes its snapshot there.
func (a *PebbleAdapter) Show(ctx context.Context, id, pngPath string) error {
	stone, err := a.service.Stone(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get stone: %w", err)
	}

	fmt.Fprintf(a.out, "\nStone:    %s\n", stone.ID)
	fmt.Fprintf(a.out, "Text:     %s\n", stone.Text)
	fmt.Fprintf(a.out, "Days:     %s\n", stone.Badge())
	fmt.Fprintf(a.out, "Created:  %s\n", stone.Created.Local().Format(time.RFC3339))
	fmt.Fprintf(a.out, "Finished: %s\n", stone.Finished.Local().Format(time.RFC3339))

	if pngPath != "" {
		if len(stone.Snapshot) == 0 {
			return fmt.Errorf("stone %s has no snapshot", stone.ID)
		}
		if err := os.WriteFile(pngPath, stone.Snapshot, 0644); err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
		fmt.Fprintf(a.out, "Snapshot: %s\n", pngPath)
	}
	fmt.Fprintln(a.out)

	return nil
}

// exportStone is the serialized form of an archived stone.
type exportStone struct {
	ID       string    `json:"id" yaml:"id"`
	Text     string    `json:"text" yaml:"text"`
	Created  time.Time `json:"created" yaml:"created"`
	Finished time.Time `json:"finished" yaml:"finished"`
	DayCount int       `json:"day_count" yaml:"day_count"`
}

// Export writes the whole archive as JSON or YAML.
func (a *PebbleAdapter) Export(ctx context.Context, format string) error {
	stones, err := a.service.Archive(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to list archive: %w", err)
	}

	out := make([]exportStone, len(stones))
	for i, s := range stones {
		out[i] = exportStone{ID: s.ID, Text: s.Text, Created: s.Created, Finished: s.Finished, DayCount: s.DayCount}
	}

	switch strings.ToLower(format) {
	case FormatJSON, "":
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(a.out)
		defer enc.Close()
		return enc.Encode(out)
	default:
		return fmt.Errorf("unknown export format %q (want json or yaml)", format)
	}
}

// Log prints recent activity, newest first.
func (a *PebbleAdapter) Log(ctx context.Context, limit int) error {
	entries, err := a.service.Activity(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to read activity: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No activity yet")
		return nil
	}

	for _, e := range entries {
		line := fmt.Sprintf("%s  %-8s", e.At.Local().Format("2006-01-02 15:04"), e.Kind)
		if e.Detail != "" {
			line += " " + e.Detail
		}
		fmt.Fprintln(a.out, stageColor(stage.Stage(e.Stage)).Sprint(line))
	}

	return nil
}

func formatElapsed(d time.Duration) string {
	if d == stage.Unbounded {
		return "never"
	}
	d = d.Round(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh%02dm", h, m)
}
