// Package tui is the interactive pebble: drag across it with the mouse to
// clean it, f to finish, n to engrave a new commitment.
package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/pebble/internal/app"
)

// Program is an alias for tea.Program, exposed so callers don't need
// to import bubbletea directly.
type Program = tea.Program

// NewProgram creates the full-screen program with mouse motion reporting.
// When engine is non-nil, finished rewrites redraw the screen.
func NewProgram(ctx context.Context, opts Options, engine *app.StageEngine, extra ...tea.ProgramOption) *Program {
	all := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	}
	all = append(all, extra...)

	p := tea.NewProgram(NewModel(ctx, opts), all...)
	if engine != nil {
		engine.OnChange(func(app.EngineView) { p.Send(engineChangedMsg{}) })
	}
	return p
}

// Run creates and runs the TUI, blocking until it exits.
func Run(ctx context.Context, opts Options, engine *app.StageEngine) error {
	p := NewProgram(ctx, opts, engine)
	defer func() {
		if engine != nil {
			engine.OnChange(nil)
		}
	}()

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
