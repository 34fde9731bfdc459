package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/example/pebble/internal/app"
	"github.com/example/pebble/internal/core/archive"
	"github.com/example/pebble/internal/core/cleaning"
	"github.com/example/pebble/internal/core/stage"
	"github.com/example/pebble/internal/ports/primary"
)

// Rows taken by the HUD above the pebble and the footer below it.
const chromeRows = 2

// Options configures the TUI.
type Options struct {
	Service  primary.PebbleService
	Cleaning cleaning.Config
	Tick     time.Duration
	Clock    func() time.Time
	Logger   *zap.Logger
}

type tickMsg time.Time

// engineChangedMsg reports that an asynchronous rewrite landed.
type engineChangedMsg struct{}

// Model is the pebble screen.
type Model struct {
	ctx     context.Context
	svc     primary.PebbleService
	cleaner *app.CleaningSession
	logger  *zap.Logger
	keys    KeyMap
	tick    time.Duration

	width, height int
	status        *primary.Status
	input         textinput.Model
	composing     bool
	notice        string
	err           error
	cache         *artCache
}

// artCache survives the model copies bubbletea makes between updates.
type artCache struct {
	art *art
}

// NewModel builds the model and loads the current status.
func NewModel(ctx context.Context, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Tick <= 0 {
		opts.Tick = 30 * time.Second
	}

	ti := textinput.New()
	ti.Placeholder = "what will you keep doing?"
	ti.Prompt = "› "
	ti.CharLimit = 140

	m := Model{
		ctx:     ctx,
		svc:     opts.Service,
		cleaner: app.NewCleaningSession(opts.Service, opts.Cleaning, cleaning.Surface{}, opts.Clock),
		logger:  opts.Logger,
		keys:    DefaultKeyMap(),
		tick:    opts.Tick,
		input:   ti,
		status:  &primary.Status{},
		cache:   &artCache{},
	}
	m.setStatus(m.svc.Status(ctx))
	if !m.status.Active {
		m.composing = true
		m.input.Focus()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.tickCmd()}
	if m.composing {
		cmds = append(cmds, textinput.Blink)
	}
	return tea.Batch(cmds...)
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.tick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.cleaner.Resize(surfaceFor(m.pebbleSize()))
		return m, nil

	case tickMsg:
		m.setStatus(m.svc.Tick(m.ctx))
		return m, m.tickCmd()

	case engineChangedMsg:
		m.setStatus(m.svc.Status(m.ctx))
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if m.composing {
			return m.handleInputKey(msg)
		}
		return m.handleKey(msg)
	}

	if m.composing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) setStatus(st *primary.Status, err error) {
	if err != nil {
		m.logger.Warn("status failed", zap.Error(err))
		m.err = err
		return
	}
	m.status = st
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.New):
		return m.compose()

	case key.Matches(msg, m.keys.Finish):
		if !m.status.Active {
			return m, nil
		}
		stone, err := m.svc.Finish(m.ctx)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.archived(stone)
		return m.compose()
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		m.composing = false
		m.input.Blur()
		m.err = nil
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		st, err := m.svc.Start(m.ctx, m.input.Value())
		if err != nil {
			m.err = err
			return m, nil
		}
		m.status = st
		m.cleaner.End()
		m.composing = false
		m.input.Blur()
		m.err = nil
		m.notice = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// compose opens the input for a new commitment. Any drag in progress belonged
// to the previous stone and is dropped.
func (m Model) compose() (tea.Model, tea.Cmd) {
	m.cleaner.End()
	m.composing = true
	m.err = nil
	m.input.SetValue("")
	return m, m.input.Focus()
}

func (m *Model) archived(stone *archive.Stone) {
	m.notice = fmt.Sprintf("✓ Archived [%s] %s", stone.Badge(), stone.Text)
	m.setStatus(m.svc.Status(m.ctx))
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action == tea.MouseActionRelease {
		m.cleaner.End()
		return m, nil
	}
	if m.composing || !m.status.Active {
		return m, nil
	}
	p := pointAt(msg.X, msg.Y-1)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.cleaner.Begin(p)
		}

	case tea.MouseActionMotion:
		if !m.cleaner.Dragging() {
			return m, nil
		}
		res, err := m.cleaner.Move(m.ctx, p)
		if err != nil {
			m.err = err
			return m, nil
		}
		switch res.Outcome {
		case cleaning.Cleaned:
			m.status = res.Status
			m.notice = "✓ Cleaned"
		case cleaning.Finished:
			m.archived(res.Stone)
			return m.compose()
		}
	}
	return m, nil
}

// pebbleSize is the cell block the pebble is drawn in.
func (m Model) pebbleSize() (cols, rows int) {
	return m.width, max(0, m.height-chromeRows)
}

// View implements tea.Model.
func (m Model) View() string {
	cols, rows := m.pebbleSize()
	if cols == 0 || rows == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.hudView())
	b.WriteByte('\n')
	b.WriteString(m.pebbleView(cols, rows))
	b.WriteByte('\n')
	b.WriteString(m.footerView())
	return b.String()
}

func (m Model) hudView() string {
	st := m.status
	if !st.Active {
		return styleMuted.Render("no commitment")
	}
	parts := []string{
		stageStyle(st.Stage).Render(fmt.Sprintf("D+%d", st.DayCount)),
		fmt.Sprintf("%.1fh since cleaned", st.Elapsed.Hours()),
		stageStyle(st.Stage).Render(stage.Label(st.Stage)),
	}
	if m.cleaner.Dragging() {
		parts = append(parts, fmt.Sprintf("cleaning %d%%", int(m.cleaner.Progress()*100)))
	}
	return strings.Join(parts, styleMuted.Render("  ·  "))
}

func (m Model) pebbleView(cols, rows int) string {
	s := m.status.Stage
	if !m.status.Active {
		s = stage.Untouched
	}
	k := artKey{cols: cols, rows: rows, variant: m.status.Variant, stage: s}
	if m.cache.art == nil || m.cache.art.key != k {
		m.cache.art = drawArt(k)
	}
	text := m.status.Display
	if !m.status.Active {
		text = ""
	}
	return m.cache.art.view(text)
}

func (m Model) footerView() string {
	switch {
	case m.composing:
		line := m.input.View()
		if m.err != nil {
			line += "  " + styleError.Render(m.err.Error())
		}
		return line
	case m.err != nil:
		return styleError.Render(m.err.Error())
	case m.notice != "":
		return styleNotice.Render(m.notice) + styleMuted.Render("  ·  drag to clean · f finish · n new · q quit")
	default:
		return styleMuted.Render("drag to clean · f finish · n new · q quit")
	}
}
