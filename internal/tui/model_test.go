package tui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/pebble/internal/core/archive"
	"github.com/example/pebble/internal/core/cleaning"
	"github.com/example/pebble/internal/core/entry"
	"github.com/example/pebble/internal/core/stage"
	"github.com/example/pebble/internal/ports/primary"
)

// fakeService is an in-memory primary.PebbleService.
type fakeService struct {
	mu       sync.Mutex
	active   bool
	text     string
	stage    stage.Stage
	starts   []string
	cleans   int
	finishes int
}

func (f *fakeService) status() *primary.Status {
	if !f.active {
		return &primary.Status{Stage: stage.Terminal}
	}
	display := f.text
	if f.stage.IsTerminal() {
		display = ""
	}
	return &primary.Status{Active: true, Text: f.text, Display: display, Stage: f.stage, DayCount: 1, Variant: 1}
}

func (f *fakeService) Start(ctx context.Context, text string) (*primary.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	text = entry.Normalize(text)
	if text == "" {
		return nil, entry.ErrEmptyText
	}
	f.starts = append(f.starts, text)
	f.active, f.text, f.stage = true, text, stage.Untouched
	return f.status(), nil
}

func (f *fakeService) CompleteClean(ctx context.Context) (*primary.Status, *archive.Stone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleans++
	f.stage = stage.Untouched
	return f.status(), nil, nil
}

func (f *fakeService) Finish(ctx context.Context) (*archive.Stone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.active {
		return nil, entry.ErrNoActiveEntry
	}
	f.finishes++
	stone := &archive.Stone{ID: "stone_1", Text: f.text, DayCount: 1}
	f.active, f.text = false, ""
	return stone, nil
}

func (f *fakeService) Abandon(ctx context.Context) error { return nil }

func (f *fakeService) Status(ctx context.Context) (*primary.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status(), nil
}

func (f *fakeService) Tick(ctx context.Context) (*primary.Status, error) { return f.Status(ctx) }

func (f *fakeService) Archive(ctx context.Context, limit int) ([]*archive.Stone, error) {
	return nil, nil
}

func (f *fakeService) Stone(ctx context.Context, id string) (*archive.Stone, error) {
	return nil, nil
}

func (f *fakeService) Activity(ctx context.Context, limit int) ([]*primary.ActivityEntry, error) {
	return nil, nil
}

func newTestModel(svc *fakeService) Model {
	cfg := cleaning.DefaultConfig()
	cfg.MinDuration = 0
	fixed := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	return NewModel(context.Background(), Options{
		Service:  svc,
		Cleaning: cfg,
		Tick:     time.Minute,
		Clock:    func() time.Time { return fixed },
	})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func TestNewModel_NoCommitmentStartsComposing(t *testing.T) {
	m := newTestModel(&fakeService{})
	if !m.composing {
		t.Error("expected composing with no active commitment")
	}

	m = newTestModel(&fakeService{active: true, text: "walk"})
	if m.composing {
		t.Error("expected not composing with an active commitment")
	}
}

func TestCompose_SubmitStarts(t *testing.T) {
	svc := &fakeService{}
	m := newTestModel(svc)

	m = typeText(t, m, "walk daily")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if len(svc.starts) != 1 || svc.starts[0] != "walk daily" {
		t.Fatalf("expected Start(walk daily), got %v", svc.starts)
	}
	if m.composing {
		t.Error("expected composing to end after submit")
	}
	if !m.status.Active || m.status.Text != "walk daily" {
		t.Errorf("unexpected status %+v", m.status)
	}
}

func TestCompose_EmptySubmitKeepsComposing(t *testing.T) {
	svc := &fakeService{}
	m := newTestModel(svc)

	m = typeText(t, m, "  ")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if len(svc.starts) != 0 {
		t.Errorf("expected no Start, got %v", svc.starts)
	}
	if !m.composing {
		t.Error("expected to stay composing")
	}
	if m.err == nil {
		t.Error("expected an error to be shown")
	}
}

func TestCompose_QuitKeyIsTyped(t *testing.T) {
	m := newTestModel(&fakeService{})

	m = typeText(t, m, "q")
	if !m.composing || m.input.Value() != "q" {
		t.Errorf("expected q to be typed, value %q", m.input.Value())
	}
}

func TestCompose_EscapeCancels(t *testing.T) {
	m := newTestModel(&fakeService{active: true, text: "walk"})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	if !m.composing {
		t.Fatal("expected n to open the input")
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.composing {
		t.Error("expected esc to close the input")
	}
}

func TestFinishKey(t *testing.T) {
	svc := &fakeService{active: true, text: "walk daily"}
	m := newTestModel(svc)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f")})

	if svc.finishes != 1 {
		t.Fatalf("expected one Finish, got %d", svc.finishes)
	}
	if !strings.Contains(m.notice, "Archived [D+1] walk daily") {
		t.Errorf("unexpected notice %q", m.notice)
	}
	if !m.composing {
		t.Error("expected the input to open for the next commitment")
	}
}

func TestFinishKey_NoCommitment(t *testing.T) {
	svc := &fakeService{}
	m := newTestModel(svc)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f")})
	if svc.finishes != 0 {
		t.Errorf("expected no Finish, got %d", svc.finishes)
	}
}

func TestQuitKey(t *testing.T) {
	m := newTestModel(&fakeService{active: true, text: "walk"})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func drag(t *testing.T, m Model, moves int) Model {
	t.Helper()
	m = update(t, m, tea.MouseMsg{X: 20, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	for i := 0; i < moves; i++ {
		x := 20
		if i%2 == 0 {
			x = 40
		}
		m = update(t, m, tea.MouseMsg{X: x, Y: 10, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	}
	return update(t, m, tea.MouseMsg{X: 20, Y: 10, Action: tea.MouseActionRelease})
}

func TestMouseDrag_Cleans(t *testing.T) {
	svc := &fakeService{active: true, text: "walk daily", stage: stage.Drifting}
	m := newTestModel(svc)
	m = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 22})

	m = drag(t, m, 10)

	if svc.cleans != 1 {
		t.Fatalf("expected one clean, got %d", svc.cleans)
	}
	if m.status.Stage != stage.Untouched {
		t.Errorf("expected stage 0 after cleaning, got %d", m.status.Stage)
	}
}

func TestMouseDrag_ShortDragDoesNothing(t *testing.T) {
	svc := &fakeService{active: true, text: "walk daily", stage: stage.Drifting}
	m := newTestModel(svc)
	m = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 22})

	drag(t, m, 1)

	if svc.cleans != 0 {
		t.Errorf("expected no clean, got %d", svc.cleans)
	}
}

func TestMouseDrag_TerminalFinishes(t *testing.T) {
	svc := &fakeService{active: true, text: "walk daily", stage: stage.Terminal}
	m := newTestModel(svc)
	m = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 22})

	m = drag(t, m, 1)

	if svc.finishes != 1 {
		t.Fatalf("expected one finish, got %d", svc.finishes)
	}
	if !m.composing {
		t.Error("expected the input to open after finishing")
	}
}

func TestFinishKey_DropsDragInProgress(t *testing.T) {
	svc := &fakeService{active: true, text: "walk daily", stage: stage.Drifting}
	m := newTestModel(svc)
	m = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 22})

	m = update(t, m, tea.MouseMsg{X: 20, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = update(t, m, tea.MouseMsg{X: 22, Y: 10, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f")})
	if m.cleaner.Dragging() {
		t.Fatal("finishing should end the drag")
	}
	m = update(t, m, tea.MouseMsg{X: 22, Y: 10, Action: tea.MouseActionRelease})

	m = typeText(t, m, "run")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.composing {
		t.Fatal("expected the new commitment to start")
	}

	for i := 0; i < 10; i++ {
		x := 20
		if i%2 == 0 {
			x = 40
		}
		m = update(t, m, tea.MouseMsg{X: x, Y: 10, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	}
	if svc.cleans != 0 {
		t.Errorf("motion without a press cleaned the new stone %d times", svc.cleans)
	}
}

func TestSubmit_DropsDragInProgress(t *testing.T) {
	svc := &fakeService{active: true, text: "walk daily", stage: stage.Drifting}
	m := newTestModel(svc)
	m = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 22})

	m = update(t, m, tea.MouseMsg{X: 20, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	if m.cleaner.Dragging() {
		t.Error("opening the input should end the drag")
	}
	m = typeText(t, m, "run")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.cleaner.Dragging() {
		t.Error("starting a commitment should leave no drag behind")
	}
}

func TestMouseIgnoredWhileComposing(t *testing.T) {
	svc := &fakeService{}
	m := newTestModel(svc)
	m = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 22})

	drag(t, m, 10)
	if svc.cleans != 0 || svc.finishes != 0 {
		t.Error("mouse should be ignored while composing")
	}
}

func TestView(t *testing.T) {
	svc := &fakeService{active: true, text: "walk daily", stage: stage.Wearing}
	m := newTestModel(svc)

	if m.View() != "" {
		t.Error("expected empty view before the first window size")
	}

	m = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 22})
	view := m.View()

	lines := strings.Split(view, "\n")
	if len(lines) != 22 {
		t.Errorf("expected 22 lines, got %d", len(lines))
	}
	for _, want := range []string{"D+1", "wearing", "walk daily", "f finish"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestView_ErodedHidesText(t *testing.T) {
	svc := &fakeService{active: true, text: "walk daily", stage: stage.Terminal}
	m := newTestModel(svc)
	m = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 22})

	if strings.Contains(m.View(), "walk daily") {
		t.Error("eroded stone should not show its text")
	}
}

func TestEngineChangedRefreshes(t *testing.T) {
	svc := &fakeService{active: true, text: "walk daily", stage: stage.Wearing}
	m := newTestModel(svc)

	svc.text = "walk when free"
	m = update(t, m, engineChangedMsg{})

	if m.status.Display != "walk when free" {
		t.Errorf("expected refreshed display, got %q", m.status.Display)
	}
}

func TestArt_CachedAcrossViews(t *testing.T) {
	m := newTestModel(&fakeService{active: true, text: "walk", stage: stage.Cracking})
	m = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 16})

	m.View()
	first := m.cache.art
	m.View()
	if m.cache.art != first {
		t.Error("expected the art to be reused")
	}

	m = update(t, m, tea.WindowSizeMsg{Width: 50, Height: 16})
	m.View()
	if m.cache.art == first {
		t.Error("expected the art to be redrawn after resize")
	}
}

func TestDrawArt_ShapeAndShading(t *testing.T) {
	a := drawArt(artKey{cols: 60, rows: 20, variant: 0, stage: stage.Untouched})

	if a.level[0][0] != -1 {
		t.Error("corner should be outside the pebble")
	}
	if a.level[10][30] < 0 {
		t.Error("center should be inside the pebble")
	}

	grimy := drawArt(artKey{cols: 60, rows: 20, variant: 0, stage: stage.Cracking})
	if grimy.level[10][30] > a.level[10][30] {
		t.Errorf("grime should not lighten the center: %d > %d", grimy.level[10][30], a.level[10][30])
	}
}
