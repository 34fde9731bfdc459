package tui

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/example/pebble/internal/core/stage"
)

// Semantic color palette.
var (
	colorMuted   = lipgloss.Color("#8C8C8C")
	colorText    = lipgloss.Color("#F5F5F5")
	colorDanger  = lipgloss.Color("#FF5252")
	colorSuccess = lipgloss.Color("#00E676")
)

// Companion colors by stage, fresh to eroded.
var stageColors = [...]lipgloss.Color{
	stage.Untouched: lipgloss.Color("#00E676"),
	stage.Wearing:   lipgloss.Color("#00BFFF"),
	stage.Drifting:  lipgloss.Color("#FFD700"),
	stage.Cracking:  lipgloss.Color("#FF9100"),
	stage.Eroded:    lipgloss.Color("#FF5252"),
}

var (
	styleHUD    = lipgloss.NewStyle().Bold(true)
	styleMuted  = lipgloss.NewStyle().Foreground(colorMuted)
	styleError  = lipgloss.NewStyle().Foreground(colorDanger)
	styleNotice = lipgloss.NewStyle().Foreground(colorSuccess)
)

func stageStyle(s stage.Stage) lipgloss.Style {
	if !s.Valid() {
		return styleHUD
	}
	return styleHUD.Foreground(stageColors[s])
}

// grayLevels is the xterm-256 grayscale ramp (232 dark to 255 light).
const grayLevels = 24

var grayStyles = func() [grayLevels]lipgloss.Style {
	var out [grayLevels]lipgloss.Style
	for i := range out {
		out[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(strconv.Itoa(232 + i)))
	}
	return out
}()

var engravedStyles = func() [grayLevels]lipgloss.Style {
	var out [grayLevels]lipgloss.Style
	for i := range out {
		out[i] = lipgloss.NewStyle().
			Background(lipgloss.Color(strconv.Itoa(232 + i))).
			Foreground(colorText).
			Bold(true)
	}
	return out
}()
