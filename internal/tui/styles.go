package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sprite-ai/autotag/internal/render"
)

var (
	colorBgLight   = lipgloss.Color("#343746")
	colorHighlight = lipgloss.Color("#44475a")
)

var (
	// Commit list
	commitListStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(render.ColorBorder).
			Padding(0, 1)

	commitItemStyle = lipgloss.NewStyle().
			Foreground(render.ColorFg)

	commitItemSelectedStyle = lipgloss.NewStyle().
				Foreground(render.ColorFg).
				Background(colorHighlight).
				Bold(true)

	// Detail pane
	detailViewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(render.ColorBorder).
			Padding(0, 1)

	detailHeaderStyle = lipgloss.NewStyle().
				Foreground(render.ColorBlue).
				Bold(true).
				Padding(0, 0, 1, 0)

	hashStyle = lipgloss.NewStyle().
			Foreground(render.ColorYellow)

	messageStyle = lipgloss.NewStyle().
			Foreground(render.ColorFg)

	triggerStyle = lipgloss.NewStyle().
			Foreground(render.ColorPurple)

	dimStyle = lipgloss.NewStyle().
			Foreground(render.ColorDim)

	// Status bar
	statusBarStyle = lipgloss.NewStyle().
			Foreground(render.ColorFg).
			Background(colorBgLight).
			Padding(0, 1)

	// Help
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(render.ColorYellow)

	helpBarStyle = lipgloss.NewStyle().
			Foreground(render.ColorDim)
)
