package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sprite-ai/autotag/internal/model"
)

// Color palette.
var (
	ColorRed    = lipgloss.Color("#ff5555")
	ColorGreen  = lipgloss.Color("#50fa7b")
	ColorYellow = lipgloss.Color("#f1fa8c")
	ColorBlue   = lipgloss.Color("#8be9fd")
	ColorPurple = lipgloss.Color("#bd93f9")
	ColorDim    = lipgloss.Color("#6272a4")
	ColorFg     = lipgloss.Color("#f8f8f2")
	ColorOrange = lipgloss.Color("#ffb86c")
	ColorBorder = lipgloss.Color("#44475a")
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(ColorDim).
			Width(10)

	tagStyle = lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true)

	hashStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	triggerStyle = lipgloss.NewStyle().
			Foreground(ColorPurple)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorDim)
)

// KindColor returns the colour used for a change kind.
func KindColor(k model.ChangeKind) lipgloss.Color {
	switch k {
	case model.Major:
		return ColorRed
	case model.Minor:
		return ColorOrange
	default:
		return ColorGreen
	}
}

// KindBadge renders k as a bold coloured label.
func KindBadge(k model.ChangeKind) string {
	return lipgloss.NewStyle().Foreground(KindColor(k)).Bold(true).Render(k.String())
}
