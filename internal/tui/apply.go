package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"

	"github.com/sprite-ai/autotag/internal/detect"
	"github.com/sprite-ai/autotag/internal/release"
)

// Run shows the preview and reports whether the user confirmed the tag.
func Run(plan *release.Plan, detectors []detect.Detector, opts ...tea.ProgramOption) (bool, error) {
	if len(opts) == 0 {
		opts = []tea.ProgramOption{tea.WithAltScreen()}
	}
	final, err := tea.NewProgram(New(plan, detectors), opts...).Run()
	if err != nil {
		return false, errors.Wrap(err, "running preview")
	}
	m, ok := final.(Model)
	if !ok {
		return false, errors.Errorf("unexpected model %T", final)
	}
	return m.Confirmed(), nil
}
