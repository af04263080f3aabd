// Package tui implements the Bubble Tea release preview.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sprite-ai/autotag/internal/detect"
	"github.com/sprite-ai/autotag/internal/model"
	"github.com/sprite-ai/autotag/internal/release"
)

// Model is the top-level Bubble Tea model of the preview.
type Model struct {
	plan      *release.Plan
	detectors []detect.Detector
	triggers  map[model.CommitRef][]detect.Trigger

	// UI state
	width  int
	height int

	// Commit list
	index int

	// Message viewport
	scrollOffset int
	lines        []string

	showDetectors bool
	showHelp      bool
	confirmed     bool
}

// New creates a preview of plan. detectors are listed in the detectors pane.
func New(plan *release.Plan, detectors []detect.Detector) Model {
	m := Model{
		plan:      plan,
		detectors: detectors,
		triggers:  plan.Result.ByCommit(),
	}
	m.updateLines()
	return m
}

func (m *Model) updateLines() {
	if len(m.plan.Commits) == 0 {
		m.lines = nil
		return
	}
	msg := strings.TrimRight(m.plan.Commits[m.index].Message, "\n")
	m.lines = strings.Split(msg, "\n")
}

// Confirmed reports whether the user asked to create the tag.
func (m Model) Confirmed() bool { return m.confirmed }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, keys.Confirm):
			if m.plan.AlreadyTagged || m.plan.TagName == "" {
				return m, nil
			}
			m.confirmed = true
			return m, tea.Quit

		case key.Matches(msg, keys.Down):
			if m.index < len(m.plan.Commits)-1 {
				m.index++
				m.scrollOffset = 0
				m.updateLines()
			}

		case key.Matches(msg, keys.Up):
			if m.index > 0 {
				m.index--
				m.scrollOffset = 0
				m.updateLines()
			}

		case key.Matches(msg, keys.ScrollDown):
			if m.scrollOffset < len(m.lines)-1 {
				m.scrollOffset++
			}

		case key.Matches(msg, keys.ScrollUp):
			if m.scrollOffset > 0 {
				m.scrollOffset--
			}

		case key.Matches(msg, keys.Detectors):
			m.showDetectors = !m.showDetectors

		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	listWidth := m.listWidth()
	detailWidth := m.width - listWidth - 1

	list := m.renderCommitList(listWidth, m.height-2)
	var detail string
	if m.showDetectors {
		detail = m.renderDetectors(detailWidth, m.height-2)
	} else {
		detail = m.renderDetail(detailWidth, m.height-2)
	}

	main := lipgloss.JoinHorizontal(lipgloss.Top, list, " ", detail)
	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m Model) listWidth() int {
	maxLen := 20
	for _, c := range m.plan.Commits {
		if n := len(c.Head()) + 10; n > maxLen {
			maxLen = n
		}
	}
	w := maxLen + 4
	if w > m.width/2 {
		w = m.width / 2
	}
	if w < 20 {
		w = 20
	}
	return w
}
