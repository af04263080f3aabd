package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sprite-ai/autotag/internal/model"
	"github.com/sprite-ai/autotag/internal/render"
)

// commitKind is the largest kind fired on c, or false when nothing fired.
func (m Model) commitKind(c model.CommitRef) (model.ChangeKind, bool) {
	trig := m.triggers[c]
	if len(trig) == 0 {
		return model.Patch, false
	}
	k := model.Patch
	for _, t := range trig {
		k = model.Max(k, t.Kind)
	}
	return k, true
}

func (m Model) renderCommitList(width, height int) string {
	var b strings.Builder

	if len(m.plan.Commits) == 0 {
		b.WriteString(dimStyle.Render("No commits since the baseline"))
	}
	for i, c := range m.plan.Commits {
		head := truncate(strings.TrimSpace(c.Head()), width-14)
		line := fmt.Sprintf("%s %s", c.ID.Short(), head)

		style := commitItemStyle
		if k, ok := m.commitKind(c.ID); ok {
			style = style.Foreground(render.KindColor(k))
		}
		if i == m.index {
			style = commitItemSelectedStyle
		}

		b.WriteString(style.Width(width - 4).Render(line))
		if i < len(m.plan.Commits)-1 {
			b.WriteByte('\n')
		}
	}

	return commitListStyle.Width(width).Height(height - 2).Render(b.String())
}

func (m Model) renderDetail(width, height int) string {
	innerHeight := height - 2
	if len(m.plan.Commits) == 0 {
		return detailViewStyle.Width(width).Height(innerHeight).Render(m.renderHeadline())
	}

	c := m.plan.Commits[m.index]
	var b strings.Builder
	b.WriteString(m.renderHeadline())
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s  %s\n\n", hashStyle.Render(string(c.ID)), dimStyle.Render(c.CommittedAt.Format("2006-01-02 15:04:05")))

	trig := m.triggers[c.ID]
	if len(trig) == 0 {
		b.WriteString(dimStyle.Render("no detector fired (PATCH)"))
		b.WriteString("\n")
	}
	for _, t := range trig {
		fmt.Fprintf(&b, "%s %s\n", triggerStyle.Render("▸ "+t.Detector), render.KindBadge(t.Kind))
	}
	b.WriteString("\n")

	visible := innerHeight - 6 - len(trig)
	if visible < 1 {
		visible = 1
	}
	end := m.scrollOffset + visible
	if end > len(m.lines) {
		end = len(m.lines)
	}
	for i := m.scrollOffset; i < end; i++ {
		b.WriteString(messageStyle.Render(truncate(m.lines[i], width-4)))
		if i < end-1 {
			b.WriteByte('\n')
		}
	}

	return detailViewStyle.Width(width).Height(innerHeight).Render(b.String())
}

func (m Model) renderHeadline() string {
	from := "none"
	if m.plan.Baseline != nil {
		from = m.plan.Baseline.Name
	}
	return detailHeaderStyle.Render(fmt.Sprintf("%s → %s", from, m.plan.TagName)) + "  " + render.KindBadge(m.plan.Kind())
}

func (m Model) renderDetectors(width, height int) string {
	var b strings.Builder
	b.WriteString(detailHeaderStyle.Render("Detectors"))
	b.WriteString("\n")
	if len(m.detectors) == 0 {
		b.WriteString(dimStyle.Render("none configured, every release is a PATCH"))
	}
	for _, d := range m.detectors {
		spec := d.Spec()
		fmt.Fprintf(&b, "%s %s\n", triggerStyle.Render(d.Name()), render.KindBadge(d.ChangeKind()))
		fmt.Fprintf(&b, "  %s %q\n", dimStyle.Render(d.Kind()), spec.Pattern)
	}
	return detailViewStyle.Width(width).Height(height - 2).Render(b.String())
}

func (m Model) renderStatusBar() string {
	left := fmt.Sprintf(" %s  commit %d/%d", m.plan.Branch, m.index+1, len(m.plan.Commits))
	if len(m.plan.Commits) == 0 {
		left = fmt.Sprintf(" %s  no commits", m.plan.Branch)
	}

	action := "enter create " + m.plan.TagName
	if m.plan.AlreadyTagged {
		action = "tip already tagged"
	}
	right := fmt.Sprintf("%s  %s  ? help ", m.plan.Strategy, action)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return statusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderHelp() string {
	var b strings.Builder

	b.WriteString(detailHeaderStyle.Render("autotag preview: keyboard shortcuts"))
	b.WriteString("\n\n")

	for _, k := range []struct{ key, desc string }{
		{"↑/k", "Previous commit"},
		{"↓/j", "Next commit"},
		{"[ ]", "Scroll the commit message"},
		{"d", "Toggle the detectors pane"},
		{"enter/y", "Create the tag and quit"},
		{"?", "Toggle this help"},
		{"q", "Quit without tagging"},
	} {
		fmt.Fprintf(&b, "  %s  %s\n", helpKeyStyle.Width(12).Render(k.key), k.desc)
	}

	b.WriteString("\n")
	b.WriteString(helpBarStyle.Render("Press ? to close help"))
	return b.String()
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) > max {
		return s[:max-1] + "…"
	}
	return s
}
