package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/sprite-ai/autotag/internal/diff"
	"github.com/sprite-ai/autotag/internal/model"
	"github.com/sprite-ai/autotag/internal/release"
)

// Output formats.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Report is a release plan plus the optional file change summary.
type Report struct {
	Plan    *release.Plan
	Changes *diff.Set
}

// Write renders r in format.
func Write(w io.Writer, format string, r Report) error {
	switch format {
	case FormatJSON:
		return JSON(w, r)
	case FormatMarkdown:
		return Markdown(w, r)
	case FormatText, "":
		return Text(w, r)
	default:
		return errors.Errorf("unknown format %q (accepted: text, json, markdown)", format)
	}
}

func baselineName(p *release.Plan) string {
	if p.Baseline == nil {
		return "none"
	}
	return p.Baseline.Name
}

// Text renders r for a terminal.
func Text(w io.Writer, r Report) error {
	p := r.Plan
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", headerStyle.Render("Release plan for "+p.Branch))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("strategy"), p.Strategy)
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("baseline"), baselineName(p))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("tip"), hashStyle.Render(p.Tip.Short()))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("change"), KindBadge(p.Kind()))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("next"), tagStyle.Render(p.TagName))
	if r.Changes != nil {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("files"), r.Changes.Summary())
	}
	if p.AlreadyTagged {
		fmt.Fprintf(&b, "%s\n", dimStyle.Render("the tip already carries "+baselineName(p)))
	}

	fmt.Fprintf(&b, "\n%d commit(s) since %s\n", len(p.Commits), baselineName(p))
	byCommit := p.Result.ByCommit()
	for _, c := range p.Commits {
		fmt.Fprintf(&b, "  %s %s", hashStyle.Render(c.ID.Short()), strings.TrimSpace(c.Head()))
		for _, t := range byCommit[c.ID] {
			fmt.Fprintf(&b, " %s", triggerStyle.Render("["+t.Detector+" → "+t.Kind.String()+"]"))
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Markdown renders r as a markdown section.
func Markdown(w io.Writer, r Report) error {
	p := r.Plan
	var b strings.Builder

	fmt.Fprintf(&b, "## Release %s\n\n", p.TagName)
	fmt.Fprintf(&b, "**Change:** %s | **Baseline:** %s | **Branch:** `%s`\n\n", p.Kind(), baselineName(p), p.Branch)
	if r.Changes != nil {
		files, added, deleted := r.Changes.Stats()
		fmt.Fprintf(&b, "**%d file(s)** changed, **+%d** insertions, **-%d** deletions\n\n", files, added, deleted)
	}
	if len(p.Commits) == 0 {
		b.WriteString("No commits since the baseline.\n")
	} else {
		byCommit := p.Result.ByCommit()
		b.WriteString("| Commit | Message | Detectors |\n")
		b.WriteString("|--------|---------|-----------|\n")
		for _, c := range p.Commits {
			var fired []string
			for _, t := range byCommit[c.ID] {
				fired = append(fired, fmt.Sprintf("%s (%s)", t.Detector, t.Kind))
			}
			fmt.Fprintf(&b, "| `%s` | %s | %s |\n", c.ID.Short(), escapeCell(strings.TrimSpace(c.Head())), strings.Join(fired, ", "))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

type jsonTag struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

type jsonCommit struct {
	ID        string   `json:"id"`
	Head      string   `json:"head"`
	Detectors []string `json:"detectors,omitempty"`
}

type jsonPlan struct {
	Branch        string           `json:"branch"`
	Strategy      string           `json:"strategy"`
	Baseline      *jsonTag         `json:"baseline"`
	Tip           string           `json:"tip"`
	Kind          model.ChangeKind `json:"kind"`
	Next          string           `json:"next"`
	Tag           string           `json:"tag"`
	AlreadyTagged bool             `json:"already_tagged"`
	Summary       string           `json:"summary"`
	Commits       []jsonCommit     `json:"commits"`
	Changes       *diff.Set        `json:"changes,omitempty"`
	Notes         string           `json:"notes"`
}

// JSON renders r as an indented JSON document.
func JSON(w io.Writer, r Report) error {
	p := r.Plan
	out := jsonPlan{
		Branch:        p.Branch,
		Strategy:      p.Strategy,
		Tip:           string(p.Tip),
		Kind:          p.Kind(),
		Next:          p.Next.String(),
		Tag:           p.TagName,
		AlreadyTagged: p.AlreadyTagged,
		Summary:       p.Result.Summary(),
		Commits:       []jsonCommit{},
		Changes:       r.Changes,
		Notes:         p.Notes,
	}
	if p.Baseline != nil {
		out.Baseline = &jsonTag{
			Name:    p.Baseline.Name,
			Version: p.Baseline.Version.String(),
			Commit:  string(p.Baseline.Target),
		}
	}
	byCommit := p.Result.ByCommit()
	for _, c := range p.Commits {
		jc := jsonCommit{ID: string(c.ID), Head: c.Head()}
		for _, t := range byCommit[c.ID] {
			jc.Detectors = append(jc.Detectors, t.Detector)
		}
		out.Commits = append(out.Commits, jc)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
