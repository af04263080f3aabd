package detect

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/sprite-ai/autotag/internal/logging"
	"github.com/sprite-ai/autotag/internal/model"
)

// Trigger records one detector firing on one commit.
type Trigger struct {
	Detector string
	Kind     model.ChangeKind
	Commit   model.Commit
}

func (t Trigger) String() string {
	return fmt.Sprintf("[%s] %s %s: %s", t.Detector, t.Kind, t.Commit.ID.Short(), t.Commit.Head())
}

// Result is the outcome of evaluating a set over a commit range.
type Result struct {
	Kind     model.ChangeKind
	Triggers []Trigger
}

// ByCommit returns triggers grouped by commit id.
func (r *Result) ByCommit() map[model.CommitRef][]Trigger {
	m := make(map[model.CommitRef][]Trigger)
	for _, t := range r.Triggers {
		m[t.Commit.ID] = append(m[t.Commit.ID], t)
	}
	return m
}

// Summary returns a one-line summary of the triggers.
func (r *Result) Summary() string {
	if len(r.Triggers) == 0 {
		return fmt.Sprintf("%s (no detector fired)", r.Kind)
	}

	counts := make(map[model.ChangeKind]int)
	for _, t := range r.Triggers {
		counts[t.Kind]++
	}

	var parts []string
	for _, k := range []model.ChangeKind{model.Major, model.Minor, model.Patch} {
		if c := counts[k]; c > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", c, k))
		}
	}
	return fmt.Sprintf("%s (%s)", r.Kind, strings.Join(parts, ", "))
}

// Set is an ordered, immutable collection of detectors.
type Set struct {
	detectors []Detector
	log       logrus.FieldLogger
}

// Option configures a Set.
type Option func(*Set)

// WithLogger sets the logger used to report firing detectors.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Set) { s.log = log }
}

// NewSet returns a set over already-built detectors.
func NewSet(detectors []Detector, opts ...Option) *Set {
	s := &Set{
		detectors: append([]Detector(nil), detectors...),
		log:       logging.Discard(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Build validates every spec and returns the resulting set. Duplicate
// names are rejected; the first invalid spec aborts the build.
func Build(specs []Spec, opts ...Option) (*Set, error) {
	seen := make(map[string]bool, len(specs))
	detectors := make([]Detector, 0, len(specs))
	for _, spec := range specs {
		if seen[spec.Name] {
			return nil, &ValidationError{Detector: spec.Name, Err: errors.New("duplicate detector name")}
		}
		seen[spec.Name] = true

		d, err := New(spec)
		if err != nil {
			return nil, err
		}
		detectors = append(detectors, d)
	}
	return NewSet(detectors, opts...), nil
}

// Detectors returns the detectors in configuration order.
func (s *Set) Detectors() []Detector {
	return append([]Detector(nil), s.detectors...)
}

// Len returns the number of detectors.
func (s *Set) Len() int { return len(s.detectors) }

// Evaluate runs every detector against every commit and reduces the fired
// kinds with max. No detector firing, or no commits, yields Patch.
func (s *Set) Evaluate(commits []model.Commit) *Result {
	res := &Result{Kind: model.Patch}
	for _, c := range commits {
		for _, d := range s.detectors {
			if !d.Evaluate(c) {
				continue
			}
			s.log.WithFields(logrus.Fields{
				"detector": d.Name(),
				"kind":     d.ChangeKind(),
				"commit":   c.ID.Short(),
			}).Debug("detector fired")
			res.Triggers = append(res.Triggers, Trigger{Detector: d.Name(), Kind: d.ChangeKind(), Commit: c})
			res.Kind = model.Max(res.Kind, d.ChangeKind())
		}
	}
	return res
}

// Classify returns the change kind for commits.
func (s *Set) Classify(commits []model.Commit) model.ChangeKind {
	return s.Evaluate(commits).Kind
}

// Fired returns the names of the detectors that fire on c.
func (s *Set) Fired(c model.Commit) []string {
	var names []string
	for _, d := range s.detectors {
		if d.Evaluate(c) {
			names = append(names, d.Name())
		}
	}
	return names
}
