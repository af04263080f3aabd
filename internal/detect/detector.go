// Package detect implements the commit message detectors that decide the
// magnitude of a release, and the set that reduces them over a commit range.
package detect

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/sprite-ai/autotag/internal/model"
)

// Detector kinds as written in configuration.
const (
	KindStartsWith = "starts-with"
	KindContains   = "contains"
	KindRegexMatch = "regex-match"
)

var (
	// ErrDetectorValidation matches every *ValidationError.
	ErrDetectorValidation = errors.New("detector validation failed")
	// ErrInvalidPattern is returned for an empty pattern or a regular
	// expression that does not compile.
	ErrInvalidPattern = errors.New("invalid pattern")
	// ErrUnknownKind is returned when no constructor is registered for a kind.
	ErrUnknownKind = errors.New("unknown detector kind")
)

// ValidationError reports a detector whose parameters are unusable.
type ValidationError struct {
	Detector string
	Err      error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("detector %q: %v", e.Detector, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrDetectorValidation) hold for any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrDetectorValidation
}

// Spec is one configured detector record.
type Spec struct {
	Name       string
	Kind       string
	ChangeKind string
	Pattern    string
	// nil means true
	CaseSensitive *bool
	Strip         *bool
}

func (s Spec) caseSensitive() bool { return s.CaseSensitive == nil || *s.CaseSensitive }
func (s Spec) strip() bool         { return s.Strip == nil || *s.Strip }

// Detector is a predicate over one commit. The set of implementations is
// closed: StartsWith, Contains and RegexMatch.
type Detector interface {
	Name() string
	Kind() string
	ChangeKind() model.ChangeKind
	Evaluate(c model.Commit) bool
	Spec() Spec

	sealed()
}

type base struct {
	spec Spec
	kind model.ChangeKind
}

func (b base) Name() string                 { return b.spec.Name }
func (b base) Kind() string                 { return b.spec.Kind }
func (b base) ChangeKind() model.ChangeKind { return b.kind }
func (b base) Spec() Spec                   { return b.spec }
func (base) sealed()                        {}

// prepare applies the strip and case options to text.
func (b base) prepare(text string) string {
	if !b.spec.caseSensitive() {
		text = strings.ToLower(text)
	}
	if b.spec.strip() {
		text = strings.TrimSpace(text)
	}
	return text
}

func (b base) pattern() string {
	if !b.spec.caseSensitive() {
		return strings.ToLower(b.spec.Pattern)
	}
	return b.spec.Pattern
}

// StartsWith fires when the head of the prepared message starts with the
// pattern.
type StartsWith struct {
	base
}

func (d *StartsWith) Evaluate(c model.Commit) bool {
	head := model.FirstLine(d.prepare(c.Message))
	return strings.HasPrefix(head, d.pattern())
}

// Contains fires when the prepared message contains the pattern anywhere.
type Contains struct {
	base
}

func (d *Contains) Evaluate(c model.Commit) bool {
	return strings.Contains(d.prepare(c.Message), d.pattern())
}

// RegexMatch fires when the pattern matches anywhere in the raw message.
// Strip and case options do not apply; the expression controls both.
type RegexMatch struct {
	base
	re *regexp.Regexp
}

func (d *RegexMatch) Evaluate(c model.Commit) bool {
	return d.re.MatchString(c.Message)
}

type constructor func(b base) (Detector, error)

func newStartsWith(b base) (Detector, error) { return &StartsWith{base: b}, nil }

func newContains(b base) (Detector, error) { return &Contains{base: b}, nil }

func newRegexMatch(b base) (Detector, error) {
	re, err := regexp.Compile(b.spec.Pattern)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidPattern, "%q does not compile: %v", b.spec.Pattern, err)
	}
	return &RegexMatch{base: b, re: re}, nil
}

// constructors maps configuration kinds to variants. The long names are
// the type names used by older configuration files.
var constructors = map[string]constructor{
	KindStartsWith: newStartsWith,
	KindContains:   newContains,
	KindRegexMatch: newRegexMatch,

	"CommitMessageHeadStartsWithDetector": newStartsWith,
	"CommitMessageContainsDetector":       newContains,
	"CommitMessageMatchesRegexDetector":   newRegexMatch,
}

var canonical = map[string]string{
	"CommitMessageHeadStartsWithDetector": KindStartsWith,
	"CommitMessageContainsDetector":       KindContains,
	"CommitMessageMatchesRegexDetector":   KindRegexMatch,
}

// Kinds returns the canonical detector kinds.
func Kinds() []string {
	kinds := []string{KindStartsWith, KindContains, KindRegexMatch}
	sort.Strings(kinds)
	return kinds
}

// Known reports whether kind has a registered constructor.
func Known(kind string) bool {
	_, ok := constructors[kind]
	return ok
}

// New validates spec and builds the matching detector.
func New(spec Spec) (Detector, error) {
	build, ok := constructors[spec.Kind]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownKind, "%q (accepted: %s)", spec.Kind, strings.Join(Kinds(), ", "))
	}
	if c, ok := canonical[spec.Kind]; ok {
		spec.Kind = c
	}

	kind, err := model.ParseChangeKind(spec.ChangeKind)
	if err != nil {
		return nil, &ValidationError{Detector: spec.Name, Err: err}
	}
	if spec.Pattern == "" {
		return nil, &ValidationError{
			Detector: spec.Name,
			Err:      errors.Wrap(ErrInvalidPattern, "pattern must be a non-empty string"),
		}
	}

	d, err := build(base{spec: spec, kind: kind})
	if err != nil {
		return nil, &ValidationError{Detector: spec.Name, Err: err}
	}
	return d, nil
}
