package release

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/sprite-ai/autotag/internal/detect"
	"github.com/sprite-ai/autotag/internal/logging"
	"github.com/sprite-ai/autotag/internal/model"
	"github.com/sprite-ai/autotag/internal/repo"
	"github.com/sprite-ai/autotag/internal/tags"
	"github.com/sprite-ai/autotag/internal/version"
)

var (
	// ErrTagCollision is returned when the computed tag name already exists.
	ErrTagCollision = errors.New("tag collision")
	// ErrPlanChanged is returned by Run when the computed tag differs from
	// the one set with ExpectTag.
	ErrPlanChanged = errors.New("release plan changed")
)

// CollisionError wraps the repository error for a tag name that exists.
type CollisionError struct {
	Tag string
	Err error
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("tag %s already exists: %v", e.Tag, e.Err)
}

func (e *CollisionError) Unwrap() error { return e.Err }

func (e *CollisionError) Is(target error) bool { return target == ErrTagCollision }

// State is a step of the pipeline. States only move forward.
type State int

const (
	Start State = iota
	BaselineResolved
	CommitsCollected
	Classified
	VersionComputed
	Skipped
	Tagged
	Pushed
)

func (s State) String() string {
	switch s {
	case Start:
		return "start"
	case BaselineResolved:
		return "baseline-resolved"
	case CommitsCollected:
		return "commits-collected"
	case Classified:
		return "classified"
	case VersionComputed:
		return "version-computed"
	case Skipped:
		return "skipped"
	case Tagged:
		return "tagged"
	case Pushed:
		return "pushed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options configure one run.
type Options struct {
	Branch   string
	Strategy tags.Strategy
	// Prefixes stripped from tag names; nil means version.DefaultPrefixes.
	Prefixes []string
	// TagPrefix is prepended to the new version to name the tag.
	TagPrefix    string
	SkipIfTagged bool
	Committer    repo.Identity
	Remotes      []string
}

// Release describes a created tag to publishers.
type Release struct {
	Tag     string
	Version version.Version
	Target  model.CommitRef
	Kind    model.ChangeKind
	Notes   string
	Commits []model.Commit
}

// Publisher announces a release once the tag is pushed.
type Publisher interface {
	Publish(ctx context.Context, r Release) error
}

// Plan is everything computed before any repository mutation.
type Plan struct {
	Branch   string
	Strategy string
	// Baseline is nil when no version tag is in scope.
	Baseline *tags.Tag
	Tip      model.CommitRef
	Commits  []model.Commit
	Result   *detect.Result
	Next     version.Version
	TagName  string
	Notes    string
	// AlreadyTagged is set when the baseline tag points at the tip.
	AlreadyTagged bool
}

// Kind returns the classified change kind.
func (p *Plan) Kind() model.ChangeKind { return p.Result.Kind }

// Current returns the baseline version, or nil.
func (p *Plan) Current() *version.Version {
	if p.Baseline == nil {
		return nil
	}
	v := p.Baseline.Version
	return &v
}

// Release returns the plan as a publishable release.
func (p *Plan) Release() Release {
	return Release{
		Tag:     p.TagName,
		Version: p.Next,
		Target:  p.Tip,
		Kind:    p.Kind(),
		Notes:   p.Notes,
		Commits: p.Commits,
	}
}

// Outcome is the result of Run.
type Outcome struct {
	Plan   *Plan
	State  State
	Pushed []string
}

// Skipped reports whether the run ended without creating a tag.
func (o *Outcome) Skipped() bool { return o.State == Skipped }

// Orchestrator drives one tagging run against a repository.
type Orchestrator struct {
	source     repo.Repository
	detectors  *detect.Set
	opts       Options
	publishers []Publisher
	expect     string
	log        logrus.FieldLogger
	state      State
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

func WithLogger(log logrus.FieldLogger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// WithPublisher adds a publisher called once the tag reached at least one
// remote.
func WithPublisher(p Publisher) Option {
	return func(o *Orchestrator) { o.publishers = append(o.publishers, p) }
}

// ExpectTag makes Run fail with ErrPlanChanged, before anything is written,
// when the computed tag name is not name.
func ExpectTag(name string) Option {
	return func(o *Orchestrator) { o.expect = name }
}

func New(source repo.Repository, detectors *detect.Set, opts Options, options ...Option) *Orchestrator {
	o := &Orchestrator{
		source:    source,
		detectors: detectors,
		opts:      opts,
		log:       logging.Discard(),
	}
	for _, fn := range options {
		fn(o)
	}
	o.log = o.log.WithField("branch", opts.Branch)
	return o
}

// State returns the last state reached.
func (o *Orchestrator) State() State { return o.state }

func (o *Orchestrator) advance(s State) {
	if s < o.state {
		panic(fmt.Sprintf("release: state moved backwards from %s to %s", o.state, s))
	}
	o.state = s
	o.log.WithField("state", s).Debug("pipeline advanced")
}

// Plan resolves the baseline, classifies the commits since and computes
// the next tag without changing the repository.
func (o *Orchestrator) Plan(ctx context.Context) (*Plan, error) {
	o.state = Start
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	catalog, err := tags.NewCatalog(o.source, o.opts.Prefixes, o.log)
	if err != nil {
		return nil, err
	}
	baseline, err := o.opts.Strategy.Search(catalog, o.opts.Branch)
	if err != nil {
		return nil, errors.Wrap(err, "resolving baseline tag")
	}
	o.advance(BaselineResolved)
	if baseline != nil {
		o.log.WithField("tag", baseline.Name).Info("found baseline tag")
	} else {
		o.log.Info("no version tag found")
	}

	var stop *model.CommitRef
	if baseline != nil {
		stop = &baseline.Target
	}
	rng, err := NewCollector(o.source, o.log).Range(o.opts.Branch, stop)
	if err != nil {
		return nil, errors.Wrap(err, "collecting commits")
	}
	o.advance(CommitsCollected)

	result := o.detectors.Evaluate(rng.Commits)
	o.advance(Classified)

	plan := &Plan{
		Branch:        o.opts.Branch,
		Strategy:      o.opts.Strategy.Name(),
		Baseline:      baseline,
		Tip:           rng.Tip,
		Commits:       rng.Commits,
		Result:        result,
		AlreadyTagged: baseline != nil && baseline.Target == rng.Tip,
	}
	plan.Next = version.Bump(plan.Current(), result.Kind)
	plan.TagName = o.opts.TagPrefix + plan.Next.String()
	plan.Notes = Notes(plan.Next, plan.Commits)
	o.advance(VersionComputed)

	from := "none"
	if baseline != nil {
		from = baseline.Name
	}
	o.log.WithFields(logrus.Fields{
		"kind":    result.Kind,
		"commits": len(plan.Commits),
	}).Infof("bumping tag %s -> %s", from, plan.TagName)
	return plan, nil
}

// Run executes the plan: it skips when the tip is already tagged and
// SkipIfTagged is set, otherwise it creates the tag and pushes it to every
// configured remote. Publishers only run when at least one push succeeded.
func (o *Orchestrator) Run(ctx context.Context) (*Outcome, error) {
	plan, err := o.Plan(ctx)
	if err != nil {
		return nil, err
	}
	out := &Outcome{Plan: plan}

	if o.expect != "" && plan.TagName != o.expect {
		return nil, errors.Wrapf(ErrPlanChanged, "expected %s, got %s", o.expect, plan.TagName)
	}

	if o.opts.SkipIfTagged && plan.AlreadyTagged {
		o.advance(Skipped)
		o.log.WithField("tag", plan.Baseline.Name).Info("the last commit is already tagged, skipping")
		out.State = o.state
		return out, nil
	}

	err = o.source.CreateTag(plan.TagName, plan.Tip, plan.Notes, o.opts.Committer)
	if errors.Is(err, repo.ErrTagExists) {
		return nil, &CollisionError{Tag: plan.TagName, Err: err}
	}
	if err != nil {
		return nil, errors.Wrap(err, "creating tag")
	}
	o.advance(Tagged)
	o.log.WithFields(logrus.Fields{"tag": plan.TagName, "commit": plan.Tip.Short()}).Info("created tag")

	if out.Pushed, err = o.push(ctx, plan.TagName); err != nil {
		return nil, err
	}
	if len(out.Pushed) == 0 {
		if len(o.publishers) > 0 {
			o.log.WithField("tag", plan.TagName).Warn("tag was not pushed, skipping release publishing")
		}
		out.State = o.state
		return out, nil
	}
	o.advance(Pushed)

	for _, p := range o.publishers {
		if err := p.Publish(ctx, plan.Release()); err != nil {
			return nil, errors.Wrap(err, "publishing release")
		}
	}
	out.State = o.state
	return out, nil
}

// push sends tag to each remote. Unknown remotes are logged and skipped.
func (o *Orchestrator) push(ctx context.Context, tag string) ([]string, error) {
	if len(o.opts.Remotes) == 0 {
		o.log.Info("no push remote was specified")
		return nil, nil
	}
	var pushed []string
	for _, remote := range o.opts.Remotes {
		log := o.log.WithFields(logrus.Fields{"tag": tag, "remote": remote})
		err := o.source.PushTag(ctx, remote, tag)
		switch {
		case errors.Is(err, repo.ErrRemoteNotFound):
			log.Error("can't find remote")
		case err != nil:
			return pushed, errors.Wrapf(err, "pushing %s to %s", tag, remote)
		default:
			log.Info("pushed tag")
			pushed = append(pushed, remote)
		}
	}
	return pushed, nil
}
