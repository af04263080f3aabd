package tags

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrUnknownSearchStrategy is returned by Lookup for an unregistered name.
var ErrUnknownSearchStrategy = errors.New("unknown search strategy")

type scope int

const (
	repoScope scope = iota
	branchScope
)

type order int

const (
	biggest order = iota
	latest
)

// Strategy picks the baseline tag. The zero value behaves as DefaultStrategy.
type Strategy struct {
	name  string
	scope scope
	order order
}

var (
	// BiggestTagInRepo picks the highest version anywhere in the repository.
	BiggestTagInRepo = Strategy{"biggest-tag-in-repo", repoScope, biggest}
	// BiggestTagInBranch picks the highest version reachable from the branch.
	BiggestTagInBranch = Strategy{"biggest-tag-in-branch", branchScope, biggest}
	// LatestTagInRepo picks the tag on the most recently committed commit.
	LatestTagInRepo = Strategy{"latest-tag-in-repo", repoScope, latest}
	// LatestTagInBranch is LatestTagInRepo restricted to the branch.
	LatestTagInBranch = Strategy{"latest-tag-in-branch", branchScope, latest}

	DefaultStrategy = BiggestTagInBranch
)

var strategies = []Strategy{BiggestTagInRepo, BiggestTagInBranch, LatestTagInRepo, LatestTagInBranch}

// Lookup returns the strategy registered under name.
func Lookup(name string) (Strategy, error) {
	for _, s := range strategies {
		if s.name == name {
			return s, nil
		}
	}
	return Strategy{}, errors.Wrapf(ErrUnknownSearchStrategy, "%q (accepted: %s)", name, strings.Join(Names(), ", "))
}

// Names returns the registered strategy names.
func Names() []string {
	names := make([]string, len(strategies))
	for i, s := range strategies {
		names[i] = s.name
	}
	return names
}

func (s Strategy) Name() string   { return s.orDefault().name }
func (s Strategy) String() string { return s.Name() }

func (s Strategy) orDefault() Strategy {
	if s.name == "" {
		return DefaultStrategy
	}
	return s
}

// Search returns the baseline tag, or nil when the scope holds no version
// tag. Ties keep the first tag seen.
func (s Strategy) Search(c *Catalog, branch string) (*Tag, error) {
	s = s.orDefault()
	var candidates []Tag
	switch s.scope {
	case branchScope:
		var err error
		if candidates, err = c.OnBranch(branch); err != nil {
			return nil, err
		}
	default:
		candidates = c.All()
	}

	var best *Tag
	for i := range candidates {
		t := &candidates[i]
		if best == nil || s.better(t, best) {
			best = t
		}
	}
	if best != nil {
		c.log.WithFields(logrus.Fields{
			"strategy": s.name,
			"tag":      best.Name,
			"version":  best.Version.String(),
		}).Debug("found baseline tag")
	}
	return best, nil
}

func (s Strategy) better(a, b *Tag) bool {
	if s.order == latest {
		return a.CommittedAt.After(b.CommittedAt)
	}
	return b.Version.LessThan(a.Version)
}
