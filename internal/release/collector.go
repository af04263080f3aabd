// Package release runs the tagging pipeline: resolve the baseline tag,
// collect the commits since, classify them, compute the next version and
// create and push the tag.
package release

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/sprite-ai/autotag/internal/model"
	"github.com/sprite-ai/autotag/internal/repo"
)

// Range is the commits of a branch newer than a stop commit.
type Range struct {
	Tip     model.CommitRef
	Commits []model.Commit
}

// Collector reads commit ranges from a repository.
type Collector struct {
	source repo.Repository
	log    logrus.FieldLogger
}

func NewCollector(source repo.Repository, log logrus.FieldLogger) *Collector {
	return &Collector{source: source, log: log}
}

// Range walks branch from its tip and returns every commit up to, but not
// including, stop. A nil stop, or one not on the branch, yields the whole
// ancestry.
func (c *Collector) Range(branch string, stop *model.CommitRef) (*Range, error) {
	ancestry, err := c.source.WalkAncestry(branch)
	if err != nil {
		return nil, err
	}
	if len(ancestry) == 0 {
		return nil, errors.Wrapf(repo.ErrBranchNotFound, "%q has no commits", branch)
	}

	r := &Range{Tip: ancestry[0]}
	for _, id := range ancestry {
		if stop != nil && id == *stop {
			break
		}
		commit, err := repo.Commit(c.source, id)
		if err != nil {
			return nil, errors.Wrapf(err, "reading commit %s", id.Short())
		}
		r.Commits = append(r.Commits, commit)
	}
	c.log.WithFields(logrus.Fields{
		"branch":  branch,
		"commits": len(r.Commits),
	}).Debug("collected commits")
	return r, nil
}

// Collect returns the commits of Range.
func (c *Collector) Collect(branch string, stop *model.CommitRef) ([]model.Commit, error) {
	r, err := c.Range(branch, stop)
	if err != nil {
		return nil, err
	}
	return r.Commits, nil
}
