// Package tags indexes the semantic-version tags of a repository and
// implements the strategies that pick the baseline tag for a release.
package tags

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/sprite-ai/autotag/internal/model"
	"github.com/sprite-ai/autotag/internal/repo"
	"github.com/sprite-ai/autotag/internal/version"
)

// Tag is a repository tag whose name parsed as a version.
type Tag struct {
	repo.TagRef
	Version version.Version
}

// Catalog is the set of version tags in a repository at load time.
type Catalog struct {
	source   repo.Repository
	tags     []Tag
	byTarget map[model.CommitRef][]Tag
	log      logrus.FieldLogger
}

// NewCatalog lists the tags of source and keeps the ones that parse with
// prefixes. Tags are ordered by name.
func NewCatalog(source repo.Repository, prefixes []string, log logrus.FieldLogger) (*Catalog, error) {
	refs, err := source.ListTags()
	if err != nil {
		return nil, errors.Wrap(err, "loading tags")
	}
	sort.SliceStable(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })

	c := &Catalog{source: source, byTarget: make(map[model.CommitRef][]Tag), log: log}
	for _, ref := range refs {
		v, err := version.Parse(ref.Name, prefixes)
		if err != nil {
			log.WithField("tag", ref.Name).Debug("ignoring tag that is not a version")
			continue
		}
		t := Tag{TagRef: ref, Version: v}
		c.tags = append(c.tags, t)
		c.byTarget[ref.Target] = append(c.byTarget[ref.Target], t)
	}
	log.WithField("count", len(c.tags)).Debug("loaded version tags")
	return c, nil
}

// All returns every version tag.
func (c *Catalog) All() []Tag {
	return append([]Tag(nil), c.tags...)
}

// Len returns the number of version tags.
func (c *Catalog) Len() int { return len(c.tags) }

// OnBranch returns the tags whose target is reachable from branch, in
// ancestry order (tip first).
func (c *Catalog) OnBranch(branch string) ([]Tag, error) {
	ancestry, err := c.source.WalkAncestry(branch)
	if err != nil {
		return nil, err
	}
	var out []Tag
	for _, commit := range ancestry {
		out = append(out, c.byTarget[commit]...)
	}
	return out, nil
}

// At returns the tags pointing at commit.
func (c *Catalog) At(commit model.CommitRef) []Tag {
	return append([]Tag(nil), c.byTarget[commit]...)
}

// Lookup returns the tag with the given name.
func (c *Catalog) Lookup(name string) (Tag, bool) {
	for _, t := range c.tags {
		if t.Name == name {
			return t, true
		}
	}
	return Tag{}, false
}

// HasVersion reports whether any tag carries v.
func (c *Catalog) HasVersion(v version.Version) bool {
	for _, t := range c.tags {
		if t.Version.Equal(v) {
			return true
		}
	}
	return false
}
