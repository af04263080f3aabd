// Package testutil provides repositories for tests: an in-memory commit
// graph implementing repo.Repository, and a builder for real go-git
// repositories kept in memory.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/sprite-ai/autotag/internal/model"
	"github.com/sprite-ai/autotag/internal/repo"
)

// Epoch is the commit time of the first commit made by a Repo.
var Epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

type node struct {
	parents []model.CommitRef
	message string
	at      time.Time
}

// CreatedTag records a CreateTag call.
type CreatedTag struct {
	Name    string
	Target  model.CommitRef
	Message string
	Tagger  repo.Identity
}

// Push records a successful PushTag call.
type Push struct {
	Remote string
	Tag    string
}

// Repo is an in-memory repository. Every commit is one second after the
// previous one.
type Repo struct {
	nodes    map[model.CommitRef]*node
	branches map[string]model.CommitRef
	tags     []repo.TagRef
	remotes  map[string]bool
	seq      int

	Created []CreatedTag
	Pushed  []Push
	// PushErr makes PushTag to the named remote fail.
	PushErr map[string]error
}

// NewRepo returns an empty repository.
func NewRepo() *Repo {
	return &Repo{
		nodes:    make(map[model.CommitRef]*node),
		branches: make(map[string]model.CommitRef),
		remotes:  make(map[string]bool),
		PushErr:  make(map[string]error),
	}
}

func (r *Repo) add(parents []model.CommitRef, message string) model.CommitRef {
	r.seq++
	id := model.CommitRef(fmt.Sprintf("%040x", r.seq))
	r.nodes[id] = &node{
		parents: parents,
		message: message,
		at:      Epoch.Add(time.Duration(r.seq) * time.Second),
	}
	return id
}

// Commit appends a commit to branch, creating the branch if needed.
func (r *Repo) Commit(branch, message string) model.CommitRef {
	var parents []model.CommitRef
	if tip, ok := r.branches[branch]; ok {
		parents = []model.CommitRef{tip}
	}
	id := r.add(parents, message)
	r.branches[branch] = id
	return id
}

// Branch creates branch at the tip of from.
func (r *Repo) Branch(branch, from string) {
	r.branches[branch] = r.branches[from]
}

// Merge records a merge commit of from into into.
func (r *Repo) Merge(into, from, message string) model.CommitRef {
	id := r.add([]model.CommitRef{r.branches[into], r.branches[from]}, message)
	r.branches[into] = id
	return id
}

// Tip returns the commit branch points at.
func (r *Repo) Tip(branch string) model.CommitRef {
	return r.branches[branch]
}

// Tag creates a tag on target directly, bypassing CreateTag bookkeeping.
func (r *Repo) Tag(name string, target model.CommitRef) {
	r.tags = append(r.tags, repo.TagRef{Name: name, Target: target, CommittedAt: r.nodes[target].at})
}

// AddRemote declares a remote that PushTag accepts.
func (r *Repo) AddRemote(name string) {
	r.remotes[name] = true
}

func (r *Repo) ListTags() ([]repo.TagRef, error) {
	return append([]repo.TagRef(nil), r.tags...), nil
}

// WalkAncestry returns every commit reachable from branch ordered by
// commit time, newest first.
func (r *Repo) WalkAncestry(branch string) ([]model.CommitRef, error) {
	tip, ok := r.branches[branch]
	if !ok {
		return nil, errors.Wrapf(repo.ErrBranchNotFound, "%q", branch)
	}
	seen := map[model.CommitRef]bool{}
	stack := []model.CommitRef{tip}
	var out []model.CommitRef
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
		stack = append(stack, r.nodes[c].parents...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return r.nodes[out[i]].at.After(r.nodes[out[j]].at)
	})
	return out, nil
}

func (r *Repo) node(c model.CommitRef) (*node, error) {
	n, ok := r.nodes[c]
	if !ok {
		return nil, errors.Wrapf(repo.ErrCommitNotFound, "%s", c.Short())
	}
	return n, nil
}

func (r *Repo) Message(c model.CommitRef) (string, error) {
	n, err := r.node(c)
	if err != nil {
		return "", err
	}
	return n.message, nil
}

func (r *Repo) CommittedAt(c model.CommitRef) (time.Time, error) {
	n, err := r.node(c)
	if err != nil {
		return time.Time{}, err
	}
	return n.at, nil
}

func (r *Repo) CreateTag(name string, target model.CommitRef, message string, who repo.Identity) error {
	n, err := r.node(target)
	if err != nil {
		return err
	}
	for _, t := range r.tags {
		if t.Name == name {
			return errors.Wrapf(repo.ErrTagExists, "%q", name)
		}
	}
	r.tags = append(r.tags, repo.TagRef{Name: name, Target: target, CommittedAt: n.at})
	r.Created = append(r.Created, CreatedTag{Name: name, Target: target, Message: message, Tagger: who})
	return nil
}

func (r *Repo) PushTag(_ context.Context, remote, tag string) error {
	if !r.remotes[remote] {
		return errors.Wrapf(repo.ErrRemoteNotFound, "%q", remote)
	}
	if err := r.PushErr[remote]; err != nil {
		return err
	}
	r.Pushed = append(r.Pushed, Push{Remote: remote, Tag: tag})
	return nil
}

// Diff returns a one-file unified diff naming both commits.
func (r *Repo) Diff(from, to model.CommitRef) (string, error) {
	if _, err := r.node(from); err != nil {
		return "", err
	}
	if _, err := r.node(to); err != nil {
		return "", err
	}
	return fmt.Sprintf(`diff --git a/CHANGES b/CHANGES
index 0000000..1111111 100644
--- a/CHANGES
+++ b/CHANGES
@@ -1 +1,2 @@
 %s
+%s
`, from.Short(), to.Short()), nil
}

var (
	_ repo.Repository = (*Repo)(nil)
	_ repo.Differ     = (*Repo)(nil)
)
