// Package repo defines the repository operations autotag depends on and
// implements them on top of go-git.
package repo

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/sprite-ai/autotag/internal/model"
)

var (
	ErrBranchNotFound = errors.New("branch not found")
	ErrTagExists      = errors.New("tag already exists")
	ErrRemoteNotFound = errors.New("remote not found")
	ErrCommitNotFound = errors.New("commit not found")
)

// TagRef is a tag as stored in the repository, already peeled to the
// commit it points at.
type TagRef struct {
	Name        string
	Target      model.CommitRef
	CommittedAt time.Time
}

// Identity is the name and email recorded on created tags. Empty fields
// fall back to git configuration.
type Identity struct {
	Name  string
	Email string
}

// Repository is the subset of git autotag needs.
type Repository interface {
	// ListTags returns every tag in the repository.
	ListTags() ([]TagRef, error)
	// WalkAncestry returns the commits reachable from branch, tip first.
	WalkAncestry(branch string) ([]model.CommitRef, error)
	Message(c model.CommitRef) (string, error)
	CommittedAt(c model.CommitRef) (time.Time, error)
	// CreateTag creates an annotated tag on target.
	CreateTag(name string, target model.CommitRef, message string, who Identity) error
	PushTag(ctx context.Context, remote, tag string) error
}

// Differ produces a unified diff between two commits.
type Differ interface {
	Diff(from, to model.CommitRef) (string, error)
}

// Commit loads c as a model.Commit.
func Commit(r Repository, c model.CommitRef) (model.Commit, error) {
	msg, err := r.Message(c)
	if err != nil {
		return model.Commit{}, err
	}
	at, err := r.CommittedAt(c)
	if err != nil {
		return model.Commit{}, err
	}
	return model.Commit{ID: c, Message: msg, CommittedAt: at}, nil
}
