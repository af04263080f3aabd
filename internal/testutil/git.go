package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/require"

	"github.com/sprite-ai/autotag/internal/model"
	"github.com/sprite-ai/autotag/internal/repo"
)

// Author signs every commit made by a GitRepo.
var Author = object.Signature{Name: "Test Author", Email: "author@example.com"}

// GitRepo builds a real go-git repository for tests. Commit times follow
// the same one-second clock as Repo.
type GitRepo struct {
	t    testing.TB
	Repo *git.Repository
	wt   *git.Worktree
	seq  int
}

// NewGitRepo returns a repository stored entirely in memory.
func NewGitRepo(t testing.TB) *GitRepo {
	t.Helper()
	r, err := git.Init(memory.NewStorage(), memfs.New())
	require.NoError(t, err)
	return newGitRepo(t, r)
}

// NewDiskGitRepo initializes a repository in dir.
func NewDiskGitRepo(t testing.TB, dir string) *GitRepo {
	t.Helper()
	r, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	return newGitRepo(t, r)
}

func newGitRepo(t testing.TB, r *git.Repository) *GitRepo {
	wt, err := r.Worktree()
	require.NoError(t, err)
	return &GitRepo{t: t, Repo: r, wt: wt}
}

// Git returns the repository wrapped as a repo.Repository.
func (g *GitRepo) Git() *repo.Git {
	return repo.Wrap(g.Repo)
}

func (g *GitRepo) signature() *object.Signature {
	sig := Author
	sig.When = Epoch.Add(time.Duration(g.seq) * time.Second)
	return &sig
}

// Commit writes a file and commits it on the checked out branch.
func (g *GitRepo) Commit(message string) model.CommitRef {
	g.t.Helper()
	g.seq++
	name := fmt.Sprintf("file-%03d.txt", g.seq)
	require.NoError(g.t, util.WriteFile(g.wt.Filesystem, name, []byte(message+"\n"), 0o644))
	_, err := g.wt.Add(name)
	require.NoError(g.t, err)

	sig := g.signature()
	h, err := g.wt.Commit(message, &git.CommitOptions{Author: sig, Committer: sig})
	require.NoError(g.t, err)
	return model.CommitRef(h.String())
}

// Checkout switches to branch, creating it at HEAD when create is set.
func (g *GitRepo) Checkout(branch string, create bool) {
	g.t.Helper()
	require.NoError(g.t, g.wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
		Create: create,
	}))
}

// Head returns the checked out commit.
func (g *GitRepo) Head() model.CommitRef {
	g.t.Helper()
	ref, err := g.Repo.Head()
	require.NoError(g.t, err)
	return model.CommitRef(ref.Hash().String())
}

// Tag creates a lightweight tag.
func (g *GitRepo) Tag(name string, target model.CommitRef) {
	g.t.Helper()
	_, err := g.Repo.CreateTag(name, plumbing.NewHash(string(target)), nil)
	require.NoError(g.t, err)
}

// AnnotatedTag creates an annotated tag.
func (g *GitRepo) AnnotatedTag(name string, target model.CommitRef, message string) {
	g.t.Helper()
	_, err := g.Repo.CreateTag(name, plumbing.NewHash(string(target)), &git.CreateTagOptions{
		Tagger:  g.signature(),
		Message: message,
	})
	require.NoError(g.t, err)
}
