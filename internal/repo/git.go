package repo

import (
	"context"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/pkg/errors"

	"github.com/sprite-ai/autotag/internal/model"
)

// Git implements Repository on a go-git repository.
type Git struct {
	repo *git.Repository
	now  func() time.Time
}

// Open opens the repository containing path, walking up to find .git.
func Open(path string) (*Git, error) {
	r, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, errors.Wrapf(err, "opening repository %s", path)
	}
	return Wrap(r), nil
}

// Wrap adapts an already open go-git repository.
func Wrap(r *git.Repository) *Git {
	return &Git{repo: r, now: time.Now}
}

// ListTags returns lightweight and annotated tags peeled to their commit.
// Tags on trees or blobs are skipped.
func (g *Git) ListTags() ([]TagRef, error) {
	iter, err := g.repo.Tags()
	if err != nil {
		return nil, errors.Wrap(err, "listing tags")
	}
	defer iter.Close()

	var refs []TagRef
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		c, err := g.peel(ref.Hash())
		if err != nil {
			return nil
		}
		refs = append(refs, TagRef{
			Name:        ref.Name().Short(),
			Target:      model.CommitRef(c.Hash.String()),
			CommittedAt: c.Committer.When,
		})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "listing tags")
	}
	return refs, nil
}

func (g *Git) peel(h plumbing.Hash) (*object.Commit, error) {
	tag, err := g.repo.TagObject(h)
	switch {
	case err == nil:
		return tag.Commit()
	case errors.Is(err, plumbing.ErrObjectNotFound):
		return g.repo.CommitObject(h)
	default:
		return nil, err
	}
}

// resolve finds the tip of a local branch, falling back to a remote-tracking
// branch of the same name. Tags and raw revisions are not branches.
func (g *Git) resolve(branch string) (plumbing.Hash, error) {
	ref, err := g.repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err == nil {
		return ref.Hash(), nil
	}

	iter, err := g.repo.References()
	if err != nil {
		return plumbing.ZeroHash, errors.Wrap(err, "listing references")
	}
	defer iter.Close()
	for {
		ref, err := iter.Next()
		if err != nil {
			break
		}
		name := ref.Name()
		if !name.IsRemote() || ref.Type() != plumbing.HashReference {
			continue
		}
		// refs/remotes/<remote>/<branch>
		parts := strings.SplitN(strings.TrimPrefix(name.String(), "refs/remotes/"), "/", 2)
		if len(parts) == 2 && parts[1] == branch {
			return ref.Hash(), nil
		}
	}
	return plumbing.ZeroHash, errors.Wrapf(ErrBranchNotFound, "%q", branch)
}

// WalkAncestry returns every commit reachable from branch, newest first.
func (g *Git) WalkAncestry(branch string) ([]model.CommitRef, error) {
	tip, err := g.resolve(branch)
	if err != nil {
		return nil, err
	}
	iter, err := g.repo.Log(&git.LogOptions{From: tip, Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, errors.Wrapf(err, "walking %s", branch)
	}
	defer iter.Close()

	var out []model.CommitRef
	err = iter.ForEach(func(c *object.Commit) error {
		out = append(out, model.CommitRef(c.Hash.String()))
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walking %s", branch)
	}
	return out, nil
}

func (g *Git) commit(c model.CommitRef) (*object.Commit, error) {
	obj, err := g.repo.CommitObject(plumbing.NewHash(string(c)))
	if err != nil {
		return nil, errors.Wrapf(ErrCommitNotFound, "%s: %v", c.Short(), err)
	}
	return obj, nil
}

func (g *Git) Message(c model.CommitRef) (string, error) {
	obj, err := g.commit(c)
	if err != nil {
		return "", err
	}
	return obj.Message, nil
}

func (g *Git) CommittedAt(c model.CommitRef) (time.Time, error) {
	obj, err := g.commit(c)
	if err != nil {
		return time.Time{}, err
	}
	return obj.Committer.When, nil
}

// CreateTag creates an annotated tag. Identity fields left empty are read
// from git config, local scope first, then global and system.
func (g *Git) CreateTag(name string, target model.CommitRef, message string, who Identity) error {
	if _, err := g.commit(target); err != nil {
		return err
	}
	tagger := g.signature(who)
	_, err := g.repo.CreateTag(name, plumbing.NewHash(string(target)), &git.CreateTagOptions{
		Tagger:  tagger,
		Message: message,
	})
	if errors.Is(err, git.ErrTagExists) {
		return errors.Wrapf(ErrTagExists, "%q", name)
	}
	if err != nil {
		return errors.Wrapf(err, "creating tag %s", name)
	}
	return nil
}

func (g *Git) signature(who Identity) *object.Signature {
	sig := &object.Signature{Name: who.Name, Email: who.Email, When: g.now()}
	if sig.Name != "" && sig.Email != "" {
		return sig
	}
	for _, scope := range []config.Scope{config.LocalScope, config.GlobalScope, config.SystemScope} {
		cfg, err := g.repo.ConfigScoped(scope)
		if err != nil {
			continue
		}
		if sig.Name == "" {
			sig.Name = cfg.User.Name
		}
		if sig.Email == "" {
			sig.Email = cfg.User.Email
		}
	}
	return sig
}

// PushTag pushes refs/tags/<tag> to remote. A tag the remote already has
// is not an error.
func (g *Git) PushTag(ctx context.Context, remote, tag string) error {
	if _, err := g.repo.Remote(remote); err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			return errors.Wrapf(ErrRemoteNotFound, "%q", remote)
		}
		return errors.Wrapf(err, "looking up remote %s", remote)
	}
	ref := plumbing.NewTagReferenceName(tag)
	err := g.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: remote,
		RefSpecs:   []config.RefSpec{config.RefSpec(ref + ":" + ref)},
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return errors.Wrapf(err, "pushing %s to %s", tag, remote)
	}
	return nil
}

// Diff returns the unified diff from one commit to another.
func (g *Git) Diff(from, to model.CommitRef) (string, error) {
	a, err := g.commit(from)
	if err != nil {
		return "", err
	}
	b, err := g.commit(to)
	if err != nil {
		return "", err
	}
	patch, err := a.Patch(b)
	if err != nil {
		return "", errors.Wrapf(err, "diffing %s..%s", from.Short(), to.Short())
	}
	return patch.String(), nil
}
