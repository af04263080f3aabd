// Package publish announces created tags on hosting services.
package publish

import (
	"context"
	"strings"

	"github.com/google/go-github/v60/github"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/sprite-ai/autotag/internal/release"
)

// GitHub creates a GitHub release for each published tag.
type GitHub struct {
	client *github.Client
	owner  string
	repo   string
	log    logrus.FieldLogger
}

// NewGitHubClient returns an API client authenticated with token. An
// empty token gives an anonymous client.
func NewGitHubClient(token string) *github.Client {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return client
}

// NewGitHub returns a publisher for repository, given as owner/name or as
// a GitHub URL.
func NewGitHub(client *github.Client, repository string, log logrus.FieldLogger) (*GitHub, error) {
	owner, repo, err := ParseRepo(repository)
	if err != nil {
		return nil, err
	}
	return &GitHub{client: client, owner: owner, repo: repo, log: log}, nil
}

// Publish creates a release named after the tag with the tag notes as body.
func (g *GitHub) Publish(ctx context.Context, r release.Release) error {
	rel := &github.RepositoryRelease{
		TagName:         github.String(r.Tag),
		TargetCommitish: github.String(string(r.Target)),
		Name:            github.String(r.Tag),
		Body:            github.String(r.Notes),
	}
	created, _, err := g.client.Repositories.CreateRelease(ctx, g.owner, g.repo, rel)
	if err != nil {
		return errors.Wrapf(err, "creating release %s in %s/%s", r.Tag, g.owner, g.repo)
	}
	g.log.WithFields(logrus.Fields{
		"tag": r.Tag,
		"url": created.GetHTMLURL(),
	}).Info("published github release")
	return nil
}

// ParseRepo extracts owner and name from "owner/name", an https URL or an
// ssh remote such as git@github.com:owner/name.git.
func ParseRepo(repoURL string) (owner, repo string, err error) {
	s := strings.TrimPrefix(repoURL, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "git@github.com:")
	s = strings.TrimPrefix(s, "github.com/")
	s = strings.TrimSuffix(s, "/")
	s = strings.TrimSuffix(s, ".git")

	parts := strings.SplitN(s, "/", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.Errorf("cannot parse GitHub repo from %q", repoURL)
	}
	return parts[0], parts[1], nil
}

var _ release.Publisher = (*GitHub)(nil)
