package publish

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-github/v60/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprite-ai/autotag/internal/logging"
	"github.com/sprite-ai/autotag/internal/release"
	"github.com/sprite-ai/autotag/internal/version"
)

func TestParseRepo(t *testing.T) {
	tests := map[string][2]string{
		"sprite-ai/autotag":                         {"sprite-ai", "autotag"},
		"https://github.com/sprite-ai/autotag":      {"sprite-ai", "autotag"},
		"https://github.com/sprite-ai/autotag.git/": {"sprite-ai", "autotag"},
		"git@github.com:sprite-ai/autotag.git":      {"sprite-ai", "autotag"},
		"github.com/sprite-ai/autotag/tree/master":  {"sprite-ai", "autotag"},
	}
	for in, want := range tests {
		owner, repo, err := ParseRepo(in)
		require.NoError(t, err, in)
		assert.Equal(t, want[0], owner, in)
		assert.Equal(t, want[1], repo, in)
	}

	for _, bad := range []string{"", "autotag", "/autotag", "owner/"} {
		_, _, err := ParseRepo(bad)
		assert.Error(t, err, bad)
	}
}

func testClient(t *testing.T, handler http.Handler) *github.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewGitHubClient("token-123")
	u, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	client.BaseURL = u
	return client
}

func TestPublish(t *testing.T) {
	var got github.RepositoryRelease
	var auth string
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/sprite-ai/autotag/releases", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 1, "html_url": "https://github.com/sprite-ai/autotag/releases/tag/1.2.0"}`))
	})

	pub, err := NewGitHub(testClient(t, mux), "sprite-ai/autotag", logging.Discard())
	require.NoError(t, err)

	err = pub.Publish(context.Background(), release.Release{
		Tag:     "1.2.0",
		Version: version.New(1, 2, 0),
		Target:  "0123456789abcdef0123456789abcdef01234567",
		Notes:   "Release 1.2.0 \n\n    * feature: x\n",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer token-123", auth)
	assert.Equal(t, "1.2.0", got.GetTagName())
	assert.Equal(t, "0123456789abcdef0123456789abcdef01234567", got.GetTargetCommitish())
	assert.Contains(t, got.GetBody(), "feature: x")
}

func TestPublishError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/sprite-ai/autotag/releases", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message": "Validation Failed"}`))
	})

	pub, err := NewGitHub(testClient(t, mux), "sprite-ai/autotag", logging.Discard())
	require.NoError(t, err)

	err = pub.Publish(context.Background(), release.Release{Tag: "1.2.0"})
	assert.ErrorContains(t, err, "creating release 1.2.0")
}
