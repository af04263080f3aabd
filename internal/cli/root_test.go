package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprite-ai/autotag/internal/tags"
	"github.com/sprite-ai/autotag/internal/testutil"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"tag", "plan", "preview", "detectors", "serve", "version"} {
		assert.True(t, names[want], "root command missing subcommand %q", want)
	}
}

func TestVersionOutput(t *testing.T) {
	// version vars are set via ldflags; in tests they have their defaults
	assert.Equal(t, "dev", version)

	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "autotag dev (commit none, built unknown)\n", out)
}

func TestFlagAliasesOnSubcommands(t *testing.T) {
	t.Run("append-v-to-tag", func(t *testing.T) {
		dir, _ := fixture(t)
		out, _, err := run(t, base(dir, "tag", "--append-v-to-tag")...)
		require.NoError(t, err)
		assert.Equal(t, "v1.1.0\n", out)
	})

	t.Run("skip-tag-if-one-already-present", func(t *testing.T) {
		dir, g := fixture(t)
		g.Tag("1.1.0", g.Head())
		out, _, err := run(t, base(dir, "tag", "--skip-tag-if-one-already-present")...)
		require.NoError(t, err)
		assert.Empty(t, out)
		assert.ElementsMatch(t, []string{"1.0.1", "1.1.0"}, tagNames(t, dir))
	})

	t.Run("upstream_remote", func(t *testing.T) {
		dir, _ := fixture(t)
		out, stderr, err := run(t, base(dir, "tag", "--upstream_remote", "origin")...)
		require.NoError(t, err)
		assert.Equal(t, "1.1.0\n", out)
		assert.Contains(t, stderr, "can't find remote")
	})

	t.Run("logging", func(t *testing.T) {
		dir, _ := fixture(t)
		_, stderr, err := run(t, base(dir, "plan", "--logging", "debug")...)
		require.NoError(t, err)
		assert.Contains(t, stderr, "level=debug")
		assert.Contains(t, stderr, "pipeline advanced")
	})
}

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

// fixture is a repository on disk with 1.0.1 on the first commit and a
// feature commit on top.
func fixture(t *testing.T) (string, *testutil.GitRepo) {
	t.Helper()
	dir := t.TempDir()
	g := testutil.NewDiskGitRepo(t, dir)
	first := g.Commit("initial commit")
	g.Tag("1.0.1", first)
	g.Commit("feature: add the widget")
	return dir, g
}

func base(dir string, extra ...string) []string {
	return append([]string{"-r", dir, "-b", "master", "--name", "test_user", "--email", "test@email.com"}, extra...)
}

func tagNames(t *testing.T, dir string) []string {
	t.Helper()
	r, err := git.PlainOpen(dir)
	require.NoError(t, err)
	iter, err := r.Tags()
	require.NoError(t, err)
	var names []string
	for {
		ref, err := iter.Next()
		if err != nil {
			break
		}
		names = append(names, ref.Name().Short())
	}
	return names
}

func TestTagEndToEnd(t *testing.T) {
	dir, _ := fixture(t)

	out, _, err := run(t, base(dir, "tag")...)
	require.NoError(t, err)
	assert.Equal(t, "1.1.0\n", out)

	r, err := git.PlainOpen(dir)
	require.NoError(t, err)
	ref, err := r.Tag("1.1.0")
	require.NoError(t, err)
	obj, err := r.TagObject(ref.Hash())
	require.NoError(t, err)
	assert.Equal(t, "test_user", obj.Tagger.Name)
	assert.Equal(t, "test@email.com", obj.Tagger.Email)
	assert.Contains(t, obj.Message, "feature: add the widget")
}

func TestDefaultActionIsTag(t *testing.T) {
	dir, _ := fixture(t)

	out, _, err := run(t, base(dir, "--append-v-to-tag")...)
	require.NoError(t, err)
	assert.Equal(t, "v1.1.0\n", out)
	assert.ElementsMatch(t, []string{"1.0.1", "v1.1.0"}, tagNames(t, dir))
}

func TestSkipIfTagged(t *testing.T) {
	dir, g := fixture(t)
	g.Tag("1.1.0", g.Head())

	out, _, err := run(t, base(dir, "--skip-tag-if-one-already-present")...)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.ElementsMatch(t, []string{"1.0.1", "1.1.0"}, tagNames(t, dir))
}

func TestUnknownRemoteIsNotFatal(t *testing.T) {
	dir, _ := fixture(t)

	out, stderr, err := run(t, base(dir, "tag", "-u", "origin")...)
	require.NoError(t, err)
	assert.Equal(t, "1.1.0\n", out)
	assert.Contains(t, stderr, "can't find remote")
}

func TestPlanJSON(t *testing.T) {
	dir, _ := fixture(t)

	out, _, err := run(t, base(dir, "plan", "-f", "json")...)
	require.NoError(t, err)

	var plan struct {
		Kind     string `json:"kind"`
		Tag      string `json:"tag"`
		Baseline struct {
			Name string `json:"name"`
		} `json:"baseline"`
		Commits []struct {
			Head      string   `json:"head"`
			Detectors []string `json:"detectors"`
		} `json:"commits"`
		Changes struct {
			Files []json.RawMessage `json:"files"`
		} `json:"changes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &plan), out)
	assert.Equal(t, "MINOR", plan.Kind)
	assert.Equal(t, "1.1.0", plan.Tag)
	assert.Equal(t, "1.0.1", plan.Baseline.Name)
	require.Len(t, plan.Commits, 1)
	assert.Equal(t, []string{"check_for_feature_heading"}, plan.Commits[0].Detectors)
	assert.Len(t, plan.Changes.Files, 1)

	assert.Equal(t, []string{"1.0.1"}, tagNames(t, dir), "plan must not create tags")
}

func TestPlanText(t *testing.T) {
	dir, _ := fixture(t)

	out, _, err := run(t, base(dir, "plan", "--stat=false")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Release plan for master")
	assert.Contains(t, out, "1.1.0")
	assert.NotContains(t, out, "files")
}

func TestCustomDetectors(t *testing.T) {
	dir, _ := fixture(t)
	cfg := filepath.Join(t.TempDir(), "detectors.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(`detectors:
  widgets:
    type: contains
    produce_type_change: MAJOR
    params:
      pattern: widget
`), 0o644))

	out, _, err := run(t, base(dir, "-c", cfg, "tag")...)
	require.NoError(t, err)
	assert.Equal(t, "2.0.0\n", out)
}

func TestDetectorsCommand(t *testing.T) {
	out, stderr, err := run(t, "detectors", "--plain", "--canonical")
	require.NoError(t, err)
	assert.Contains(t, out, "check_for_feature_heading")
	assert.Contains(t, out, "type: starts-with")
	assert.Contains(t, stderr, "2 detector(s) OK")

	out, _, err = run(t, "detectors")
	require.NoError(t, err)
	assert.Contains(t, out, "CommitMessageHeadStartsWithDetector")
}

func TestDetectorsCommandInvalid(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("detectors:\n  x:\n    produce_type_change: MINOR\n"), 0o644))

	_, _, err := run(t, "detectors", "-c", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "can't find type")
}

func TestInvalidStrategy(t *testing.T) {
	_, _, err := run(t, "plan", "-s", "smallest-tag")
	require.Error(t, err)
	assert.ErrorIs(t, err, tags.ErrUnknownSearchStrategy)
}

func TestMissingBranch(t *testing.T) {
	dir, _ := fixture(t)

	_, _, err := run(t, "-r", dir, "-b", "nope", "plan")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "nope"), err.Error())
}
