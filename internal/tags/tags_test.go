package tags_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprite-ai/autotag/internal/logging"
	"github.com/sprite-ai/autotag/internal/repo"
	"github.com/sprite-ai/autotag/internal/tags"
	"github.com/sprite-ai/autotag/internal/testutil"
	"github.com/sprite-ai/autotag/internal/version"
)

var branchTags = map[string][]string{
	"branch_a": {"0.0.1", "1.0.1", "0.1.1"},
	"branch_b": {"1.1.1"},
}

// twoBranchesFake builds master -> branch_a (three tagged commits) ->
// branch_b (one tagged commit), one second apart.
func twoBranchesFake() repo.Repository {
	r := testutil.NewRepo()
	r.Commit("master", "initial commit")
	from := "master"
	for _, b := range []string{"branch_a", "branch_b"} {
		r.Branch(b, from)
		for _, tag := range branchTags[b] {
			r.Tag(tag, r.Commit(b, "random commit for "+b+" "+tag))
		}
		from = b
	}
	return r
}

func twoBranchesGit(t *testing.T) repo.Repository {
	g := testutil.NewGitRepo(t)
	g.Commit("initial commit")
	for _, b := range []string{"branch_a", "branch_b"} {
		g.Checkout(b, true)
		for _, tag := range branchTags[b] {
			g.Tag(tag, g.Commit("random commit for "+b+" "+tag))
		}
	}
	return g.Git()
}

func TestStrategiesTwoBranches(t *testing.T) {
	scenarios := []struct {
		strategy tags.Strategy
		want     string
	}{
		{tags.BiggestTagInRepo, "1.1.1"},
		{tags.BiggestTagInBranch, "1.0.1"},
		{tags.LatestTagInRepo, "1.1.1"},
		{tags.LatestTagInBranch, "0.1.1"},
	}
	repos := map[string]func(t *testing.T) repo.Repository{
		"fake":   func(*testing.T) repo.Repository { return twoBranchesFake() },
		"go-git": twoBranchesGit,
	}
	for name, build := range repos {
		for _, sc := range scenarios {
			t.Run(name+"/"+sc.strategy.Name(), func(t *testing.T) {
				cat, err := tags.NewCatalog(build(t), nil, logging.Discard())
				require.NoError(t, err)

				got, err := sc.strategy.Search(cat, "branch_a")
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, sc.want, got.Name)
			})
		}
	}
}

func TestCatalogSkipsNonVersionTags(t *testing.T) {
	r := testutil.NewRepo()
	c := r.Commit("master", "one")
	r.Tag("release-notes", c)
	r.Tag("v1.2.3", c)
	r.Tag("1.2", c)
	r.Tag("nightly", r.Commit("master", "two"))

	cat, err := tags.NewCatalog(r, nil, logging.Discard())
	require.NoError(t, err)
	require.Equal(t, 1, cat.Len())
	assert.Equal(t, "v1.2.3", cat.All()[0].Name)
	assert.True(t, cat.All()[0].Version.Equal(version.New(1, 2, 3)))

	_, ok := cat.Lookup("nightly")
	assert.False(t, ok)
	tag, ok := cat.Lookup("v1.2.3")
	assert.True(t, ok)
	assert.Equal(t, c, tag.Target)
	assert.Len(t, cat.At(c), 1)
	assert.True(t, cat.HasVersion(version.New(1, 2, 3)))
	assert.False(t, cat.HasVersion(version.New(1, 2, 4)))
}

func TestCatalogCustomPrefixes(t *testing.T) {
	r := testutil.NewRepo()
	r.Tag("release-2.0.0", r.Commit("master", "one"))
	r.Tag("v3.0.0", r.Commit("master", "two"))

	cat, err := tags.NewCatalog(r, []string{"release-"}, logging.Discard())
	require.NoError(t, err)
	require.Equal(t, 1, cat.Len())
	assert.Equal(t, "release-2.0.0", cat.All()[0].Name)
}

func TestSearchEmpty(t *testing.T) {
	r := testutil.NewRepo()
	r.Commit("master", "untagged")
	cat, err := tags.NewCatalog(r, nil, logging.Discard())
	require.NoError(t, err)

	for _, name := range tags.Names() {
		s, err := tags.Lookup(name)
		require.NoError(t, err)
		got, err := s.Search(cat, "master")
		require.NoError(t, err)
		assert.Nil(t, got, name)
	}
}

func TestSearchMissingBranch(t *testing.T) {
	r := testutil.NewRepo()
	r.Tag("1.0.0", r.Commit("master", "one"))
	cat, err := tags.NewCatalog(r, nil, logging.Discard())
	require.NoError(t, err)

	_, err = tags.BiggestTagInBranch.Search(cat, "nope")
	assert.ErrorIs(t, err, repo.ErrBranchNotFound)

	got, err := tags.BiggestTagInRepo.Search(cat, "nope")
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", got.Name)
}

func TestBranchScopeExcludesOtherBranches(t *testing.T) {
	r := testutil.NewRepo()
	r.Tag("1.0.0", r.Commit("master", "base"))
	r.Branch("side", "master")
	r.Tag("5.0.0", r.Commit("side", "side work"))
	r.Commit("master", "more")

	cat, err := tags.NewCatalog(r, nil, logging.Discard())
	require.NoError(t, err)

	got, err := tags.BiggestTagInBranch.Search(cat, "master")
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", got.Name)

	r.Merge("master", "side", "merge side")
	got, err = tags.BiggestTagInBranch.Search(cat, "master")
	require.NoError(t, err)
	assert.Equal(t, "5.0.0", got.Name, "merged history is part of the branch")
}

func TestTiesKeepFirstSeen(t *testing.T) {
	r := testutil.NewRepo()
	c := r.Commit("master", "one")
	r.Tag("v2.0.1", c)
	r.Tag("2.0.1", c)

	cat, err := tags.NewCatalog(r, nil, logging.Discard())
	require.NoError(t, err)
	got, err := tags.BiggestTagInRepo.Search(cat, "master")
	require.NoError(t, err)
	assert.Equal(t, "2.0.1", got.Name, "catalog is ordered by name")
}

func TestZeroStrategyIsDefault(t *testing.T) {
	var zero tags.Strategy
	assert.Equal(t, tags.DefaultStrategy.Name(), zero.Name())

	cat, err := tags.NewCatalog(twoBranchesFake(), nil, logging.Discard())
	require.NoError(t, err)
	got, err := zero.Search(cat, "branch_a")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "1.0.1", got.Name, "must stay on the branch")
}

func TestLookup(t *testing.T) {
	s, err := tags.Lookup("latest-tag-in-branch")
	require.NoError(t, err)
	assert.Equal(t, tags.LatestTagInBranch, s)

	_, err = tags.Lookup("smallest-tag")
	assert.ErrorIs(t, err, tags.ErrUnknownSearchStrategy)

	assert.Equal(t, "biggest-tag-in-branch", tags.DefaultStrategy.String())
	assert.Len(t, tags.Names(), 4)
}
