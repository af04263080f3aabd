package detect

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprite-ai/autotag/internal/model"
)

func boolPtr(b bool) *bool { return &b }

func commit(id, msg string) model.Commit {
	return model.Commit{ID: model.CommitRef(id), Message: msg}
}

func mustNew(t *testing.T, spec Spec) Detector {
	t.Helper()
	d, err := New(spec)
	require.NoError(t, err)
	return d
}

func TestStartsWith(t *testing.T) {
	d := mustNew(t, Spec{Name: "feature", Kind: KindStartsWith, ChangeKind: "MINOR", Pattern: "feature"})

	assert.True(t, d.Evaluate(commit("a", "feature: add bump")))
	assert.True(t, d.Evaluate(commit("a", "  feature: leading spaces stripped")))
	assert.False(t, d.Evaluate(commit("a", "fix: something\nfeature on line two")))
	assert.False(t, d.Evaluate(commit("a", "Feature: case matters")))
	assert.Equal(t, model.Minor, d.ChangeKind())
}

func TestStartsWithCaseInsensitive(t *testing.T) {
	d := mustNew(t, Spec{Name: "feat", Kind: KindStartsWith, ChangeKind: "MINOR", Pattern: "FEAT", CaseSensitive: boolPtr(false)})
	assert.True(t, d.Evaluate(commit("a", "feat: lower")))
	assert.True(t, d.Evaluate(commit("a", "Feat: mixed")))
}

func TestStartsWithNoStrip(t *testing.T) {
	d := mustNew(t, Spec{Name: "feat", Kind: KindStartsWith, ChangeKind: "MINOR", Pattern: "feat", Strip: boolPtr(false)})
	assert.False(t, d.Evaluate(commit("a", "  feat: indented")))
	assert.True(t, d.Evaluate(commit("a", "feat: flush")))
}

func TestContains(t *testing.T) {
	d := mustNew(t, Spec{Name: "breaking", Kind: KindContains, ChangeKind: "MAJOR", Pattern: "BREAKING_CHANGE", CaseSensitive: boolPtr(false)})

	assert.True(t, d.Evaluate(commit("a", "refactor\n\nbreaking_change: drop v1 api")))
	assert.True(t, d.Evaluate(commit("a", "BREAKING_CHANGE")))
	assert.False(t, d.Evaluate(commit("a", "breaking change with a space")))
}

func TestRegexMatch(t *testing.T) {
	d := mustNew(t, Spec{Name: "scope", Kind: KindRegexMatch, ChangeKind: "MINOR", Pattern: `^feat\(\w+\):`})

	assert.True(t, d.Evaluate(commit("a", "feat(cli): add plan")))
	assert.False(t, d.Evaluate(commit("a", "  feat(cli): raw message is not stripped")))
	assert.False(t, d.Evaluate(commit("a", "fix(cli): nope")))

	multi := mustNew(t, Spec{Name: "multi", Kind: KindRegexMatch, ChangeKind: "MAJOR", Pattern: `(?m)^BREAKING`})
	assert.True(t, multi.Evaluate(commit("a", "chore\n\nBREAKING: removed flag")))
}

func TestLegacyKindNames(t *testing.T) {
	tests := map[string]string{
		"CommitMessageHeadStartsWithDetector": KindStartsWith,
		"CommitMessageContainsDetector":       KindContains,
		"CommitMessageMatchesRegexDetector":   KindRegexMatch,
	}
	for legacy, want := range tests {
		d := mustNew(t, Spec{Name: "x", Kind: legacy, ChangeKind: "PATCH", Pattern: "x"})
		assert.Equal(t, want, d.Kind(), legacy)
	}
}

func TestNewErrors(t *testing.T) {
	_, err := New(Spec{Name: "x", Kind: "fuzzy", ChangeKind: "PATCH", Pattern: "x"})
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = New(Spec{Name: "x", Kind: KindContains, ChangeKind: "patch", Pattern: "x"})
	assert.ErrorIs(t, err, ErrDetectorValidation)
	assert.ErrorIs(t, err, model.ErrInvalidChangeKind)

	_, err = New(Spec{Name: "x", Kind: KindContains, ChangeKind: "PATCH"})
	assert.ErrorIs(t, err, ErrDetectorValidation)
	assert.ErrorIs(t, err, ErrInvalidPattern)

	_, err = New(Spec{Name: "bad-re", Kind: KindRegexMatch, ChangeKind: "PATCH", Pattern: "feat("})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPattern)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "bad-re", verr.Detector)
}

func defaultSet(t *testing.T, opts ...Option) *Set {
	t.Helper()
	s, err := Build([]Spec{
		{Name: "check_for_feature_heading", Kind: KindStartsWith, ChangeKind: "MINOR", Pattern: "feature"},
		{Name: "check_for_breaking_change", Kind: KindContains, ChangeKind: "MAJOR", Pattern: "BREAKING_CHANGE", CaseSensitive: boolPtr(false)},
	}, opts...)
	require.NoError(t, err)
	return s
}

func TestEvaluate(t *testing.T) {
	s := defaultSet(t)

	tests := []struct {
		name    string
		commits []model.Commit
		want    model.ChangeKind
	}{
		{"empty", nil, model.Patch},
		{"no trigger", []model.Commit{commit("a", "fix: typo")}, model.Patch},
		{"minor", []model.Commit{commit("a", "fix"), commit("b", "feature: x")}, model.Minor},
		{"major wins", []model.Commit{commit("a", "feature: x"), commit("b", "BREAKING_CHANGE: y"), commit("c", "fix")}, model.Major},
		{"order independent", []model.Commit{commit("b", "BREAKING_CHANGE: y"), commit("a", "feature: x")}, model.Major},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Classify(tt.commits))
		})
	}
}

func TestEvaluateRecordsEveryTrigger(t *testing.T) {
	s := defaultSet(t)
	res := s.Evaluate([]model.Commit{
		commit("aaaaaaaaa", "feature: breaking_change inside"),
		commit("bbbbbbbbb", "fix"),
	})

	require.Len(t, res.Triggers, 2)
	assert.Equal(t, model.Major, res.Kind)
	assert.Equal(t, "check_for_feature_heading", res.Triggers[0].Detector)
	assert.Equal(t, "check_for_breaking_change", res.Triggers[1].Detector)
	assert.Len(t, res.ByCommit()["aaaaaaaaa"], 2)
	assert.Equal(t, "MAJOR (1 MAJOR, 1 MINOR)", res.Summary())
	assert.Equal(t, []string{"check_for_feature_heading", "check_for_breaking_change"}, s.Fired(res.Triggers[0].Commit))
}

func TestEmptySet(t *testing.T) {
	s, err := Build(nil)
	require.NoError(t, err)
	res := s.Evaluate([]model.Commit{commit("a", "BREAKING_CHANGE")})
	assert.Equal(t, model.Patch, res.Kind)
	assert.Equal(t, "PATCH (no detector fired)", res.Summary())
}

func TestBuildRejectsDuplicates(t *testing.T) {
	_, err := Build([]Spec{
		{Name: "same", Kind: KindContains, ChangeKind: "PATCH", Pattern: "a"},
		{Name: "same", Kind: KindContains, ChangeKind: "MINOR", Pattern: "b"},
	})
	assert.ErrorIs(t, err, ErrDetectorValidation)
}

func TestEvaluateLogs(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetLevel(logrus.DebugLevel)

	s := defaultSet(t, WithLogger(log))
	s.Evaluate([]model.Commit{commit("abcdef0123", "feature: logged")})
	assert.Contains(t, buf.String(), "detector=check_for_feature_heading")
	assert.Contains(t, buf.String(), "commit=abcdef0")
}
