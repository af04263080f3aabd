// Package cli wires the autotag commands.
package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sprite-ai/autotag/internal/config"
	"github.com/sprite-ai/autotag/internal/detect"
	"github.com/sprite-ai/autotag/internal/logging"
	"github.com/sprite-ai/autotag/internal/release"
	"github.com/sprite-ai/autotag/internal/repo"
	"github.com/sprite-ai/autotag/internal/tags"
)

var rootCmd = newRootCmd()

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// app carries the state shared by the commands of one invocation.
type app struct {
	v        *viper.Viper
	settings *config.Settings
	log      *logrus.Logger
}

// flagAliases maps the historical flag names onto the current ones.
var flagAliases = map[string]string{
	"upstream_remote":                 config.KeyRemotes,
	"logging":                         config.KeyLogLevel,
	"append-v-to-tag":                 config.KeyAppendV,
	"skip-tag-if-one-already-present": config.KeySkipIfTagged,
}

func normalizeFlag(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if alias, ok := flagAliases[name]; ok {
		name = alias
	}
	return pflag.NormalizedName(name)
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), log: logging.Discard()}

	cmd := &cobra.Command{
		Use:   "autotag",
		Short: "Tag a branch with the next semantic version",
		Long: `autotag finds the latest version tag on a branch, classifies the commits
made since with the configured detectors and tags the branch tip with the
next semantic version. The tag can be pushed to one or more remotes.

Running autotag without a subcommand is the same as "autotag tag".`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTag(cmd)
		},
	}

	// Global so the aliases also resolve once cobra merges these flags into
	// a subcommand's flag set.
	cmd.SetGlobalNormalizationFunc(normalizeFlag)
	f := cmd.PersistentFlags()
	f.StringP(config.KeyRepo, "r", ".", "path to the repository")
	f.StringP(config.KeyBranch, "b", "master", "branch to work on")
	f.StringSliceP(config.KeyRemotes, "u", nil, "remote to push the tag to, can be repeated")
	f.StringP(config.KeyStrategy, "s", tags.DefaultStrategy.Name(), "baseline tag search strategy")
	f.StringSlice(config.KeyPrefixes, nil, "prefixes stripped from tag names before parsing (default v)")
	f.Bool(config.KeyAppendV, false, "prefix the new tag with v")
	f.Bool(config.KeySkipIfTagged, false, "do nothing when the branch tip already carries a version tag")
	f.String(config.KeyName, "", "tagger name, defaults to git config user.name")
	f.String(config.KeyEmail, "", "tagger email, defaults to git config user.email")
	f.String(config.KeyCommitter, "", `tagger as "Name <email>"`)
	f.StringP(config.KeyDetectorsFile, "c", "", "detector configuration file (default built-in)")
	f.String(config.KeyGitHubRepo, "", "create a GitHub release in owner/repo after tagging")
	f.String(config.KeyGitHubToken, "", "GitHub token, defaults to $GITHUB_TOKEN")
	f.StringP(config.KeyLogLevel, "l", "info", "log level: debug, info, warning, error")
	f.String(config.KeyLogFormat, logging.FormatText, "log format: text, json")
	f.String(config.KeySettingsFile, "", "settings file (yaml, json or toml)")

	if err := a.v.BindPFlags(f); err != nil {
		panic(err)
	}

	cmd.AddCommand(
		newTagCmd(a),
		newPlanCmd(a),
		newPreviewCmd(a),
		newDetectorsCmd(a),
		newServeCmd(a),
		newVersionCmd(),
	)
	return cmd
}

// setup resolves settings and the logger before any command runs.
func (a *app) setup(cmd *cobra.Command) error {
	s, err := config.Load(a.v)
	if err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}
	log, err := logging.New(cmd.ErrOrStderr(), s.LogLevel, s.LogFormat)
	if err != nil {
		return err
	}
	a.settings = s
	a.log = log
	return nil
}

func (a *app) detectors() (*detect.Set, error) {
	data, err := a.settings.DetectorsYAML()
	if err != nil {
		return nil, err
	}
	return config.BuildDetectors(data, a.log)
}

func (a *app) options() (release.Options, error) {
	s := a.settings
	strategy, err := s.SearchStrategy()
	if err != nil {
		return release.Options{}, err
	}
	who, err := s.Identity()
	if err != nil {
		return release.Options{}, err
	}
	return release.Options{
		Branch:       s.Branch,
		Strategy:     strategy,
		Prefixes:     s.VersionPrefixes(),
		TagPrefix:    s.TagPrefix(),
		SkipIfTagged: s.SkipIfTagged,
		Committer:    who,
		Remotes:      s.Remotes,
	}, nil
}

// orchestrator opens the repository and prepares a run.
func (a *app) orchestrator(opts ...release.Option) (*release.Orchestrator, *repo.Git, *detect.Set, error) {
	set, err := a.detectors()
	if err != nil {
		return nil, nil, nil, err
	}
	o, err := a.options()
	if err != nil {
		return nil, nil, nil, err
	}
	g, err := repo.Open(a.settings.Repo)
	if err != nil {
		return nil, nil, nil, err
	}
	opts = append([]release.Option{release.WithLogger(a.log)}, opts...)
	return release.New(g, set, o, opts...), g, set, nil
}
