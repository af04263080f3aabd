package config

import (
	"os"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/sprite-ai/autotag/internal/logging"
	"github.com/sprite-ai/autotag/internal/repo"
	"github.com/sprite-ai/autotag/internal/tags"
	"github.com/sprite-ai/autotag/internal/version"
)

// EnvPrefix is prepended to every setting read from the environment, e.g.
// AUTOTAG_SEARCH_STRATEGY.
const EnvPrefix = "AUTOTAG"

// Setting keys. They double as the long flag names of the CLI.
const (
	KeyRepo          = "repo"
	KeyBranch        = "branch"
	KeyRemotes       = "upstream-remote"
	KeyStrategy      = "search-strategy"
	KeyPrefixes      = "prefix"
	KeyAppendV       = "append-v"
	KeySkipIfTagged  = "skip-if-tagged"
	KeyName          = "name"
	KeyEmail         = "email"
	KeyCommitter     = "committer"
	KeyDetectorsFile = "config"
	KeyGitHubRepo    = "github-repo"
	KeyGitHubToken   = "github-token"
	KeyLogLevel      = "log-level"
	KeyLogFormat     = "log-format"
	KeySettingsFile  = "settings"
)

// Settings is the resolved configuration of one invocation.
type Settings struct {
	Repo          string   `mapstructure:"repo"`
	Branch        string   `mapstructure:"branch"`
	Remotes       []string `mapstructure:"upstream-remote"`
	Strategy      string   `mapstructure:"search-strategy"`
	Prefixes      []string `mapstructure:"prefix"`
	AppendV       bool     `mapstructure:"append-v"`
	SkipIfTagged  bool     `mapstructure:"skip-if-tagged"`
	Name          string   `mapstructure:"name"`
	Email         string   `mapstructure:"email"`
	Committer     string   `mapstructure:"committer"`
	DetectorsFile string   `mapstructure:"config"`
	GitHubRepo    string   `mapstructure:"github-repo"`
	GitHubToken   string   `mapstructure:"github-token"`
	LogLevel      string   `mapstructure:"log-level"`
	LogFormat     string   `mapstructure:"log-format"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyRepo, ".")
	v.SetDefault(KeyBranch, "master")
	v.SetDefault(KeyStrategy, tags.DefaultStrategy.Name())
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, logging.FormatText)
}

// Load resolves settings from v: explicit values and bound flags first,
// then AUTOTAG_* environment variables, then the optional settings file,
// then defaults.
func Load(v *viper.Viper) (*Settings, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv(KeyGitHubToken, EnvPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN"); err != nil {
		return nil, errors.Wrap(err, "binding github token")
	}

	if path := v.GetString(KeySettingsFile); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading settings file %s", path)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, errors.Wrap(err, "decoding settings")
	}
	return &s, nil
}

// Validate rejects settings that cannot produce a run. It does not touch
// the repository.
func (s *Settings) Validate() error {
	if s.Branch == "" {
		return errors.New("branch must not be empty")
	}
	if _, err := tags.Lookup(s.Strategy); err != nil {
		return err
	}
	switch strings.ToLower(s.LogFormat) {
	case "", logging.FormatText, logging.FormatJSON:
	default:
		return errors.Errorf("unknown log format %q (accepted: text, json)", s.LogFormat)
	}
	if s.Committer != "" {
		if _, err := gitdiff.ParsePatchIdentity(s.Committer); err != nil {
			return errors.Wrapf(err, "parsing committer %q", s.Committer)
		}
	}
	return nil
}

// SearchStrategy returns the configured strategy.
func (s *Settings) SearchStrategy() (tags.Strategy, error) {
	return tags.Lookup(s.Strategy)
}

// TagPrefix is prepended to the computed version when naming the tag.
func (s *Settings) TagPrefix() string {
	if s.AppendV {
		return "v"
	}
	return ""
}

// VersionPrefixes returns the prefixes stripped from tag names, never nil.
func (s *Settings) VersionPrefixes() []string {
	if len(s.Prefixes) == 0 {
		return version.DefaultPrefixes
	}
	return s.Prefixes
}

// Identity returns the committer for created tags. --committer is parsed as
// "Name <email>"; --name and --email override its parts. Empty fields are
// filled from git config by the repository.
func (s *Settings) Identity() (repo.Identity, error) {
	var id repo.Identity
	if s.Committer != "" {
		pi, err := gitdiff.ParsePatchIdentity(s.Committer)
		if err != nil {
			return id, errors.Wrapf(err, "parsing committer %q", s.Committer)
		}
		id.Name, id.Email = pi.Name, pi.Email
	}
	if s.Name != "" {
		id.Name = s.Name
	}
	if s.Email != "" {
		id.Email = s.Email
	}
	return id, nil
}

// DetectorsYAML returns the contents of the detector file, or the built-in
// defaults when none is set.
func (s *Settings) DetectorsYAML() ([]byte, error) {
	if s.DetectorsFile == "" {
		return DefaultDetectorsYAML(), nil
	}
	data, err := os.ReadFile(s.DetectorsFile)
	if err != nil {
		return nil, errors.Wrapf(err, "reading detector file %s", s.DetectorsFile)
	}
	return data, nil
}
