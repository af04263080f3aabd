package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/autotag/internal/publish"
	"github.com/sprite-ai/autotag/internal/release"
)

func newTagCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tag",
		Short: "Create the next version tag and push it",
		Long: `Create the next version tag on the branch tip and push it to every
remote given with -u. With --github-repo a GitHub release is created once
the tag is pushed.

Examples:
  autotag tag -b main
  autotag tag -b main -u origin --append-v
  autotag tag --skip-if-tagged --github-repo acme/widgets`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTag(cmd)
		},
	}
}

func (a *app) runTag(cmd *cobra.Command, opts ...release.Option) error {
	if s := a.settings; s.GitHubRepo != "" {
		gh, err := publish.NewGitHub(publish.NewGitHubClient(s.GitHubToken), s.GitHubRepo, a.log)
		if err != nil {
			return err
		}
		opts = append(opts, release.WithPublisher(gh))
	}

	o, _, _, err := a.orchestrator(opts...)
	if err != nil {
		return err
	}
	out, err := o.Run(cmd.Context())
	if err != nil {
		return err
	}
	if out.Skipped() {
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), out.Plan.TagName)
	return nil
}
