package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/autotag/internal/release"
	"github.com/sprite-ai/autotag/internal/tui"
)

func newPreviewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Browse the pending release interactively",
		Long: `Open a terminal UI listing the commits since the baseline tag and the
detectors each one fired. Press enter to create the tag, q to leave
without changes. Nothing is tagged if the branch moved to a different
next version while the preview was open.`,
		Args: cobra.NoArgs,
		RunE: a.runPreview,
	}
}

func (a *app) runPreview(cmd *cobra.Command, args []string) error {
	o, _, set, err := a.orchestrator()
	if err != nil {
		return err
	}
	plan, err := o.Plan(cmd.Context())
	if err != nil {
		return err
	}

	ok, err := tui.Run(plan, set.Detectors())
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(cmd.ErrOrStderr(), "No tag created.")
		return nil
	}
	return a.runTag(cmd, release.ExpectTag(plan.TagName))
}
