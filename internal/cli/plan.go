package cli

import (
	"github.com/spf13/cobra"

	"github.com/sprite-ai/autotag/internal/diff"
	"github.com/sprite-ai/autotag/internal/release"
	"github.com/sprite-ai/autotag/internal/render"
	"github.com/sprite-ai/autotag/internal/repo"
)

func newPlanCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the next tag without creating it",
		Long: `Resolve the baseline tag, classify the commits made since and print the
tag that "autotag tag" would create. Nothing in the repository changes.`,
		Args: cobra.NoArgs,
		RunE: a.runPlan,
	}
	cmd.Flags().StringP("format", "f", render.FormatText, "output format: text, json, markdown")
	cmd.Flags().Bool("stat", true, "include file change stats since the baseline")
	return cmd
}

func (a *app) runPlan(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	stat, _ := cmd.Flags().GetBool("stat")

	o, g, _, err := a.orchestrator()
	if err != nil {
		return err
	}
	plan, err := o.Plan(cmd.Context())
	if err != nil {
		return err
	}

	report := render.Report{Plan: plan}
	if stat && plan.Baseline != nil {
		if report.Changes, err = changes(g, plan); err != nil {
			return err
		}
	}
	return render.Write(cmd.OutOrStdout(), format, report)
}

func changes(d repo.Differ, plan *release.Plan) (*diff.Set, error) {
	return diff.Between(d, plan.Baseline.Target, plan.Tip)
}
