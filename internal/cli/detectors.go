package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/autotag/internal/config"
	"github.com/sprite-ai/autotag/internal/render"
)

func newDetectorsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detectors",
		Short: "Validate and print the detector configuration",
		Long: `Load the detector configuration given with -c, or the built-in one,
validate it and print it.`,
		Args: cobra.NoArgs,
		RunE: a.runDetectors,
	}
	cmd.Flags().Bool("canonical", false, "print the normalized configuration instead of the file")
	cmd.Flags().Bool("plain", false, "disable syntax highlighting")
	return cmd
}

func (a *app) runDetectors(cmd *cobra.Command, args []string) error {
	canonical, _ := cmd.Flags().GetBool("canonical")
	plain, _ := cmd.Flags().GetBool("plain")

	data, err := a.settings.DetectorsYAML()
	if err != nil {
		return err
	}
	specs, err := config.ParseDetectors(data)
	if err != nil {
		return err
	}
	set, err := config.BuildDetectors(data, a.log)
	if err != nil {
		return err
	}

	if canonical {
		if data, err = config.MarshalDetectors(specs); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if plain {
		_, err = out.Write(data)
	} else {
		_, err = io.WriteString(out, render.HighlightString("yaml", string(data)))
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "%d detector(s) OK\n", set.Len())
	return nil
}
