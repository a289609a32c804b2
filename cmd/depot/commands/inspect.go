package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/depot/internal/core/domain"
)

func (c *CLI) newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <target-type> <target-id>",
		Short: "Dump the recorded source-to-output data of one target",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := domain.NewTarget(args[0], args[1])
			report, err := c.app.Inspect(cmd.Context(), target)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (id %d)\n", report.Target, report.ID)
			for _, src := range report.Sources {
				fmt.Fprintf(out, "  %s\n", src.Source)
				for _, output := range src.Outputs {
					fmt.Fprintf(out, "    -> %s\n", output)
				}
			}
			return nil
		},
	}
}
