package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Cross-check forward mappings against the reverse output index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := c.app.Verify(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "checked %d targets, %d outputs\n", report.TargetsChecked, report.OutputsChecked)
			for _, issue := range report.Issues {
				fmt.Fprintf(out, "%s: %s: %s\n", issue.Target, issue.Output, issue.Reason)
			}
			if len(report.Issues) == 0 {
				fmt.Fprintln(out, "no inconsistencies found")
			}
			return nil
		},
	}
}
