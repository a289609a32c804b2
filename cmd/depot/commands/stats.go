package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the build-data root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := c.app.Stats(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "target id high-water mark: %d\n", stats.MaxTargetID)
			if stats.LastRebuildDuration > 0 {
				fmt.Fprintf(out, "last full rebuild: %s\n", stats.LastRebuildDuration)
			}
			for _, ts := range stats.Types {
				fmt.Fprintf(out, "%s: %d targets, %d stale", ts.TypeID, ts.LiveTargets, ts.StaleTargets)
				if ts.AverageBuildTimeMs >= 0 {
					fmt.Fprintf(out, ", avg build %dms", ts.AverageBuildTimeMs)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}
