package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.datum.net/kibanasync/internal/orchestrator"
)

func pullCmd() *cobra.Command {
	var spaceCSV, apiCSV string
	var force bool

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Fetch managed objects from the Server and write them to disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			families, err := parseFamilies(apiCSV)
			if err != nil {
				return err
			}
			o, err := connect(cmd.Context(), envFile)
			if err != nil {
				return err
			}
			summary, err := o.Pull(cmd.Context(), orchestrator.PullOptions{
				Spaces:   parseSpaces(spaceCSV),
				Families: families,
				Force:    force,
			})
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true
			finish(cmd, summary)
			return nil
		},
	}
	cmd.Flags().StringVar(&spaceCSV, "space", "", "comma-separated space ids to limit the pull to (default: every space in spaces.yml)")
	cmd.Flags().StringVar(&apiCSV, "api", "", "comma-separated families to limit the pull to (default: every family)")
	cmd.Flags().BoolVar(&force, "force", false, "attempt version-unsupported families anyway, with a warning")
	return cmd
}

// printSummary renders a command-end summary: counts by outcome, skipped
// families, warnings, and item failures (spec.md §4.7).
func printSummary(cmd *cobra.Command, s *orchestrator.Summary) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "created: %d, updated: %d\n", s.Created, s.Updated)
	for _, skip := range s.Skips {
		fmt.Fprintf(w, "skipped %s: %s\n", skip.Family, skip.Reason)
	}
	for _, warn := range s.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
	for _, f := range s.Failures {
		fmt.Fprintf(w, "failed %s\n", f.String())
	}
}
