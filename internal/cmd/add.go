package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.datum.net/kibanasync/internal/cliutil"
	"go.datum.net/kibanasync/internal/manifest"
	"go.datum.net/kibanasync/internal/orchestrator"
)

func addCmd() *cobra.Command {
	var space string
	var excludeDeps bool

	cmd := &cobra.Command{
		Use:   "add <family> <selector...>",
		Short: "Bring already-existing Server objects under management, following their dependency closure",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			families, err := parseFamilies(args[0])
			if err != nil {
				return err
			}
			if len(families) != 1 {
				return cliutil.NewUserError(fmt.Sprintf("add expects exactly one family, got %q", args[0]))
			}
			o, err := connect(cmd.Context(), envFile)
			if err != nil {
				return err
			}
			spaceID := space
			if spaceID == "" {
				spaceID = manifest.DefaultSpaceID
			}
			summary, err := o.Add(cmd.Context(), orchestrator.AddOptions{
				Space:       spaceID,
				Family:      families[0],
				Selectors:   args[1:],
				IncludeDeps: !excludeDeps,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added: %d\n", summary.Added)
			cmd.SilenceUsage = true
			finish(cmd, summary)
			return nil
		},
	}
	cmd.Flags().StringVar(&space, "space", "", "space id the selectors live in (default: the default space)")
	cmd.Flags().BoolVar(&excludeDeps, "exclude-dependencies", false, "add only the named selectors, without following their dependency closure")
	return cmd
}
