package cmd

import (
	"github.com/spf13/cobra"

	"go.datum.net/kibanasync/internal/orchestrator"
)

func pushCmd() *cobra.Command {
	var spaceCSV, apiCSV string
	var managed, force bool

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Send managed on-disk objects to the Server",
		RunE: func(cmd *cobra.Command, args []string) error {
			families, err := parseFamilies(apiCSV)
			if err != nil {
				return err
			}
			o, err := connect(cmd.Context(), envFile)
			if err != nil {
				return err
			}
			summary, err := o.Push(cmd.Context(), orchestrator.PushOptions{
				Spaces:   parseSpaces(spaceCSV),
				Families: families,
				Managed:  managed,
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
	cmd.Flags().StringVar(&spaceCSV, "space", "", "comma-separated space ids to limit the push to (default: every space in spaces.yml)")
	cmd.Flags().StringVar(&apiCSV, "api", "", "comma-separated families to limit the push to (default: every family)")
	cmd.Flags().BoolVar(&managed, "managed", false, "value written into the managed field of every pushed workflow, agent, and tool record")
	cmd.Flags().BoolVar(&force, "force", false, "bypass the push-floor version check and unsupported-family gating, with a warning")
	return cmd
}
