package cmd

import (
	"github.com/spf13/cobra"

	"go.datum.net/kibanasync/internal/output"
)

func migrateCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "migrate <space>",
		Short: "Fetch a space's current Server state, without touching the on-disk project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := connect(cmd.Context(), envFile)
			if err != nil {
				return err
			}
			n, err := o.Migrate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true
			return output.CLIPrint(cmd.OutOrStdout(), format, n, nil, nil)
		},
	}
	cmd.Flags().StringVar(&format, "output", "yaml", "output format: json or yaml")
	return cmd
}
