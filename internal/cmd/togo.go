package cmd

import (
	"github.com/spf13/cobra"

	"go.datum.net/kibanasync/internal/orchestrator"
	"go.datum.net/kibanasync/internal/output"
)

func togoCmd() *cobra.Command {
	var spaceCSV, apiCSV, format string

	cmd := &cobra.Command{
		Use:   "togo",
		Short: "Enumerate every managed on-disk object, ready for an external bundle writer",
		RunE: func(cmd *cobra.Command, args []string) error {
			families, err := parseFamilies(apiCSV)
			if err != nil {
				return err
			}
			o, err := connect(cmd.Context(), envFile)
			if err != nil {
				return err
			}
			records, summary, err := o.Togo(cmd.Context(), orchestrator.TogoOptions{
				Spaces:   parseSpaces(spaceCSV),
				Families: families,
			})
			if err != nil {
				return err
			}

			rows := make([]output.BundleRow, 0, len(records))
			for _, r := range records {
				rows = append(rows, output.BundleRow{Space: r.Space, Family: string(r.Family), Key: r.Key})
			}
			if err := output.PrintBundleTable(cmd.OutOrStdout(), format, records, rows); err != nil {
				return err
			}

			cmd.SilenceUsage = true
			finish(cmd, summary)
			return nil
		},
	}
	cmd.Flags().StringVar(&spaceCSV, "space", "", "comma-separated space ids to enumerate (default: every space in spaces.yml)")
	cmd.Flags().StringVar(&apiCSV, "api", "", "comma-separated families to enumerate (default: every family)")
	cmd.Flags().StringVar(&format, "output", "table", "output format: table, json, or yaml")
	return cmd
}
