package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go.datum.net/kibanasync/internal/manifest"
)

// initCmd bootstraps a fresh project: a root spaces.yml naming the default
// space, ready for `pull` to populate. Seeding the project from a bundle
// file's NDJSON contents is an external collaborator's job (spec.md
// §OVERVIEW); --bundle is accepted here only to report that the path
// exists, for a friendlier error before the caller's own bundle loader runs.
func initCmd() *cobra.Command {
	var bundle string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Bootstrap a new project's spaces.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			if bundle != "" {
				if _, err := os.Stat(bundle); err != nil {
					return fmt.Errorf("bundle file %q: %w", bundle, err)
				}
			}
			root, err := projectRoot()
			if err != nil {
				return err
			}
			if _, err := os.Stat(manifest.SpacesYMLPath(root)); err == nil {
				return fmt.Errorf("project already initialized: %s exists", manifest.SpacesYMLPath(root))
			}
			m := &manifest.SpacesManifest{
				Spaces: []manifest.Space{{ID: manifest.DefaultSpaceID, Name: "Default"}},
			}
			if err := manifest.SaveSpacesManifest(root, m); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initialized project at %s\n", root)
			cmd.SilenceUsage = true
			return nil
		},
	}
	cmd.Flags().StringVar(&bundle, "bundle", "", "path to a bundle file to seed the project from (consumed by the external bundle loader)")
	return cmd
}
