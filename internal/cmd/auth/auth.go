// Package auth implements the `kibanasync auth` command: a version-probe
// connectivity check.
package auth

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go.datum.net/kibanasync/internal/cliutil"
	"go.datum.net/kibanasync/internal/config"
	"go.datum.net/kibanasync/internal/httpclient"
	"go.datum.net/kibanasync/internal/orchestrator"
)

// Command creates the `auth` command: it resolves KIBANA_* configuration
// and performs the one-shot version probe Connect always runs, reporting
// the detected Server version without touching any project file.
func Command(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Verify connectivity and credentials against the configured Kibana instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*envFile)
			if err != nil {
				return err
			}
			root, err := os.Getwd()
			if err != nil {
				return cliutil.WrapUserError("could not resolve current working directory", err)
			}
			client, err := httpclient.Connect(cmd.Context(), cfg.URL, cfg.Auth, root, cfg.MaxInflight)
			if err != nil {
				return err
			}
			o := orchestrator.New(client, root)
			v, err := o.Auth(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "connected to %s (server version %s)\n", cfg.URL, v)
			return nil
		},
	}
}
