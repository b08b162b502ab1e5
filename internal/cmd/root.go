// Package cmd wires the cobra command tree onto the orchestrator core.
package cmd

import (
	"github.com/spf13/cobra"

	"go.datum.net/kibanasync/internal/cmd/auth"
)

// global flag values shared by every subcommand.
var (
	envFile string
	debug   bool
)

// RootCmd builds the kibanasync command tree: auth, init, pull, push, add,
// togo, migrate.
func RootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kibanasync",
		Short: "Synchronize Kibana saved objects, spaces, agents, tools, and workflows with a version-controlled project",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setDebug(debug)
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "path to a .env file to load before resolving KIBANA_* configuration")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable verbose logging")

	rootCmd.AddGroup(&cobra.Group{ID: "auth", Title: "Authentication"})
	rootCmd.AddGroup(&cobra.Group{ID: "sync", Title: "Synchronization"})

	authCmd := auth.Command(&envFile)
	authCmd.GroupID = "auth"
	rootCmd.AddCommand(authCmd)

	for _, sub := range []*cobra.Command{initCmd(), pullCmd(), pushCmd(), addCmd(), togoCmd(), migrateCmd()} {
		sub.GroupID = "sync"
		rootCmd.AddCommand(sub)
	}

	return rootCmd
}
