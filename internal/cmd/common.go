package cmd

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"go.datum.net/kibanasync/internal/cliutil"
	"go.datum.net/kibanasync/internal/config"
	"go.datum.net/kibanasync/internal/httpclient"
	"go.datum.net/kibanasync/internal/orchestrator"
	"go.datum.net/kibanasync/internal/version"
)

func init() {
	klog.InitFlags(nil)
}

// familyAliases maps the CLI's short family spellings (spec.md §6) onto the
// canonical Family values.
var familyAliases = map[string]version.Family{
	"object":        version.FamilySavedObjects,
	"saved_objects": version.FamilySavedObjects,
	"tool":          version.FamilyTools,
	"tools":         version.FamilyTools,
	"agent":         version.FamilyAgents,
	"agents":        version.FamilyAgents,
	"workflow":      version.FamilyWorkflows,
	"workflows":     version.FamilyWorkflows,
	"space":         version.FamilySpaces,
	"spaces":        version.FamilySpaces,
}

// familyAliasNames lists every recognized --api/add spelling, for error
// messages.
func familyAliasNames() []string {
	names := make([]string, 0, len(familyAliases))
	for name := range familyAliases {
		names = append(names, name)
	}
	return names
}

// parseFamilies splits a `--api` CSV flag into Family values, resolving the
// `object`/`tool`/`agent` aliases spec.md §6 names. An empty string selects
// every family (the orchestrator's own empty-filter default).
func parseFamilies(csv string) ([]version.Family, error) {
	if strings.TrimSpace(csv) == "" {
		return nil, nil
	}
	var out []version.Family
	for _, raw := range strings.Split(csv, ",") {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		f, ok := familyAliases[name]
		if !ok {
			return nil, cliutil.NewUnknownFamilyError(name, familyAliasNames())
		}
		out = append(out, f)
	}
	return out, nil
}

// parseSpaces splits a `--space` CSV flag into trimmed space ids.
func parseSpaces(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	var out []string
	for _, raw := range strings.Split(csv, ",") {
		if id := strings.TrimSpace(raw); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// setDebug maps the global --debug flag onto klog's verbosity (spec.md §6:
// "--debug (maps to klog -v=4)").
func setDebug(debug bool) {
	if !debug {
		return
	}
	if err := flag.Set("v", "4"); err != nil {
		klog.Errorf("could not raise log verbosity: %v", err)
	}
}

// projectRoot resolves the on-disk project root: the current working
// directory, matching `init`'s bootstrap location.
func projectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", cliutil.WrapUserError("could not resolve current working directory", err)
	}
	return dir, nil
}

// connect loads the environment configuration, connects to the Server, and
// binds an Orchestrator to the current project root.
func connect(ctx context.Context, envFile string) (*orchestrator.Orchestrator, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	root, err := projectRoot()
	if err != nil {
		return nil, err
	}
	client, err := httpclient.Connect(ctx, cfg.URL, cfg.Auth, root, cfg.MaxInflight)
	if err != nil {
		return nil, cliutil.NewConnectError(cfg.URL, err)
	}
	return orchestrator.New(client, root), nil
}

// exitCode maps an orchestrator Summary's ExitStatus to the process exit
// code spec.md §6 fixes: 0 for success, and distinct non-zero codes for
// warning and fatal outcomes. The exact non-zero values are policy (spec.md
// §7 Open Questions); ExitStatus's own value encodes them, with fatal
// sharing code 1 with the error exit in main.go.
func exitCode(status orchestrator.ExitStatus) int {
	return int(status)
}

// finish prints a command summary and terminates the process with the
// exit code spec.md §6 fixes, since cobra's RunE error path has no way to
// carry the three-way success/warning/fatal distinction through a nil
// return.
func finish(cmd *cobra.Command, summary *orchestrator.Summary) {
	printSummary(cmd, summary)
	os.Exit(exitCode(summary.ExitStatus()))
}
