package orchestrator

import (
	"fmt"

	"go.datum.net/kibanasync/internal/families"
	"go.datum.net/kibanasync/internal/httpclient"
	"go.datum.net/kibanasync/internal/manifest"
	"go.datum.net/kibanasync/internal/version"
)

// Orchestrator binds a connected Client to a project's on-disk layout and
// dispatches the command surface of spec.md §4.7.
type Orchestrator struct {
	Client *httpclient.Client
	Layout *manifest.Layout

	savedObjects families.SavedObjectsAdapter
	spaces       families.SpaceAdapter
	workflows    families.WorkflowAdapter
	agents       families.AgentAdapter
	tools        families.ToolAdapter
}

// New binds an Orchestrator to a connected Client and a project root.
func New(client *httpclient.Client, projectRoot string) *Orchestrator {
	return &Orchestrator{Client: client, Layout: manifest.NewLayout(projectRoot)}
}

// resolveFamilies returns the requested family filter as given; an empty
// filter selects every family in version.AllFamilies.
func resolveFamilies(filter []version.Family) []version.Family {
	if len(filter) == 0 {
		return version.AllFamilies
	}
	return filter
}

// preflight applies spec.md §4.7's gate for one family: unsupported
// families are skipped (recording a warning-level skip) unless force is
// set, in which case they're attempted with a high-visibility warning.
func (o *Orchestrator) preflight(f version.Family, force bool, summary *Summary) (attempt bool) {
	if o.Client.Supports(f) {
		return true
	}
	if !force {
		summary.addSkip(f, version.UnsupportedReason(f, o.Client.ServerVersion()))
		return false
	}
	summary.addWarning(fmt.Sprintf("family %q forced past unsupported-version gate (%s)", f, version.UnsupportedReason(f, o.Client.ServerVersion())))
	return true
}

// resolveSpaces intersects the client's namespace registry with an
// optional CSV filter.
func (o *Orchestrator) resolveSpaces(filter []string) ([]string, error) {
	return o.Client.Registry().Resolve(filter)
}
