package orchestrator

import (
	"context"
	"fmt"
	"net/http"

	"go.datum.net/kibanasync/internal/cliutil"
	"go.datum.net/kibanasync/internal/codec"
	"go.datum.net/kibanasync/internal/httpclient"
	"go.datum.net/kibanasync/internal/manifest"
	"go.datum.net/kibanasync/internal/version"
)

// AddOptions configures one add invocation: a single family, a single
// space, and the seed identifiers to bring under management.
type AddOptions struct {
	Space       string
	Family      version.Family
	Selectors   []string
	IncludeDeps bool
}

// depRef is one work-list entry of the dependency-closure traversal.
type depRef struct {
	Family version.Family
	ID     string
}

// Add brings the requested selectors under management, then — unless
// IncludeDeps is false — walks the dependency closure described in
// spec.md §4.7: agent -> tools (configuration.tools), tool -> workflow
// (configuration.workflow_id), workflow -> recursive key search for
// agent_id/tool_id/workflow_id (and camelCase variants). Only agents,
// tools, and workflows participate in the closure; saved_objects and
// spaces are managed directly through their own manifest files.
func (o *Orchestrator) Add(ctx context.Context, opts AddOptions) (*Summary, error) {
	summary := &Summary{}

	if opts.Family != version.FamilyAgents && opts.Family != version.FamilyTools && opts.Family != version.FamilyWorkflows {
		return nil, cliutil.NewUnsupportedAddFamilyError(opts.Family)
	}
	if !o.preflight(opts.Family, false, summary) {
		return summary, nil
	}

	sc, err := o.Client.Space(opts.Space)
	if err != nil {
		return nil, err
	}

	queue := make([]depRef, 0, len(opts.Selectors))
	for _, sel := range opts.Selectors {
		queue = append(queue, depRef{Family: opts.Family, ID: sel})
	}

	visited := make(map[depRef]bool)
	for len(queue) > 0 {
		ref := queue[0]
		queue = queue[1:]
		if visited[ref] {
			continue
		}
		visited[ref] = true

		if !o.Client.Supports(ref.Family) {
			summary.addWarning(fmt.Sprintf("add: skipping %s %s: %s", ref.Family, ref.ID, version.UnsupportedReason(ref.Family, o.Client.ServerVersion())))
			continue
		}

		n, added, err := o.addOne(ctx, opts.Space, sc, ref, summary)
		if err != nil {
			summary.addFailure(opts.Space, ref.Family, ref.ID, err)
			continue
		}
		if !added || !opts.IncludeDeps {
			continue
		}
		for _, dep := range dependenciesOf(ref.Family, n) {
			if !visited[dep] {
				queue = append(queue, dep)
			}
		}
	}

	return summary, nil
}

// addOne fetches and writes a single dependency-closure item, adding it to
// its per-space manifest. Returns the fetched node (so callers can keep
// walking its dependencies), whether the manifest actually changed, and any
// unrecoverable error. A 404/not-found dependency is reported as a warning,
// not an error, per spec.md §4.7.
func (o *Orchestrator) addOne(ctx context.Context, spaceID string, sc *httpclient.SpaceClient, ref depRef, summary *Summary) (*codec.Node, bool, error) {
	manifestPath, err := o.Layout.ManifestPath(spaceID, ref.Family)
	if err != nil {
		return nil, false, err
	}
	fm, err := manifest.LoadFamilyManifest(manifestPath)
	if err != nil {
		return nil, false, err
	}
	if fm.Has(ref.ID) {
		return nil, false, nil
	}

	n, ok, err := o.fetchForAdd(ctx, sc, ref)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		summary.addWarning(fmt.Sprintf("add: dependency %s %s not found on Server", ref.Family, ref.ID))
		return nil, false, nil
	}

	key, err := itemFamilyKey(ref.Family, n)
	if err != nil {
		return nil, false, err
	}
	path, err := o.Layout.ObjectPath(spaceID, ref.Family, key)
	if err != nil {
		return nil, false, err
	}
	if err := writeNode(path, n, multilinePathsFor(ref.Family)); err != nil {
		return nil, false, err
	}

	name := ""
	if ref.Family == version.FamilyWorkflows {
		name = key
	}
	fm.Add(ref.ID, name)
	if err := manifest.SaveFamilyManifest(manifestPath, fm); err != nil {
		return nil, false, err
	}
	summary.addAdded(1)
	return n, true, nil
}

// fetchForAdd dispatches to the right adapter's single-item fetch,
// normalizing workflow's (Node, error) shape to the (Node, bool, error)
// shape agents/tools already expose, since the Server returns 404 for an
// unknown workflow id rather than an empty list.
func (o *Orchestrator) fetchForAdd(ctx context.Context, sc *httpclient.SpaceClient, ref depRef) (*codec.Node, bool, error) {
	switch ref.Family {
	case version.FamilyAgents:
		return o.agents.Get(ctx, sc, ref.ID)
	case version.FamilyTools:
		return o.tools.Get(ctx, sc, ref.ID)
	case version.FamilyWorkflows:
		n, err := o.workflows.Get(ctx, sc, ref.ID)
		if httpclient.IsStatus(err, http.StatusNotFound) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		return n, true, nil
	default:
		return nil, false, fmt.Errorf("orchestrator: add does not support family %q", ref.Family)
	}
}

// dependencyKeys maps the JSON key names the recursive workflow scan
// matches to the family they reference, covering both snake_case and
// camelCase spellings (spec.md §4.7).
var dependencyKeys = map[string]version.Family{
	"agent_id":    version.FamilyAgents,
	"agentId":     version.FamilyAgents,
	"tool_id":     version.FamilyTools,
	"toolId":      version.FamilyTools,
	"workflow_id": version.FamilyWorkflows,
	"workflowId":  version.FamilyWorkflows,
}

// dependenciesOf extracts the next work-list entries from a freshly
// fetched record, per the family-specific reference shapes spec.md §4.7
// names explicitly.
func dependenciesOf(f version.Family, n *codec.Node) []depRef {
	switch f {
	case version.FamilyAgents:
		return stringArrayRefs(n, "configuration.tools", version.FamilyTools)
	case version.FamilyTools:
		return stringFieldRef(n, "configuration.workflow_id", version.FamilyWorkflows)
	case version.FamilyWorkflows:
		var out []depRef
		recursiveKeySearch(n, &out)
		return out
	default:
		return nil
	}
}

func stringArrayRefs(n *codec.Node, path string, f version.Family) []depRef {
	v, ok := n.GetPath(path)
	if !ok || v.Kind != codec.KindArray {
		return nil
	}
	out := make([]depRef, 0, len(v.Items))
	for _, it := range v.Items {
		if it.Kind == codec.KindString && it.Str != "" {
			out = append(out, depRef{Family: f, ID: it.Str})
		}
	}
	return out
}

func stringFieldRef(n *codec.Node, path string, f version.Family) []depRef {
	v, ok := n.GetPath(path)
	if !ok || v.Kind != codec.KindString || v.Str == "" {
		return nil
	}
	return []depRef{{Family: f, ID: v.Str}}
}

func recursiveKeySearch(n *codec.Node, out *[]depRef) {
	if n == nil {
		return
	}
	switch n.Kind {
	case codec.KindObject:
		for _, k := range n.Keys {
			child := n.Fields[k]
			if f, ok := dependencyKeys[k]; ok && child.Kind == codec.KindString && child.Str != "" {
				*out = append(*out, depRef{Family: f, ID: child.Str})
			}
			recursiveKeySearch(child, out)
		}
	case codec.KindArray:
		for _, it := range n.Items {
			recursiveKeySearch(it, out)
		}
	}
}
