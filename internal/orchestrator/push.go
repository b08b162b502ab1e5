package orchestrator

import (
	"context"
	"fmt"

	"go.datum.net/kibanasync/internal/codec"
	"go.datum.net/kibanasync/internal/families"
	"go.datum.net/kibanasync/internal/httpclient"
	"go.datum.net/kibanasync/internal/manifest"
	"go.datum.net/kibanasync/internal/pipeline"
	"go.datum.net/kibanasync/internal/version"
)

// PushOptions configures one push invocation.
type PushOptions struct {
	Spaces   []string
	Families []version.Family
	Managed  bool
	Force    bool
}

// Push assembles every managed on-disk object and sends it to the Server,
// per space and per family (spec.md §4.7). The push floor is enforced
// before any API call: an incompatible recorded/current version pair
// aborts the entire command unless Force is set.
func (o *Orchestrator) Push(ctx context.Context, opts PushOptions) (*Summary, error) {
	summary := &Summary{}

	blocked, reason, err := o.pushFloorBlocked()
	if err != nil {
		return nil, err
	}
	if blocked {
		if !opts.Force {
			summary.addWarning(reason)
			return summary, nil
		}
		summary.addWarning(fmt.Sprintf("%s (bypassed with --force)", reason))
	}

	spaceIDs, err := o.resolveSpaces(opts.Spaces)
	if err != nil {
		return nil, err
	}

	for _, f := range resolveFamilies(opts.Families) {
		if !o.preflight(f, opts.Force, summary) {
			continue
		}
		for _, spaceID := range spaceIDs {
			if err := o.pushFamily(ctx, spaceID, f, opts.Managed, summary); err != nil {
				summary.addFailure(spaceID, f, "*", err)
			}
		}
	}

	return summary, nil
}

// pushFloorBlocked reports whether the recorded last-pull Server version is
// incompatible with the currently connected Server version. A project with
// no recorded version (never pulled) has nothing to enforce.
func (o *Orchestrator) pushFloorBlocked() (bool, string, error) {
	m, err := manifest.LoadSpacesManifest(o.Layout.Root)
	if err != nil {
		return false, "", fmt.Errorf("orchestrator: load spaces.yml: %w", err)
	}
	if m.Kibana == nil || m.Kibana.Version == "" {
		return false, "", nil
	}
	recorded, err := version.Parse(m.Kibana.Version)
	if err != nil {
		return false, "", fmt.Errorf("orchestrator: parse recorded version %q: %w", m.Kibana.Version, err)
	}
	current := o.Client.ServerVersion()
	if version.IsPushCompatible(recorded, current) {
		return false, "", nil
	}
	return true, fmt.Sprintf("push floor violated: recorded Server version %s is incompatible with connected Server version %s", recorded, current), nil
}

func (o *Orchestrator) pushFamily(ctx context.Context, spaceID string, f version.Family, managed bool, summary *Summary) error {
	sc, err := o.Client.Space(spaceID)
	if err != nil {
		return err
	}

	switch f {
	case version.FamilySavedObjects:
		return o.pushSavedObjects(ctx, spaceID, sc, summary)
	case version.FamilySpaces:
		return o.pushSpace(ctx, spaceID, summary)
	case version.FamilyWorkflows:
		return o.pushItemFamily(ctx, spaceID, f, sc, managed, summary, o.workflows.Push)
	case version.FamilyAgents:
		return o.pushItemFamily(ctx, spaceID, f, sc, managed, summary, o.agents.Push)
	case version.FamilyTools:
		return o.pushItemFamily(ctx, spaceID, f, sc, managed, summary, o.tools.Push)
	default:
		return fmt.Errorf("orchestrator: unknown family %q", f)
	}
}

// pushSavedObjects reads every manifest-listed record from disk, re-escapes
// the nested-JSON string fields, and assembles one NDJSON import body (the
// Server exposes no per-item create/update for saved objects, spec.md §4.5).
func (o *Orchestrator) pushSavedObjects(ctx context.Context, spaceID string, sc *httpclient.SpaceClient, summary *Summary) error {
	manifestPath, err := o.Layout.ManifestPath(spaceID, version.FamilySavedObjects)
	if err != nil {
		return err
	}
	soManifest, err := manifest.LoadSavedObjectsManifest(manifestPath)
	if err != nil {
		return err
	}
	if len(soManifest.Objects) == 0 {
		return nil
	}

	var records []*codec.Node
	for _, ref := range soManifest.Objects {
		path := o.Layout.SavedObjectPath(spaceID, ref.Type, ref.ID)
		n, err := readNode(path)
		if err != nil {
			summary.addFailure(spaceID, version.FamilySavedObjects, ref.Type+"/"+ref.ID, err)
			continue
		}
		for _, p := range savedObjectsNestedJSONPaths {
			if err := codec.UnescapeNestedJSON(n, p); err != nil {
				summary.addFailure(spaceID, version.FamilySavedObjects, ref.Type+"/"+ref.ID, err)
				continue
			}
		}
		records = append(records, n)
	}
	if len(records) == 0 {
		return nil
	}
	if err := o.savedObjects.Import(ctx, sc, records); err != nil {
		return err
	}
	summary.addUpdated(len(records))
	return nil
}

// pushSpace pushes one space's on-disk space.json, via the default
// (unprefixed) client, since spaces are not namespace-scoped.
// Spaces are never deleted (spec.md §4.5).
func (o *Orchestrator) pushSpace(ctx context.Context, spaceID string, summary *Summary) error {
	sc, err := o.Client.Space(manifest.DefaultSpaceID)
	if err != nil {
		return err
	}
	n, err := readNode(o.Layout.SpaceJSONPath(spaceID))
	if err != nil {
		return err
	}
	outcome, err := o.spaces.Push(ctx, sc, n)
	if err != nil {
		return err
	}
	o.recordOutcome(outcome, summary)
	return nil
}

type pushFunc func(ctx context.Context, sc *httpclient.SpaceClient, n *codec.Node) (families.Outcome, error)

// pushItemFamily reads every manifest-listed on-disk record for one
// per-item family, sets the managed flag, and pushes it through the
// family's adapter, bounded by the client's global inflight cap.
func (o *Orchestrator) pushItemFamily(ctx context.Context, spaceID string, f version.Family, sc *httpclient.SpaceClient, managed bool, summary *Summary, push pushFunc) error {
	manifestPath, err := o.Layout.ManifestPath(spaceID, f)
	if err != nil {
		return err
	}
	fm, err := manifest.LoadFamilyManifest(manifestPath)
	if err != nil {
		return err
	}
	if len(fm.Entries) == 0 {
		return nil
	}

	type pushItem struct {
		key string
		n   *codec.Node
	}
	items := make([]pushItem, 0, len(fm.Entries))
	for _, e := range fm.Entries {
		key := e.ID
		if f == version.FamilyWorkflows && e.Name != "" {
			key = e.Name
		}
		path, err := o.Layout.ObjectPath(spaceID, f, key)
		if err != nil {
			summary.addFailure(spaceID, f, key, err)
			continue
		}
		n, err := readNode(path)
		if err != nil {
			summary.addFailure(spaceID, f, key, err)
			continue
		}
		codec.SetManaged(n, managed)
		items = append(items, pushItem{key: key, n: n})
	}

	_, err = pipeline.Run(ctx, func(context.Context) ([]pushItem, error) {
		return items, nil
	}, func(ctx context.Context, item pushItem) error {
		outcome, err := push(ctx, sc, item.n)
		if err != nil {
			summary.addFailure(spaceID, f, item.key, err)
			return err
		}
		o.recordOutcome(outcome, summary)
		return nil
	}, o.Client.MaxInflight())
	if err != nil && !pipeline.IsFailuresError(err) {
		return err
	}
	return nil
}

func (o *Orchestrator) recordOutcome(outcome families.Outcome, summary *Summary) {
	if outcome == families.Created {
		summary.addCreated(1)
		return
	}
	summary.addUpdated(1)
}
