package orchestrator

import (
	"context"
	"fmt"

	"go.datum.net/kibanasync/internal/codec"
	"go.datum.net/kibanasync/internal/httpclient"
	"go.datum.net/kibanasync/internal/manifest"
	"go.datum.net/kibanasync/internal/version"
)

// PullOptions configures one pull invocation.
type PullOptions struct {
	Spaces   []string
	Families []version.Family
	Force    bool
}

// Pull fetches every managed object from the Server and writes it to
// disk, per space and per family. It records version provenance in
// spaces.yml on success (spec.md §4.7).
func (o *Orchestrator) Pull(ctx context.Context, opts PullOptions) (*Summary, error) {
	summary := &Summary{}
	spaceIDs, err := o.resolveSpaces(opts.Spaces)
	if err != nil {
		return nil, err
	}

	for _, f := range resolveFamilies(opts.Families) {
		if !o.preflight(f, opts.Force, summary) {
			continue
		}
		for _, spaceID := range spaceIDs {
			if err := o.pullFamily(ctx, spaceID, f, summary); err != nil {
				summary.addFailure(spaceID, f, "*", err)
			}
		}
	}

	if summary.ExitStatus() != ExitFatal {
		if err := manifest.RecordPullVersion(o.Layout.Root, o.Client.ServerVersion()); err != nil {
			return summary, fmt.Errorf("orchestrator: record pull version: %w", err)
		}
	}
	return summary, nil
}

func (o *Orchestrator) pullFamily(ctx context.Context, spaceID string, f version.Family, summary *Summary) error {
	sc, err := o.Client.Space(spaceID)
	if err != nil {
		return err
	}

	switch f {
	case version.FamilySavedObjects:
		return o.pullSavedObjects(ctx, spaceID, sc, summary)
	case version.FamilySpaces:
		return o.pullSpace(ctx, spaceID, summary)
	case version.FamilyWorkflows:
		return o.pullItemFamily(ctx, spaceID, f, summary, func(ctx context.Context) ([]*codec.Node, error) {
			return o.workflows.List(ctx, sc)
		}, o.workflows.DropOnPull)
	case version.FamilyAgents:
		return o.pullItemFamily(ctx, spaceID, f, summary, func(ctx context.Context) ([]*codec.Node, error) {
			return o.agents.List(ctx, sc)
		}, o.agents.DropOnPull)
	case version.FamilyTools:
		return o.pullItemFamily(ctx, spaceID, f, summary, func(ctx context.Context) ([]*codec.Node, error) {
			return o.tools.List(ctx, sc)
		}, o.tools.DropOnPull)
	default:
		return fmt.Errorf("orchestrator: unknown family %q", f)
	}
}

func (o *Orchestrator) pullSavedObjects(ctx context.Context, spaceID string, sc *httpclient.SpaceClient, summary *Summary) error {
	manifestPath, err := o.Layout.ManifestPath(spaceID, version.FamilySavedObjects)
	if err != nil {
		return err
	}
	soManifest, err := manifest.LoadSavedObjectsManifest(manifestPath)
	if err != nil {
		return err
	}
	records, err := o.savedObjects.Export(ctx, sc, soManifest)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if err := o.writeSavedObject(spaceID, rec); err != nil {
			typ, _ := rec.Get("type")
			id, _ := rec.Get("id")
			summary.addFailure(spaceID, version.FamilySavedObjects, fmt.Sprintf("%v/%v", safeStr(typ), safeStr(id)), err)
		}
	}
	return nil
}

func (o *Orchestrator) writeSavedObject(spaceID string, rec *codec.Node) error {
	rec = o.savedObjects.DropOnPull(rec)
	for _, p := range savedObjectsNestedJSONPaths {
		if err := codec.EscapeNestedJSON(rec, p); err != nil {
			return err
		}
	}
	typ, ok1 := rec.Get("type")
	id, ok2 := rec.Get("id")
	if !ok1 || !ok2 || typ.Kind != codec.KindString || id.Kind != codec.KindString {
		return fmt.Errorf("orchestrator: saved object missing type/id")
	}
	path := o.Layout.SavedObjectPath(spaceID, typ.Str, id.Str)
	return writeNode(path, rec, nil)
}

func safeStr(n *codec.Node) string {
	if n == nil || n.Kind != codec.KindString {
		return "?"
	}
	return n.Str
}

// pullSpace fetches one space's definition via the default (unprefixed)
// client, since space management itself is not namespace-scoped.
func (o *Orchestrator) pullSpace(ctx context.Context, spaceID string, summary *Summary) error {
	sc, err := o.Client.Space(manifest.DefaultSpaceID)
	if err != nil {
		return err
	}
	n, err := o.spaces.Get(ctx, sc, spaceID)
	if err != nil {
		return err
	}
	return writeNode(o.Layout.SpaceJSONPath(spaceID), n, nil)
}

// pullItemFamily lists every item the Server reports and writes only the
// ones already declared in the per-space, per-family manifest: pull
// refreshes managed objects, it does not grow the manifest — that is the
// add command's job.
func (o *Orchestrator) pullItemFamily(ctx context.Context, spaceID string, f version.Family, summary *Summary, list func(context.Context) ([]*codec.Node, error), dropOnPull func(*codec.Node) *codec.Node) error {
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
	managed := make(map[string]bool, len(fm.Entries))
	for _, id := range fm.IDs() {
		managed[id] = true
	}

	items, err := list(ctx)
	if err != nil {
		return err
	}
	for _, item := range items {
		id, ok := idOf(item, "id")
		if !ok || !managed[id] {
			continue
		}
		rec := dropOnPull(item)
		key, err := itemFamilyKey(f, rec)
		if err != nil {
			summary.addFailure(spaceID, f, id, err)
			continue
		}
		path, err := o.Layout.ObjectPath(spaceID, f, key)
		if err != nil {
			summary.addFailure(spaceID, f, id, err)
			continue
		}
		if err := writeNode(path, rec, multilinePathsFor(f)); err != nil {
			summary.addFailure(spaceID, f, id, err)
		}
	}
	return nil
}

func idOf(n *codec.Node, field string) (string, bool) {
	v, ok := n.Get(field)
	if !ok || v.Kind != codec.KindString {
		return "", false
	}
	return v.Str, true
}
