package orchestrator

import (
	"context"
	"fmt"

	"go.datum.net/kibanasync/internal/codec"
	"go.datum.net/kibanasync/internal/manifest"
	"go.datum.net/kibanasync/internal/version"
)

// TogoOptions configures one togo invocation.
type TogoOptions struct {
	Spaces   []string
	Families []version.Family
}

// BundleRecord is one managed on-disk object handed to the external
// bundle writer. The core's job ends at enumeration and decoding; NDJSON
// serialization and the bundle/ directory layout belong to the external
// collaborator (spec.md §OVERVIEW, §4.7).
type BundleRecord struct {
	Space  string
	Family version.Family
	Key    string
	Node   *codec.Node
}

// Togo enumerates every manifest-listed record across the requested spaces
// and families, decoded and ready for the external bundle writer to
// serialize. It performs no writes itself.
func (o *Orchestrator) Togo(ctx context.Context, opts TogoOptions) ([]BundleRecord, *Summary, error) {
	summary := &Summary{}
	spaceIDs, err := o.resolveSpaces(opts.Spaces)
	if err != nil {
		return nil, nil, err
	}

	var records []BundleRecord
	for _, f := range resolveFamilies(opts.Families) {
		if !o.preflight(f, false, summary) {
			continue
		}
		for _, spaceID := range spaceIDs {
			recs, err := o.togoFamily(spaceID, f)
			if err != nil {
				summary.addFailure(spaceID, f, "*", err)
				continue
			}
			records = append(records, recs...)
		}
	}
	return records, summary, nil
}

func (o *Orchestrator) togoFamily(spaceID string, f version.Family) ([]BundleRecord, error) {
	if f == version.FamilySpaces {
		n, err := readNode(o.Layout.SpaceJSONPath(spaceID))
		if err != nil {
			return nil, err
		}
		return []BundleRecord{{Space: spaceID, Family: f, Key: spaceID, Node: n}}, nil
	}
	if f == version.FamilySavedObjects {
		manifestPath, err := o.Layout.ManifestPath(spaceID, f)
		if err != nil {
			return nil, err
		}
		soManifest, err := manifest.LoadSavedObjectsManifest(manifestPath)
		if err != nil {
			return nil, err
		}
		out := make([]BundleRecord, 0, len(soManifest.Objects))
		for _, ref := range soManifest.Objects {
			n, err := readNode(o.Layout.SavedObjectPath(spaceID, ref.Type, ref.ID))
			if err != nil {
				return nil, err
			}
			out = append(out, BundleRecord{Space: spaceID, Family: f, Key: ref.Type + "/" + ref.ID, Node: n})
		}
		return out, nil
	}

	manifestPath, err := o.Layout.ManifestPath(spaceID, f)
	if err != nil {
		return nil, err
	}
	fm, err := manifest.LoadFamilyManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	out := make([]BundleRecord, 0, len(fm.Entries))
	for _, e := range fm.Entries {
		key := e.ID
		if f == version.FamilyWorkflows && e.Name != "" {
			key = e.Name
		}
		path, err := o.Layout.ObjectPath(spaceID, f, key)
		if err != nil {
			return nil, err
		}
		n, err := readNode(path)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: togo %s/%s/%s: %w", spaceID, f, key, err)
		}
		out = append(out, BundleRecord{Space: spaceID, Family: f, Key: key, Node: n})
	}
	return out, nil
}
