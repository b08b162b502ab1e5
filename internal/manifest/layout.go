package manifest

import (
	"fmt"
	"path/filepath"

	"go.datum.net/kibanasync/internal/version"
)

// Layout is the single authority for the canonical on-disk project tree
// described in spec.md §4.4:
//
//	<root>/
//	  spaces.yml
//	  <space-id>/
//	    space.json
//	    manifest/{saved_objects.json,workflows.yml,agents.yml,tools.yml}
//	    objects/<type>/<id>.json
//	    workflows/<name>.json
//	    agents/<id>.json
//	    tools/<id>.json
//	  bundle/
type Layout struct {
	Root string
}

// NewLayout builds a Layout rooted at root.
func NewLayout(root string) *Layout { return &Layout{Root: root} }

// SpacesYMLPath is the root spaces manifest path.
func (l *Layout) SpacesYMLPath() string { return SpacesYMLPath(l.Root) }

// SpacesYMLPath is the free-function form, usable before a Layout exists.
func SpacesYMLPath(root string) string { return filepath.Join(root, "spaces.yml") }

// SpaceDir is the per-namespace subdirectory.
func (l *Layout) SpaceDir(spaceID string) string { return filepath.Join(l.Root, spaceID) }

// SpaceJSONPath is the namespace definition file.
func (l *Layout) SpaceJSONPath(spaceID string) string {
	return filepath.Join(l.SpaceDir(spaceID), "space.json")
}

// ManifestDir is the per-space manifest/ directory.
func (l *Layout) ManifestDir(spaceID string) string {
	return filepath.Join(l.SpaceDir(spaceID), "manifest")
}

// ManifestPath resolves the per-family manifest file for a space.
func (l *Layout) ManifestPath(spaceID string, f version.Family) (string, error) {
	dir := l.ManifestDir(spaceID)
	switch f {
	case version.FamilySavedObjects:
		return filepath.Join(dir, "saved_objects.json"), nil
	case version.FamilyWorkflows:
		return filepath.Join(dir, "workflows.yml"), nil
	case version.FamilyAgents:
		return filepath.Join(dir, "agents.yml"), nil
	case version.FamilyTools:
		return filepath.Join(dir, "tools.yml"), nil
	case version.FamilySpaces:
		return "", fmt.Errorf("layout: spaces family has no per-space manifest file")
	default:
		return "", fmt.Errorf("layout: unknown family %q", f)
	}
}

// ObjectsDir resolves the per-family object subdirectory for a space.
func (l *Layout) ObjectsDir(spaceID string, f version.Family) (string, error) {
	switch f {
	case version.FamilySavedObjects:
		return filepath.Join(l.SpaceDir(spaceID), "objects"), nil
	case version.FamilyWorkflows:
		return filepath.Join(l.SpaceDir(spaceID), "workflows"), nil
	case version.FamilyAgents:
		return filepath.Join(l.SpaceDir(spaceID), "agents"), nil
	case version.FamilyTools:
		return filepath.Join(l.SpaceDir(spaceID), "tools"), nil
	default:
		return "", fmt.Errorf("layout: unknown object family %q", f)
	}
}

// SavedObjectPath resolves the on-disk path of a single saved object,
// keyed by {type}/{id}.json per spec.md §3.
func (l *Layout) SavedObjectPath(spaceID, soType, id string) string {
	return filepath.Join(l.SpaceDir(spaceID), "objects", soType, id+".json")
}

// ObjectPath resolves the on-disk path of a single per-item-family
// object (workflows/agents/tools), keyed by the family's on-disk key.
func (l *Layout) ObjectPath(spaceID string, f version.Family, key string) (string, error) {
	dir, err := l.ObjectsDir(spaceID, f)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, key+".json"), nil
}

// BundleDir is the togo output tree; never read by the core.
func (l *Layout) BundleDir() string { return filepath.Join(l.Root, "bundle") }
