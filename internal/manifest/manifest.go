// Package manifest defines the typed, per-family manifest shapes described
// in spec.md §3/§4.4, the root spaces manifest, and the on-disk project
// layout resolver that is the single authority for every path the tool
// reads or writes.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"go.datum.net/kibanasync/internal/version"
)

// DefaultSpaceID is the reserved space id meaning "no /s/<id> path prefix".
const DefaultSpaceID = "default"

// Space is one entry of the root spaces manifest.
type Space struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// KibanaInfo captures the Server version recorded at the last successful
// pull.
type KibanaInfo struct {
	Version string `yaml:"version"`
}

// SpacesManifest is the root spaces.yml: the list of managed namespaces
// plus the last-pull Server version. Extra carries any unrecognized
// top-level keys so that Save never drops fields this version of the tool
// does not know about.
type SpacesManifest struct {
	Spaces []Space                `yaml:"spaces"`
	Kibana *KibanaInfo             `yaml:"kibana,omitempty"`
	Extra  map[string]interface{} `yaml:",inline"`
}

// LoadSpacesManifest reads the root spaces.yml. A missing file is not an
// error: the registry defaults to {default -> "Default"} per spec.md §4.1.
func LoadSpacesManifest(root string) (*SpacesManifest, error) {
	path := SpacesYMLPath(root)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &SpacesManifest{Spaces: []Space{{ID: DefaultSpaceID, Name: "Default"}}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("manifest: read %s: %w", path, err)
	}
	var m SpacesManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: parse %s: %w", path, err)
	}
	if err := checkDuplicateSpaceIDs(m.Spaces); err != nil {
		return nil, err
	}
	if len(m.Spaces) == 0 {
		m.Spaces = []Space{{ID: DefaultSpaceID, Name: "Default"}}
	}
	return &m, nil
}

// SaveSpacesManifest writes the root spaces.yml, preserving Extra fields.
func SaveSpacesManifest(root string, m *SpacesManifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("manifest: marshal spaces.yml: %w", err)
	}
	path := SpacesYMLPath(root)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("manifest: mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("manifest: write %s: %w", path, err)
	}
	return nil
}

// RecordPullVersion sets kibana.version on a freshly loaded spaces.yml and
// persists it, preserving every other entry (spec.md §4.7, §8 property 5).
func RecordPullVersion(root string, v version.ServerVersion) error {
	m, err := LoadSpacesManifest(root)
	if err != nil {
		return err
	}
	m.Kibana = &KibanaInfo{Version: v.String()}
	return SaveSpacesManifest(root, m)
}

func checkDuplicateSpaceIDs(spaces []Space) error {
	seen := make(map[string]bool, len(spaces))
	for _, s := range spaces {
		if seen[s.ID] {
			return fmt.Errorf("manifest: duplicate space id %q in spaces.yml", s.ID)
		}
		seen[s.ID] = true
	}
	return nil
}

// Registry is the queryable view of the root spaces manifest that the HTTP
// client core binds namespace-scoped sub-clients against.
type Registry struct {
	byID map[string]string
	ids  []string
}

// NewRegistry builds a Registry from a loaded SpacesManifest.
func NewRegistry(m *SpacesManifest) *Registry {
	r := &Registry{byID: make(map[string]string, len(m.Spaces))}
	for _, s := range m.Spaces {
		r.byID[s.ID] = s.Name
		r.ids = append(r.ids, s.ID)
	}
	return r
}

// Has reports whether id is a known space.
func (r *Registry) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// IDs returns every known space id, in manifest order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}

// Resolve intersects the registry with an optional CSV filter of space
// ids. An empty filter selects every known space. Unknown ids in the
// filter are an error.
func (r *Registry) Resolve(filter []string) ([]string, error) {
	if len(filter) == 0 {
		return r.IDs(), nil
	}
	out := make([]string, 0, len(filter))
	for _, id := range filter {
		if !r.Has(id) {
			return nil, fmt.Errorf("manifest: unknown space %q", id)
		}
		out = append(out, id)
	}
	return out, nil
}
