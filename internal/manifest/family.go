package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Entry is one managed identifier in a per-family YAML manifest. It
// accepts either a bare scalar id ("t1") or a mapping ({id: t1, name: T})
// per spec.md §4.4's "[id…] or [{id,name}…]".
type Entry struct {
	ID   string
	Name string
}

func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		e.ID = node.Value
		return nil
	}
	var aux struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
	}
	if err := node.Decode(&aux); err != nil {
		return fmt.Errorf("manifest: entry must be a scalar id or {id,name}: %w", err)
	}
	e.ID, e.Name = aux.ID, aux.Name
	return nil
}

func (e Entry) MarshalYAML() (interface{}, error) {
	if e.Name == "" {
		return e.ID, nil
	}
	return struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
	}{ID: e.ID, Name: e.Name}, nil
}

// FamilyManifest is the decoded, duplicate-checked list of ids managed for
// one family within one space.
type FamilyManifest struct {
	Entries []Entry
}

// IDs returns the managed identifiers, in manifest order.
func (m *FamilyManifest) IDs() []string {
	out := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		out[i] = e.ID
	}
	return out
}

// Has reports whether id is already managed.
func (m *FamilyManifest) Has(id string) bool {
	for _, e := range m.Entries {
		if e.ID == id {
			return true
		}
	}
	return false
}

// Add appends id (with optional display name) if not already present.
// Returns false if the id was already managed (idempotent add, spec.md §8
// property 7).
func (m *FamilyManifest) Add(id, name string) bool {
	if m.Has(id) {
		return false
	}
	m.Entries = append(m.Entries, Entry{ID: id, Name: name})
	return true
}

// LoadFamilyManifest reads a per-space, per-family YAML list manifest
// (workflows.yml, agents.yml, tools.yml). A missing file yields an empty
// manifest, not an error.
func LoadFamilyManifest(path string) (*FamilyManifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &FamilyManifest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("manifest: read %s: %w", path, err)
	}
	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("manifest: parse %s: %w", path, err)
	}
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if seen[e.ID] {
			return nil, fmt.Errorf("manifest: duplicate id %q in %s", e.ID, path)
		}
		seen[e.ID] = true
	}
	return &FamilyManifest{Entries: entries}, nil
}

// SaveFamilyManifest writes a per-family YAML list manifest, preserving
// entry order (manifest order is semantically irrelevant but preserved
// for stable diffs, spec.md §3).
func SaveFamilyManifest(path string, m *FamilyManifest) error {
	data, err := yaml.Marshal(m.Entries)
	if err != nil {
		return fmt.Errorf("manifest: marshal %s: %w", path, err)
	}
	return writeFile(path, data)
}

// ObjectRef identifies one saved object by type and id, the shape used in
// the saved-objects export-request manifest.
type ObjectRef struct {
	Type       string                 `json:"type"`
	ID         string                 `json:"id"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// SavedObjectsManifest is the on-disk manifest/saved_objects.json: also
// the literal body sent to the export endpoint on pull (spec.md §4.5).
type SavedObjectsManifest struct {
	Objects               []ObjectRef `json:"objects"`
	ExcludeExportDetails  bool        `json:"excludeExportDetails"`
	IncludeReferencesDeep bool        `json:"includeReferencesDeep"`
}

// Has reports whether (type, id) is already managed.
func (m *SavedObjectsManifest) Has(soType, id string) bool {
	for _, o := range m.Objects {
		if o.Type == soType && o.ID == id {
			return true
		}
	}
	return false
}

// Add appends a {type,id} pair if not already present.
func (m *SavedObjectsManifest) Add(soType, id string) bool {
	if m.Has(soType, id) {
		return false
	}
	m.Objects = append(m.Objects, ObjectRef{Type: soType, ID: id})
	return true
}

// LoadSavedObjectsManifest reads manifest/saved_objects.json. A missing
// file yields an empty manifest with the spec-mandated export flags set.
func LoadSavedObjectsManifest(path string) (*SavedObjectsManifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &SavedObjectsManifest{ExcludeExportDetails: true, IncludeReferencesDeep: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("manifest: read %s: %w", path, err)
	}
	var m SavedObjectsManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: parse %s: %w", path, err)
	}
	seen := make(map[string]bool, len(m.Objects))
	for _, o := range m.Objects {
		key := o.Type + "/" + o.ID
		if seen[key] {
			return nil, fmt.Errorf("manifest: duplicate object %s in %s", key, path)
		}
		seen[key] = true
	}
	return &m, nil
}

// SaveSavedObjectsManifest writes manifest/saved_objects.json with 2-space
// indentation, matching the rest of the project's extended-JSON files.
func SaveSavedObjectsManifest(path string, m *SavedObjectsManifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("manifest: marshal %s: %w", path, err)
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("manifest: mkdir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("manifest: write %s: %w", path, err)
	}
	return nil
}
