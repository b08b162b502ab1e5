package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"

	"go.datum.net/kibanasync/internal/codec"
	"go.datum.net/kibanasync/internal/families"
	"go.datum.net/kibanasync/internal/version"
)

var (
	workflowMultiline = families.WorkflowMultilinePaths
	toolMultiline     = families.ToolMultilinePaths
)

// savedObjectsNestedJSONPaths are the attributes that hold a JSON document
// encoded as a string, escaped/unescaped per spec.md §4.3. The path list
// is configuration, not a hard-coded call site, per the spec's open
// question on this point.
var savedObjectsNestedJSONPaths = []string{"attributes.kibanaSavedObjectMeta.searchSourceJSON"}

// itemFamilyKey resolves the on-disk key for a per-item-family record:
// workflows are stored by name for human-friendly diffs, agents and tools
// by id (spec.md §4.4).
func itemFamilyKey(f version.Family, n *codec.Node) (string, error) {
	field := "id"
	if f == version.FamilyWorkflows {
		field = "name"
	}
	v, ok := n.Get(field)
	if !ok || v.Kind != codec.KindString || v.Str == "" {
		return "", fmt.Errorf("orchestrator: %s record missing %q field", f, field)
	}
	return v.Str, nil
}

func multilinePathsFor(f version.Family) codec.MultilinePaths {
	switch f {
	case version.FamilyWorkflows:
		return workflowMultiline
	case version.FamilyTools:
		return toolMultiline
	default:
		return nil
	}
}

func writeNode(path string, n *codec.Node, multiline codec.MultilinePaths) error {
	data := codec.Encode(n, multiline)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("orchestrator: mkdir for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("orchestrator: write %s: %w", path, err)
	}
	return nil
}

func readNode(path string) (*codec.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: read %s: %w", path, err)
	}
	n, err := codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: decode %s: %w", path, err)
	}
	return n, nil
}
