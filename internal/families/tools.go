package families

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.datum.net/kibanasync/internal/codec"
	"go.datum.net/kibanasync/internal/httpclient"
	"go.datum.net/kibanasync/internal/version"
)

// ToolAdapter implements the wire contract of spec.md §4.5/§6 for the
// tools family: same shape as AgentAdapter under /api/agent_builder/tools,
// plus the esql/query multi-line round trip.
type ToolAdapter struct{}

// ToolMultilinePaths are the on-disk fields that round-trip through the
// triple-quote codec when they contain embedded newlines.
var ToolMultilinePaths = codec.NewMultilinePaths("esql", "query", "configuration.esql", "configuration.query")

func (ToolAdapter) Family() version.Family { return version.FamilyTools }

type toolListResponse struct {
	Tools []json.RawMessage `json:"tools"`
}

// List retrieves every tool visible in the bound namespace.
func (ToolAdapter) List(ctx context.Context, sc *httpclient.SpaceClient) ([]*codec.Node, error) {
	resp, err := sc.Request(ctx, http.MethodGet, "/api/agent_builder/tools", nil, true)
	if err != nil {
		return nil, fmt.Errorf("families: list tools: %w", err)
	}
	var lr toolListResponse
	if err := json.Unmarshal(resp.Body, &lr); err != nil {
		return nil, fmt.Errorf("families: parse tool list: %w", err)
	}
	out := make([]*codec.Node, 0, len(lr.Tools))
	for _, raw := range lr.Tools {
		n, err := codec.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("families: decode tool: %w", err)
		}
		out = append(out, n)
	}
	return out, nil
}

// Get fetches a single tool by id by filtering the full List, since the
// Server exposes no single-item GET for tools. Used by the add command's
// dependency-closure traversal.
func (a ToolAdapter) Get(ctx context.Context, sc *httpclient.SpaceClient, id string) (*codec.Node, bool, error) {
	items, err := a.List(ctx, sc)
	if err != nil {
		return nil, false, err
	}
	n, ok := findByID(items, id)
	return n, ok, nil
}

// DropOnPull is a no-op: spec.md names no server-owned fields to strip
// from tools on pull, only on push.
func (ToolAdapter) DropOnPull(n *codec.Node) *codec.Node { return n }

// Push drives the upsert state machine, stripping readonly/schema from
// both bodies and additionally id from the update body, matching
// AgentAdapter's policy.
func (ToolAdapter) Push(ctx context.Context, sc *httpclient.SpaceClient, n *codec.Node) (Outcome, error) {
	id, ok := idOf(n, "id")
	if !ok {
		return 0, fmt.Errorf("families: tool record has no id")
	}
	createBody := canonicalize(codec.Encode(stripFields(n, []string{"readonly", "schema"}), nil))
	updateBody := canonicalize(codec.Encode(stripFields(n, []string{"id", "readonly", "schema"}), nil))
	itemPath := "/api/agent_builder/tools/" + id
	return Upsert(ctx, sc, itemPath, "/api/agent_builder/tools", itemPath, createBody, updateBody)
}
