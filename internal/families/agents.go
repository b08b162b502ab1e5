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

// AgentAdapter implements the wire contract of spec.md §4.5/§6 for the
// agents family: GET list, HEAD/POST/PUT upsert, stripping `readonly` and
// `schema` on create and additionally `id` on update.
type AgentAdapter struct{}

func (AgentAdapter) Family() version.Family { return version.FamilyAgents }

type agentListResponse struct {
	Agents []json.RawMessage `json:"agents"`
}

// List retrieves every agent visible in the bound namespace.
func (AgentAdapter) List(ctx context.Context, sc *httpclient.SpaceClient) ([]*codec.Node, error) {
	resp, err := sc.Request(ctx, http.MethodGet, "/api/agent_builder/agents", nil, true)
	if err != nil {
		return nil, fmt.Errorf("families: list agents: %w", err)
	}
	var lr agentListResponse
	if err := json.Unmarshal(resp.Body, &lr); err != nil {
		return nil, fmt.Errorf("families: parse agent list: %w", err)
	}
	out := make([]*codec.Node, 0, len(lr.Agents))
	for _, raw := range lr.Agents {
		n, err := codec.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("families: decode agent: %w", err)
		}
		out = append(out, n)
	}
	return out, nil
}

// Get fetches a single agent by id by filtering the full List, since the
// Server exposes no single-item GET for agents. Used by the add
// command's dependency-closure traversal.
func (a AgentAdapter) Get(ctx context.Context, sc *httpclient.SpaceClient, id string) (*codec.Node, bool, error) {
	items, err := a.List(ctx, sc)
	if err != nil {
		return nil, false, err
	}
	n, ok := findByID(items, id)
	return n, ok, nil
}

// DropOnPull is a no-op: spec.md names no server-owned fields to strip
// from agents on pull, only on push.
func (AgentAdapter) DropOnPull(n *codec.Node) *codec.Node { return n }

// Push drives the upsert state machine with the create/update body
// variants spec.md §6 mandates: readonly and schema stripped from both,
// id additionally stripped from the update body.
func (AgentAdapter) Push(ctx context.Context, sc *httpclient.SpaceClient, n *codec.Node) (Outcome, error) {
	id, ok := idOf(n, "id")
	if !ok {
		return 0, fmt.Errorf("families: agent record has no id")
	}
	createBody := canonicalize(codec.Encode(stripFields(n, []string{"readonly", "schema"}), nil))
	updateBody := canonicalize(codec.Encode(stripFields(n, []string{"id", "readonly", "schema"}), nil))
	itemPath := "/api/agent_builder/agents/" + id
	return Upsert(ctx, sc, itemPath, "/api/agent_builder/agents", itemPath, createBody, updateBody)
}
