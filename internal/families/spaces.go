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

// SpaceAdapter implements the wire contract of spec.md §4.5/§6 for the
// spaces family: GET list/get, POST create, PUT update. Spaces are never
// deleted by the tool.
type SpaceAdapter struct{}

func (SpaceAdapter) Family() version.Family { return version.FamilySpaces }

// List retrieves every space definition the Server knows about.
func (SpaceAdapter) List(ctx context.Context, sc *httpclient.SpaceClient) ([]*codec.Node, error) {
	resp, err := sc.Request(ctx, http.MethodGet, "/api/spaces/space", nil, false)
	if err != nil {
		return nil, fmt.Errorf("families: list spaces: %w", err)
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(resp.Body, &raws); err != nil {
		return nil, fmt.Errorf("families: parse space list: %w", err)
	}
	out := make([]*codec.Node, 0, len(raws))
	for _, raw := range raws {
		n, err := codec.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("families: decode space: %w", err)
		}
		out = append(out, n)
	}
	return out, nil
}

// Get retrieves a single space definition by id.
func (SpaceAdapter) Get(ctx context.Context, sc *httpclient.SpaceClient, id string) (*codec.Node, error) {
	resp, err := sc.Request(ctx, http.MethodGet, "/api/spaces/space/"+id, nil, false)
	if err != nil {
		return nil, fmt.Errorf("families: get space %s: %w", id, err)
	}
	return codec.Decode(resp.Body)
}

// Push creates the space if absent, else updates its definition. Unlike
// the HEAD-based per-item families, a GET on the space's own endpoint
// (/api/spaces/space/{id}) doubles as the existence check: a 404 means
// CREATE, a success means UPDATE.
func (SpaceAdapter) Push(ctx context.Context, sc *httpclient.SpaceClient, n *codec.Node) (Outcome, error) {
	id, ok := idOf(n, "id")
	if !ok {
		return 0, fmt.Errorf("families: space record has no id")
	}
	wire := canonicalize(codec.Encode(n, nil))
	_, err := sc.Request(ctx, http.MethodGet, "/api/spaces/space/"+id, nil, false)
	switch {
	case err == nil:
		if _, err := sc.Request(ctx, http.MethodPut, "/api/spaces/space/"+id, wire, false); err != nil {
			return 0, err
		}
		return Updated, nil
	case httpclient.IsStatus(err, http.StatusNotFound):
		if _, err := sc.Request(ctx, http.MethodPost, "/api/spaces/space", wire, false); err != nil {
			return 0, err
		}
		return Created, nil
	default:
		return 0, err
	}
}
