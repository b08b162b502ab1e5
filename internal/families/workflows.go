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

// WorkflowAdapter implements the wire contract of spec.md §4.5/§6 for the
// workflows family: paginated POST search, HEAD/POST/PUT upsert, and the
// explicit retain-list sanitization policy ("retain id, name, description,
// enabled, yaml, definition, tags").
type WorkflowAdapter struct{}

var workflowRetainFields = []string{"id", "name", "description", "enabled", "yaml", "definition", "tags"}

// WorkflowMultilinePaths are the on-disk fields that round-trip through
// the triple-quote codec when they contain embedded newlines.
var WorkflowMultilinePaths = codec.NewMultilinePaths("yaml", "definition")

func (WorkflowAdapter) Family() version.Family { return version.FamilyWorkflows }

type workflowSearchPage struct {
	Results []json.RawMessage `json:"results"`
	Page    int                `json:"page"`
	PerPage int                `json:"per_page"`
	Total   int                `json:"total"`
}

const workflowPageSize = 100

// List paginates through POST /api/workflows/_search until every result
// page declared by the Server has been collected.
func (WorkflowAdapter) List(ctx context.Context, sc *httpclient.SpaceClient) ([]*codec.Node, error) {
	var out []*codec.Node
	page := 1
	for {
		reqBody, err := json.Marshal(map[string]int{"page": page, "per_page": workflowPageSize})
		if err != nil {
			return nil, err
		}
		resp, err := sc.Request(ctx, http.MethodPost, "/api/workflows/_search", reqBody, true)
		if err != nil {
			return nil, fmt.Errorf("families: list workflows: %w", err)
		}
		var sp workflowSearchPage
		if err := json.Unmarshal(resp.Body, &sp); err != nil {
			return nil, fmt.Errorf("families: parse workflow search page: %w", err)
		}
		for _, raw := range sp.Results {
			n, err := codec.Decode(raw)
			if err != nil {
				return nil, fmt.Errorf("families: decode workflow: %w", err)
			}
			out = append(out, n)
		}
		if len(out) >= sp.Total || len(sp.Results) == 0 {
			return out, nil
		}
		page++
	}
}

// Get fetches a single workflow by id, used by the add command's
// dependency-closure traversal to materialize a newly discovered
// reference.
func (WorkflowAdapter) Get(ctx context.Context, sc *httpclient.SpaceClient, id string) (*codec.Node, error) {
	resp, err := sc.Request(ctx, http.MethodGet, "/api/workflows/"+id, nil, true)
	if err != nil {
		return nil, fmt.Errorf("families: get workflow %s: %w", id, err)
	}
	return codec.Decode(resp.Body)
}

// DropOnPull removes server-owned bookkeeping before the record is
// written to disk.
func (WorkflowAdapter) DropOnPull(n *codec.Node) *codec.Node {
	return stripFields(n, []string{"createdAt", "lastUpdatedAt", "createdBy", "lastUpdatedBy", "valid", "validationErrors", "history"})
}

// Push sanitizes a disk record down to the retained wire fields and drives
// the upsert state machine.
func (WorkflowAdapter) Push(ctx context.Context, sc *httpclient.SpaceClient, n *codec.Node) (Outcome, error) {
	id, ok := idOf(n, "id")
	if !ok {
		return 0, fmt.Errorf("families: workflow record has no id")
	}
	body := retainOnly(n, workflowRetainFields)
	if err := codec.UnescapeNestedJSON(body, "definition"); err != nil {
		return 0, err
	}
	wire := canonicalize(codec.Encode(body, nil))
	itemPath := "/api/workflows/" + id
	return Upsert(ctx, sc, itemPath, "/api/workflows", itemPath, wire, wire)
}

// canonicalize drops the cosmetic 2-space pretty-printing Encode applies,
// since the wire body need not be human-formatted; it simply re-parses
// and re-marshals compactly to avoid shipping the on-disk indentation.
func canonicalize(prettyJSON []byte) []byte {
	var v interface{}
	if err := json.Unmarshal(prettyJSON, &v); err != nil {
		return prettyJSON
	}
	compact, err := json.Marshal(v)
	if err != nil {
		return prettyJSON
	}
	return compact
}
