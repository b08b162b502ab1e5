package families

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"go.datum.net/kibanasync/internal/codec"
	"go.datum.net/kibanasync/internal/httpclient"
	"go.datum.net/kibanasync/internal/manifest"
	"go.datum.net/kibanasync/internal/version"
)

// SavedObjectsAdapter implements the wire contract of spec.md §4.5/§6 for
// the saved_objects family: bulk NDJSON export and multipart NDJSON
// import. Unlike the other families it has no per-item HTTP verb — the
// entire manifest is exported or imported in one call.
type SavedObjectsAdapter struct{}

// SavedObjectsDropOnPullFields are stripped from every exported record before it is
// written to disk ("drop updated_at, version, namespaces; leave
// references intact", spec.md §6).
var SavedObjectsDropOnPullFields = []string{"updated_at", "version", "namespaces"}

func (SavedObjectsAdapter) Family() version.Family { return version.FamilySavedObjects }

// Export issues one bulk export request for the manifest's {type,id} list
// and decodes the newline-delimited JSON response into individual
// records.
func (SavedObjectsAdapter) Export(ctx context.Context, sc *httpclient.SpaceClient, m *manifest.SavedObjectsManifest) ([]*codec.Node, error) {
	reqBody, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("families: marshal export request: %w", err)
	}
	resp, err := sc.Request(ctx, http.MethodPost, "/api/saved_objects/_export", reqBody, false)
	if err != nil {
		return nil, fmt.Errorf("families: export saved objects: %w", err)
	}
	var out []*codec.Node
	for _, line := range strings.Split(string(resp.Body), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		n, err := codec.Decode([]byte(line))
		if err != nil {
			return nil, fmt.Errorf("families: decode exported saved object: %w", err)
		}
		out = append(out, n)
	}
	return out, nil
}

// DropOnPull strips the server-owned bookkeeping fields, leaving
// references intact.
func (SavedObjectsAdapter) DropOnPull(n *codec.Node) *codec.Node {
	return stripFields(n, SavedObjectsDropOnPullFields)
}

// Import assembles every record into one NDJSON body and posts it as a
// multipart/form-data upload with overwrite=true, the shape the Server's
// saved-objects import endpoint requires. Individual create/update per
// object is not exposed.
func (SavedObjectsAdapter) Import(ctx context.Context, sc *httpclient.SpaceClient, records []*codec.Node) error {
	var ndjson bytes.Buffer
	for _, n := range records {
		line := canonicalize(codec.Encode(n, nil))
		ndjson.Write(line)
		ndjson.WriteByte('\n')
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "export.ndjson")
	if err != nil {
		return fmt.Errorf("families: build import multipart body: %w", err)
	}
	if _, err := part.Write(ndjson.Bytes()); err != nil {
		return fmt.Errorf("families: write import multipart body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("families: close import multipart body: %w", err)
	}

	if _, err := sc.RequestWithContentType(ctx, http.MethodPost, "/api/saved_objects/_import?overwrite=true", body.Bytes(), mw.FormDataContentType(), false); err != nil {
		return fmt.Errorf("families: import saved objects: %w", err)
	}
	return nil
}
