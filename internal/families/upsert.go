// Package families implements the per-family wire adapters of spec.md
// §4.5: the saved-objects bulk export/import pair, spaces CRUD, and the
// shared HEAD/POST/PUT upsert state machine that drives workflows,
// agents, and tools.
package families

import (
	"context"
	"net/http"

	"go.datum.net/kibanasync/internal/httpclient"
)

// Outcome reports which branch of the upsert state machine produced the
// final DONE.
type Outcome int

const (
	Created Outcome = iota
	Updated
)

func (o Outcome) String() string {
	if o == Created {
		return "created"
	}
	return "updated"
}

// Upsert drives the CHECK/CREATE/UPDATE state machine of spec.md §4.5 for
// one item: HEAD checkPath to decide CREATE vs UPDATE, then follows the
// 409→UPDATE and 404→CREATE race-recovery transitions on the chosen
// branch. createBody and updateBody are the already-sanitized POST/PUT
// payloads; they differ for families (agents, tools) that strip the id
// field only on update.
func Upsert(ctx context.Context, sc *httpclient.SpaceClient, checkPath, collectionPath, itemPath string, createBody, updateBody []byte) (Outcome, error) {
	_, err := sc.Request(ctx, http.MethodHead, checkPath, nil, true)
	switch {
	case err == nil:
		return update(ctx, sc, collectionPath, itemPath, createBody, updateBody)
	case httpclient.IsStatus(err, http.StatusNotFound):
		return create(ctx, sc, collectionPath, itemPath, createBody, updateBody)
	default:
		return 0, err
	}
}

func create(ctx context.Context, sc *httpclient.SpaceClient, collectionPath, itemPath string, createBody, updateBody []byte) (Outcome, error) {
	_, err := sc.Request(ctx, http.MethodPost, collectionPath, createBody, true)
	switch {
	case err == nil:
		return Created, nil
	case httpclient.IsStatus(err, http.StatusConflict):
		if _, err2 := sc.Request(ctx, http.MethodPut, itemPath, updateBody, true); err2 != nil {
			return 0, err2
		}
		return Updated, nil
	default:
		return 0, err
	}
}

func update(ctx context.Context, sc *httpclient.SpaceClient, collectionPath, itemPath string, createBody, updateBody []byte) (Outcome, error) {
	_, err := sc.Request(ctx, http.MethodPut, itemPath, updateBody, true)
	switch {
	case err == nil:
		return Updated, nil
	case httpclient.IsStatus(err, http.StatusNotFound):
		if _, err2 := sc.Request(ctx, http.MethodPost, collectionPath, createBody, true); err2 != nil {
			return 0, err2
		}
		return Created, nil
	default:
		return 0, err
	}
}
