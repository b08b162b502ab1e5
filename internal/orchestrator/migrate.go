package orchestrator

import (
	"context"

	"go.datum.net/kibanasync/internal/codec"
	"go.datum.net/kibanasync/internal/manifest"
)

// Migrate supplies the one piece of the legacy-layout migration command
// that belongs to the core: fetching a space's current definition so the
// external migration collaborator can decide how to lay out the rest of
// the project tree. Everything else about migrate — reading the legacy
// layout, rewriting paths, the `--env` bootstrap — lives outside the core
// (spec.md §4.7, §OVERVIEW "out of scope... the legacy-layout migration
// command").
func (o *Orchestrator) Migrate(ctx context.Context, spaceID string) (*codec.Node, error) {
	sc, err := o.Client.Space(manifest.DefaultSpaceID)
	if err != nil {
		return nil, err
	}
	return o.spaces.Get(ctx, sc, spaceID)
}
