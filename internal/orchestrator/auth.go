package orchestrator

import (
	"context"

	"go.datum.net/kibanasync/internal/version"
)

// Auth runs the version probe only (spec.md §4.7: "runs the version
// probe only"). Connect already performed the probe; Auth just surfaces
// its result for the `auth` command's reporting.
func (o *Orchestrator) Auth(ctx context.Context) (version.ServerVersion, error) {
	return o.Client.ServerVersion(), nil
}
