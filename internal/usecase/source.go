package usecase

import (
	"context"

	"github.com/sportzhub/livescore/internal/domain/match"
)

// SourceAdapter produces normalized snapshots from one upstream data source.
// Fetch never fails from the caller's point of view: network, credential and
// parse problems degrade to fallback or empty output inside the adapter, which
// logs them itself. The caller bounds each invocation with a deadline.
type SourceAdapter interface {
	Name() string
	Fetch(ctx context.Context) []match.Snapshot
}
