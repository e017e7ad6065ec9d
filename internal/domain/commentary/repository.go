package commentary

import "context"

// Repository exposes the append-only commentary store.
type Repository interface {
	Insert(ctx context.Context, event Event) (Event, error)
	ListByMatch(ctx context.Context, matchID int64) ([]Event, error)
}
