package match

import "context"

// Repository exposes the match store operations used by the sync engine.
type Repository interface {
	FindByKey(ctx context.Context, key Key) (Match, bool, error)
	Insert(ctx context.Context, m Match) (Match, error)
	Update(ctx context.Context, m Match) error
	List(ctx context.Context) ([]Match, error)
	GetByID(ctx context.Context, id int64) (Match, error)
}
