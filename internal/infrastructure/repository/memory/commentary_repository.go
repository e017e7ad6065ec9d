package memory

import (
	"context"
	"sync"

	"github.com/sportzhub/livescore/internal/domain/commentary"
)

// CommentaryRepository keeps commentary events in process memory, ordered by
// insertion within each match.
type CommentaryRepository struct {
	mu      sync.RWMutex
	byMatch map[int64][]commentary.Event
	nextID  int64
}

func NewCommentaryRepository() *CommentaryRepository {
	return &CommentaryRepository{byMatch: make(map[int64][]commentary.Event)}
}

func (r *CommentaryRepository) Insert(_ context.Context, event commentary.Event) (commentary.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	event.ID = r.nextID
	r.byMatch[event.MatchID] = append(r.byMatch[event.MatchID], event)
	return event, nil
}

func (r *CommentaryRepository) ListByMatch(_ context.Context, matchID int64) ([]commentary.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.byMatch[matchID]
	out := make([]commentary.Event, 0, len(items))
	out = append(out, items...)
	return out, nil
}
