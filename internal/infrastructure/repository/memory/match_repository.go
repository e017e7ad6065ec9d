package memory

import (
	"context"
	"sync"

	"github.com/sportzhub/livescore/internal/domain/match"
	"github.com/sportzhub/livescore/internal/usecase"
)

// MatchRepository keeps matches in process memory. It backs demo mode and
// tests; ids are assigned from a local counter and are stable for the
// lifetime of the process only.
type MatchRepository struct {
	mu     sync.RWMutex
	items  map[int64]match.Match
	byKey  map[match.Key]int64
	orders []int64
	nextID int64
}

func NewMatchRepository() *MatchRepository {
	return &MatchRepository{
		items: make(map[int64]match.Match),
		byKey: make(map[match.Key]int64),
	}
}

func (r *MatchRepository) FindByKey(_ context.Context, key match.Key) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byKey[key]
	if !ok {
		return match.Match{}, false, nil
	}
	return r.items[id], true, nil
}

func (r *MatchRepository) Insert(_ context.Context, m match.Match) (match.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	m.ID = r.nextID
	r.items[m.ID] = m
	r.byKey[m.Key()] = m.ID
	r.orders = append(r.orders, m.ID)
	return m, nil
}

func (r *MatchRepository) Update(_ context.Context, m match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[m.ID]; !ok {
		return usecase.ErrNotFound
	}
	r.items[m.ID] = m
	r.byKey[m.Key()] = m.ID
	return nil
}

func (r *MatchRepository) List(_ context.Context) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0, len(r.orders))
	for _, id := range r.orders {
		out = append(out, r.items[id])
	}
	return out, nil
}

func (r *MatchRepository) GetByID(_ context.Context, id int64) (match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.items[id]
	if !ok {
		return match.Match{}, usecase.ErrNotFound
	}
	return m, nil
}
