package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sportzhub/livescore/internal/domain/commentary"
	qb "github.com/sportzhub/livescore/internal/platform/querybuilder"
)

type CommentaryRepository struct {
	db *sqlx.DB
}

func NewCommentaryRepository(db *sqlx.DB) *CommentaryRepository {
	return &CommentaryRepository{db: db}
}

func (r *CommentaryRepository) Insert(ctx context.Context, event commentary.Event) (commentary.Event, error) {
	model, err := newCommentaryInsertModel(event)
	if err != nil {
		return commentary.Event{}, err
	}

	query, args, err := qb.InsertModel("commentary_events", model, "RETURNING id")
	if err != nil {
		return commentary.Event{}, fmt.Errorf("build insert commentary query: %w", err)
	}

	if err := r.db.GetContext(ctx, &event.ID, query, args...); err != nil {
		return commentary.Event{}, fmt.Errorf("insert commentary match_id=%d: %w", event.MatchID, err)
	}

	return event, nil
}

func (r *CommentaryRepository) ListByMatch(ctx context.Context, matchID int64) ([]commentary.Event, error) {
	query, args, err := qb.Select("*").From("commentary_events").
		Where(qb.Eq("match_id", matchID)).
		OrderBy("created_at DESC", "id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select commentary query: %w", err)
	}

	var rows []commentaryTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select commentary match_id=%d: %w", matchID, err)
	}

	out := make([]commentary.Event, 0, len(rows))
	for _, row := range rows {
		event, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, event)
	}
	return out, nil
}
