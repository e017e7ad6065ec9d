package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sportzhub/livescore/internal/domain/match"
	qb "github.com/sportzhub/livescore/internal/platform/querybuilder"
	"github.com/sportzhub/livescore/internal/usecase"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) FindByKey(ctx context.Context, key match.Key) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(
			qb.Eq("sport", key.Sport),
			qb.Eq("home_team", key.HomeTeam),
			qb.Eq("away_team", key.AwayTeam),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build select match by key query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("select match by key: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *MatchRepository) Insert(ctx context.Context, m match.Match) (match.Match, error) {
	query, args, err := qb.InsertModel("matches", newMatchInsertModel(m), "RETURNING id")
	if err != nil {
		return match.Match{}, fmt.Errorf("build insert match query: %w", err)
	}

	if err := r.db.GetContext(ctx, &m.ID, query, args...); err != nil {
		return match.Match{}, fmt.Errorf("insert match: %w", err)
	}

	return m, nil
}

func (r *MatchRepository) Update(ctx context.Context, m match.Match) error {
	query, args, err := qb.Update("matches").
		Set("match_type", m.MatchType).
		Set("league", m.League).
		Set("status", m.Status).
		Set("home_score", m.HomeScore).
		Set("away_score", m.AwayScore).
		Set("end_time", timeToNullTime(m.EndTime)).
		Set("updated_at", m.UpdatedAt).
		Where(qb.Eq("id", m.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update match query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update match id=%d: %w", m.ID, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return usecase.ErrNotFound
	}

	return nil
}

func (r *MatchRepository) List(ctx context.Context) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		OrderBy(
			"CASE status WHEN 'live' THEN 1 WHEN 'scheduled' THEN 2 ELSE 3 END",
			"start_time DESC",
			"id",
		).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matches: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *MatchRepository) GetByID(ctx context.Context, id int64) (match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Eq("id", id)).
		Limit(1).
		ToSQL()
	if err != nil {
		return match.Match{}, fmt.Errorf("build select match by id query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, usecase.ErrNotFound
		}
		return match.Match{}, fmt.Errorf("select match by id=%d: %w", id, err)
	}

	return row.toDomain(), nil
}
