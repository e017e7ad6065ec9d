package postgres

import (
	"database/sql"
	"time"

	"github.com/sportzhub/livescore/internal/domain/match"
)

type matchTableModel struct {
	ID        int64        `db:"id"`
	Sport     string       `db:"sport"`
	MatchType string       `db:"match_type"`
	League    string       `db:"league"`
	HomeTeam  string       `db:"home_team"`
	AwayTeam  string       `db:"away_team"`
	Status    string       `db:"status"`
	HomeScore int          `db:"home_score"`
	AwayScore int          `db:"away_score"`
	StartTime time.Time    `db:"start_time"`
	EndTime   sql.NullTime `db:"end_time"`
	Venue     string       `db:"venue"`
	Source    string       `db:"source"`
	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt time.Time    `db:"updated_at"`
}

// matchInsertModel mirrors matchTableModel without the id column, which the
// database assigns.
type matchInsertModel struct {
	Sport     string       `db:"sport"`
	MatchType string       `db:"match_type"`
	League    string       `db:"league"`
	HomeTeam  string       `db:"home_team"`
	AwayTeam  string       `db:"away_team"`
	Status    string       `db:"status"`
	HomeScore int          `db:"home_score"`
	AwayScore int          `db:"away_score"`
	StartTime time.Time    `db:"start_time"`
	EndTime   sql.NullTime `db:"end_time"`
	Venue     string       `db:"venue"`
	Source    string       `db:"source"`
	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt time.Time    `db:"updated_at"`
}

func newMatchInsertModel(m match.Match) matchInsertModel {
	return matchInsertModel{
		Sport:     m.Sport,
		MatchType: m.MatchType,
		League:    m.League,
		HomeTeam:  m.HomeTeam,
		AwayTeam:  m.AwayTeam,
		Status:    m.Status,
		HomeScore: m.HomeScore,
		AwayScore: m.AwayScore,
		StartTime: m.StartTime,
		EndTime:   timeToNullTime(m.EndTime),
		Venue:     m.Venue,
		Source:    m.Source,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (row matchTableModel) toDomain() match.Match {
	return match.Match{
		ID:        row.ID,
		Sport:     row.Sport,
		MatchType: row.MatchType,
		League:    row.League,
		HomeTeam:  row.HomeTeam,
		AwayTeam:  row.AwayTeam,
		Status:    row.Status,
		HomeScore: row.HomeScore,
		AwayScore: row.AwayScore,
		StartTime: row.StartTime,
		EndTime:   nullTimeToTime(row.EndTime),
		Venue:     row.Venue,
		Source:    row.Source,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func timeToNullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

func nullTimeToTime(t sql.NullTime) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time
}
