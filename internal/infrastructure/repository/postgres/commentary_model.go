package postgres

import (
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/lib/pq"
	"github.com/sportzhub/livescore/internal/domain/commentary"
)

type commentaryTableModel struct {
	ID        int64          `db:"id"`
	MatchID   int64          `db:"match_id"`
	Minute    int            `db:"minute"`
	Sequence  int            `db:"sequence"`
	Period    string         `db:"period"`
	EventType string         `db:"event_type"`
	Actor     string         `db:"actor"`
	Team      string         `db:"team"`
	Message   string         `db:"message"`
	Metadata  []byte         `db:"metadata"`
	Tags      pq.StringArray `db:"tags"`
	CreatedAt time.Time      `db:"created_at"`
}

type commentaryInsertModel struct {
	MatchID   int64          `db:"match_id"`
	Minute    int            `db:"minute"`
	Sequence  int            `db:"sequence"`
	Period    string         `db:"period"`
	EventType string         `db:"event_type"`
	Actor     string         `db:"actor"`
	Team      string         `db:"team"`
	Message   string         `db:"message"`
	Metadata  []byte         `db:"metadata"`
	Tags      pq.StringArray `db:"tags"`
	CreatedAt time.Time      `db:"created_at"`
}

func newCommentaryInsertModel(event commentary.Event) (commentaryInsertModel, error) {
	metadata := event.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	raw, err := sonic.Marshal(metadata)
	if err != nil {
		return commentaryInsertModel{}, fmt.Errorf("encode commentary metadata: %w", err)
	}

	return commentaryInsertModel{
		MatchID:   event.MatchID,
		Minute:    event.Minute,
		Sequence:  event.Sequence,
		Period:    event.Period,
		EventType: event.EventType,
		Actor:     event.Actor,
		Team:      event.Team,
		Message:   event.Message,
		Metadata:  raw,
		Tags:      pq.StringArray(event.Tags),
		CreatedAt: event.CreatedAt,
	}, nil
}

func (row commentaryTableModel) toDomain() (commentary.Event, error) {
	event := commentary.Event{
		ID:        row.ID,
		MatchID:   row.MatchID,
		Minute:    row.Minute,
		Sequence:  row.Sequence,
		Period:    row.Period,
		EventType: row.EventType,
		Actor:     row.Actor,
		Team:      row.Team,
		Message:   row.Message,
		Tags:      []string(row.Tags),
		CreatedAt: row.CreatedAt,
	}
	if len(row.Metadata) > 0 {
		if err := sonic.Unmarshal(row.Metadata, &event.Metadata); err != nil {
			return commentary.Event{}, fmt.Errorf("decode commentary metadata id=%d: %w", row.ID, err)
		}
	}
	return event, nil
}
