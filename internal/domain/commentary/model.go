package commentary

import "time"

const EventTypeScoreUpdate = "score_update"

// Event is one appended line of narrative commentary owned by a match.
// Minute and Sequence are flavor fields drawn from synthetic randomness,
// not authoritative match-clock values.
type Event struct {
	ID        int64
	MatchID   int64
	Minute    int
	Sequence  int
	Period    string
	EventType string
	Actor     string
	Team      string
	Message   string
	Metadata  map[string]any
	Tags      []string
	CreatedAt time.Time
}
