package usecase

import (
	"github.com/sportzhub/livescore/internal/domain/commentary"
	"github.com/sportzhub/livescore/internal/domain/match"
)

// ScorePair carries the post-update score of a match.
type ScorePair struct {
	HomeScore int `json:"homeScore"`
	AwayScore int `json:"awayScore"`
}

// Dispatcher is the outbound notification surface the sync engine calls when
// state changes. The engine never implements it; delivery is best-effort
// fire-and-forget and the transport decides what a subscriber sees.
type Dispatcher interface {
	MatchCreated(m match.Match)
	ScoreUpdated(matchID int64, score ScorePair)
	CommentaryAdded(matchID int64, event commentary.Event)
}

type noopDispatcher struct{}

func (noopDispatcher) MatchCreated(match.Match)                {}
func (noopDispatcher) ScoreUpdated(int64, ScorePair)           {}
func (noopDispatcher) CommentaryAdded(int64, commentary.Event) {}

// NewNoopDispatcher lets the engine run without live subscribers, e.g. as a
// one-shot batch job.
func NewNoopDispatcher() Dispatcher {
	return noopDispatcher{}
}
