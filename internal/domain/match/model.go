package match

import (
	"sort"
	"strings"
	"time"
)

const (
	SportCricket    = "cricket"
	SportFootball   = "football"
	SportBasketball = "basketball"
	SportTennis     = "tennis"
)

const (
	StatusScheduled = "scheduled"
	StatusLive      = "live"
	StatusFinished  = "finished"
)

// Snapshot is a source-provided description of a match's current state,
// produced on every fetch cycle and never persisted as-is.
type Snapshot struct {
	Sport     string
	MatchType string
	League    string
	HomeTeam  string
	AwayTeam  string
	Status    string
	HomeScore int
	AwayScore int
	StartTime time.Time
	EndTime   time.Time
	Venue     string
	Source    string
}

// Match is the persisted, identity-bearing representation of a match.
type Match struct {
	ID        int64
	Sport     string
	MatchType string
	League    string
	HomeTeam  string
	AwayTeam  string
	Status    string
	HomeScore int
	AwayScore int
	StartTime time.Time
	EndTime   time.Time
	Venue     string
	Source    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Key is the reconciliation identity. Upstream sources carry no stable
// external id across fetches, so two sightings of the same fixture are
// matched on (sport, home, away) instead of the surrogate id.
type Key struct {
	Sport    string
	HomeTeam string
	AwayTeam string
}

func (s Snapshot) Key() Key {
	return Key{Sport: s.Sport, HomeTeam: s.HomeTeam, AwayTeam: s.AwayTeam}
}

func (m Match) Key() Key {
	return Key{Sport: m.Sport, HomeTeam: m.HomeTeam, AwayTeam: m.AwayTeam}
}

func NormalizeStatus(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case StatusLive, "in progress", "in_play":
		return StatusLive
	case StatusFinished, "ft", "final", "complete", "completed":
		return StatusFinished
	default:
		return StatusScheduled
	}
}

func IsValidStatus(value string) bool {
	switch value {
	case StatusScheduled, StatusLive, StatusFinished:
		return true
	default:
		return false
	}
}

func (s Snapshot) Valid() bool {
	return strings.TrimSpace(s.Sport) != "" &&
		strings.TrimSpace(s.HomeTeam) != "" &&
		strings.TrimSpace(s.AwayTeam) != "" &&
		IsValidStatus(s.Status) &&
		s.HomeScore >= 0 && s.AwayScore >= 0
}

var statusRank = map[string]int{
	StatusLive:      1,
	StatusScheduled: 2,
	StatusFinished:  3,
}

// OrderSnapshots sorts combined adapter output for display: live matches
// first, then scheduled, then finished. Live and finished run newest start
// first; scheduled runs soonest first. The sort is stable, exact ties keep
// adapter order.
func OrderSnapshots(items []Snapshot) {
	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := statusRank[items[i].Status], statusRank[items[j].Status]
		if ri != rj {
			return ri < rj
		}
		if items[i].Status == StatusScheduled {
			return items[i].StartTime.Before(items[j].StartTime)
		}
		return items[i].StartTime.After(items[j].StartTime)
	})
}
