package httpapi

import (
	"time"

	"github.com/sportzhub/livescore/internal/domain/commentary"
	"github.com/sportzhub/livescore/internal/domain/match"
)

type matchDTO struct {
	ID        int64  `json:"id"`
	Sport     string `json:"sport"`
	MatchType string `json:"matchType"`
	League    string `json:"league"`
	HomeTeam  string `json:"homeTeam"`
	AwayTeam  string `json:"awayTeam"`
	Status    string `json:"status"`
	HomeScore int    `json:"homeScore"`
	AwayScore int    `json:"awayScore"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime,omitempty"`
	Venue     string `json:"venue,omitempty"`
	Source    string `json:"source,omitempty"`
	UpdatedAt string `json:"updatedAt"`
}

type commentaryDTO struct {
	ID        int64          `json:"id"`
	MatchID   int64          `json:"matchId"`
	Minute    int            `json:"minute"`
	Sequence  int            `json:"sequence"`
	Period    string         `json:"period"`
	EventType string         `json:"eventType"`
	Actor     string         `json:"actor"`
	Team      string         `json:"team"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Tags      []string       `json:"tags,omitempty"`
	CreatedAt string         `json:"createdAt"`
}

type syncResultDTO struct {
	Created []matchDTO `json:"created"`
	Updated []matchDTO `json:"updated"`
}

type backfillResultDTO struct {
	LiveMatches int `json:"liveMatches"`
	Events      int `json:"events"`
}

func toMatchDTO(m match.Match) matchDTO {
	dto := matchDTO{
		ID:        m.ID,
		Sport:     m.Sport,
		MatchType: m.MatchType,
		League:    m.League,
		HomeTeam:  m.HomeTeam,
		AwayTeam:  m.AwayTeam,
		Status:    m.Status,
		HomeScore: m.HomeScore,
		AwayScore: m.AwayScore,
		StartTime: m.StartTime.UTC().Format(time.RFC3339),
		Venue:     m.Venue,
		Source:    m.Source,
		UpdatedAt: m.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if !m.EndTime.IsZero() {
		dto.EndTime = m.EndTime.UTC().Format(time.RFC3339)
	}
	return dto
}

func toMatchDTOs(items []match.Match) []matchDTO {
	out := make([]matchDTO, 0, len(items))
	for _, m := range items {
		out = append(out, toMatchDTO(m))
	}
	return out
}

func toCommentaryDTO(event commentary.Event) commentaryDTO {
	return commentaryDTO{
		ID:        event.ID,
		MatchID:   event.MatchID,
		Minute:    event.Minute,
		Sequence:  event.Sequence,
		Period:    event.Period,
		EventType: event.EventType,
		Actor:     event.Actor,
		Team:      event.Team,
		Message:   event.Message,
		Metadata:  event.Metadata,
		Tags:      event.Tags,
		CreatedAt: event.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toCommentaryDTOs(items []commentary.Event) []commentaryDTO {
	out := make([]commentaryDTO, 0, len(items))
	for _, event := range items {
		out = append(out, toCommentaryDTO(event))
	}
	return out
}
