package usecase

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/sportzhub/livescore/internal/domain/commentary"
	"github.com/sportzhub/livescore/internal/domain/match"
	"github.com/sportzhub/livescore/internal/platform/logging"
)

func liveMatch(id int64, sport, home, away string) match.Match {
	return match.Match{
		ID:       id,
		Sport:    sport,
		HomeTeam: home,
		AwayTeam: away,
		Status:   match.StatusLive,
	}
}

func TestSynthesizeBuildsScoreUpdateEvent(t *testing.T) {
	t.Parallel()

	repo := &stubCommentaryRepo{}
	dispatcher := newRecordingDispatcher()
	svc := NewCommentaryService(repo, dispatcher, rand.New(rand.NewSource(7)), logging.NewNop())

	m := liveMatch(42, match.SportCricket, "India", "Australia")
	event, err := svc.Synthesize(context.Background(), m, 120, 50)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	if event.ID == 0 {
		t.Fatal("event was not persisted")
	}
	if event.MatchID != 42 {
		t.Fatalf("got match id %d, want 42", event.MatchID)
	}
	if !strings.HasSuffix(event.Message, " Score is now 120-50.") {
		t.Fatalf("message %q is missing the score suffix", event.Message)
	}
	if event.Actor != "India" && event.Actor != "Australia" {
		t.Fatalf("actor %q is not one of the two teams", event.Actor)
	}
	if event.Team != event.Actor {
		t.Fatalf("team %q does not match actor %q", event.Team, event.Actor)
	}
	if !strings.Contains(event.Message, event.Actor) {
		t.Fatalf("message %q does not mention actor %q", event.Message, event.Actor)
	}
	if event.Minute < 1 || event.Minute > 90 {
		t.Fatalf("minute %d out of range [1,90]", event.Minute)
	}
	if event.Sequence < 0 || event.Sequence > 99 {
		t.Fatalf("sequence %d out of range [0,99]", event.Sequence)
	}
	if event.Period != "innings" {
		t.Fatalf("got period %q, want innings for cricket", event.Period)
	}
	if event.EventType != commentary.EventTypeScoreUpdate {
		t.Fatalf("got event type %q", event.EventType)
	}
	if event.Metadata["source"] != "real_data_sync" {
		t.Fatalf("got metadata %v", event.Metadata)
	}
	if len(event.Tags) != 2 || event.Tags[0] != "live" || event.Tags[1] != "real" {
		t.Fatalf("got tags %v, want [live real]", event.Tags)
	}

	if len(dispatcher.commentary[42]) != 1 {
		t.Fatalf("got %d commentaryAdded dispatches, want 1", len(dispatcher.commentary[42]))
	}
	if dispatcher.commentary[42][0].ID != event.ID {
		t.Fatal("dispatched event is not the persisted one")
	}
}

func TestSynthesizeRejectsUnsavedMatch(t *testing.T) {
	t.Parallel()

	svc := NewCommentaryService(&stubCommentaryRepo{}, nil, rand.New(rand.NewSource(1)), logging.NewNop())

	_, err := svc.Synthesize(context.Background(), match.Match{Sport: match.SportCricket}, 1, 0)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
}

func TestSynthesizeInsertFailureSkipsDispatch(t *testing.T) {
	t.Parallel()

	repo := &stubCommentaryRepo{insertErr: errors.New("db down")}
	dispatcher := newRecordingDispatcher()
	svc := NewCommentaryService(repo, dispatcher, rand.New(rand.NewSource(1)), logging.NewNop())

	_, err := svc.Synthesize(context.Background(), liveMatch(1, match.SportCricket, "India", "England"), 10, 2)
	if err == nil {
		t.Fatal("expected insert error")
	}
	if got := dispatcher.commentaryCount(); got != 0 {
		t.Fatalf("failed insert still dispatched %d events", got)
	}
}

func TestGenerateForLiveMatchesBackfillsBatches(t *testing.T) {
	t.Parallel()

	repo := &stubCommentaryRepo{}
	dispatcher := newRecordingDispatcher()
	svc := NewCommentaryService(repo, dispatcher, rand.New(rand.NewSource(3)), logging.NewNop())

	base := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	matches := []match.Match{
		liveMatch(1, match.SportCricket, "India", "Australia"),
		liveMatch(2, match.SportFootball, "Arsenal", "Chelsea"),
		{ID: 3, Sport: match.SportCricket, HomeTeam: "A", AwayTeam: "B", Status: match.StatusScheduled},
		{Sport: match.SportCricket, HomeTeam: "C", AwayTeam: "D", Status: match.StatusLive},
	}

	written, err := svc.GenerateForLiveMatches(context.Background(), matches)
	if err != nil {
		t.Fatalf("GenerateForLiveMatches: %v", err)
	}
	if written < 6 || written > 14 {
		t.Fatalf("got %d events for two live matches, want between 6 and 14", written)
	}

	for _, id := range []int64{1, 2} {
		events, _ := repo.ListByMatch(context.Background(), id)
		if len(events) < 3 || len(events) > 7 {
			t.Fatalf("match %d got %d events, want between 3 and 7", id, len(events))
		}
		for i, e := range events {
			if e.Sequence != i+1 {
				t.Fatalf("match %d event %d has sequence %d, want %d", id, i, e.Sequence, i+1)
			}
			wantCreated := base.Add(-time.Duration(i) * time.Minute)
			if !e.CreatedAt.Equal(wantCreated) {
				t.Fatalf("match %d event %d createdAt %v, want %v", id, i, e.CreatedAt, wantCreated)
			}
			if strings.Contains(e.Message, "Score is now") {
				t.Fatalf("backfill event carries a score suffix: %q", e.Message)
			}
		}
	}

	if others, _ := repo.ListByMatch(context.Background(), 3); len(others) != 0 {
		t.Fatalf("scheduled match received %d events", len(others))
	}
	if got := dispatcher.commentaryCount(); got != 0 {
		t.Fatalf("backfill dispatched %d events, want 0", got)
	}
}

func TestPeriodForSport(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		match.SportCricket:    "innings",
		match.SportFootball:   "half",
		match.SportBasketball: "quarter",
		match.SportTennis:     "set",
		"handball":            "period",
	}
	for sport, want := range cases {
		if got := PeriodForSport(sport); got != want {
			t.Fatalf("PeriodForSport(%q) = %q, want %q", sport, got, want)
		}
	}
}
