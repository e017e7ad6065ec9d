package espn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sportzhub/livescore/internal/domain/match"
	"github.com/sportzhub/livescore/internal/platform/logging"
)

const scoreboardFixture = `<html><body>
<div class="Scoreboard">
  <div class="ScoreCell__TeamName">Arsenal</div>
  <div class="ScoreCell__Score">2</div>
  <div class="ScoreCell__TeamName">Chelsea</div>
  <div class="ScoreCell__Score">1</div>
  <div class="ScoreCell__Time">Live - 67'</div>
</div>
<div class="Scoreboard">
  <div class="ScoreCell__TeamName">Liverpool</div>
  <div class="ScoreCell__Score">3</div>
  <div class="ScoreCell__TeamName">Everton</div>
  <div class="ScoreCell__Score">0</div>
  <div class="ScoreCell__Time">FT</div>
</div>
<div class="Scoreboard">
  <div class="ScoreCell__TeamName">Lonely FC</div>
  <div class="ScoreCell__Score">1</div>
  <div class="ScoreCell__Time">Live</div>
</div>
<div class="Scoreboard">
  <div class="ScoreCell__TeamName">Spurs</div>
  <div class="ScoreCell__TeamName">West Ham</div>
  <div class="ScoreCell__Time">Sat 3:00 PM</div>
</div>
</body></html>`

func TestFetchParsesScoreboard(t *testing.T) {
	t.Parallel()

	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.UserAgent()
		_, _ = w.Write([]byte(scoreboardFixture))
	}))
	defer server.Close()

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	scraper := NewScraper(ScraperConfig{
		Logger: logging.NewNop(),
		Now:    func() time.Time { return base },
		Endpoints: []Endpoint{
			{Sport: match.SportFootball, League: "Premier League", URL: server.URL},
		},
	})

	snapshots := scraper.Fetch(context.Background())
	if gotUA != browserUserAgent {
		t.Fatalf("got user agent %q", gotUA)
	}
	if len(snapshots) != 3 {
		t.Fatalf("got %d snapshots, want 3 with the single-team block dropped", len(snapshots))
	}

	live := snapshots[0]
	if live.HomeTeam != "Arsenal" || live.AwayTeam != "Chelsea" {
		t.Fatalf("got teams %q vs %q", live.HomeTeam, live.AwayTeam)
	}
	if live.Status != match.StatusLive || live.HomeScore != 2 || live.AwayScore != 1 {
		t.Fatalf("got %+v", live)
	}
	if live.League != "Premier League" || live.Sport != match.SportFootball {
		t.Fatalf("got league %q sport %q", live.League, live.Sport)
	}

	finished := snapshots[1]
	if finished.Status != match.StatusFinished {
		t.Fatalf("got status %q for FT block", finished.Status)
	}
	if !finished.EndTime.Equal(base) {
		t.Fatalf("finished block has end time %v", finished.EndTime)
	}

	scheduled := snapshots[2]
	if scheduled.Status != match.StatusScheduled || scheduled.HomeScore != 0 {
		t.Fatalf("got %+v for scheduled block", scheduled)
	}
}

func TestFetchSkipsFailingEndpoint(t *testing.T) {
	t.Parallel()

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer bad.Close()

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(scoreboardFixture))
	}))
	defer good.Close()

	scraper := NewScraper(ScraperConfig{
		Logger: logging.NewNop(),
		Endpoints: []Endpoint{
			{Sport: match.SportBasketball, League: "NBA", URL: bad.URL},
			{Sport: match.SportFootball, League: "Premier League", URL: good.URL},
		},
	})

	snapshots := scraper.Fetch(context.Background())
	if len(snapshots) != 3 {
		t.Fatalf("got %d snapshots, want the healthy endpoint to still count", len(snapshots))
	}
}

func TestParseScore(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		want int
	}{
		{"245/4", 245},
		{"189-7", 189},
		{"102", 102},
		{"", 0},
		{"TBD", 0},
	}
	for _, tc := range cases {
		if got := parseScore(tc.text); got != tc.want {
			t.Fatalf("parseScore(%q) = %d, want %d", tc.text, got, tc.want)
		}
	}
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		want string
	}{
		{"Live - 67'", match.StatusLive},
		{"In Progress", match.StatusLive},
		{"Final", match.StatusFinished},
		{"FT", match.StatusFinished},
		{"India won by 5 wickets", match.StatusFinished},
		{"Sat 3:00 PM", match.StatusScheduled},
	}
	for _, tc := range cases {
		if got := parseStatus(tc.text); got != tc.want {
			t.Fatalf("parseStatus(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}
