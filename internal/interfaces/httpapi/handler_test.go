package httpapi

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sportzhub/livescore/internal/domain/commentary"
	"github.com/sportzhub/livescore/internal/domain/match"
	"github.com/sportzhub/livescore/internal/infrastructure/repository/memory"
	"github.com/sportzhub/livescore/internal/platform/cache"
	"github.com/sportzhub/livescore/internal/platform/logging"
	"github.com/sportzhub/livescore/internal/usecase"
)

type fixedAdapter struct {
	snapshots []match.Snapshot
}

func (fixedAdapter) Name() string { return "fixed" }

func (a fixedAdapter) Fetch(context.Context) []match.Snapshot { return a.snapshots }

type testEnv struct {
	matches    *memory.MatchRepository
	commentary *memory.CommentaryRepository
	server     *httptest.Server
}

func newTestEnv(t *testing.T, snapshots []match.Snapshot) testEnv {
	t.Helper()

	matches := memory.NewMatchRepository()
	commentaryRepo := memory.NewCommentaryRepository()
	logger := logging.NewNop()

	commentarySvc := usecase.NewCommentaryService(commentaryRepo, nil, rand.New(rand.NewSource(5)), logger)
	syncService := usecase.NewSyncService(
		[]usecase.SourceAdapter{fixedAdapter{snapshots: snapshots}},
		matches, commentarySvc, nil, time.Second, logger,
	)

	handler := NewHandler(matches, commentaryRepo, syncService, commentarySvc, cache.NewStore(time.Minute), logger)
	server := httptest.NewServer(NewRouter(handler, nil, logger, nil))
	t.Cleanup(server.Close)

	return testEnv{matches: matches, commentary: commentaryRepo, server: server}
}

type envelope struct {
	APIVersion string          `json:"apiVersion"`
	Data       json.RawMessage `json:"data"`
	Error      *struct {
		Code   int    `json:"code"`
		Status string `json:"status"`
	} `json:"error"`
}

func doRequest(t *testing.T, method, url string) (int, envelope) {
	t.Helper()

	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var body envelope
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, body
}

func seedMatch(t *testing.T, env testEnv, m match.Match) match.Match {
	t.Helper()

	saved, err := env.matches.Insert(context.Background(), m)
	if err != nil {
		t.Fatalf("seed match: %v", err)
	}
	return saved
}

func TestListMatchesFiltersByStatus(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	seedMatch(t, env, match.Match{Sport: match.SportCricket, HomeTeam: "India", AwayTeam: "England", Status: match.StatusLive})
	seedMatch(t, env, match.Match{Sport: match.SportCricket, HomeTeam: "Pakistan", AwayTeam: "New Zealand", Status: match.StatusScheduled})

	status, body := doRequest(t, http.MethodGet, env.server.URL+"/v1/matches?status=live")
	if status != http.StatusOK {
		t.Fatalf("got status %d", status)
	}

	var items []map[string]any
	if err := json.Unmarshal(body.Data, &items); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d matches, want 1 live", len(items))
	}
	if items[0]["homeTeam"] != "India" {
		t.Fatalf("got %v", items[0])
	}
}

func TestListMatchesRejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)

	status, body := doRequest(t, http.MethodGet, env.server.URL+"/v1/matches?status=paused")
	if status != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", status)
	}
	if body.Error == nil || body.Error.Status != "INVALID_ARGUMENT" {
		t.Fatalf("got error %+v", body.Error)
	}
}

func TestGetMatchNotFound(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)

	status, body := doRequest(t, http.MethodGet, env.server.URL+"/v1/matches/999")
	if status != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", status)
	}
	if body.Error == nil || body.Error.Status != "NOT_FOUND" {
		t.Fatalf("got error %+v", body.Error)
	}
}

func TestListCommentaryByMatch(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	saved := seedMatch(t, env, match.Match{Sport: match.SportCricket, HomeTeam: "India", AwayTeam: "England", Status: match.StatusLive})

	_, err := env.commentary.Insert(context.Background(), commentary.Event{
		MatchID:   saved.ID,
		EventType: commentary.EventTypeScoreUpdate,
		Message:   "India hits a boundary! Score is now 4-0.",
	})
	if err != nil {
		t.Fatalf("seed commentary: %v", err)
	}

	status, body := doRequest(t, http.MethodGet, env.server.URL+"/v1/matches/1/commentary")
	if status != http.StatusOK {
		t.Fatalf("got status %d", status)
	}

	var items []map[string]any
	if err := json.Unmarshal(body.Data, &items); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d events, want 1", len(items))
	}
}

func TestTriggerSyncInvalidatesListCache(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, []match.Snapshot{{
		Sport:     match.SportCricket,
		MatchType: "odi",
		League:    "ICC Cricket World Cup",
		HomeTeam:  "India",
		AwayTeam:  "Australia",
		Status:    match.StatusLive,
		HomeScore: 100,
		AwayScore: 50,
		StartTime: time.Now(),
		Source:    "cricapi",
	}})

	// Prime the list cache while the store is still empty.
	status, body := doRequest(t, http.MethodGet, env.server.URL+"/v1/matches")
	if status != http.StatusOK {
		t.Fatalf("got status %d", status)
	}
	var before []map[string]any
	_ = json.Unmarshal(body.Data, &before)
	if len(before) != 0 {
		t.Fatalf("got %d matches before sync, want 0", len(before))
	}

	status, body = doRequest(t, http.MethodPost, env.server.URL+"/v1/internal/sync")
	if status != http.StatusOK {
		t.Fatalf("sync returned status %d", status)
	}
	var result struct {
		Created []map[string]any `json:"created"`
	}
	if err := json.Unmarshal(body.Data, &result); err != nil {
		t.Fatalf("decode sync result: %v", err)
	}
	if len(result.Created) != 1 {
		t.Fatalf("sync created %d matches, want 1", len(result.Created))
	}

	status, body = doRequest(t, http.MethodGet, env.server.URL+"/v1/matches")
	if status != http.StatusOK {
		t.Fatalf("got status %d", status)
	}
	var after []map[string]any
	if err := json.Unmarshal(body.Data, &after); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(after) != 1 {
		t.Fatalf("got %d matches after sync, want the cache refreshed", len(after))
	}
}

func TestBackfillCommentaryForLiveMatches(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	saved := seedMatch(t, env, match.Match{Sport: match.SportCricket, HomeTeam: "India", AwayTeam: "England", Status: match.StatusLive})
	seedMatch(t, env, match.Match{Sport: match.SportCricket, HomeTeam: "Pakistan", AwayTeam: "New Zealand", Status: match.StatusScheduled})

	status, body := doRequest(t, http.MethodPost, env.server.URL+"/v1/internal/commentary/backfill")
	if status != http.StatusOK {
		t.Fatalf("got status %d", status)
	}

	var result struct {
		LiveMatches int `json:"liveMatches"`
		Events      int `json:"events"`
	}
	if err := json.Unmarshal(body.Data, &result); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if result.LiveMatches != 1 {
		t.Fatalf("got %d live matches, want 1", result.LiveMatches)
	}
	if result.Events < 3 || result.Events > 7 {
		t.Fatalf("got %d events, want between 3 and 7", result.Events)
	}

	events, err := env.commentary.ListByMatch(context.Background(), saved.ID)
	if err != nil {
		t.Fatalf("list commentary: %v", err)
	}
	if len(events) != result.Events {
		t.Fatalf("stored %d events, response said %d", len(events), result.Events)
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)

	status, body := doRequest(t, http.MethodGet, env.server.URL+"/healthz")
	if status != http.StatusOK {
		t.Fatalf("got status %d", status)
	}
	if body.APIVersion != "2.0" {
		t.Fatalf("got apiVersion %q", body.APIVersion)
	}
}
