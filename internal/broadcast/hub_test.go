package broadcast

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/sportzhub/livescore/internal/domain/commentary"
	"github.com/sportzhub/livescore/internal/domain/match"
	"github.com/sportzhub/livescore/internal/platform/logging"
	"github.com/sportzhub/livescore/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, hub *Hub) *ws.Conn {
	t.Helper()

	server := httptest.NewServer(hub)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForClients(hub *Hub, expected int) bool {
	for range 100 {
		if hub.ClientCount() == expected {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}

func readEnvelope(t *testing.T, conn *ws.Conn) (string, json.RawMessage) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &msg))
	return msg.Type, msg.Data
}

func TestHubBroadcastsMatchCreated(t *testing.T) {
	hub := NewHub(logging.NewNop(), nil)
	t.Cleanup(hub.Close)

	conn := dialHub(t, hub)
	require.True(t, waitForClients(hub, 1))

	hub.MatchCreated(match.Match{
		ID:       7,
		Sport:    match.SportCricket,
		HomeTeam: "India",
		AwayTeam: "England",
		Status:   match.StatusLive,
	})

	eventType, data := readEnvelope(t, conn)
	assert.Equal(t, "matchCreated", eventType)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, float64(7), payload["id"])
	assert.Equal(t, "India", payload["homeTeam"])
	assert.Equal(t, "live", payload["status"])
}

func TestHubBroadcastsScoreAndCommentaryToAllClients(t *testing.T) {
	hub := NewHub(logging.NewNop(), nil)
	t.Cleanup(hub.Close)

	conn1 := dialHub(t, hub)
	conn2 := dialHub(t, hub)
	require.True(t, waitForClients(hub, 2))

	hub.ScoreUpdated(3, usecase.ScorePair{HomeScore: 120, AwayScore: 50})
	hub.CommentaryAdded(3, commentary.Event{
		ID:      11,
		MatchID: 3,
		Message: "India hits a boundary! Score is now 120-50.",
	})

	for _, conn := range []*ws.Conn{conn1, conn2} {
		eventType, data := readEnvelope(t, conn)
		assert.Equal(t, "scoreUpdated", eventType)

		var score struct {
			MatchID int64 `json:"matchId"`
			Score   struct {
				HomeScore int `json:"homeScore"`
				AwayScore int `json:"awayScore"`
			} `json:"score"`
		}
		require.NoError(t, json.Unmarshal(data, &score))
		assert.Equal(t, int64(3), score.MatchID)
		assert.Equal(t, 120, score.Score.HomeScore)
		assert.Equal(t, 50, score.Score.AwayScore)

		eventType, data = readEnvelope(t, conn)
		assert.Equal(t, "commentaryAdded", eventType)

		var event struct {
			MatchID int64  `json:"matchId"`
			EventID int64  `json:"eventId"`
			Message string `json:"message"`
		}
		require.NoError(t, json.Unmarshal(data, &event))
		assert.Equal(t, int64(3), event.MatchID)
		assert.Equal(t, int64(11), event.EventID)
	}
}

func TestHubDropsDisconnectedClients(t *testing.T) {
	hub := NewHub(logging.NewNop(), nil)
	t.Cleanup(hub.Close)

	conn := dialHub(t, hub)
	require.True(t, waitForClients(hub, 1))

	require.NoError(t, conn.Close())
	require.True(t, waitForClients(hub, 0))

	// Broadcast to an empty hub must not block or panic.
	hub.ScoreUpdated(1, usecase.ScorePair{HomeScore: 1})
}

func TestHubCloseDisconnectsEveryone(t *testing.T) {
	hub := NewHub(logging.NewNop(), nil)

	conn := dialHub(t, hub)
	require.True(t, waitForClients(hub, 1))

	hub.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, hub.ClientCount())
}
