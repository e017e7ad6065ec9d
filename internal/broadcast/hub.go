package broadcast

import (
	"net/http"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sportzhub/livescore/internal/domain/commentary"
	"github.com/sportzhub/livescore/internal/domain/match"
	"github.com/sportzhub/livescore/internal/platform/logging"
	"github.com/sportzhub/livescore/internal/usecase"
)

const (
	clientSendBuffer = 32
	writeTimeout     = 5 * time.Second
)

// Hub fans sync engine notifications out to websocket subscribers. Delivery
// is fire-and-forget: a subscriber whose send buffer is full loses that
// message rather than stalling the broadcast.
type Hub struct {
	logger   *logging.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*client
	closed  bool
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func NewHub(logger *logging.Logger, allowedOrigins []string) *Hub {
	if logger == nil {
		logger = logging.Default()
	}

	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}

	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(allowed) == 0 {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
		clients: make(map[string]*client),
	}
}

// ServeHTTP upgrades the request and keeps the connection registered until
// the peer goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, clientSendBuffer),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[c.id] = c
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.InfoContext(r.Context(), "websocket client connected", "client_id", c.id, "clients", total)

	go c.writeLoop()
	go h.readLoop(c)
}

func (h *Hub) readLoop(c *client) {
	defer h.drop(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writeLoop() {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
	}
	total := len(h.clients)
	h.mu.Unlock()

	c.close()
	h.logger.Info("websocket client disconnected", "client_id", c.id, "clients", total)
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
		_ = c.conn.Close()
	})
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every subscriber. Broadcasts after Close are dropped.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[string]*client)
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func (h *Hub) broadcast(eventType string, data any) {
	raw, err := sonic.Marshal(envelope{Type: eventType, Data: data})
	if err != nil {
		h.logger.Error("encode broadcast payload failed", "type", eventType, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}

	for _, c := range h.clients {
		select {
		case c.send <- raw:
		default:
			h.logger.Warn("dropping broadcast for slow client", "client_id", c.id, "type", eventType)
		}
	}
}

type matchPayload struct {
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
	Venue     string `json:"venue,omitempty"`
	Source    string `json:"source,omitempty"`
}

type scorePayload struct {
	MatchID int64             `json:"matchId"`
	Score   usecase.ScorePair `json:"score"`
}

type commentaryPayload struct {
	MatchID   int64          `json:"matchId"`
	EventID   int64          `json:"eventId"`
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

func (h *Hub) MatchCreated(m match.Match) {
	h.broadcast("matchCreated", matchPayload{
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
	})
}

func (h *Hub) ScoreUpdated(matchID int64, score usecase.ScorePair) {
	h.broadcast("scoreUpdated", scorePayload{MatchID: matchID, Score: score})
}

func (h *Hub) CommentaryAdded(matchID int64, event commentary.Event) {
	h.broadcast("commentaryAdded", commentaryPayload{
		MatchID:   matchID,
		EventID:   event.ID,
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
	})
}
