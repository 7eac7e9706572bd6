package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/crossplay/internal/api/shared"
	"github.com/phrazzld/crossplay/internal/domain/game"
	"github.com/phrazzld/crossplay/internal/events"
	"github.com/phrazzld/crossplay/internal/platform/logger"
	"github.com/phrazzld/crossplay/internal/service"
	"nhooyr.io/websocket"
)

// Default connection timings.
const (
	DefaultPingInterval = 15 * time.Second
	DefaultWriteTimeout = 10 * time.Second

	sendBuffer = 64

	notAPlayerMessage = "Not a player in this session"
)

// StateSource produces the view of a session for one player.
type StateSource interface {
	GameState(ctx context.Context, sessionID, playerID string) (game.PlayerView, error)
}

// Hub tracks websocket clients per session and pushes state on game events.
type Hub struct {
	source         StateSource
	originPatterns []string
	logger         *slog.Logger
	pingInterval   time.Duration
	writeTimeout   time.Duration

	mu       sync.RWMutex
	sessions map[string]map[*client]struct{}
}

var _ events.EventHandler = (*Hub)(nil)

// NewHub creates a hub. allowedOrigins are full origins such as
// "https://play.example.com"; an empty list accepts same-origin requests only.
func NewHub(source StateSource, allowedOrigins []string, log *slog.Logger) *Hub {
	if source == nil {
		panic("state source cannot be nil") // ALLOW-PANIC: Constructor enforcing required dependency
	}
	if log == nil {
		log = slog.Default()
	}

	return &Hub{
		source:         source,
		originPatterns: originHosts(allowedOrigins),
		logger:         log.With(slog.String("component", "ws_hub")),
		pingInterval:   DefaultPingInterval,
		writeTimeout:   DefaultWriteTimeout,
		sessions:       make(map[string]map[*client]struct{}),
	}
}

// originHosts converts origins to the host patterns the websocket library matches.
func originHosts(origins []string) []string {
	hosts := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			hosts = append(hosts, u.Host)
			continue
		}
		hosts = append(hosts, o)
	}
	return hosts
}

// ClientCount returns the number of clients connected to a session.
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// ServeWS upgrades GET /ws/sessions/{id}?player_id=... to a websocket.
// An unknown session or player is rejected before the upgrade.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	sessionID := strings.TrimSpace(chi.URLParam(r, "id"))
	playerID := strings.TrimSpace(r.URL.Query().Get("player_id"))
	if sessionID == "" || playerID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "session id and player_id are required")
		return
	}

	view, err := h.source.GameState(r.Context(), sessionID, playerID)
	if err != nil {
		status := http.StatusInternalServerError
		msg := "Failed to load session"
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			status, msg = http.StatusNotFound, "Session not found"
		case errors.Is(err, game.ErrPlayerNotFound), errors.Is(err, game.ErrNotAPlayer):
			status, msg = http.StatusForbidden, notAPlayerMessage
		}
		shared.RespondWithErrorAndLog(w, r, status, msg, err)
		return
	}
	if !containsPlayer(view, playerID) {
		shared.RespondWithError(w, r, http.StatusForbidden, notAPlayerMessage)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.originPatterns})
	if err != nil {
		log.Debug("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := &client{sessionID: sessionID, playerID: playerID, send: make(chan []byte, sendBuffer)}
	h.register(c)
	log.Debug("websocket client connected",
		slog.String("session_id", sessionID),
		slog.String("player_id", playerID))

	// r.Context() is cancelled once the handler returns, which is after the
	// connection is done.
	ctx, cancel := context.WithCancel(r.Context())
	h.deliver(c, Message{Type: TypeState, SessionID: sessionID, Data: view})

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writeLoop(ctx, conn, c)
		cancel()
	}()

	h.readLoop(ctx, conn, c)

	h.unregister(c)
	cancel()
	<-done
	_ = conn.Close(websocket.StatusNormalClosure, "")

	log.Debug("websocket client disconnected",
		slog.String("session_id", sessionID),
		slog.String("player_id", playerID))
}

func containsPlayer(view game.PlayerView, playerID string) bool {
	for _, p := range view.Players {
		if p.ID == playerID {
			return true
		}
	}
	return false
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.sessions[c.sessionID]
	if !ok {
		set = make(map[*client]struct{})
		h.sessions[c.sessionID] = set
	}
	set[c] = struct{}{}
}

// unregister removes c and closes its queue. It is safe to call more than once.
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	set, ok := h.sessions[c.sessionID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.sessions, c.sessionID)
	}
}

func (h *Hub) clients(sessionID string) []*client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*client, 0, len(h.sessions[sessionID]))
	for c := range h.sessions[sessionID] {
		out = append(out, c)
	}
	return out
}

// deliver queues msg for c. A full queue drops the message; the client can
// ask for fresh state.
func (h *Hub) deliver(c *client, msg Message) {
	b, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to encode websocket message",
			slog.String("type", msg.Type),
			slog.String("error", err.Error()))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.sessions[c.sessionID][c]; !ok {
		return
	}
	select {
	case c.send <- b:
	default:
		h.logger.Warn("websocket send queue full, dropping message",
			slog.String("session_id", c.sessionID),
			slog.String("player_id", c.playerID),
			slog.String("type", msg.Type))
	}
}

// pushState sends c its current view, tagged with the triggering event.
func (h *Hub) pushState(ctx context.Context, c *client, eventType string) {
	view, err := h.source.GameState(ctx, c.sessionID, c.playerID)
	if err != nil {
		h.logger.Debug("failed to build player view",
			slog.String("session_id", c.sessionID),
			slog.String("player_id", c.playerID),
			slog.String("error", err.Error()))
		h.deliver(c, Message{Type: TypeError, SessionID: c.sessionID, Event: eventType, Data: "state unavailable"})
		return
	}
	h.deliver(c, Message{Type: TypeState, SessionID: c.sessionID, Event: eventType, Data: view})
}

// HandleEvent pushes fresh state to every client of the event's session.
// A deleted session disconnects its clients and a removed player loses its
// connections.
func (h *Hub) HandleEvent(ctx context.Context, event *events.GameEvent) error {
	if event == nil {
		return nil
	}

	switch event.Type {
	case events.SessionDeleted:
		h.disconnect(event, TypeSessionDeleted, func(*client) bool { return true })
		return nil
	case events.PlayerLeft:
		var left struct {
			PlayerID string `json:"player_id"`
		}
		if err := event.UnmarshalPayload(&left); err != nil {
			h.logger.Warn("malformed playerLeft payload",
				slog.String("session_id", event.SessionID),
				slog.String("error", err.Error()))
		} else if left.PlayerID != "" {
			h.disconnect(event, TypeRemoved, func(c *client) bool { return c.playerID == left.PlayerID })
		}
	}

	for _, c := range h.clients(event.SessionID) {
		h.pushState(ctx, c, event.Type)
	}
	return nil
}

// disconnect sends a final message of msgType to the session's clients that
// match and unregisters them.
func (h *Hub) disconnect(event *events.GameEvent, msgType string, match func(*client) bool) {
	msg := Message{Type: msgType, SessionID: event.SessionID, Event: event.Type}
	if len(event.Payload) > 0 {
		msg.Data = event.Payload
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.sessions[event.SessionID] {
		if !match(c) {
			continue
		}
		select {
		case c.send <- b:
		default:
		}
		h.removeLocked(c)
	}
}
