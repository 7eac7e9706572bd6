package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// Message is the envelope of every websocket frame.
type Message struct {
	Type      string      `json:"t"`
	SessionID string      `json:"session_id,omitempty"`
	Event     string      `json:"event,omitempty"`
	Data      interface{} `json:"m,omitempty"`
}

// Message types
const (
	TypeState          = "state"
	TypePing           = "ping"
	TypePong           = "pong"
	TypeError          = "error"
	TypeSessionDeleted = "sessionDeleted"
	TypeRemoved        = "removed"
)

type client struct {
	sessionID string
	playerID  string
	send      chan []byte
}

// writeLoop drains the send queue until it is closed or ctx ends. A closed
// queue means the session is gone.
func (h *Hub) writeLoop(ctx context.Context, conn *websocket.Conn, c *client) {
	ping := time.NewTicker(h.pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case msg, ok := <-c.send:
			if !ok {
				_ = conn.Close(websocket.StatusGoingAway, "session closed")
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, h.writeTimeout)
			err := conn.Write(writeCtx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				h.logger.Debug("websocket write failed",
					slog.String("session_id", c.sessionID),
					slog.String("player_id", c.playerID),
					slog.String("error", err.Error()))
				return
			}

		case <-ping.C:
			pingCtx, cancel := context.WithTimeout(ctx, h.writeTimeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// readLoop handles client requests until the connection fails.
func (h *Hub) readLoop(ctx context.Context, conn *websocket.Conn, c *client) {
	for {
		var msg Message
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				h.deliver(c, Message{Type: TypeError, SessionID: c.sessionID, Data: "malformed message"})
				continue
			}
			return
		}

		switch msg.Type {
		case TypePing:
			h.deliver(c, Message{Type: TypePong, SessionID: c.sessionID})
		case TypeState:
			h.pushState(ctx, c, "")
		default:
			h.deliver(c, Message{Type: TypeError, SessionID: c.sessionID, Data: "unknown message type"})
		}
	}
}
