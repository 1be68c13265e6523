package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/certdrive/realtime-gateway/internal/core/domain"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Outbound buffer size per connection.
	sendBufferSize = 256
)

// Client is a middleman between one websocket connection and the hub.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// Buffered channel of outbound events.
	Send chan domain.Event

	// ConnectionID uniquely identifies this live connection.
	ConnectionID string

	// UserID is the authenticated principal, empty for anonymous clients.
	UserID string

	// rooms this client has joined
	rooms map[string]bool

	// closeOnce ensures the Send channel is only closed once
	closeOnce sync.Once

	// closed marks the Send channel as closed; guarded by mu
	closed bool

	// mu protects the rooms map and the closed flag
	mu sync.RWMutex

	// logger for this client
	logger *slog.Logger
}

// NewClient creates a new WebSocket client
func NewClient(hub *Hub, conn *websocket.Conn, userID string, logger *slog.Logger) *Client {
	connectionID := uuid.NewString()
	return &Client{
		Hub:          hub,
		Conn:         conn,
		Send:         make(chan domain.Event, sendBufferSize),
		ConnectionID: connectionID,
		UserID:       userID,
		rooms:        make(map[string]bool),
		logger:       logger.With("connection_id", connectionID, "user_id", userID),
	}
}

// CloseSend safely closes the Send channel exactly once. It takes the
// write lock so no concurrent enqueue can land on the closed channel.
func (c *Client) CloseSend() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.Send)
		c.mu.Unlock()
	})
}

// enqueue places the event on the send buffer without blocking. It
// reports false when the connection is already closed or the buffer is
// full.
func (c *Client) enqueue(event domain.Event) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return false
	}

	select {
	case c.Send <- event:
		return true
	default:
		return false
	}
}

// AddRoom records a room membership on the client
func (c *Client) AddRoom(room string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[room] = true
}

// RemoveRoom forgets a room membership
func (c *Client) RemoveRoom(room string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rooms, room)
}

// InRoom checks whether the client has joined a room
func (c *Client) InRoom(room string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rooms[room]
}

// Rooms returns a copy of the client's room memberships
func (c *Client) Rooms() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rooms := make([]string, 0, len(c.rooms))
	for room := range c.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// ReadPump pumps messages from the websocket connection to the hub.
// This method runs in its own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error("failed to set read deadline", "error", err)
		return
	}

	c.Conn.SetPongHandler(func(string) error {
		if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.logger.Error("failed to set read deadline in pong handler", "error", err)
		}
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			break
		}

		c.handleIncomingMessage(message)
	}
}

// WritePump pumps messages from the hub to the websocket connection.
// This method runs in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.Send:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline", "error", err)
				return
			}

			if !ok {
				// The hub closed the channel. Send close message.
				if err := c.Conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug("failed to send close message", "error", err)
				}
				return
			}

			if err := c.writeJSON(event); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline for ping", "error", err)
				return
			}

			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("failed to send ping", "error", err)
				return
			}
		}
	}
}

// writeJSON writes a JSON message to the websocket connection
func (c *Client) writeJSON(event domain.Event) error {
	w, err := c.Conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(w).Encode(event); err != nil {
		_ = w.Close()
		return err
	}

	return w.Close()
}

// --- Incoming Message Handling ---

// ClientMessage is the envelope for messages sent from the client.
type ClientMessage struct {
	Type    domain.EventType `json:"type"`
	Payload json.RawMessage  `json:"payload"`
}

// handleIncomingMessage dispatches a message received from the client
func (c *Client) handleIncomingMessage(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.logger.Warn("failed to unmarshal client message", "error", err)
		return
	}

	switch msg.Type {
	case domain.EventJoinRoom:
		var p domain.JoinRoomPayload
		if !c.decodePayload(msg, &p) {
			return
		}
		c.Hub.JoinRoom(c, p)

	case domain.EventLeaveRoom:
		var p domain.LeaveRoomPayload
		if !c.decodePayload(msg, &p) {
			return
		}
		c.Hub.LeaveRoom(c, p)

	case domain.EventJobRequestUpdate:
		var p domain.JobRequestUpdatePayload
		if !c.decodePayload(msg, &p) {
			return
		}
		if err := p.Validate(); err != nil {
			c.logger.Warn("rejecting jobRequestUpdate", "error", err)
			return
		}
		c.Hub.RouteJobRequestUpdate(p)

	case domain.EventApplicationUpdate:
		var p domain.ApplicationUpdatePayload
		if !c.decodePayload(msg, &p) {
			return
		}
		if err := p.Validate(); err != nil {
			c.logger.Warn("rejecting applicationUpdate", "error", err)
			return
		}
		c.Hub.RouteApplicationUpdate(p)

	case domain.EventSendNotification:
		var p domain.NotificationPayload
		if !c.decodePayload(msg, &p) {
			return
		}
		if err := p.Validate(); err != nil {
			c.logger.Warn("rejecting sendNotification", "error", err)
			return
		}
		// Fire-and-forget from the socket; the outcome is only logged.
		c.Hub.RouteNotification(p)

	default:
		c.logger.Debug("received unknown message type", "type", msg.Type)
	}
}

// decodePayload unmarshals the message payload, logging a warning on
// malformed input instead of surfacing an error to the peer.
func (c *Client) decodePayload(msg ClientMessage, v interface{}) bool {
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		c.logger.Warn("failed to unmarshal payload", "type", msg.Type, "error", err)
		return false
	}
	return true
}
