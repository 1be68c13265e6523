package websocket

import (
	"context"
	"log/slog"
	"sync"

	"github.com/certdrive/realtime-gateway/internal/core/domain"
	"github.com/certdrive/realtime-gateway/internal/core/ports"
)

// Hub owns the presence registry and room membership, and routes events to
// targeted users and rooms.
type Hub struct {
	// presence maps user IDs to their single active connection.
	// A reconnect overwrites the previous entry (last write wins).
	presence map[string]*Client

	// rooms maps room names to subscribed clients
	rooms map[string]map[*Client]bool

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	// mu protects the presence and rooms maps
	mu sync.RWMutex

	// logger for the hub
	logger *slog.Logger
}

// Ensure Hub implements the EventGateway interface.
var _ ports.EventGateway = (*Hub)(nil)

// NewHub creates a new presence hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		presence:   make(map[string]*Client),
		rooms:      make(map[string]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		logger:     logger.With("component", "presence_hub"),
	}
}

// Run drains the register/unregister channels until the context is
// cancelled. This MUST be run as a goroutine.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case <-ctx.Done():
			return
		}
	}
}

// registerClient records the client in the presence registry. Anonymous
// clients (no user ID) are accepted but never addressable by user id.
func (h *Hub) registerClient(client *Client) {
	if client.UserID == "" {
		h.logger.Info("anonymous client connected",
			"connection_id", client.ConnectionID,
		)
		return
	}

	h.mu.Lock()
	previous := h.presence[client.UserID]
	h.presence[client.UserID] = client
	h.mu.Unlock()

	if previous != nil {
		h.logger.Info("user reconnected, replacing previous connection",
			"user_id", client.UserID,
			"connection_id", client.ConnectionID,
			"stale_connection_id", previous.ConnectionID,
		)
		return
	}

	h.logger.Info("user connected",
		"user_id", client.UserID,
		"connection_id", client.ConnectionID,
	)
}

// unregisterClient removes the client from the registry and all rooms.
// The registry entry is removed only if it still points at this exact
// client, so a stale disconnect cannot evict a newer connection.
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()

	if client.UserID != "" {
		if current, ok := h.presence[client.UserID]; ok && current == client {
			delete(h.presence, client.UserID)
		}
	}

	for _, room := range client.Rooms() {
		if members, ok := h.rooms[room]; ok {
			delete(members, client)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}

	h.mu.Unlock()

	client.CloseSend()

	h.logger.Info("client disconnected",
		"user_id", client.UserID,
		"connection_id", client.ConnectionID,
	)
}

// JoinRoom adds the client to the named room and acks with roomJoined.
// The userId carried in the payload is not checked against the
// connection's authenticated identity; the upgrade handler already bound
// the connection to a verified principal.
func (h *Hub) JoinRoom(client *Client, payload domain.JoinRoomPayload) {
	if err := payload.Validate(); err != nil {
		h.logger.Warn("rejecting joinRoom", "error", err, "connection_id", client.ConnectionID)
		return
	}

	h.mu.Lock()
	if h.rooms[payload.Room] == nil {
		h.rooms[payload.Room] = make(map[*Client]bool)
	}
	h.rooms[payload.Room][client] = true
	h.mu.Unlock()

	client.AddRoom(payload.Room)

	h.logger.Debug("client joined room",
		"user_id", client.UserID,
		"room", payload.Room,
	)

	h.trySend(client, domain.Event{
		Type:    domain.EventRoomJoined,
		Payload: domain.RoomAckPayload{Room: payload.Room},
	})
}

// LeaveRoom removes the client from the room and acks with roomLeft.
// An unknown room is treated as an empty set.
func (h *Hub) LeaveRoom(client *Client, payload domain.LeaveRoomPayload) {
	if err := payload.Validate(); err != nil {
		h.logger.Warn("rejecting leaveRoom", "error", err, "connection_id", client.ConnectionID)
		return
	}

	h.mu.Lock()
	if members, ok := h.rooms[payload.Room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, payload.Room)
		}
	}
	h.mu.Unlock()

	client.RemoveRoom(payload.Room)

	h.logger.Debug("client left room",
		"user_id", client.UserID,
		"room", payload.Room,
	)

	h.trySend(client, domain.Event{
		Type:    domain.EventRoomLeft,
		Payload: domain.RoomAckPayload{Room: payload.Room},
	})
}

// RouteJobRequestUpdate delivers jobRequestStatusChanged to the driver and
// employer named in the payload. An absent or offline recipient is
// silently skipped.
func (h *Hub) RouteJobRequestUpdate(payload domain.JobRequestUpdatePayload) {
	event := domain.Event{
		Type:    domain.EventJobRequestStatusChanged,
		Payload: payload,
	}

	for _, userID := range []string{payload.DriverID, payload.EmployerID} {
		if userID == "" {
			continue
		}
		outcome := h.sendToUser(userID, event)
		h.logger.Debug("routed job request update",
			"job_request_id", payload.JobRequestID,
			"status", payload.Status,
			"user_id", userID,
			"outcome", outcome.String(),
		)
	}
}

// RouteApplicationUpdate delivers applicationStatusChanged to the driver
// if online, and always broadcasts it to the application's room. A driver
// who is also a room member receives the event twice; consumers are
// expected to be idempotent.
func (h *Hub) RouteApplicationUpdate(payload domain.ApplicationUpdatePayload) {
	event := domain.Event{
		Type:    domain.EventApplicationStatusChanged,
		Payload: payload,
	}

	outcome := h.sendToUser(payload.DriverID, event)
	h.logger.Debug("routed application update",
		"application_id", payload.ApplicationID,
		"status", payload.Status,
		"driver_id", payload.DriverID,
		"outcome", outcome.String(),
	)

	h.broadcast(domain.ApplicationRoom(payload.ApplicationID), event)
}

// RouteNotification stamps the notification server-side and delivers it to
// the target user. Offline targets are dropped without error.
func (h *Hub) RouteNotification(payload domain.NotificationPayload) ports.Delivery {
	event := domain.Event{
		Type:    domain.EventNotification,
		Payload: domain.NewNotificationMessage(payload),
	}

	outcome := h.sendToUser(payload.UserID, event)
	h.logger.Debug("routed notification",
		"user_id", payload.UserID,
		"notification_type", payload.Type,
		"outcome", outcome.String(),
	)
	return outcome
}

// BroadcastToRoom sends an arbitrary named event to every connection in
// the room. A no-op if the room is empty or unknown.
func (h *Hub) BroadcastToRoom(room string, event domain.EventType, data interface{}) {
	h.broadcast(room, domain.Event{Type: event, Payload: data})
}

// SendToUser sends directly to one user's connection if online.
func (h *Hub) SendToUser(userID string, event domain.EventType, data interface{}) ports.Delivery {
	return h.sendToUser(userID, domain.Event{Type: event, Payload: data})
}

// ConnectedUsersCount returns the cardinality of the presence registry.
func (h *Hub) ConnectedUsersCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.presence)
}

// IsUserOnline reports whether the user has a registered connection.
func (h *Hub) IsUserOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.presence[userID]
	return ok
}

// RoomCount returns the number of rooms with at least one member.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// ClientsInRoom returns the number of connections in a room.
func (h *Hub) ClientsInRoom(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// sendToUser resolves the user and enqueues the event on their connection.
func (h *Hub) sendToUser(userID string, event domain.Event) ports.Delivery {
	if userID == "" {
		return ports.SkippedOffline
	}

	h.mu.RLock()
	client, ok := h.presence[userID]
	h.mu.RUnlock()

	if !ok {
		return ports.SkippedOffline
	}

	if !h.trySend(client, event) {
		return ports.Dropped
	}
	return ports.Delivered
}

// broadcast sends the event to every member of the room.
func (h *Hub) broadcast(room string, event domain.Event) {
	h.mu.RLock()
	members, ok := h.rooms[room]
	if !ok {
		h.mu.RUnlock()
		return
	}

	// Copy the member list to avoid holding the lock while sending
	clients := make([]*Client, 0, len(members))
	for client := range members {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	h.logger.Debug("broadcasting to room",
		"room", room,
		"event_type", event.Type,
		"client_count", len(clients),
	)

	for _, client := range clients {
		h.trySend(client, event)
	}
}

// trySend enqueues the event without blocking. A full send buffer or an
// already-closed connection means the event is logged and dropped; there
// is no retry.
func (h *Hub) trySend(client *Client, event domain.Event) bool {
	if client.enqueue(event) {
		return true
	}

	h.logger.Warn("dropping undeliverable event",
		"user_id", client.UserID,
		"connection_id", client.ConnectionID,
		"event_type", event.Type,
	)
	return false
}
