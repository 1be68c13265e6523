package ports

import (
	"github.com/certdrive/realtime-gateway/internal/core/domain"
)

// Delivery is the outcome of a targeted send. Socket-triggered routing is
// fire-and-forget, but programmatic callers get to observe what happened.
type Delivery int

const (
	// Delivered means the event was queued on the recipient's connection.
	Delivered Delivery = iota
	// SkippedOffline means the recipient has no registered connection.
	SkippedOffline
	// Dropped means the recipient was online but their send buffer was full.
	Dropped
)

func (d Delivery) String() string {
	switch d {
	case Delivered:
		return "delivered"
	case SkippedOffline:
		return "skipped_offline"
	case Dropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// EventGateway is the collaborator-facing API of the presence hub. REST
// handlers call it after database writes to push status changes to
// connected clients.
type EventGateway interface {
	// RouteJobRequestUpdate sends jobRequestStatusChanged to the driver
	// and employer named in the payload, skipping anyone offline.
	RouteJobRequestUpdate(payload domain.JobRequestUpdatePayload)

	// RouteApplicationUpdate sends applicationStatusChanged to the driver
	// if online and always broadcasts it to the application's room.
	RouteApplicationUpdate(payload domain.ApplicationUpdatePayload)

	// RouteNotification stamps and delivers a notification to one user.
	RouteNotification(payload domain.NotificationPayload) Delivery

	// BroadcastToRoom sends an arbitrary named event to every connection
	// in the room. A no-op for an empty or unknown room.
	BroadcastToRoom(room string, event domain.EventType, data interface{})

	// SendToUser sends directly to one user's connection if online.
	SendToUser(userID string, event domain.EventType, data interface{}) Delivery

	// ConnectedUsersCount returns the number of identified users online.
	ConnectedUsersCount() int

	// IsUserOnline reports whether the user has a registered connection.
	IsUserOnline(userID string) bool
}
