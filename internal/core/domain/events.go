package domain

// EventType names a real-time event on the wire. Inbound types are sent by
// clients over the socket; outbound types are produced by the router.
type EventType string

const (
	// Inbound (client -> gateway)
	EventJoinRoom          EventType = "joinRoom"
	EventLeaveRoom         EventType = "leaveRoom"
	EventJobRequestUpdate  EventType = "jobRequestUpdate"
	EventApplicationUpdate EventType = "applicationUpdate"
	EventSendNotification  EventType = "sendNotification"

	// Outbound (gateway -> client)
	EventRoomJoined               EventType = "roomJoined"
	EventRoomLeft                 EventType = "roomLeft"
	EventJobRequestStatusChanged  EventType = "jobRequestStatusChanged"
	EventApplicationStatusChanged EventType = "applicationStatusChanged"
	EventNotification             EventType = "notification"
)

// Event is the envelope sent over the WebSocket in both directions.
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload"`
}

// ApplicationRoom returns the room name used for broadcasting updates
// about a certification application.
func ApplicationRoom(applicationID string) string {
	return "application:" + applicationID
}
