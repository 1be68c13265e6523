package domain

import (
	"time"

	apperrors "github.com/certdrive/realtime-gateway/internal/core/errors"
)

// JoinRoomPayload is the inbound payload for joinRoom.
type JoinRoomPayload struct {
	Room   string `json:"room"`
	UserID string `json:"userId"`
}

// Validate checks required fields. The userId is carried for observability
// only; it is not verified against the connection's authenticated identity.
func (p JoinRoomPayload) Validate() error {
	if p.Room == "" {
		return apperrors.ErrRoomRequired
	}
	return nil
}

// LeaveRoomPayload is the inbound payload for leaveRoom.
type LeaveRoomPayload struct {
	Room string `json:"room"`
}

func (p LeaveRoomPayload) Validate() error {
	if p.Room == "" {
		return apperrors.ErrRoomRequired
	}
	return nil
}

// RoomAckPayload acknowledges a join or leave back to the same connection.
type RoomAckPayload struct {
	Room string `json:"room"`
}

// JobRequestUpdatePayload carries a job-request status change. DriverID and
// EmployerID are each optional; an absent or offline recipient is skipped.
type JobRequestUpdatePayload struct {
	JobRequestID string `json:"jobRequestId"`
	Status       string `json:"status"`
	DriverID     string `json:"driverId,omitempty"`
	EmployerID   string `json:"employerId,omitempty"`
}

// Validate checks shape only. Status values are not interpreted here; the
// emitting collaborator owns semantic validation.
func (p JobRequestUpdatePayload) Validate() error {
	if p.JobRequestID == "" {
		return apperrors.ErrJobRequestIDRequired
	}
	if p.Status == "" {
		return apperrors.ErrStatusRequired
	}
	return nil
}

// ApplicationUpdatePayload carries a certification-application status change.
type ApplicationUpdatePayload struct {
	ApplicationID string `json:"applicationId"`
	Status        string `json:"status"`
	DriverID      string `json:"driverId"`
}

func (p ApplicationUpdatePayload) Validate() error {
	if p.ApplicationID == "" {
		return apperrors.ErrApplicationIDRequired
	}
	if p.Status == "" {
		return apperrors.ErrStatusRequired
	}
	if p.DriverID == "" {
		return apperrors.ErrDriverIDRequired
	}
	return nil
}

// NotificationPayload is the inbound payload for sendNotification.
type NotificationPayload struct {
	UserID  string      `json:"userId"`
	Message string      `json:"message"`
	Type    string      `json:"type"`
	Data    interface{} `json:"data,omitempty"`
}

func (p NotificationPayload) Validate() error {
	if p.UserID == "" {
		return apperrors.ErrUserIDRequired
	}
	if p.Message == "" {
		return apperrors.ErrMessageRequired
	}
	if p.Type == "" {
		return apperrors.ErrNotificationTypeRequired
	}
	return nil
}

// NotificationMessage is the outbound notification payload. The timestamp
// is generated at send time so callers cannot spoof it.
type NotificationMessage struct {
	Message   string      `json:"message"`
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// NewNotificationMessage stamps a notification for delivery.
func NewNotificationMessage(p NotificationPayload) NotificationMessage {
	return NotificationMessage{
		Message:   p.Message,
		Type:      p.Type,
		Data:      p.Data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
