package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/certdrive/realtime-gateway/internal/adapters/primary/http/middleware"
	"github.com/certdrive/realtime-gateway/internal/core/domain"
	apperrors "github.com/certdrive/realtime-gateway/internal/core/errors"
	"github.com/certdrive/realtime-gateway/internal/core/ports"
)

// EventsHandler is the collaborator-facing REST surface. The platform API
// calls it after database writes to push status changes into the gateway.
type EventsHandler struct {
	gateway      ports.EventGateway
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(gateway ports.EventGateway, errorHandler *ErrorHandler, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		gateway:      gateway,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// RegisterRoutes registers the event routing endpoints
func (h *EventsHandler) RegisterRoutes(r chi.Router) {
	r.Post("/job-requests", h.HandleJobRequestUpdate)
	r.Post("/applications", h.HandleApplicationUpdate)
	r.Post("/notifications", h.HandleNotification)
}

// collaboratorID names the authenticated caller for audit logging. Empty
// when the route is mounted without the JWT middleware.
func collaboratorID(r *http.Request) string {
	claims, ok := mw.ClaimsFromContext(r.Context())
	if !ok {
		return ""
	}
	return claims.UserID
}

// HandleJobRequestUpdate routes a job-request status change to the driver
// and employer named in the payload. Offline recipients are skipped.
func (h *EventsHandler) HandleJobRequestUpdate(w http.ResponseWriter, r *http.Request) {
	var payload domain.JobRequestUpdatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewBadRequestError(err, "Invalid request body"))
		return
	}

	if err := payload.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.gateway.RouteJobRequestUpdate(payload)
	h.logger.Info("job request update accepted",
		"job_request_id", payload.JobRequestID,
		"status", payload.Status,
		"collaborator_id", collaboratorID(r),
	)
	WriteAccepted(w, map[string]string{"jobRequestId": payload.JobRequestID})
}

// HandleApplicationUpdate routes an application status change to the driver
// and the application's room.
func (h *EventsHandler) HandleApplicationUpdate(w http.ResponseWriter, r *http.Request) {
	var payload domain.ApplicationUpdatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewBadRequestError(err, "Invalid request body"))
		return
	}

	if err := payload.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.gateway.RouteApplicationUpdate(payload)
	h.logger.Info("application update accepted",
		"application_id", payload.ApplicationID,
		"status", payload.Status,
		"collaborator_id", collaboratorID(r),
	)
	WriteAccepted(w, map[string]string{"applicationId": payload.ApplicationID})
}

// HandleNotification delivers a notification to one user. The delivery
// outcome is reported so the caller can distinguish an offline recipient
// from a queued send.
func (h *EventsHandler) HandleNotification(w http.ResponseWriter, r *http.Request) {
	var payload domain.NotificationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewBadRequestError(err, "Invalid request body"))
		return
	}

	if err := payload.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	outcome := h.gateway.RouteNotification(payload)
	h.logger.Info("notification accepted",
		"user_id", payload.UserID,
		"delivery", outcome.String(),
		"collaborator_id", collaboratorID(r),
	)
	WriteAccepted(w, map[string]string{
		"userId":   payload.UserID,
		"delivery": outcome.String(),
	})
}

// BroadcastRequest is the body for arbitrary room broadcasts.
type BroadcastRequest struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// HandleBroadcast sends an arbitrary named event to every connection in a
// room. A no-op for an empty room.
func (h *EventsHandler) HandleBroadcast(w http.ResponseWriter, r *http.Request) {
	room := chi.URLParam(r, "room")
	if room == "" {
		h.errorHandler.Handle(w, r, apperrors.ErrRoomRequired)
		return
	}

	var req BroadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewBadRequestError(err, "Invalid request body"))
		return
	}

	if req.Event == "" {
		h.errorHandler.Handle(w, r, apperrors.ErrEventNameRequired)
		return
	}

	h.gateway.BroadcastToRoom(room, domain.EventType(req.Event), req.Data)
	h.logger.Info("room broadcast accepted",
		"room", room,
		"event", req.Event,
		"collaborator_id", collaboratorID(r),
	)
	WriteAccepted(w, map[string]string{"room": room, "event": req.Event})
}
