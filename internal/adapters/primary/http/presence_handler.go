package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/certdrive/realtime-gateway/internal/core/errors"
	"github.com/certdrive/realtime-gateway/internal/core/ports"
)

// PresenceHandler exposes read-only presence queries to collaborators.
type PresenceHandler struct {
	gateway      ports.EventGateway
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewPresenceHandler creates a new presence handler
func NewPresenceHandler(gateway ports.EventGateway, errorHandler *ErrorHandler, logger *slog.Logger) *PresenceHandler {
	return &PresenceHandler{
		gateway:      gateway,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// RegisterRoutes registers presence query endpoints
func (h *PresenceHandler) RegisterRoutes(r chi.Router) {
	r.Get("/count", h.HandleCount)
	r.Get("/{userID}", h.HandleUserPresence)
}

// HandleCount returns the number of identified users currently connected.
func (h *PresenceHandler) HandleCount(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, map[string]int{"count": h.gateway.ConnectedUsersCount()})
}

// HandleUserPresence reports whether one user is online.
func (h *PresenceHandler) HandleUserPresence(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		h.errorHandler.Handle(w, r, apperrors.ErrUserIDRequired)
		return
	}

	WriteSuccess(w, map[string]interface{}{
		"userId": userID,
		"online": h.gateway.IsUserOnline(userID),
	})
}
