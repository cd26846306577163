package handlers

import (
	"errors"
	"net/http"

	"github.com/placement-tracker/apiserver/internal/services"
	"github.com/placement-tracker/apiserver/internal/store"
)

// EventsHandler receives client-side events.
type EventsHandler struct {
	notifier *services.Notifier
}

// NewEventsHandler constructs an EventsHandler.
func NewEventsHandler(notifier *services.Notifier) *EventsHandler {
	return &EventsHandler{notifier: notifier}
}

// AppOpenResponse reports whether an app-open event dispatched a message.
type AppOpenResponse struct {
	OK   bool `json:"ok"`
	Sent bool `json:"sent"`
}

// AppOpen handles an app-open event for the authenticated user.
func (h *EventsHandler) AppOpen(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "No token")
		return
	}

	sent, err := h.notifier.AppOpened(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Event failed")
		return
	}

	writeJSON(w, http.StatusOK, AppOpenResponse{OK: true, Sent: sent})
}
