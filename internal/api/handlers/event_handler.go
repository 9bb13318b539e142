package handlers

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/idalmas/chatterbox-be/internal/apperrors"
	"github.com/idalmas/chatterbox-be/internal/services"
)

// EventHandler handles HTTP requests for the auth audit trail.
type EventHandler struct {
	service services.EventServiceProvider
	dev     bool
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(service services.EventServiceProvider, dev bool) *EventHandler {
	return &EventHandler{service: service, dev: dev}
}

// GetRecent handles the request to get recent auth events.
func (h *EventHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	limitStr := r.URL.Query().Get("limit")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 20 // Default limit
	}

	events, err := h.service.GetRecentEvents(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to retrieve events")
		respondError(w, apperrors.Wrap(apperrors.Dependency, apperrors.CodeInternal, err), h.dev)
		return
	}

	respondJSON(w, http.StatusOK, events)
}
