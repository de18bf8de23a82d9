package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pusdatin/satudata-backend/internal/http/middleware"
	"github.com/pusdatin/satudata-backend/internal/http/response"
	"github.com/pusdatin/satudata-backend/internal/platform/logger"
	"github.com/pusdatin/satudata-backend/internal/realtime"
)

type EventsHandler struct {
	log *logger.Logger
	hub *realtime.Hub
}

func NewEventsHandler(log *logger.Logger, hub *realtime.Hub) *EventsHandler {
	return &EventsHandler{log: log.With("handler", "EventsHandler"), hub: hub}
}

// GET /api/events
//
// Streams dataset events for the caller's unit; PUSDATIN receives every unit.
func (h *EventsHandler) Stream(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if !actor.Complete() {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("unauthorized"))
		return
	}
	channels := realtime.ChannelsFor(actor)
	if len(channels) == 0 {
		response.RespondError(c, http.StatusForbidden, "forbidden", errors.New("actor has no organizational unit"))
		return
	}

	client := h.hub.NewClient(actor.ID)
	for _, ch := range channels {
		h.hub.AddChannel(client, ch)
	}
	h.log.Debug("event stream open", "client_id", client.ID, "actor_id", actor.ID, "channels", channels)

	h.hub.ServeHTTP(c.Writer, c.Request, client)
	h.hub.CloseClient(client)
}
