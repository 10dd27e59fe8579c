package handler

import (
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sellerops/backend/internal/domain/shared"
	"github.com/sellerops/backend/internal/infrastructure/fanout"
)

// EventsHandler streams fanout notifications over server-sent events
type EventsHandler struct {
	BaseHandler
	bus *fanout.Bus
}

// NewEventsHandler creates an EventsHandler
func NewEventsHandler(bus *fanout.Bus) *EventsHandler {
	return &EventsHandler{bus: bus}
}

// Stream handles GET /api/v1/events. Every caller joins their own user
// channel and the broadcast channel; shop owners additionally pass
// ?shop_id=... to join a shop channel.
func (h *EventsHandler) Stream(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	channels := []string{shared.UserChannel(userID), shared.BroadcastChannel}
	if raw := c.Query("shop_id"); raw != "" {
		shopID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid shop ID")
			return
		}
		channels = append(channels, shared.ShopChannel(shopID))
	}

	sub := h.bus.Subscribe(channels...)
	defer h.bus.Unsubscribe(sub)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case n, ok := <-sub.C:
			if !ok {
				return false
			}
			payload, err := json.Marshal(n)
			if err != nil {
				return true
			}
			c.SSEvent(n.Kind, string(payload))
			return true
		}
	})
}
