package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/lookupdesk/backend/internal/infrastructure/realtime"
)

// RealtimeHandler upgrades HTTP requests to websocket push connections.
// Authentication happens in-band via the first frame, so the route is
// registered outside the JWT middleware.
type RealtimeHandler struct {
	hub *realtime.Hub
}

// NewRealtimeHandler creates a new realtime handler
func NewRealtimeHandler(hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{hub: hub}
}

// Serve hands the connection over to the hub
func (h *RealtimeHandler) Serve(c *gin.Context) {
	h.hub.HandleConnection(c.Writer, c.Request)
}
