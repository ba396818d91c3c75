package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// LiveHandler mounts the live channel at GET /ws
type LiveHandler struct {
	hub http.Handler
}

// NewLiveHandler creates a LiveHandler serving hub
func NewLiveHandler(hub http.Handler) *LiveHandler {
	return &LiveHandler{hub: hub}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *LiveHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws", gin.WrapH(h.hub))
}
