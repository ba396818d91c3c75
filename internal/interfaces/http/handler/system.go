package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/fieldops/backend/internal/infrastructure/logger"
	"github.com/fieldops/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// healthCheckTimeout bounds the database probe of GET /health
const healthCheckTimeout = 2 * time.Second

// Pinger reports whether a dependency is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// SystemHandler serves the liveness and health routes
type SystemHandler struct {
	BaseHandler
	db Pinger
}

// NewSystemHandler creates a SystemHandler. db may be nil when no store is wired.
func NewSystemHandler(db Pinger) *SystemHandler {
	return &SystemHandler{db: db}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/", h.Alive)
	rg.GET("/health", h.Health)
}

// Alive handles GET /
func (h *SystemHandler) Alive(c *gin.Context) {
	c.String(http.StatusOK, dto.MsgAlive)
}

// Health handles GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusOK, dto.HealthResponse{Status: dto.HealthHealthy})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		logger.GetGinLogger(c).Warn("database health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{
			Status:   dto.HealthUnhealthy,
			Database: dto.HealthDatabaseBad,
		})
		return
	}
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:   dto.HealthHealthy,
		Database: dto.HealthDatabaseOK,
	})
}
