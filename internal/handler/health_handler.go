package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cursolab/cursolab/pkg/redis"
)

// HealthHandler handles health check HTTP requests
type HealthHandler struct {
	redis *redis.Client
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(redis *redis.Client) *HealthHandler {
	return &HealthHandler{redis: redis}
}

// Health returns basic health status
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "cursolab",
	})
}

// Ready checks if the service is ready to accept traffic
// GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.redis.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "not_ready",
			"service": "cursolab",
			"redis":   "disconnected",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"service": "cursolab",
		"redis":   "connected",
	})
}
