package http

import (
	"net/http"
	"time"

	"chromacast/internal/core/ports"
	"chromacast/internal/core/services"

	"github.com/gin-gonic/gin"
)

// StatusHandler serves the operational surface of the broadcaster:
// liveness, readiness and a stats snapshot. The frame data itself never
// flows through HTTP; consumers take it over TCP or WebSocket.
type StatusHandler struct {
	pipeline  *services.CapturePipeline
	registry  ports.Broadcaster
	startTime time.Time
}

func NewStatusHandler(pipeline *services.CapturePipeline, registry ports.Broadcaster) *StatusHandler {
	return &StatusHandler{
		pipeline:  pipeline,
		registry:  registry,
		startTime: time.Now(),
	}
}

func (h *StatusHandler) SetupRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
	router.GET("/stats", h.Stats)
}

func (h *StatusHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
		"uptime":    time.Since(h.startTime).String(),
	})
}

// Ready reports ready once the pipeline has its background frame and has
// started counting frames. Before that a consumer would connect and see
// nothing, so load balancers should hold traffic off.
func (h *StatusHandler) Ready(c *gin.Context) {
	stats := h.pipeline.Stats()
	if stats.FramesProcessed == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "not_ready",
			"timestamp": time.Now(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now(),
	})
}

func (h *StatusHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"pipeline":  h.pipeline.Stats(),
		"consumers": h.registry.Len(),
		"uptime":    time.Since(h.startTime).String(),
	})
}
