package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tillnow2/hrms-lite-be/internal/service/dashboard"
)

// Version is reported by the root liveness endpoint.
const Version = "1.0.0"

// DashboardHandler serves the aggregate statistics.
type DashboardHandler struct {
	svc    dashboard.Aggregator
	logger *zap.Logger
}

// NewDashboardHandler constructs the HTTP handler adapter.
func NewDashboardHandler(svc dashboard.Aggregator, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{svc: svc, logger: logger}
}

// Stats returns the dashboard snapshot.
func (h *DashboardHandler) Stats(c *gin.Context) {
	snapshot, err := h.svc.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, DataResponse{Success: true, Data: snapshot})
}

// Root reports that the API is up.
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "HRMS Lite API is running",
		"version": Version,
	})
}

// Health is the liveness probe.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "HRMS Lite Backend"})
}
