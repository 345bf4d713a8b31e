package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/propertyhub/backend/internal/infrastructure/persistence"
	"github.com/propertyhub/backend/internal/interfaces/http/dto"
)

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	db        *persistence.Database
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db *persistence.Database) *SystemHandler {
	return &SystemHandler{
		db:        db,
		startTime: time.Now(),
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// GetSystemInfo returns basic system information including version and uptime
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      "PropertyHub Backend API",
		Version:   "1.0.0",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(info))
}

// Health reports service and database health
func (h *SystemHandler) Health(c *gin.Context) {
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(dto.ErrCodeInternal, "database unreachable"))
			return
		}
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}))
}

// RegisterRoutes registers system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	system := rg.Group("/system")
	{
		system.GET("/info", h.GetSystemInfo)
		system.GET("/health", h.Health)
	}
}
