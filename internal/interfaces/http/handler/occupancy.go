package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appleasing "github.com/propertyhub/backend/internal/application/leasing"
)

// OccupancyHandler handles occupancy reporting endpoints
type OccupancyHandler struct {
	BaseHandler
	occupancyService *appleasing.OccupancyService
}

// NewOccupancyHandler creates a new OccupancyHandler
func NewOccupancyHandler(occupancyService *appleasing.OccupancyService) *OccupancyHandler {
	return &OccupancyHandler{
		occupancyService: occupancyService,
	}
}

// BuildingReport returns the derived occupancy report for a building
func (h *OccupancyHandler) BuildingReport(c *gin.Context) {
	buildingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid building ID format")
		return
	}

	report, err := h.occupancyService.BuildingReport(c.Request.Context(), buildingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}

// RegisterRoutes registers occupancy routes
func (h *OccupancyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	buildings := rg.Group("/buildings")
	{
		buildings.GET("/:id/occupancy", h.BuildingReport)
	}
}
