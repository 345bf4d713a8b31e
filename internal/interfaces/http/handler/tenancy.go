package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appleasing "github.com/propertyhub/backend/internal/application/leasing"
	"github.com/propertyhub/backend/internal/domain/leasing"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// TenancyHandler handles tenancy-related API endpoints
type TenancyHandler struct {
	BaseHandler
	tenancyService *appleasing.TenancyService
}

// NewTenancyHandler creates a new TenancyHandler
func NewTenancyHandler(tenancyService *appleasing.TenancyService) *TenancyHandler {
	return &TenancyHandler{
		tenancyService: tenancyService,
	}
}

// CreateTenancyRequest represents a request to record a lease agreement
type CreateTenancyRequest struct {
	UnitID     string  `json:"unit_id" binding:"required,uuid"`
	TenantID   string  `json:"tenant_id" binding:"required,uuid"`
	StartDate  string  `json:"start_date" binding:"required"`
	EndDate    string  `json:"end_date"`
	RentAmount float64 `json:"rent_amount" binding:"required,gt=0"`
}

// ExecuteTenancyRequest represents a request to put an agreement in force
type ExecuteTenancyRequest struct {
	EndDate string `json:"end_date"`
}

// TerminateTenancyRequest represents a request to end an agreement early
type TerminateTenancyRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// MoveDateRequest carries a move-in or move-out date
type MoveDateRequest struct {
	Date string `json:"date" binding:"required"`
}

// Create records a new pending tenancy agreement
func (h *TenancyHandler) Create(c *gin.Context) {
	var req CreateTenancyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		h.BadRequest(c, "Invalid start_date, expected YYYY-MM-DD")
		return
	}
	var endDate *time.Time
	if req.EndDate != "" {
		parsed, err := time.Parse(dateLayout, req.EndDate)
		if err != nil {
			h.BadRequest(c, "Invalid end_date, expected YYYY-MM-DD")
			return
		}
		endDate = &parsed
	}

	tenancy, err := h.tenancyService.CreateTenancy(c.Request.Context(), appleasing.CreateTenancyInput{
		UnitID:     uuid.MustParse(req.UnitID),
		TenantID:   uuid.MustParse(req.TenantID),
		StartDate:  startDate,
		EndDate:    endDate,
		RentAmount: decimal.NewFromFloat(req.RentAmount),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, tenancy)
}

// Get returns a tenancy with its temporal state
func (h *TenancyHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tenancy ID format")
		return
	}

	classified, err := h.tenancyService.ClassifyTenancy(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, classified)
}

// ListByUnit returns the classified tenancy history of a unit
func (h *TenancyHandler) ListByUnit(c *gin.Context) {
	unitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid unit ID format")
		return
	}

	tenancies, err := h.tenancyService.ListByUnit(c.Request.Context(), unitID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tenancies)
}

// Execute puts a pending agreement in force
func (h *TenancyHandler) Execute(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tenancy ID format")
		return
	}

	var req ExecuteTenancyRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.BindError(c, err)
		return
	}

	var endDate *time.Time
	if req.EndDate != "" {
		parsed, err := time.Parse(dateLayout, req.EndDate)
		if err != nil {
			h.BadRequest(c, "Invalid end_date, expected YYYY-MM-DD")
			return
		}
		endDate = &parsed
	}

	tenancy, err := h.tenancyService.ExecuteTenancy(c.Request.Context(), id, endDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tenancy)
}

// Terminate ends an executed agreement early
func (h *TenancyHandler) Terminate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tenancy ID format")
		return
	}

	var req TerminateTenancyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	tenancy, err := h.tenancyService.TerminateTenancy(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tenancy)
}

// MoveIn stamps the physical move-in date
func (h *TenancyHandler) MoveIn(c *gin.Context) {
	h.recordMove(c, h.tenancyService.RecordMoveIn)
}

// MoveOut stamps the physical move-out date
func (h *TenancyHandler) MoveOut(c *gin.Context) {
	h.recordMove(c, h.tenancyService.RecordMoveOut)
}

func (h *TenancyHandler) recordMove(c *gin.Context, record func(ctx context.Context, id uuid.UUID, date time.Time) (*leasing.Tenancy, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tenancy ID format")
		return
	}

	var req MoveDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		h.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
		return
	}

	tenancy, err := record(c.Request.Context(), id, date)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tenancy)
}

// RegisterRoutes registers tenancy routes
func (h *TenancyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	tenancies := rg.Group("/tenancies")
	{
		tenancies.POST("", h.Create)
		tenancies.GET("/:id", h.Get)
		tenancies.POST("/:id/execute", h.Execute)
		tenancies.POST("/:id/terminate", h.Terminate)
		tenancies.POST("/:id/move-in", h.MoveIn)
		tenancies.POST("/:id/move-out", h.MoveOut)
	}

	units := rg.Group("/units")
	{
		units.GET("/:id/tenancies", h.ListByUnit)
	}
}
