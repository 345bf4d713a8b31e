package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appbilling "github.com/propertyhub/backend/internal/application/billing"
	"github.com/propertyhub/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// BillingHandler handles rent cycle and payment API endpoints
type BillingHandler struct {
	BaseHandler
	rentCycleService *appbilling.RentCycleService
	paymentService   *appbilling.PaymentService
	agingService     *appbilling.AgingService
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(
	rentCycleService *appbilling.RentCycleService,
	paymentService *appbilling.PaymentService,
	agingService *appbilling.AgingService,
) *BillingHandler {
	return &BillingHandler{
		rentCycleService: rentCycleService,
		paymentService:   paymentService,
		agingService:     agingService,
	}
}

// RunGenerationRequest represents a request to run rent cycle generation
type RunGenerationRequest struct {
	Month int `json:"month" binding:"required,min=1,max=12"`
	Year  int `json:"year" binding:"required,min=2000,max=2200"`
}

// CreateChargeRequest represents a request to raise a non-rent charge
type CreateChargeRequest struct {
	TenancyID   string  `json:"tenancy_id" binding:"required,uuid"`
	BuildingID  string  `json:"building_id" binding:"required,uuid"`
	PaymentType string  `json:"payment_type" binding:"required,oneof=DEPOSIT MAINTENANCE LATE_FEE OTHER"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	DueDate     string  `json:"due_date" binding:"required"`
	Remark      string  `json:"remark" binding:"max=500"`
}

// MarkPaidRequest represents a request to settle a payment
type MarkPaidRequest struct {
	PaidOn string `json:"paid_on"`
}

// LateFeeRequest represents a request to add a late fee
type LateFeeRequest struct {
	Fee float64 `json:"fee" binding:"required,gt=0"`
}

// PaymentListFilter represents filter options for the payment list
type PaymentListFilter struct {
	BuildingID string `form:"building_id" binding:"omitempty,uuid"`
	TenancyID  string `form:"tenancy_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=PENDING PARTIAL PAID OVERDUE FAILED"`
	Type       string `form:"type" binding:"omitempty,oneof=RENT DEPOSIT MAINTENANCE LATE_FEE OTHER"`
	DueFrom    string `form:"due_from"`
	DueTo      string `form:"due_to"`
}

// RunGeneration runs rent cycle generation for a billing period
func (h *BillingHandler) RunGeneration(c *gin.Context) {
	var req RunGenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.rentCycleService.Run(c.Request.Context(), req.Month, req.Year)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if result.Skipped {
		h.Accepted(c, result)
		return
	}

	h.Success(c, result)
}

// ListRuns returns the recent generation run audit records
func (h *BillingHandler) ListRuns(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.BadRequest(c, "Invalid limit")
			return
		}
		limit = parsed
	}

	runs, err := h.rentCycleService.ListRuns(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, runs)
}

// ListCycles returns the cycle records of a billing period
func (h *BillingHandler) ListCycles(c *gin.Context) {
	month, year, ok := h.parsePeriod(c)
	if !ok {
		return
	}

	cycles, err := h.rentCycleService.ListCycles(c.Request.Context(), month, year)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, cycles)
}

// Sweep runs the overdue sweep immediately
func (h *BillingHandler) Sweep(c *gin.Context) {
	result, err := h.paymentService.SweepOverdue(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if result.Skipped {
		h.Accepted(c, result)
		return
	}

	h.Success(c, result)
}

// CreateCharge raises a non-rent payment against a tenancy
func (h *BillingHandler) CreateCharge(c *gin.Context) {
	var req CreateChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	dueDate, err := time.Parse(dateLayout, req.DueDate)
	if err != nil {
		h.BadRequest(c, "Invalid due_date, expected YYYY-MM-DD")
		return
	}

	payment, err := h.paymentService.CreateCharge(c.Request.Context(), appbilling.CreateChargeInput{
		TenancyID:   uuid.MustParse(req.TenancyID),
		BuildingID:  uuid.MustParse(req.BuildingID),
		PaymentType: billing.PaymentType(req.PaymentType),
		Amount:      decimal.NewFromFloat(req.Amount),
		DueDate:     dueDate,
		Remark:      req.Remark,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, payment)
}

// GetPayment returns a payment by ID
func (h *BillingHandler) GetPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	payment, err := h.paymentService.GetPayment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payment)
}

// ListPayments returns payments matching the filter
func (h *BillingHandler) ListPayments(c *gin.Context) {
	var req PaymentListFilter
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	filter, err := h.buildFilter(req)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payments, err := h.paymentService.ListPayments(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payments)
}

// MarkPaid settles a payment in full
func (h *BillingHandler) MarkPaid(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	var req MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.BindError(c, err)
		return
	}

	var paidOn time.Time
	if req.PaidOn != "" {
		paidOn, err = time.Parse(dateLayout, req.PaidOn)
		if err != nil {
			h.BadRequest(c, "Invalid paid_on, expected YYYY-MM-DD")
			return
		}
	}

	payment, err := h.paymentService.MarkPaid(c.Request.Context(), id, paidOn)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payment)
}

// MarkPartial records a partial settlement
func (h *BillingHandler) MarkPartial(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	payment, err := h.paymentService.MarkPartial(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payment)
}

// ApplyLateFee adds a late fee to a payment
func (h *BillingHandler) ApplyLateFee(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	var req LateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	payment, err := h.paymentService.ApplyLateFee(c.Request.Context(), id, decimal.NewFromFloat(req.Fee))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payment)
}

// AgingReport returns the outstanding payment aging report
func (h *BillingHandler) AgingReport(c *gin.Context) {
	var req PaymentListFilter
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	filter, err := h.buildFilter(req)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	report, err := h.agingService.BuildReport(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}

// CollectionRate returns the rent collection rate for a billing period
func (h *BillingHandler) CollectionRate(c *gin.Context) {
	month, year, ok := h.parsePeriod(c)
	if !ok {
		return
	}

	var buildingID *uuid.UUID
	if raw := c.Query("building_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid building ID format")
			return
		}
		buildingID = &parsed
	}

	rate, err := h.agingService.CollectionRateForPeriod(c.Request.Context(), month, year, buildingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{
		"month":           month,
		"year":            year,
		"collection_rate": rate,
	})
}

func (h *BillingHandler) parsePeriod(c *gin.Context) (int, int, bool) {
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		h.BadRequest(c, "Invalid month, expected 1-12")
		return 0, 0, false
	}
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 2000 || year > 2200 {
		h.BadRequest(c, "Invalid year")
		return 0, 0, false
	}
	return month, year, true
}

func (h *BillingHandler) buildFilter(req PaymentListFilter) (billing.PaymentFilter, error) {
	var filter billing.PaymentFilter
	if req.BuildingID != "" {
		id := uuid.MustParse(req.BuildingID)
		filter.BuildingID = &id
	}
	if req.TenancyID != "" {
		id := uuid.MustParse(req.TenancyID)
		filter.TenancyID = &id
	}
	if req.Status != "" {
		status := billing.PaymentStatus(req.Status)
		filter.Status = &status
	}
	if req.Type != "" {
		paymentType := billing.PaymentType(req.Type)
		filter.Type = &paymentType
	}
	if req.DueFrom != "" {
		from, err := time.Parse(dateLayout, req.DueFrom)
		if err != nil {
			return filter, err
		}
		filter.DueFrom = &from
	}
	if req.DueTo != "" {
		to, err := time.Parse(dateLayout, req.DueTo)
		if err != nil {
			return filter, err
		}
		filter.DueTo = &to
	}
	return filter, nil
}

// RegisterRoutes registers billing routes
func (h *BillingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	billingGroup := rg.Group("/billing")
	{
		billingGroup.POST("/runs", h.RunGeneration)
		billingGroup.GET("/runs", h.ListRuns)
		billingGroup.GET("/cycles", h.ListCycles)
		billingGroup.POST("/sweep", h.Sweep)
	}

	payments := rg.Group("/payments")
	{
		payments.POST("", h.CreateCharge)
		payments.GET("", h.ListPayments)
		payments.GET("/:id", h.GetPayment)
		payments.POST("/:id/pay", h.MarkPaid)
		payments.POST("/:id/partial", h.MarkPartial)
		payments.POST("/:id/late-fee", h.ApplyLateFee)
	}

	reports := rg.Group("/reports")
	{
		reports.GET("/aging", h.AgingReport)
		reports.GET("/collection-rate", h.CollectionRate)
	}
}
