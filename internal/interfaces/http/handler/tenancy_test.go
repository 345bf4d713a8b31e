package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appleasing "github.com/propertyhub/backend/internal/application/leasing"
	"github.com/propertyhub/backend/internal/domain/billing"
	"github.com/propertyhub/backend/internal/domain/leasing"
	"github.com/propertyhub/backend/internal/domain/shared"
	"github.com/propertyhub/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockUnitRepository implements leasing.UnitRepository for testing
type MockUnitRepository struct {
	mock.Mock
}

func (m *MockUnitRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.Unit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leasing.Unit), args.Error(1)
}

func (m *MockUnitRepository) FindByBuilding(ctx context.Context, buildingID uuid.UUID) ([]leasing.Unit, error) {
	args := m.Called(ctx, buildingID)
	return args.Get(0).([]leasing.Unit), args.Error(1)
}

func (m *MockUnitRepository) ListWithTenancies(ctx context.Context, buildingID uuid.UUID) ([]leasing.UnitWithTenancies, error) {
	args := m.Called(ctx, buildingID)
	return args.Get(0).([]leasing.UnitWithTenancies), args.Error(1)
}

func (m *MockUnitRepository) Save(ctx context.Context, unit *leasing.Unit) error {
	args := m.Called(ctx, unit)
	return args.Error(0)
}

// MockTenancyRepository implements leasing.TenancyRepository for testing
type MockTenancyRepository struct {
	mock.Mock
}

func (m *MockTenancyRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.Tenancy, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leasing.Tenancy), args.Error(1)
}

func (m *MockTenancyRepository) FindByUnit(ctx context.Context, unitID uuid.UUID) ([]leasing.Tenancy, error) {
	args := m.Called(ctx, unitID)
	return args.Get(0).([]leasing.Tenancy), args.Error(1)
}

func (m *MockTenancyRepository) FindActiveOn(ctx context.Context, date time.Time) ([]leasing.Tenancy, error) {
	args := m.Called(ctx, date)
	return args.Get(0).([]leasing.Tenancy), args.Error(1)
}

func (m *MockTenancyRepository) FindExecutedOverlapping(ctx context.Context, unitID uuid.UUID, start, end time.Time) ([]leasing.Tenancy, error) {
	args := m.Called(ctx, unitID, start, end)
	return args.Get(0).([]leasing.Tenancy), args.Error(1)
}

func (m *MockTenancyRepository) FindExpiredCandidates(ctx context.Context, before time.Time) ([]leasing.Tenancy, error) {
	args := m.Called(ctx, before)
	return args.Get(0).([]leasing.Tenancy), args.Error(1)
}

func (m *MockTenancyRepository) Save(ctx context.Context, tenancy *leasing.Tenancy) error {
	args := m.Called(ctx, tenancy)
	return args.Error(0)
}

// MockJobRunRepository implements billing.JobRunRepository for testing
type MockJobRunRepository struct {
	mock.Mock
}

func (m *MockJobRunRepository) Save(ctx context.Context, run *billing.JobRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockJobRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.JobRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.JobRun), args.Error(1)
}

func (m *MockJobRunRepository) ListByType(ctx context.Context, jobType billing.JobType, limit int) ([]billing.JobRun, error) {
	args := m.Called(ctx, jobType, limit)
	return args.Get(0).([]billing.JobRun), args.Error(1)
}

// Test setup helpers

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func setupTenancyHandler(tenancyRepo *MockTenancyRepository, unitRepo *MockUnitRepository) *TenancyHandler {
	runRepo := new(MockJobRunRepository)
	service := appleasing.NewTenancyService(tenancyRepo, unitRepo, runRepo, shared.NewSystemClock(time.UTC), zap.NewNop())
	return NewTenancyHandler(service)
}

func createTestUnit(buildingID uuid.UUID) *leasing.Unit {
	unit, _ := leasing.NewUnit(buildingID, "12B",
		valueobject.NewMoneyUSDFromFloat(1500), valueobject.NewMoneyUSDFromFloat(1500))
	return unit
}

func createPendingTenancy(unitID uuid.UUID) *leasing.Tenancy {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	tenancy, _ := leasing.NewTenancy(unitID, uuid.New(), uuid.New(),
		start, &end, valueobject.NewMoneyUSDFromFloat(1500))
	return tenancy
}

// Tests

func TestTenancyHandler_Create_Success(t *testing.T) {
	tenancyRepo := new(MockTenancyRepository)
	unitRepo := new(MockUnitRepository)
	handler := setupTenancyHandler(tenancyRepo, unitRepo)

	unitID := uuid.New()
	unit := createTestUnit(uuid.New())
	unit.ID = unitID

	unitRepo.On("FindByID", mock.Anything, unitID).Return(unit, nil)
	tenancyRepo.On("Save", mock.Anything, mock.AnythingOfType("*leasing.Tenancy")).Return(nil)

	router := setupTestRouter()
	router.POST("/tenancies", handler.Create)

	reqBody := CreateTenancyRequest{
		UnitID:     unitID.String(),
		TenantID:   uuid.New().String(),
		StartDate:  "2026-01-01",
		EndDate:    "2026-12-31",
		RentAmount: 1500,
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/tenancies", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	unitRepo.AssertExpectations(t)
	tenancyRepo.AssertExpectations(t)
}

func TestTenancyHandler_Create_UnitNotFound(t *testing.T) {
	tenancyRepo := new(MockTenancyRepository)
	unitRepo := new(MockUnitRepository)
	handler := setupTenancyHandler(tenancyRepo, unitRepo)

	unitID := uuid.New()
	unitRepo.On("FindByID", mock.Anything, unitID).Return(nil, nil)

	router := setupTestRouter()
	router.POST("/tenancies", handler.Create)

	reqBody := CreateTenancyRequest{
		UnitID:     unitID.String(),
		TenantID:   uuid.New().String(),
		StartDate:  "2026-01-01",
		RentAmount: 1500,
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/tenancies", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	unitRepo.AssertExpectations(t)
}

func TestTenancyHandler_Create_InvalidJSON(t *testing.T) {
	handler := setupTenancyHandler(new(MockTenancyRepository), new(MockUnitRepository))

	router := setupTestRouter()
	router.POST("/tenancies", handler.Create)

	req := httptest.NewRequest(http.MethodPost, "/tenancies", bytes.NewBufferString("not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTenancyHandler_Create_InvalidDate(t *testing.T) {
	handler := setupTenancyHandler(new(MockTenancyRepository), new(MockUnitRepository))

	router := setupTestRouter()
	router.POST("/tenancies", handler.Create)

	reqBody := CreateTenancyRequest{
		UnitID:     uuid.New().String(),
		TenantID:   uuid.New().String(),
		StartDate:  "01/01/2026",
		RentAmount: 1500,
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/tenancies", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTenancyHandler_Get_Success(t *testing.T) {
	tenancyRepo := new(MockTenancyRepository)
	handler := setupTenancyHandler(tenancyRepo, new(MockUnitRepository))

	tenancy := createPendingTenancy(uuid.New())
	tenancyRepo.On("FindByID", mock.Anything, tenancy.ID).Return(tenancy, nil)

	router := setupTestRouter()
	router.GET("/tenancies/:id", handler.Get)

	req := httptest.NewRequest(http.MethodGet, "/tenancies/"+tenancy.ID.String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			State string `json:"state"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "PENDING", resp.Data.State)
	tenancyRepo.AssertExpectations(t)
}

func TestTenancyHandler_Get_NotFound(t *testing.T) {
	tenancyRepo := new(MockTenancyRepository)
	handler := setupTenancyHandler(tenancyRepo, new(MockUnitRepository))

	id := uuid.New()
	tenancyRepo.On("FindByID", mock.Anything, id).Return(nil, nil)

	router := setupTestRouter()
	router.GET("/tenancies/:id", handler.Get)

	req := httptest.NewRequest(http.MethodGet, "/tenancies/"+id.String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTenancyHandler_Get_InvalidID(t *testing.T) {
	handler := setupTenancyHandler(new(MockTenancyRepository), new(MockUnitRepository))

	router := setupTestRouter()
	router.GET("/tenancies/:id", handler.Get)

	req := httptest.NewRequest(http.MethodGet, "/tenancies/not-a-uuid", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTenancyHandler_Execute_Success(t *testing.T) {
	tenancyRepo := new(MockTenancyRepository)
	handler := setupTenancyHandler(tenancyRepo, new(MockUnitRepository))

	tenancy := createPendingTenancy(uuid.New())
	tenancyRepo.On("FindByID", mock.Anything, tenancy.ID).Return(tenancy, nil)
	tenancyRepo.On("FindExecutedOverlapping", mock.Anything, tenancy.UnitID, mock.Anything, mock.Anything).
		Return([]leasing.Tenancy{}, nil)
	tenancyRepo.On("Save", mock.Anything, mock.AnythingOfType("*leasing.Tenancy")).Return(nil)

	router := setupTestRouter()
	router.POST("/tenancies/:id/execute", handler.Execute)

	req := httptest.NewRequest(http.MethodPost, "/tenancies/"+tenancy.ID.String()+"/execute", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	tenancyRepo.AssertExpectations(t)
}

func TestTenancyHandler_Execute_UnitOccupied(t *testing.T) {
	tenancyRepo := new(MockTenancyRepository)
	handler := setupTenancyHandler(tenancyRepo, new(MockUnitRepository))

	tenancy := createPendingTenancy(uuid.New())
	other := createPendingTenancy(tenancy.UnitID)

	tenancyRepo.On("FindByID", mock.Anything, tenancy.ID).Return(tenancy, nil)
	tenancyRepo.On("FindExecutedOverlapping", mock.Anything, tenancy.UnitID, mock.Anything, mock.Anything).
		Return([]leasing.Tenancy{*other}, nil)

	router := setupTestRouter()
	router.POST("/tenancies/:id/execute", handler.Execute)

	req := httptest.NewRequest(http.MethodPost, "/tenancies/"+tenancy.ID.String()+"/execute", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	tenancyRepo.AssertExpectations(t)
}

func TestTenancyHandler_Terminate_MissingReason(t *testing.T) {
	handler := setupTenancyHandler(new(MockTenancyRepository), new(MockUnitRepository))

	router := setupTestRouter()
	router.POST("/tenancies/:id/terminate", handler.Terminate)

	req := httptest.NewRequest(http.MethodPost, "/tenancies/"+uuid.New().String()+"/terminate",
		bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTenancyHandler_MoveIn_Success(t *testing.T) {
	tenancyRepo := new(MockTenancyRepository)
	handler := setupTenancyHandler(tenancyRepo, new(MockUnitRepository))

	tenancy := createPendingTenancy(uuid.New())
	assert.NoError(t, tenancy.Execute(time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)))

	tenancyRepo.On("FindByID", mock.Anything, tenancy.ID).Return(tenancy, nil)
	tenancyRepo.On("Save", mock.Anything, mock.AnythingOfType("*leasing.Tenancy")).Return(nil)

	router := setupTestRouter()
	router.POST("/tenancies/:id/move-in", handler.MoveIn)

	req := httptest.NewRequest(http.MethodPost, "/tenancies/"+tenancy.ID.String()+"/move-in",
		bytes.NewBufferString(`{"date":"2026-01-02"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	tenancyRepo.AssertExpectations(t)
}
