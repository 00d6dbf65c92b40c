package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	lookupapp "github.com/lookupdesk/backend/internal/application/lookup"
	"github.com/lookupdesk/backend/internal/domain/lookup"
	"github.com/lookupdesk/backend/internal/domain/shared"
	"github.com/lookupdesk/backend/internal/interfaces/http/middleware"
)

// injectIdentity stands in for the JWT middleware in handler tests
func injectIdentity(userID uuid.UUID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.JWTUserIDKey, userID.String())
		c.Set(middleware.JWTRoleKey, role)
		c.Next()
	}
}

func newRequestRouter(requestRepo *MockServiceRequestRepository, ledgerRepo *MockDeliveredDataRepository, userID uuid.UUID, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	publisher := new(MockEventPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()

	service := lookupapp.NewServiceRequestService(requestRepo, ledgerRepo, publisher, zap.NewNop())
	h := NewServiceRequestHandler(service)

	r := gin.New()
	r.Use(injectIdentity(userID, role))
	r.GET("/api/v1/lookup/prices", h.Prices)
	r.POST("/api/v1/lookup/requests", h.Submit)
	r.GET("/api/v1/lookup/requests", h.ListMine)
	r.GET("/api/v1/lookup/requests/:id", h.GetByID)
	r.GET("/api/v1/admin/requests", h.ListAll)
	r.GET("/api/v1/admin/stats", h.Stats)
	r.PATCH("/api/v1/admin/requests/:id/status", h.SetStatus)
	r.DELETE("/api/v1/admin/requests/:id", h.Delete)
	return r
}

func storedPhoneRequest(t *testing.T, userID uuid.UUID) *lookup.ServiceRequest {
	t.Helper()
	req, err := lookup.NewServiceRequest(userID, lookup.ServiceRequestDraft{
		SourceType:    lookup.SourcePhoneNumber,
		PhoneNumber:   "01712345678",
		DataNeeded:    []lookup.DataCategory{lookup.CategoryLocation},
		ServiceTypes:  []lookup.ServiceKey{lookup.ServiceNumberToLocation},
		ServiceCharge: decimal.NewFromInt(1000),
		PaymentMethod: "bkash",
		TrxID:         "TRX10293847",
	})
	require.NoError(t, err)
	return req
}

func validSubmitBody() SubmitServiceRequestRequest {
	return SubmitServiceRequestRequest{
		SourceType:    "phoneNumber",
		PhoneNumber:   "01712345678",
		DataNeeded:    []string{"location"},
		ServiceTypes:  []string{"numberToLocation"},
		ServiceCharge: decimal.NewFromInt(1000),
		PaymentMethod: "bkash",
		TrxID:         "TRX10293847",
	}
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		require.NoError(t, err)
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestServiceRequestHandlerSubmit(t *testing.T) {
	userID := uuid.New()

	t.Run("accepts a valid phone number request", func(t *testing.T) {
		requestRepo := new(MockServiceRequestRepository)
		requestRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		r := newRequestRouter(requestRepo, new(MockDeliveredDataRepository), userID, "customer")
		w := doJSON(t, r, http.MethodPost, "/api/v1/lookup/requests", validSubmitBody())

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"Pending"`)
		assert.Contains(t, w.Body.String(), userID.String())
		requestRepo.AssertExpectations(t)
	})

	t.Run("rejects a charge that does not match the price table", func(t *testing.T) {
		r := newRequestRouter(new(MockServiceRequestRepository), new(MockDeliveredDataRepository), userID, "customer")

		body := validSubmitBody()
		body.ServiceCharge = decimal.NewFromInt(900)
		w := doJSON(t, r, http.MethodPost, "/api/v1/lookup/requests", body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "SERVICE_CHARGE_MISMATCH")
	})

	t.Run("rejects a short transaction ID at binding", func(t *testing.T) {
		r := newRequestRouter(new(MockServiceRequestRepository), new(MockDeliveredDataRepository), userID, "customer")

		body := validSubmitBody()
		body.TrxID = "TRX"
		w := doJSON(t, r, http.MethodPost, "/api/v1/lookup/requests", body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	})
}

func TestServiceRequestHandlerListMine(t *testing.T) {
	userID := uuid.New()
	stored := storedPhoneRequest(t, userID)

	requestRepo := new(MockServiceRequestRepository)
	requestRepo.On("FindByUserID", mock.Anything, userID, mock.Anything).Return([]lookup.ServiceRequest{*stored}, nil)
	requestRepo.On("CountByUserID", mock.Anything, userID, mock.Anything).Return(int64(1), nil)

	r := newRequestRouter(requestRepo, new(MockDeliveredDataRepository), userID, "customer")
	w := doJSON(t, r, http.MethodGet, "/api/v1/lookup/requests?page=1&page_size=10", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    []lookupapp.ServiceRequestView
		Meta    struct {
			Total int64 `json:"total"`
			Page  int   `json:"page"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, stored.ID, resp.Data[0].ID)
	assert.Equal(t, int64(1), resp.Meta.Total)
	assert.Equal(t, 1, resp.Meta.Page)
}

func TestServiceRequestHandlerGetByID(t *testing.T) {
	ownerID := uuid.New()
	stored := storedPhoneRequest(t, ownerID)

	t.Run("owner reads own request", func(t *testing.T) {
		requestRepo := new(MockServiceRequestRepository)
		requestRepo.On("FindByID", mock.Anything, stored.ID).Return(stored, nil)

		r := newRequestRouter(requestRepo, new(MockDeliveredDataRepository), ownerID, "customer")
		w := doJSON(t, r, http.MethodGet, "/api/v1/lookup/requests/"+stored.ID.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), stored.ID.String())
	})

	t.Run("another customer is forbidden", func(t *testing.T) {
		requestRepo := new(MockServiceRequestRepository)
		requestRepo.On("FindByID", mock.Anything, stored.ID).Return(stored, nil)

		r := newRequestRouter(requestRepo, new(MockDeliveredDataRepository), uuid.New(), "customer")
		w := doJSON(t, r, http.MethodGet, "/api/v1/lookup/requests/"+stored.ID.String(), nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("moderator reads any request", func(t *testing.T) {
		requestRepo := new(MockServiceRequestRepository)
		requestRepo.On("FindByID", mock.Anything, stored.ID).Return(stored, nil)

		r := newRequestRouter(requestRepo, new(MockDeliveredDataRepository), uuid.New(), "moderator")
		w := doJSON(t, r, http.MethodGet, "/api/v1/lookup/requests/"+stored.ID.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("malformed id is a bad request", func(t *testing.T) {
		r := newRequestRouter(new(MockServiceRequestRepository), new(MockDeliveredDataRepository), ownerID, "customer")
		w := doJSON(t, r, http.MethodGet, "/api/v1/lookup/requests/not-a-uuid", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestServiceRequestHandlerPrices(t *testing.T) {
	r := newRequestRouter(new(MockServiceRequestRepository), new(MockDeliveredDataRepository), uuid.New(), "customer")
	w := doJSON(t, r, http.MethodGet, "/api/v1/lookup/prices", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data lookupapp.PriceView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1500), resp.Data.Prices["imeiToNumber"])
	assert.Equal(t, int64(1000), resp.Data.Prices["numberToLocation"])
	assert.Equal(t, int64(3500), resp.Data.Prices["numberToCallList6Months"])
	assert.Equal(t, "BDT", resp.Data.Currency)
}

func TestServiceRequestHandlerStats(t *testing.T) {
	requestRepo := new(MockServiceRequestRepository)
	requestRepo.On("CountByStatus", mock.Anything, lookup.StatusPending).Return(int64(4), nil)
	requestRepo.On("CountByStatus", mock.Anything, lookup.StatusApproved).Return(int64(2), nil)
	requestRepo.On("CountByStatus", mock.Anything, lookup.StatusCompleted).Return(int64(9), nil)
	requestRepo.On("CountByStatus", mock.Anything, lookup.StatusRejected).Return(int64(1), nil)

	r := newRequestRouter(requestRepo, new(MockDeliveredDataRepository), uuid.New(), "moderator")
	w := doJSON(t, r, http.MethodGet, "/api/v1/admin/stats", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data lookupapp.StatsView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(16), resp.Data.Total)
	assert.Equal(t, int64(9), resp.Data.ByStatus["Completed"])
}

func TestServiceRequestHandlerSetStatus(t *testing.T) {
	ownerID := uuid.New()
	stored := storedPhoneRequest(t, ownerID)

	t.Run("approves a pending request", func(t *testing.T) {
		requestRepo := new(MockServiceRequestRepository)
		requestRepo.On("FindByID", mock.Anything, stored.ID).Return(stored, nil)
		requestRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		r := newRequestRouter(requestRepo, new(MockDeliveredDataRepository), uuid.New(), "moderator")
		w := doJSON(t, r, http.MethodPatch, "/api/v1/admin/requests/"+stored.ID.String()+"/status", SetStatusRequest{
			Status: "Approved",
			Notes:  "payment verified",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"Approved"`)
	})

	t.Run("rejection without a note is refused", func(t *testing.T) {
		requestRepo := new(MockServiceRequestRepository)
		requestRepo.On("FindByID", mock.Anything, stored.ID).Return(stored, nil)

		r := newRequestRouter(requestRepo, new(MockDeliveredDataRepository), uuid.New(), "moderator")
		w := doJSON(t, r, http.MethodPatch, "/api/v1/admin/requests/"+stored.ID.String()+"/status", SetStatusRequest{
			Status: "Rejected",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "MISSING_REJECTION_NOTE")
	})

	t.Run("unknown status fails binding", func(t *testing.T) {
		r := newRequestRouter(new(MockServiceRequestRepository), new(MockDeliveredDataRepository), uuid.New(), "moderator")
		w := doJSON(t, r, http.MethodPatch, "/api/v1/admin/requests/"+stored.ID.String()+"/status", SetStatusRequest{
			Status: "Archived",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	})

	t.Run("missing request maps to not found", func(t *testing.T) {
		missingID := uuid.New()
		requestRepo := new(MockServiceRequestRepository)
		requestRepo.On("FindByID", mock.Anything, missingID).
			Return(nil, shared.NewDomainError("NOT_FOUND", "Service request not found"))

		r := newRequestRouter(requestRepo, new(MockDeliveredDataRepository), uuid.New(), "moderator")
		w := doJSON(t, r, http.MethodPatch, "/api/v1/admin/requests/"+missingID.String()+"/status", SetStatusRequest{
			Status: "Approved",
		})

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "NOT_FOUND")
	})
}

func TestServiceRequestHandlerDelete(t *testing.T) {
	ownerID := uuid.New()
	stored := storedPhoneRequest(t, ownerID)

	requestRepo := new(MockServiceRequestRepository)
	requestRepo.On("Delete", mock.Anything, stored.ID).Return(nil)

	r := newRequestRouter(requestRepo, new(MockDeliveredDataRepository), uuid.New(), "moderator")
	w := doJSON(t, r, http.MethodDelete, "/api/v1/admin/requests/"+stored.ID.String(), nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	requestRepo.AssertExpectations(t)
}
