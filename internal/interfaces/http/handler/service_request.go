package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	lookupapp "github.com/lookupdesk/backend/internal/application/lookup"
	"github.com/lookupdesk/backend/internal/interfaces/http/dto"
	"github.com/lookupdesk/backend/internal/interfaces/http/middleware"
)

// ServiceRequestHandler handles lookup service request endpoints
type ServiceRequestHandler struct {
	BaseHandler
	requestService *lookupapp.ServiceRequestService
}

// NewServiceRequestHandler creates a new service request handler
func NewServiceRequestHandler(requestService *lookupapp.ServiceRequestService) *ServiceRequestHandler {
	return &ServiceRequestHandler{requestService: requestService}
}

// Submit creates a new service request for the authenticated customer
func (h *ServiceRequestHandler) Submit(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req SubmitServiceRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	view, err := h.requestService.Submit(c.Request.Context(), userID, lookupapp.SubmitRequestInput{
		SourceType:          req.SourceType,
		IMEI:                req.IMEI,
		PhoneNumber:         req.PhoneNumber,
		LastUsedPhoneNumber: req.LastUsedPhoneNumber,
		DataNeeded:          req.DataNeeded,
		ServiceTypes:        req.ServiceTypes,
		ServiceCharge:       req.ServiceCharge,
		PaymentMethod:       req.PaymentMethod,
		TrxID:               req.TrxID,
		AdditionalNote:      req.AdditionalNote,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, view)
}

// ListMine lists the authenticated customer's own requests
func (h *ServiceRequestHandler) ListMine(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	page, err := h.requestService.ListMine(c.Request.Context(), userID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetByID returns one request. Customers can only read their own,
// moderators can read any.
func (h *ServiceRequestHandler) GetByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BadRequest(c, "Invalid request ID")
		return
	}
	requestID := uuid.MustParse(idReq.ID)

	view, err := h.requestService.Get(c.Request.Context(), requestID, userID, middleware.IsModerator(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

// Prices returns the service price table
func (h *ServiceRequestHandler) Prices(c *gin.Context) {
	h.Success(c, h.requestService.Prices())
}

// ListAll lists every request, for moderators
func (h *ServiceRequestHandler) ListAll(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	page, err := h.requestService.ListAll(c.Request.Context(), req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Stats returns request counts per status, for moderators
func (h *ServiceRequestHandler) Stats(c *gin.Context) {
	stats, err := h.requestService.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stats)
}

// SetStatus applies a moderator's status decision to a request
func (h *ServiceRequestHandler) SetStatus(c *gin.Context) {
	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BadRequest(c, "Invalid request ID")
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	view, err := h.requestService.SetStatus(c.Request.Context(), lookupapp.SetStatusInput{
		RequestID: uuid.MustParse(idReq.ID),
		Status:    req.Status,
		Notes:     req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

// Delete removes a request and its delivered data, for moderators
func (h *ServiceRequestHandler) Delete(c *gin.Context) {
	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BadRequest(c, "Invalid request ID")
		return
	}

	if err := h.requestService.Delete(c.Request.Context(), uuid.MustParse(idReq.ID)); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
