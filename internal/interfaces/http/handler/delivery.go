package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	lookupapp "github.com/lookupdesk/backend/internal/application/lookup"
	"github.com/lookupdesk/backend/internal/interfaces/http/dto"
	"github.com/lookupdesk/backend/internal/interfaces/http/middleware"
)

// DeliveryHandler handles result data delivery endpoints
type DeliveryHandler struct {
	BaseHandler
	deliveryService *lookupapp.DeliveryService
}

// NewDeliveryHandler creates a new delivery handler
func NewDeliveryHandler(deliveryService *lookupapp.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{deliveryService: deliveryService}
}

// Deliver records one piece of result data against a request, for moderators
func (h *DeliveryHandler) Deliver(c *gin.Context) {
	moderatorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BadRequest(c, "Invalid request ID")
		return
	}

	var req DeliverDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	view, err := h.deliveryService.Deliver(c.Request.Context(), lookupapp.DeliverInput{
		RequestID:   uuid.MustParse(idReq.ID),
		DataType:    req.DataType,
		DataContent: req.DataContent,
		ModeratorID: moderatorID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, view)
}

// ListByRequest lists the delivered data ledger of a request. Customers
// can only read their own request's ledger, moderators can read any.
func (h *DeliveryHandler) ListByRequest(c *gin.Context) {
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

	views, err := h.deliveryService.ListByRequest(
		c.Request.Context(),
		uuid.MustParse(idReq.ID),
		userID,
		middleware.IsModerator(c),
	)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, views)
}
