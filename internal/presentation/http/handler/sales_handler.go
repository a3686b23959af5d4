package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/kassahq/terminal-api/internal/application/service"
	"github.com/kassahq/terminal-api/internal/presentation/http/dto/request"
	"github.com/kassahq/terminal-api/internal/presentation/http/dto/response"
)

// SalesHandler handles offline-queue HTTP requests
type SalesHandler struct {
	checkoutService *service.CheckoutService
}

// NewSalesHandler creates a new sales handler
func NewSalesHandler(checkoutService *service.CheckoutService) *SalesHandler {
	return &SalesHandler{checkoutService: checkoutService}
}

// ListPending returns a page of sales awaiting sync
func (h *SalesHandler) ListPending(c *gin.Context) {
	params := paginationFromQuery(c)

	result, err := h.checkoutService.ListPending(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Pending sales retrieved successfully", result)
}

// Sync sweeps the offline queue, delivering every pending sale it can
func (h *SalesHandler) Sync(c *gin.Context) {
	report, err := h.checkoutService.SyncPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sync completed", report)
}

// Status reports the backlog size and connectivity view
func (h *SalesHandler) Status(c *gin.Context) {
	status, err := h.checkoutService.Status(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Queue status retrieved successfully", status)
}

// SetForcedOffline toggles the operator's offline override
func (h *SalesHandler) SetForcedOffline(c *gin.Context) {
	var req request.ForcedOfflineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	h.checkoutService.SetForcedOffline(*req.Forced)

	status, err := h.checkoutService.Status(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Forced offline updated", status)
}
