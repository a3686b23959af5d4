package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/kassahq/terminal-api/internal/application/service"
	"github.com/kassahq/terminal-api/internal/domain/enum"
	"github.com/kassahq/terminal-api/internal/presentation/http/dto/request"
	"github.com/kassahq/terminal-api/internal/presentation/http/dto/response"
)

// CheckoutHandler handles checkout HTTP requests
type CheckoutHandler struct {
	checkoutService *service.CheckoutService
	receiptService  *service.ReceiptService
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *service.CheckoutService, receiptService *service.ReceiptService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		receiptService:  receiptService,
	}
}

// Checkout finalizes the working cart and runs the offline pipeline. The
// response distinguishes "synced" from "queued"; both are successful sales.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req request.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if !enum.PaymentType(req.PaymentType).IsValid() {
		response.BadRequest(c, "Invalid payment type. Use cash, card, or transfer")
		return
	}

	result, err := h.checkoutService.Checkout(c.Request.Context(), &service.CheckoutInput{
		PaymentType: req.PaymentType,
		Paid:        req.Paid,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	data := gin.H{
		"sale":   result.Sale,
		"status": result.Status,
	}
	if result.Notice != "" {
		data["notice"] = result.Notice
	}
	if result.DebtWarning != "" {
		data["debt_warning"] = result.DebtWarning
	}

	if req.PrintReceipt {
		receipt, printErr := h.receiptService.PrintSale(result.Sale)
		data["receipt"] = receipt
		if printErr != nil {
			// The sale stands; surface the printer problem as a warning only
			data["print_warning"] = printErr.Error()
		}
	}

	response.Created(c, "Checkout completed", data)
}
