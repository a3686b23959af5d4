package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kassahq/terminal-api/internal/application/service"
	"github.com/kassahq/terminal-api/internal/presentation/http/dto/request"
	"github.com/kassahq/terminal-api/internal/presentation/http/dto/response"
	"github.com/shopspring/decimal"
)

// CartHandler handles working-cart HTTP requests
type CartHandler struct {
	cartService *service.CartService
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// Get returns the current cart state
func (h *CartHandler) Get(c *gin.Context) {
	response.OK(c, "Cart retrieved successfully", h.cartService.Snapshot())
}

// AddItem adds one unit of a product, by ID or by scanned code
func (h *CartHandler) AddItem(c *gin.Context) {
	var req request.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	var (
		cart *service.CartView
		err  error
	)
	switch {
	case req.ProductID != "":
		productID, parseErr := uuid.Parse(req.ProductID)
		if parseErr != nil {
			response.BadRequest(c, "Invalid product ID")
			return
		}
		cart, err = h.cartService.AddProduct(c.Request.Context(), productID)
	case req.Code != "":
		cart, err = h.cartService.AddProductByCode(c.Request.Context(), req.Code)
	default:
		response.BadRequest(c, "Either product_id or code is required")
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item added to cart", cart)
}

// SetQuantity sets a line's quantity; zero removes the line
func (h *CartHandler) SetQuantity(c *gin.Context) {
	productID, ok := parseUUIDParam(c, "product_id")
	if !ok {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	var req request.SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	cart, err := h.cartService.SetQuantity(productID, *req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quantity updated", cart)
}

// RemoveItem drops a line from the cart
func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID, ok := parseUUIDParam(c, "product_id")
	if !ok {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	response.OK(c, "Item removed", h.cartService.Remove(productID))
}

// Negotiate overrides a line's tier pricing with an operator markup percent
func (h *CartHandler) Negotiate(c *gin.Context) {
	productID, ok := parseUUIDParam(c, "product_id")
	if !ok {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	var req request.NegotiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	percent, err := decimal.NewFromString(req.MarkupPercent)
	if err != nil {
		response.BadRequest(c, "Invalid markup percent")
		return
	}

	cart, err := h.cartService.ApplyNegotiatedMarkup(productID, percent)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Negotiated price applied", cart)
}

// ClearNegotiate restores tier pricing on a line
func (h *CartHandler) ClearNegotiate(c *gin.Context) {
	productID, ok := parseUUIDParam(c, "product_id")
	if !ok {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	cart, err := h.cartService.ClearNegotiatedMarkup(productID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Negotiated price cleared", cart)
}

// SetCustomer attaches or detaches a customer
func (h *CartHandler) SetCustomer(c *gin.Context) {
	var req request.SetCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	var customerID *uuid.UUID
	if req.CustomerID != "" {
		id, err := uuid.Parse(req.CustomerID)
		if err != nil {
			response.BadRequest(c, "Invalid customer ID")
			return
		}
		customerID = &id
	}

	response.OK(c, "Customer updated", h.cartService.SetCustomer(customerID))
}

// ToggleReturnMode flips sale/return mode; the cart is cleared either way
func (h *CartHandler) ToggleReturnMode(c *gin.Context) {
	response.OK(c, "Return mode toggled", h.cartService.ToggleReturnMode())
}

// Clear empties the cart
func (h *CartHandler) Clear(c *gin.Context) {
	response.OK(c, "Cart cleared", h.cartService.Clear())
}

// Suspend parks the working cart under a label
func (h *CartHandler) Suspend(c *gin.Context) {
	var req request.SuspendCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	suspended, err := h.cartService.Suspend(c.Request.Context(), req.Label)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Cart suspended", suspended)
}

// ListSuspended returns all parked carts
func (h *CartHandler) ListSuspended(c *gin.Context) {
	suspended, err := h.cartService.ListSuspended(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Suspended carts retrieved successfully", suspended)
}

// Resume restores a parked cart as the working cart
func (h *CartHandler) Resume(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid suspended cart ID")
		return
	}

	cart, err := h.cartService.Resume(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cart resumed", cart)
}
