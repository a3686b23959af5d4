package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/kassahq/terminal-api/internal/application/service"
	"github.com/kassahq/terminal-api/internal/presentation/http/dto/response"
)

// ProductHandler handles catalog HTTP requests
type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// List returns a page of the locally mirrored catalog
func (h *ProductHandler) List(c *gin.Context) {
	params := paginationFromQuery(c)
	search := c.Query("search")

	result, err := h.productService.List(c.Request.Context(), params, search)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Products retrieved successfully", result)
}

// GetByCode looks a product up by its code (barcode scan path)
func (h *ProductHandler) GetByCode(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		response.BadRequest(c, "Product code is required")
		return
	}

	product, err := h.productService.GetByCode(c.Request.Context(), code)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product retrieved successfully", product)
}

// Refresh pulls a fresh catalog snapshot from the back office
func (h *ProductHandler) Refresh(c *gin.Context) {
	count, err := h.productService.Refresh(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Catalog refreshed", gin.H{"products": count})
}
