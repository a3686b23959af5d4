package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kassahq/terminal-api/pkg/pagination"
)

// parseUUIDParam parses a UUID path parameter, returning false if invalid
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// paginationFromQuery builds validated pagination params from query strings
func paginationFromQuery(c *gin.Context) *pagination.PaginationParams {
	var params pagination.PaginationParams
	_ = c.ShouldBindQuery(&params)
	params.Validate()
	return &params
}
