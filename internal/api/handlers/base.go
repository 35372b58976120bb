// Package handlers contains the HTTP handlers for the REST API. Each
// resource gets its own handler type built on Base; handlers translate
// between gin requests and the storage/service layers and never reach
// into providers directly.
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Nowaker/monarch-amazon-sync/internal/api/dto"
	"github.com/Nowaker/monarch-amazon-sync/internal/infrastructure/storage"
)

// Base provides common dependencies for handlers.
type Base struct {
	repo storage.Repository
}

// NewBase creates a new base handler.
func NewBase(repo storage.Repository) *Base {
	return &Base{repo: repo}
}

// Error writes a structured error response.
func Error(c *gin.Context, status int, apiErr dto.APIError) {
	c.JSON(status, apiErr)
}

// QueryInt parses an integer query parameter with a default value.
// Malformed values fall back to the default rather than erroring, so
// list endpoints stay usable from hand-typed URLs.
func QueryInt(c *gin.Context, name string, defaultValue int) int {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}

	return value
}

// QueryBool parses a boolean query parameter, defaulting to false.
func QueryBool(c *gin.Context, name string) bool {
	raw := c.Query(name)
	return raw == "true" || raw == "1"
}
