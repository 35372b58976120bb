package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/Nowaker/monarch-amazon-sync/internal/adapters/providers"
	"github.com/Nowaker/monarch-amazon-sync/internal/api/dto"
	"github.com/Nowaker/monarch-amazon-sync/internal/application/service"
)

// AuthHandler reports provider session state. Responses come from the
// service's probe cache; pass refresh=true to force live probes.
type AuthHandler struct {
	syncService *service.SyncService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(syncService *service.SyncService) *AuthHandler {
	return &AuthHandler{
		syncService: syncService,
	}
}

// List handles GET /api/auth - session state for all providers.
func (h *AuthHandler) List(c *gin.Context) {
	var statuses map[string]providers.AuthProbe
	if QueryBool(c, "refresh") {
		statuses = h.syncService.RefreshAuthStatuses(c.Request.Context())
	} else {
		statuses = h.syncService.AuthStatuses()
	}

	response := dto.AuthStatusListResponse{
		Providers: make([]dto.AuthStatusResponse, 0, len(statuses)),
		Count:     len(statuses),
	}

	for name, probe := range statuses {
		response.Providers = append(response.Providers, toAuthStatusResponse(name, probe))
	}
	sort.Slice(response.Providers, func(i, j int) bool {
		return response.Providers[i].Provider < response.Providers[j].Provider
	})

	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/auth/:provider - session state for one provider.
func (h *AuthHandler) Get(c *gin.Context) {
	name := c.Param("provider")

	if QueryBool(c, "refresh") {
		probe, err := h.syncService.RefreshAuthStatus(c.Request.Context(), name)
		if err != nil {
			Error(c, http.StatusNotFound, dto.NotFoundError("provider"))
			return
		}
		c.JSON(http.StatusOK, toAuthStatusResponse(name, probe))
		return
	}

	probe, ok := h.syncService.AuthStatuses()[name]
	if !ok {
		Error(c, http.StatusNotFound, dto.NotFoundError("provider"))
		return
	}

	c.JSON(http.StatusOK, toAuthStatusResponse(name, probe))
}

func toAuthStatusResponse(name string, probe providers.AuthProbe) dto.AuthStatusResponse {
	return dto.AuthStatusResponse{
		Provider:     name,
		Status:       string(probe.Status),
		StartingYear: probe.StartingYear,
	}
}
