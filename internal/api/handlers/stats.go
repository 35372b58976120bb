package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/Nowaker/monarch-amazon-sync/internal/api/dto"
	"github.com/Nowaker/monarch-amazon-sync/internal/infrastructure/storage"
)

// StatsHandler handles stats-related HTTP requests.
type StatsHandler struct {
	*Base
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(repo storage.Repository) *StatsHandler {
	return &StatsHandler{
		Base: NewBase(repo),
	}
}

// Get handles GET /api/stats - returns aggregate statistics.
func (h *StatsHandler) Get(c *gin.Context) {
	stats, err := h.repo.GetStats()
	if err != nil {
		Error(c, http.StatusInternalServerError, dto.InternalError())
		return
	}

	// Provider stats come back as a map; emit a sorted slice so the
	// response is stable across requests.
	providers := make([]dto.ProviderStatsResponse, 0, len(stats.ProviderStats))
	for provider, pStats := range stats.ProviderStats {
		providers = append(providers, dto.ProviderStatsResponse{
			Provider:   provider,
			Count:      pStats.Count,
			TotalSpent: pStats.TotalSpent,
			ItemCount:  pStats.ItemCount,
		})
	}
	sort.Slice(providers, func(i, j int) bool {
		return providers[i].Provider < providers[j].Provider
	})

	response := dto.StatsResponse{
		TotalOrders:       stats.TotalOrders,
		TotalTransactions: stats.TotalTransactions,
		TotalItems:        stats.TotalItems,
		TotalSpent:        stats.TotalSpent,
		TotalRefunded:     stats.TotalRefunded,
		AverageOrderTotal: stats.AverageOrderTotal,
		RefundedOrders:    stats.RefundedOrders,
		StorePurchases:    stats.StorePurchases,
		Providers:         providers,
	}

	c.JSON(http.StatusOK, response)
}
