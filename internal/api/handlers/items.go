package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nowaker/monarch-amazon-sync/internal/api/dto"
	"github.com/Nowaker/monarch-amazon-sync/internal/infrastructure/storage"
)

// ItemsHandler handles item-related HTTP requests.
type ItemsHandler struct {
	*Base
}

// NewItemsHandler creates a new items handler.
func NewItemsHandler(repo storage.Repository) *ItemsHandler {
	return &ItemsHandler{
		Base: NewBase(repo),
	}
}

// Search handles GET /api/items/search - searches line items across synced orders.
func (h *ItemsHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		Error(c, http.StatusBadRequest, dto.BadRequestError("search query 'q' is required"))
		return
	}

	limit := QueryInt(c, "limit", 50)

	results, err := h.repo.SearchItems(query, limit)
	if err != nil {
		Error(c, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.ItemSearchResponse{
		Items: make([]dto.ItemSearchResultResponse, 0, len(results)),
		Query: query,
		Count: len(results),
	}

	for _, item := range results {
		response.Items = append(response.Items, dto.ItemSearchResultResponse{
			Provider:      item.Provider,
			OrderID:       item.OrderID,
			OrderDate:     item.OrderDate,
			TransactionID: item.TransactionID,
			Title:         item.Title,
			Price:         item.Price,
			Refunded:      item.Refunded,
		})
	}

	c.JSON(http.StatusOK, response)
}
