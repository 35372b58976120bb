package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Nowaker/monarch-amazon-sync/internal/api/dto"
	"github.com/Nowaker/monarch-amazon-sync/internal/infrastructure/storage"
)

// OrdersHandler handles order-related HTTP requests.
type OrdersHandler struct {
	*Base
}

// NewOrdersHandler creates a new orders handler.
func NewOrdersHandler(repo storage.Repository) *OrdersHandler {
	return &OrdersHandler{
		Base: NewBase(repo),
	}
}

// List handles GET /api/orders - returns synced orders with filters.
func (h *OrdersHandler) List(c *gin.Context) {
	filters := storage.OrderFilters{
		Provider:   c.Query("provider"),
		Year:       QueryInt(c, "year", 0),
		HasRefunds: QueryBool(c, "has_refunds"),
		Limit:      QueryInt(c, "limit", 50),
		Offset:     QueryInt(c, "offset", 0),
		OrderBy:    c.Query("order_by"),
		OrderDesc:  QueryBool(c, "desc"),
	}

	result, err := h.repo.ListOrders(filters)
	if err != nil {
		Error(c, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.OrderListResponse{
		Orders:     make([]dto.OrderResponse, 0, len(result.Orders)),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	}

	for _, record := range result.Orders {
		response.Orders = append(response.Orders, toOrderResponse(record))
	}

	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/orders/:id - returns a single order. Orders are
// keyed by (provider, order_id), so the provider query parameter is
// required to disambiguate order numbers that collide across stores.
func (h *OrdersHandler) Get(c *gin.Context) {
	orderID := c.Param("id")
	if orderID == "" {
		Error(c, http.StatusBadRequest, dto.BadRequestError("order ID is required"))
		return
	}

	provider := c.Query("provider")
	if provider == "" {
		Error(c, http.StatusBadRequest, dto.BadRequestError("provider query parameter is required"))
		return
	}

	record, err := h.repo.GetOrder(provider, orderID)
	if err != nil {
		Error(c, http.StatusInternalServerError, dto.InternalError())
		return
	}

	if record == nil {
		Error(c, http.StatusNotFound, dto.NotFoundError("order"))
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(record))
}

// toOrderResponse converts a storage OrderRecord to an API response.
func toOrderResponse(record *storage.OrderRecord) dto.OrderResponse {
	response := dto.OrderResponse{
		OrderID:          record.OrderID,
		Provider:         record.Provider,
		OrderDate:        record.OrderDate,
		OrderYear:        record.OrderYear,
		StorePurchase:    record.StorePurchase,
		SyncedAt:         record.SyncedAt.UTC().Format(time.RFC3339),
		SyncRunID:        record.SyncRunID,
		OrderTotal:       record.OrderTotal,
		RefundTotal:      record.RefundTotal,
		TransactionCount: record.TransactionCount,
		ItemCount:        record.ItemCount,
		HasRefunds:       record.HasRefunds,
	}

	for _, txn := range record.Transactions {
		response.Transactions = append(response.Transactions, toTransactionResponse(txn))
	}

	return response
}

func toTransactionResponse(txn storage.Transaction) dto.TransactionResponse {
	out := dto.TransactionResponse{
		ID:     txn.ID,
		Date:   txn.Date,
		Amount: txn.Amount,
		Refund: txn.Refund,
		Items:  make([]dto.ItemResponse, 0, len(txn.Items)),
	}

	for _, item := range txn.Items {
		out.Items = append(out.Items, dto.ItemResponse{
			Title:    item.Title,
			Price:    item.Price,
			Refunded: item.Refunded,
		})
	}

	return out
}
