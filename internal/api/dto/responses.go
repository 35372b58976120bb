package dto

import "time"

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// NewHealthResponse creates a healthy response with the current timestamp.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// OrderResponse represents a synced order in API responses. The
// transaction detail keeps the shape providers emit, so consumers see
// the same contract whether they read the API or the extraction output.
type OrderResponse struct {
	OrderID          string                `json:"order_id"`
	Provider         string                `json:"provider"`
	OrderDate        string                `json:"order_date,omitempty"`
	OrderYear        int                   `json:"order_year,omitempty"`
	StorePurchase    bool                  `json:"store_purchase,omitempty"`
	SyncedAt         string                `json:"synced_at"`
	SyncRunID        int64                 `json:"sync_run_id,omitempty"`
	OrderTotal       float64               `json:"order_total"`
	RefundTotal      float64               `json:"refund_total"`
	TransactionCount int                   `json:"transaction_count"`
	ItemCount        int                   `json:"item_count"`
	HasRefunds       bool                  `json:"has_refunds"`
	Transactions     []TransactionResponse `json:"transactions,omitempty"`
}

// TransactionResponse represents one charge or refund within an order.
type TransactionResponse struct {
	ID     string         `json:"id"`
	Date   string         `json:"date"`
	Amount float64        `json:"amount"`
	Refund bool           `json:"refund"`
	Items  []ItemResponse `json:"items"`
}

// ItemResponse represents a line item within a transaction.
type ItemResponse struct {
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Refunded bool    `json:"refunded"`
}

// OrderListResponse is returned when listing orders.
type OrderListResponse struct {
	Orders     []OrderResponse `json:"orders"`
	TotalCount int             `json:"total_count"`
	Limit      int             `json:"limit"`
	Offset     int             `json:"offset"`
}

// ItemSearchResultResponse represents a line item found in search.
type ItemSearchResultResponse struct {
	Provider      string  `json:"provider"`
	OrderID       string  `json:"order_id"`
	OrderDate     string  `json:"order_date,omitempty"`
	TransactionID string  `json:"transaction_id,omitempty"`
	Title         string  `json:"title"`
	Price         float64 `json:"price"`
	Refunded      bool    `json:"refunded,omitempty"`
}

// ItemSearchResponse is returned when searching items.
type ItemSearchResponse struct {
	Items []ItemSearchResultResponse `json:"items"`
	Query string                     `json:"query"`
	Count int                        `json:"count"`
}

// SyncRunResponse represents a historical sync run.
type SyncRunResponse struct {
	ID            int64  `json:"id"`
	Provider      string `json:"provider"`
	Year          int    `json:"year"`
	StartedAt     string `json:"started_at"`
	CompletedAt   string `json:"completed_at,omitempty"`
	OrdersFound   int    `json:"orders_found"`
	OrdersSynced  int    `json:"orders_synced"`
	OrdersDropped int    `json:"orders_dropped"`
	Status        string `json:"status"`
	ErrorMessage  string `json:"error_message,omitempty"`
}

// SyncRunListResponse is returned when listing sync runs.
type SyncRunListResponse struct {
	Runs  []SyncRunResponse `json:"runs"`
	Count int               `json:"count"`
}

// ProviderStatsResponse contains per-provider aggregate statistics.
type ProviderStatsResponse struct {
	Provider   string  `json:"provider"`
	Count      int     `json:"count"`
	TotalSpent float64 `json:"total_spent"`
	ItemCount  int     `json:"item_count"`
}

// StatsResponse contains aggregate statistics across all synced orders.
type StatsResponse struct {
	TotalOrders       int                     `json:"total_orders"`
	TotalTransactions int                     `json:"total_transactions"`
	TotalItems        int                     `json:"total_items"`
	TotalSpent        float64                 `json:"total_spent"`
	TotalRefunded     float64                 `json:"total_refunded"`
	AverageOrderTotal float64                 `json:"average_order_total"`
	RefundedOrders    int                     `json:"refunded_orders"`
	StorePurchases    int                     `json:"store_purchases"`
	Providers         []ProviderStatsResponse `json:"providers"`
}
