package storage

// Repository defines the complete storage interface.
// This interface allows swapping implementations (SQLite, PostgreSQL, etc.)
// and makes testing with mocks straightforward.
type Repository interface {
	OrderRepository
	SyncRunRepository
	Close() error
}

// OrderRepository handles synced order persistence
type OrderRepository interface {
	// SaveOrder saves or updates a synced order. Orders are keyed by
	// (provider, order_id) so re-syncing the same year overwrites in place.
	SaveOrder(record *OrderRecord) error

	// GetOrder retrieves an order by provider and order ID.
	// Returns (nil, nil) when no order matches.
	GetOrder(provider, orderID string) (*OrderRecord, error)

	// ListOrders returns orders matching the given filters with pagination
	ListOrders(filters OrderFilters) (*OrderListResult, error)

	// SearchItems searches line items across all synced orders
	SearchItems(query string, limit int) ([]ItemSearchResult, error)

	// GetStats returns aggregate statistics
	GetStats() (*Stats, error)
}

// OrderFilters defines filters for listing orders
type OrderFilters struct {
	Provider   string // Filter by provider (empty = all)
	Year       int    // Filter by order year (0 = all)
	HasRefunds bool   // Only orders with at least one refund transaction
	Limit      int    // Max results (0 = default 50)
	Offset     int    // Pagination offset
	OrderBy    string // Sort field: "synced_at", "total", "year" (default: "synced_at")
	OrderDesc  bool   // Sort descending
}

// OrderListResult contains paginated order results
type OrderListResult struct {
	Orders     []*OrderRecord `json:"orders"`
	TotalCount int            `json:"total_count"`
	Limit      int            `json:"limit"`
	Offset     int            `json:"offset"`
}

// ItemSearchResult represents a line item found in search
type ItemSearchResult struct {
	Provider      string  `json:"provider"`
	OrderID       string  `json:"order_id"`
	OrderDate     string  `json:"order_date,omitempty"`
	TransactionID string  `json:"transaction_id,omitempty"`
	Title         string  `json:"title"`
	Price         float64 `json:"price"`
	Refunded      bool    `json:"refunded,omitempty"`
}

// SyncRunRepository handles sync run tracking
type SyncRunRepository interface {
	// StartSyncRun records the start of a sync run and returns the run ID
	StartSyncRun(provider string, year int) (int64, error)

	// CompleteSyncRun records the completion of a sync run
	CompleteSyncRun(runID int64, ordersFound, ordersSynced, ordersDropped int) error

	// FailSyncRun marks a sync run as failed with the given message
	FailSyncRun(runID int64, message string) error

	// ListSyncRuns returns recent sync runs, newest first
	ListSyncRuns(limit int) ([]SyncRun, error)

	// GetSyncRun retrieves a sync run by ID.
	// Returns (nil, nil) when no run matches.
	GetSyncRun(runID int64) (*SyncRun, error)
}

// SyncRun represents a sync run record
type SyncRun struct {
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
