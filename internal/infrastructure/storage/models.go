package storage

import (
	"time"
)

// OrderRecord is one synced order as stored. The transaction detail is
// persisted as JSON in the shape providers emit it, so a stored order
// round-trips through the API unchanged.
type OrderRecord struct {
	ID               int64     `json:"id"`
	Provider         string    `json:"provider"`
	OrderID          string    `json:"order_id"`
	OrderDate        string    `json:"order_date,omitempty"`
	OrderYear        int       `json:"order_year,omitempty"`
	StorePurchase    bool      `json:"store_purchase,omitempty"`
	SyncRunID        int64     `json:"sync_run_id,omitempty"`
	SyncedAt         time.Time `json:"synced_at"`
	OrderTotal       float64   `json:"order_total"`
	RefundTotal      float64   `json:"refund_total"`
	TransactionCount int       `json:"transaction_count"`
	ItemCount        int       `json:"item_count"`
	HasRefunds       bool      `json:"has_refunds"`

	// Detailed data stored as JSON
	Transactions     []Transaction `json:"transactions"`
	TransactionsJSON string        `json:"-"` // For DB storage
}

// Transaction mirrors the provider transaction shape
type Transaction struct {
	ID     string            `json:"id"`
	Date   string            `json:"date"`
	Amount float64           `json:"amount"`
	Refund bool              `json:"refund"`
	Items  []TransactionItem `json:"items"`
}

// TransactionItem mirrors the provider line item shape
type TransactionItem struct {
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Refunded bool    `json:"refunded"`
}

// SetTransactions stores the transaction detail and refreshes the
// derived aggregate fields (totals, counts, refund flag)
func (r *OrderRecord) SetTransactions(txns []Transaction) {
	r.Transactions = txns
	r.TransactionCount = len(txns)
	r.OrderTotal = 0
	r.RefundTotal = 0
	r.ItemCount = 0
	r.HasRefunds = false

	for _, txn := range txns {
		if txn.Refund {
			r.HasRefunds = true
			r.RefundTotal += txn.Amount
		} else {
			r.OrderTotal += txn.Amount
		}
		r.ItemCount += len(txn.Items)
	}
}

// Stats contains aggregate statistics across all synced orders
type Stats struct {
	TotalOrders       int                      `json:"total_orders"`
	TotalTransactions int                      `json:"total_transactions"`
	TotalItems        int                      `json:"total_items"`
	TotalSpent        float64                  `json:"total_spent"`
	TotalRefunded     float64                  `json:"total_refunded"`
	AverageOrderTotal float64                  `json:"average_order_total"`
	RefundedOrders    int                      `json:"refunded_orders"`
	StorePurchases    int                      `json:"store_purchases"`
	ProviderStats     map[string]ProviderStats `json:"provider_stats"`
}

// ProviderStats contains per-provider statistics
type ProviderStats struct {
	Count      int     `json:"count"`
	TotalSpent float64 `json:"total_spent"`
	ItemCount  int     `json:"item_count"`
}
