package sync

import (
	"time"

	"github.com/Nowaker/monarch-amazon-sync/internal/adapters/providers"
	"github.com/Nowaker/monarch-amazon-sync/internal/adapters/scrape"
	"github.com/Nowaker/monarch-amazon-sync/internal/infrastructure/storage"
)

// Persistence helpers for the sync orchestrator. The saved record
// carries the provider's transactions verbatim plus aggregates the
// storage layer derives for querying.

// recordOrder persists one synced order.
func (o *Orchestrator) recordOrder(order providers.Order, opts Options, runID int64) error {
	if o.storage == nil {
		return nil
	}

	record := &storage.OrderRecord{
		Provider:      o.provider.Name(),
		OrderID:       order.ID,
		OrderDate:     order.Date,
		StorePurchase: order.StorePurchase,
		SyncRunID:     runID,
		SyncedAt:      time.Now().UTC(),
	}

	// Order dates keep each storefront's own formatting, so the year
	// column is derived rather than parsed from a fixed layout.
	if year, ok := scrape.ExtractYear(order.Date); ok {
		record.OrderYear = year
	} else if opts.Year != 0 {
		record.OrderYear = opts.Year
	}

	record.SetTransactions(toStorageTransactions(order.Transactions))

	return o.storage.SaveOrder(record)
}

// toStorageTransactions converts wire-shape transactions into their
// storage counterparts.
func toStorageTransactions(txns []providers.OrderTransaction) []storage.Transaction {
	out := make([]storage.Transaction, len(txns))
	for i, txn := range txns {
		items := make([]storage.TransactionItem, len(txn.Items))
		for j, item := range txn.Items {
			items[j] = storage.TransactionItem{
				Title:    item.Title,
				Price:    item.Price,
				Refunded: item.Refunded,
			}
		}
		out[i] = storage.Transaction{
			ID:     txn.ID,
			Date:   txn.Date,
			Amount: txn.Amount,
			Refund: txn.Refund,
			Items:  items,
		}
	}
	return out
}
