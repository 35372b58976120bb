package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Storage provides SQLite database access for synced orders.
// It implements the Repository interface.
type Storage struct {
	db *sql.DB
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage creates a new storage instance with SQLite database
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints (SQLite-specific)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Storage{db: db}

	// Run all pending migrations
	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveOrder saves or updates a synced order and refreshes its item
// search rows in the same transaction
func (s *Storage) SaveOrder(record *OrderRecord) error {
	if record.SyncedAt.IsZero() {
		record.SyncedAt = time.Now().UTC()
	}
	txJSON, _ := json.Marshal(record.Transactions)

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT OR REPLACE INTO orders
	(provider, order_id, order_date, order_year, store_purchase, sync_run_id,
	 synced_at, order_total, refund_total, transaction_count, item_count,
	 has_refunds, transactions_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	if _, err := tx.Exec(query,
		record.Provider,
		record.OrderID,
		record.OrderDate,
		record.OrderYear,
		record.StorePurchase,
		record.SyncRunID,
		record.SyncedAt,
		record.OrderTotal,
		record.RefundTotal,
		record.TransactionCount,
		record.ItemCount,
		record.HasRefunds,
		string(txJSON),
	); err != nil {
		return err
	}

	// Refresh the item search rows for this order
	if _, err := tx.Exec(
		`DELETE FROM order_items WHERE provider = ? AND order_id = ?`,
		record.Provider, record.OrderID,
	); err != nil {
		return err
	}

	for _, txn := range record.Transactions {
		for _, item := range txn.Items {
			if _, err := tx.Exec(`
				INSERT INTO order_items
				(provider, order_id, order_date, transaction_id, title, price, refunded)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				record.Provider,
				record.OrderID,
				record.OrderDate,
				txn.ID,
				item.Title,
				item.Price,
				item.Refunded,
			); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// GetOrder retrieves an order by provider and order ID
func (s *Storage) GetOrder(provider, orderID string) (*OrderRecord, error) {
	query := `
	SELECT id, provider, order_id, order_date, order_year, store_purchase,
	       sync_run_id, synced_at, order_total, refund_total, transaction_count,
	       item_count, has_refunds, transactions_json
	FROM orders WHERE provider = ? AND order_id = ?
	`

	record := &OrderRecord{}
	err := s.db.QueryRow(query, provider, orderID).Scan(
		&record.ID,
		&record.Provider,
		&record.OrderID,
		&record.OrderDate,
		&record.OrderYear,
		&record.StorePurchase,
		&record.SyncRunID,
		&record.SyncedAt,
		&record.OrderTotal,
		&record.RefundTotal,
		&record.TransactionCount,
		&record.ItemCount,
		&record.HasRefunds,
		&record.TransactionsJSON,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if record.TransactionsJSON != "" {
		_ = json.Unmarshal([]byte(record.TransactionsJSON), &record.Transactions)
	}

	return record, nil
}

// ListOrders returns orders matching the given filters with pagination
func (s *Storage) ListOrders(filters OrderFilters) (*OrderListResult, error) {
	where := "WHERE 1=1"
	var args []interface{}

	if filters.Provider != "" {
		where += " AND provider = ?"
		args = append(args, filters.Provider)
	}
	if filters.Year != 0 {
		where += " AND order_year = ?"
		args = append(args, filters.Year)
	}
	if filters.HasRefunds {
		where += " AND has_refunds = 1"
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM orders "+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	// Whitelist sort columns so filters can never inject SQL
	orderBy := "synced_at"
	switch filters.OrderBy {
	case "total":
		orderBy = "order_total"
	case "year":
		orderBy = "order_year"
	}
	direction := "ASC"
	if filters.OrderDesc {
		direction = "DESC"
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}

	query := fmt.Sprintf(`
	SELECT id, provider, order_id, order_date, order_year, store_purchase,
	       sync_run_id, synced_at, order_total, refund_total, transaction_count,
	       item_count, has_refunds, transactions_json
	FROM orders %s
	ORDER BY %s %s
	LIMIT ? OFFSET ?`, where, orderBy, direction)

	rows, err := s.db.Query(query, append(args, limit, filters.Offset)...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var orders []*OrderRecord
	for rows.Next() {
		record := &OrderRecord{}
		err := rows.Scan(
			&record.ID,
			&record.Provider,
			&record.OrderID,
			&record.OrderDate,
			&record.OrderYear,
			&record.StorePurchase,
			&record.SyncRunID,
			&record.SyncedAt,
			&record.OrderTotal,
			&record.RefundTotal,
			&record.TransactionCount,
			&record.ItemCount,
			&record.HasRefunds,
			&record.TransactionsJSON,
		)
		if err != nil {
			return nil, err
		}
		if record.TransactionsJSON != "" {
			_ = json.Unmarshal([]byte(record.TransactionsJSON), &record.Transactions)
		}
		orders = append(orders, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &OrderListResult{
		Orders:     orders,
		TotalCount: total,
		Limit:      limit,
		Offset:     filters.Offset,
	}, nil
}

// SearchItems searches line items across all synced orders
func (s *Storage) SearchItems(query string, limit int) ([]ItemSearchResult, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT provider, order_id, order_date, transaction_id, title, price, refunded
		FROM order_items
		WHERE title LIKE ? COLLATE NOCASE
		ORDER BY id DESC
		LIMIT ?`, "%"+query+"%", limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []ItemSearchResult
	for rows.Next() {
		var r ItemSearchResult
		if err := rows.Scan(
			&r.Provider,
			&r.OrderID,
			&r.OrderDate,
			&r.TransactionID,
			&r.Title,
			&r.Price,
			&r.Refunded,
		); err != nil {
			return nil, err
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

// GetStats returns aggregate statistics
func (s *Storage) GetStats() (*Stats, error) {
	stats := &Stats{
		ProviderStats: make(map[string]ProviderStats),
	}

	query := `
	SELECT
		COUNT(*) as total,
		COALESCE(SUM(transaction_count), 0) as txns,
		COALESCE(SUM(item_count), 0) as items,
		COALESCE(SUM(order_total), 0) as spent,
		COALESCE(SUM(refund_total), 0) as refunded,
		COALESCE(AVG(order_total), 0) as avg_order,
		COUNT(CASE WHEN has_refunds = 1 THEN 1 END) as with_refunds,
		COUNT(CASE WHEN store_purchase = 1 THEN 1 END) as in_store
	FROM orders
	`

	err := s.db.QueryRow(query).Scan(
		&stats.TotalOrders,
		&stats.TotalTransactions,
		&stats.TotalItems,
		&stats.TotalSpent,
		&stats.TotalRefunded,
		&stats.AverageOrderTotal,
		&stats.RefundedOrders,
		&stats.StorePurchases,
	)
	if err != nil {
		return nil, err
	}

	// Provider breakdown
	provQuery := `
	SELECT
		provider,
		COUNT(*) as count,
		COALESCE(SUM(order_total), 0) as spent,
		COALESCE(SUM(item_count), 0) as items
	FROM orders
	GROUP BY provider
	`

	rows, err := s.db.Query(provQuery)
	if err == nil {
		defer func() { _ = rows.Close() }()
		for rows.Next() {
			var provider string
			var ps ProviderStats
			if err := rows.Scan(&provider, &ps.Count, &ps.TotalSpent, &ps.ItemCount); err == nil {
				stats.ProviderStats[provider] = ps
			}
		}
	}

	return stats, nil
}

// StartSyncRun records the start of a sync run
func (s *Storage) StartSyncRun(provider string, year int) (int64, error) {
	query := `
		INSERT INTO sync_runs (provider, year, status)
		VALUES (?, ?, 'running')
	`

	result, err := s.db.Exec(query, provider, year)
	if err != nil {
		return 0, err
	}

	return result.LastInsertId()
}

// CompleteSyncRun records the completion of a sync run
func (s *Storage) CompleteSyncRun(runID int64, ordersFound, ordersSynced, ordersDropped int) error {
	query := `
		UPDATE sync_runs
		SET completed_at = CURRENT_TIMESTAMP,
		    orders_found = ?,
		    orders_synced = ?,
		    orders_dropped = ?,
		    status = CASE WHEN ? > 0 THEN 'completed_with_drops' ELSE 'completed' END
		WHERE id = ?
	`

	_, err := s.db.Exec(query, ordersFound, ordersSynced, ordersDropped, ordersDropped, runID)
	return err
}

// FailSyncRun marks a sync run as failed with the given message
func (s *Storage) FailSyncRun(runID int64, message string) error {
	query := `
		UPDATE sync_runs
		SET completed_at = CURRENT_TIMESTAMP,
		    status = 'failed',
		    error_message = ?
		WHERE id = ?
	`

	_, err := s.db.Exec(query, message, runID)
	return err
}

// ListSyncRuns returns recent sync runs, newest first
func (s *Storage) ListSyncRuns(limit int) ([]SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, provider, year, started_at, completed_at,
		       orders_found, orders_synced, orders_dropped, status, error_message
		FROM sync_runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []SyncRun
	for rows.Next() {
		run, err := scanSyncRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	return runs, rows.Err()
}

// GetSyncRun retrieves a sync run by ID
func (s *Storage) GetSyncRun(runID int64) (*SyncRun, error) {
	query := `
		SELECT id, provider, year, started_at, completed_at,
		       orders_found, orders_synced, orders_dropped, status, error_message
		FROM sync_runs
		WHERE id = ?
	`

	run, err := scanSyncRun(s.db.QueryRow(query, runID).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// scanSyncRun scans one sync_runs row, normalizing nullable columns
func scanSyncRun(scan func(dest ...interface{}) error) (*SyncRun, error) {
	var run SyncRun
	var completedAt, errorMessage sql.NullString
	err := scan(
		&run.ID,
		&run.Provider,
		&run.Year,
		&run.StartedAt,
		&completedAt,
		&run.OrdersFound,
		&run.OrdersSynced,
		&run.OrdersDropped,
		&run.Status,
		&errorMessage,
	)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		run.CompletedAt = completedAt.String
	}
	if errorMessage.Valid {
		run.ErrorMessage = errorMessage.String
	}
	return &run, nil
}
