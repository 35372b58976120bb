package storage

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration represents a database schema migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// allMigrations defines all migrations in order
var allMigrations = []Migration{
	{
		Version: 1,
		Name:    "initial_schema",
		Up:      migration001InitialSchema,
	},
	{
		Version: 2,
		Name:    "add_sync_runs_table",
		Up:      migration002AddSyncRunsTable,
	},
	{
		Version: 3,
		Name:    "add_order_items_table",
		Up:      migration003AddOrderItemsTable,
	},
}

// runMigrations executes all pending migrations
func (s *Storage) runMigrations() error {
	// Ensure migrations table exists
	if err := s.ensureMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	// Get applied migrations
	applied, err := s.getAppliedMigrations()
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	// Run pending migrations
	for _, migration := range allMigrations {
		if applied[migration.Version] {
			continue // Already applied
		}

		log.Printf("Running migration %d: %s", migration.Version, migration.Name)

		// Run migration in transaction
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		// Execute migration
		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		// Record migration
		_, err = tx.Exec(`
			INSERT INTO schema_migrations (version, name) VALUES (?, ?)
		`, migration.Version, migration.Name)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		// Commit
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}

		log.Printf("Migration %d complete", migration.Version)
	}

	return nil
}

// ensureMigrationsTable creates the schema_migrations table
func (s *Storage) ensureMigrationsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	_, err := s.db.Exec(query)
	return err
}

// getAppliedMigrations returns a set of applied migration versions
func (s *Storage) getAppliedMigrations() (map[int]bool, error) {
	applied := make(map[int]bool)

	rows, err := s.db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}

	return applied, rows.Err()
}

// ================================================================
// MIGRATION FUNCTIONS
// ================================================================

// migration001InitialSchema creates the orders table
func migration001InitialSchema(db *sql.Tx) error {
	queries := []string{
		// Synced orders, one row per (provider, order_id). order_date keeps
		// the provider's own date idiom verbatim; order_year is derived so
		// year filters stay cheap.
		`CREATE TABLE IF NOT EXISTS orders (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			provider TEXT NOT NULL,
			order_id TEXT NOT NULL,
			order_date TEXT DEFAULT '',
			order_year INTEGER DEFAULT 0,
			store_purchase BOOLEAN DEFAULT 0,
			sync_run_id INTEGER DEFAULT 0,
			synced_at TIMESTAMP,
			order_total REAL DEFAULT 0,
			refund_total REAL DEFAULT 0,
			transaction_count INTEGER DEFAULT 0,
			item_count INTEGER DEFAULT 0,
			has_refunds BOOLEAN DEFAULT 0,
			transactions_json TEXT DEFAULT '',
			UNIQUE(provider, order_id)
		)`,

		// Indexes for common queries
		`CREATE INDEX IF NOT EXISTS idx_orders_provider
		 ON orders(provider)`,

		`CREATE INDEX IF NOT EXISTS idx_orders_year
		 ON orders(order_year)`,

		`CREATE INDEX IF NOT EXISTS idx_orders_synced
		 ON orders(synced_at DESC)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

// migration002AddSyncRunsTable creates the sync_runs table
func migration002AddSyncRunsTable(db *sql.Tx) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS sync_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			provider TEXT NOT NULL,
			year INTEGER DEFAULT 0,
			started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			completed_at TIMESTAMP,
			orders_found INTEGER DEFAULT 0,
			orders_synced INTEGER DEFAULT 0,
			orders_dropped INTEGER DEFAULT 0,
			status TEXT DEFAULT 'running',
			error_message TEXT
		)`,

		`CREATE INDEX IF NOT EXISTS idx_sync_runs_provider
		 ON sync_runs(provider)`,

		`CREATE INDEX IF NOT EXISTS idx_sync_runs_started
		 ON sync_runs(started_at DESC)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}

// migration003AddOrderItemsTable creates the order_items table.
// Line items are denormalized out of transactions_json so item search
// does not have to scan JSON blobs.
func migration003AddOrderItemsTable(db *sql.Tx) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS order_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			provider TEXT NOT NULL,
			order_id TEXT NOT NULL,
			order_date TEXT DEFAULT '',
			transaction_id TEXT DEFAULT '',
			title TEXT NOT NULL,
			price REAL DEFAULT 0,
			refunded BOOLEAN DEFAULT 0
		)`,

		`CREATE INDEX IF NOT EXISTS idx_order_items_order
		 ON order_items(provider, order_id)`,

		`CREATE INDEX IF NOT EXISTS idx_order_items_title
		 ON order_items(title)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}
