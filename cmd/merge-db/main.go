// Command merge-db folds the orders from every SQLite database in the
// current directory into a single target database. Orders are keyed by
// (provider, order_id), so the same order appearing in several source
// files collapses into one row. Sync run history is not migrated.
package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Nowaker/monarch-amazon-sync/internal/infrastructure/storage"
)

func main() {
	var (
		targetDB = flag.String("target", "order_sync.db", "Target consolidated database file")
		dryRun   = flag.Bool("dry-run", true, "Preview changes without applying")
	)
	flag.Parse()

	// Find all .db files in current directory
	dbFiles, err := filepath.Glob("*.db")
	if err != nil {
		log.Fatalf("Failed to find database files: %v", err)
	}

	if len(dbFiles) == 0 {
		log.Println("No database files found")
		return
	}

	fmt.Printf("Found %d database files:\n", len(dbFiles))
	for _, db := range dbFiles {
		fmt.Printf("  - %s\n", db)
	}

	if *dryRun {
		fmt.Println("\n=== DRY RUN MODE ===")
		fmt.Printf("Would merge all orders into: %s\n", *targetDB)
		return
	}

	// Opening through the storage layer runs migrations, so the target
	// gets the current schema even when it is a fresh file.
	store, err := storage.NewStorage(*targetDB)
	if err != nil {
		log.Fatalf("Failed to open target database: %v", err)
	}
	defer store.Close()

	totalOrders := 0
	for _, dbFile := range dbFiles {
		if dbFile == *targetDB {
			continue // Skip target database
		}

		fmt.Printf("\nProcessing %s...\n", dbFile)

		merged, err := mergeOrders(dbFile, store)
		if err != nil {
			fmt.Printf("Warning: Failed to merge %s: %v\n", dbFile, err)
			continue
		}
		fmt.Printf("  Merged %d orders from %s\n", merged, dbFile)
		totalOrders += merged
	}

	fmt.Printf("\n=== MERGE COMPLETE ===\n")
	fmt.Printf("Total orders merged: %d\n", totalOrders)
	fmt.Printf("Target database: %s\n", *targetDB)
}

// mergeOrders copies every order row from the source file into the target
// repository. Writing through SaveOrder keeps the upsert semantics and
// rebuilds the item search rows for each order.
func mergeOrders(sourceFile string, store storage.Repository) (int, error) {
	source, err := sql.Open("sqlite3", sourceFile)
	if err != nil {
		return 0, err
	}
	defer source.Close()

	// Skip files that are not order databases
	var tableExists bool
	err = source.QueryRow(`
		SELECT COUNT(*) > 0
		FROM sqlite_master
		WHERE type='table' AND name='orders'
	`).Scan(&tableExists)

	if err != nil || !tableExists {
		return 0, nil
	}

	rows, err := source.Query(`
		SELECT provider, order_id, order_date, order_year, store_purchase,
		       synced_at, transactions_json
		FROM orders
	`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	merged := 0
	for rows.Next() {
		var record storage.OrderRecord
		var txnJSON sql.NullString

		err := rows.Scan(&record.Provider, &record.OrderID, &record.OrderDate,
			&record.OrderYear, &record.StorePurchase, &record.SyncedAt, &txnJSON)
		if err != nil {
			return merged, err
		}

		var txns []storage.Transaction
		if txnJSON.Valid && txnJSON.String != "" {
			if err := json.Unmarshal([]byte(txnJSON.String), &txns); err != nil {
				fmt.Printf("Warning: skipping order %s with malformed transactions: %v\n",
					record.OrderID, err)
				continue
			}
		}
		record.SetTransactions(txns)

		if err := store.SaveOrder(&record); err != nil {
			return merged, err
		}
		merged++
	}

	return merged, rows.Err()
}
