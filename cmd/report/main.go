// Command report prints an offline summary of the synced order database:
// aggregate statistics, recent sync runs, and recently synced orders.
// Pass -search to look up line items across every stored order.
package main

import (
	"flag"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Nowaker/monarch-amazon-sync/internal/infrastructure/config"
	"github.com/Nowaker/monarch-amazon-sync/internal/infrastructure/storage"
)

func main() {
	var (
		dbPath     string
		configFile string
		search     string
	)
	flag.StringVar(&dbPath, "db", "", "Path to database file (uses config if not specified)")
	flag.StringVar(&configFile, "config", "config.yaml", "Configuration file path")
	flag.StringVar(&search, "search", "", "Search synced line items by title")
	flag.Parse()

	// Load config if database path not specified
	if dbPath == "" {
		cfg := config.LoadOrEnv_WithPath(configFile)
		dbPath = cfg.Storage.DatabasePath
		if dbPath == "" {
			dbPath = "order_sync.db" // fallback
		}
	}

	store, err := storage.NewStorage(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	fmt.Println("📊 ORDER SYNC REPORT")
	fmt.Println("=" + strings.Repeat("=", 60))
	fmt.Printf("Database: %s\n", dbPath)
	fmt.Printf("Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	if search != "" {
		printItemSearch(store, search)
		return
	}

	printStats(store)
	printSyncRuns(store)
	printRecentOrders(store)
}

func printStats(store storage.Repository) {
	fmt.Println("📈 OVERALL STATISTICS")
	fmt.Println(strings.Repeat("-", 40))

	stats, err := store.GetStats()
	if err != nil {
		log.Printf("Error getting stats: %v", err)
		return
	}

	fmt.Printf("Total Orders: %d\n", stats.TotalOrders)
	fmt.Printf("Total Transactions: %d\n", stats.TotalTransactions)
	fmt.Printf("Total Items: %d\n", stats.TotalItems)
	fmt.Printf("Total Spent: $%.2f\n", stats.TotalSpent)
	fmt.Printf("Total Refunded: $%.2f\n", stats.TotalRefunded)
	fmt.Printf("Average Order: $%.2f\n", stats.AverageOrderTotal)
	fmt.Printf("Orders With Refunds: %d\n", stats.RefundedOrders)
	fmt.Printf("In-Store Purchases: %d\n", stats.StorePurchases)

	if len(stats.ProviderStats) > 0 {
		names := make([]string, 0, len(stats.ProviderStats))
		for name := range stats.ProviderStats {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Println()
		fmt.Printf("%-10s %-8s %-10s %-12s\n", "Provider", "Orders", "Items", "Spent")
		fmt.Println(strings.Repeat("-", 42))
		for _, name := range names {
			ps := stats.ProviderStats[name]
			fmt.Printf("%-10s %-8d %-10d $%-11.2f\n", name, ps.Count, ps.ItemCount, ps.TotalSpent)
		}
	}
	fmt.Println()
}

func printSyncRuns(store storage.Repository) {
	fmt.Println("🔄 RECENT SYNC RUNS")
	fmt.Println(strings.Repeat("-", 40))

	runs, err := store.ListSyncRuns(10)
	if err != nil {
		log.Printf("Error getting sync runs: %v", err)
		return
	}
	if len(runs) == 0 {
		fmt.Println("No sync runs recorded yet")
		fmt.Println()
		return
	}

	fmt.Printf("%-20s %-10s %-6s %-14s %-10s\n", "Date/Time", "Provider", "Year", "Orders", "Status")
	fmt.Println(strings.Repeat("-", 70))

	for _, run := range runs {
		started, _ := time.Parse("2006-01-02 15:04:05", run.StartedAt)

		counts := fmt.Sprintf("✅%d ❌%d", run.OrdersSynced, run.OrdersDropped)

		fmt.Printf("%-20s %-10s %-6s %-14s %s %s\n",
			started.Format("2006-01-02 15:04"),
			run.Provider,
			yearLabel(run.Year),
			counts,
			statusIcon(run.Status),
			run.Status,
		)
		if run.ErrorMessage != "" {
			fmt.Printf("   Error: %s\n", run.ErrorMessage)
		}
	}
	fmt.Println()
}

func printRecentOrders(store storage.Repository) {
	fmt.Println("📝 RECENTLY SYNCED ORDERS")
	fmt.Println(strings.Repeat("-", 40))

	result, err := store.ListOrders(storage.OrderFilters{
		Limit:     10,
		OrderBy:   "synced_at",
		OrderDesc: true,
	})
	if err != nil {
		log.Printf("Error getting orders: %v", err)
		return
	}
	if len(result.Orders) == 0 {
		fmt.Println("No orders synced yet")
		fmt.Println()
		return
	}

	for _, order := range result.Orders {
		icon := "✅"
		if order.HasRefunds {
			icon = "↩️"
		}
		fmt.Printf("\n%s [%s] Order: %s\n", icon, order.Provider, order.OrderID)
		fmt.Printf("   Date: %s | Total: $%.2f\n", order.OrderDate, order.OrderTotal)
		fmt.Printf("   Transactions: %d | Items: %d", order.TransactionCount, order.ItemCount)
		if order.RefundTotal > 0 {
			fmt.Printf(" | Refunded: $%.2f", order.RefundTotal)
		}
		fmt.Println()
	}
	fmt.Println()

	if result.TotalCount > len(result.Orders) {
		fmt.Printf("(showing %d of %d orders)\n", len(result.Orders), result.TotalCount)
	}
}

func printItemSearch(store storage.Repository, query string) {
	fmt.Printf("🔍 ITEM SEARCH: %q\n", query)
	fmt.Println(strings.Repeat("-", 40))

	items, err := store.SearchItems(query, 20)
	if err != nil {
		log.Printf("Error searching items: %v", err)
		return
	}
	if len(items) == 0 {
		fmt.Println("No matching items")
		return
	}

	for _, item := range items {
		refund := ""
		if item.Refunded {
			refund = " (refunded)"
		}
		fmt.Printf("$%-9.2f [%s] %s%s\n", item.Price, item.Provider, item.Title, refund)
		fmt.Printf("           order %s, %s\n", item.OrderID, item.OrderDate)
	}
	fmt.Printf("\n%d item(s) matched\n", len(items))
}

func statusIcon(status string) string {
	switch status {
	case "completed":
		return "✅"
	case "completed_with_drops":
		return "⚠️"
	case "failed":
		return "❌"
	default:
		return "🔄"
	}
}

func yearLabel(year int) string {
	if year == 0 {
		return "-"
	}
	return strconv.Itoa(year)
}
