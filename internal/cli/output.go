package cli

import (
	"fmt"
	"strconv"
	"strings"

	appsync "github.com/Nowaker/monarch-amazon-sync/internal/application/sync"
	"github.com/Nowaker/monarch-amazon-sync/internal/infrastructure/storage"
)

// PrintHeader prints the application header
func PrintHeader(providerName string, year int) {
	view := "current year"
	if year > 0 {
		view = strconv.Itoa(year)
	}
	fmt.Printf("order-sync: %s (%s)\n", providerName, view)
}

// PrintConfiguration prints sync configuration
func PrintConfiguration(providerName string, year, maxPages int) {
	fmt.Printf("Provider: %s", providerName)
	if year > 0 {
		fmt.Printf(" | Year: %d", year)
	}
	if maxPages > 0 {
		fmt.Printf(" | Max pages: %d", maxPages)
	}
	fmt.Print("\n\n")
}

// PrintSyncSummary prints the sync result summary
func PrintSyncSummary(result *appsync.Result, store storage.Repository) {
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("Summary: Found=%d Synced=%d Dropped=%d\n",
		result.OrdersFound,
		result.OrdersSynced,
		result.OrdersDropped)

	// Print per-order errors if any
	if len(result.Errors) > 0 {
		fmt.Println("\nErrors:")
		for _, err := range result.Errors {
			fmt.Printf("  - %v\n", err)
		}
	}

	// Print validation findings if any
	if len(result.Findings) > 0 {
		fmt.Println("\nFindings:")
		for _, finding := range result.Findings {
			if finding.OrderID != "" {
				fmt.Printf("  - [%s] order %s: %s\n", finding.Code, finding.OrderID, finding.Detail)
			} else {
				fmt.Printf("  - [%s] %s\n", finding.Code, finding.Detail)
			}
		}
	}

	// Get stats from database
	if store != nil {
		stats, _ := store.GetStats()
		if stats != nil && stats.TotalOrders > 0 {
			fmt.Printf("\nAll-Time Stats: Orders=%d Items=%d Spent=$%.2f Refunded=$%.2f\n",
				stats.TotalOrders,
				stats.TotalItems,
				stats.TotalSpent,
				stats.TotalRefunded)
		}
	}

	if result.OrdersSynced > 0 {
		fmt.Println("\nSync completed successfully.")
	}
}

// PrintAuthStatus prints one provider's auth probe outcome.
func PrintAuthStatus(displayName string, status string, startingYear int) {
	line := fmt.Sprintf("%-10s %s", displayName, status)
	if startingYear > 0 {
		line += fmt.Sprintf(" (history since %d)", startingYear)
	}
	fmt.Println(line)
}
