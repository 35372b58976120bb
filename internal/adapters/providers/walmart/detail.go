package walmart

import (
	"log/slog"
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Nowaker/monarch-amazon-sync/internal/adapters/providers"
	"github.com/Nowaker/monarch-amazon-sync/internal/adapters/scrape"
)

// parseDetail extracts items and payment events from an order detail
// page and partitions the items into the transactions by refund
// status.
func parseDetail(doc *goquery.Document, orderID string, logger *slog.Logger) []providers.OrderTransaction {
	items := parseItems(doc, logger)
	txns := parseTransactions(doc, logger)
	return providers.PartitionItems(orderID, items, txns)
}

// parseItems walks the fulfillment groups. The group label decides
// whether its items count as refunded; Walmart labels these groups
// "Returned" or "Refunded".
func parseItems(doc *goquery.Document, logger *slog.Logger) []providers.Item {
	var items []providers.Item
	doc.Find(`div[data-testid="category-group"]`).Each(func(_ int, group *goquery.Selection) {
		refunded := refundedGroup(group)
		group.Find(`div[data-testid="item-tile"]`).Each(func(_ int, tile *goquery.Selection) {
			title := strings.TrimSpace(tile.Find(`span[data-testid="productName"]`).First().Text())
			if title == "" {
				logger.Debug("skipping item tile without product name",
					slog.String("snippet", snippet(tile)),
				)
				return
			}

			price := scrape.ParseAmount(tile.Find(`span[data-testid="line-price"]`).First().Text())
			if math.IsNaN(price) {
				logger.Debug("skipping item with unparseable price",
					slog.String("title", title),
				)
				return
			}

			items = append(items, providers.Item{
				Title:    title,
				Price:    price,
				Refunded: refunded,
			})
		})
	})
	return items
}

func refundedGroup(group *goquery.Selection) bool {
	label := strings.ToLower(group.Find(`h2[data-testid="category-label"]`).First().Text())
	return strings.Contains(label, "return") || strings.Contains(label, "refund")
}

// parseTransactions scans the payment timeline. An event counts as a
// transaction when it carries a date or a dollar figure; an event
// whose amount will not parse keeps a zero amount.
func parseTransactions(doc *goquery.Document, logger *slog.Logger) []providers.OrderTransaction {
	var txns []providers.OrderTransaction
	doc.Find(`div[data-testid="payment-event"]`).Each(func(_ int, event *goquery.Selection) {
		text := strings.Join(strings.Fields(event.Text()), " ")
		date := bareDatePattern.FindString(text)
		amount := scrape.AmountIn(text)

		if date == "" && math.IsNaN(amount) {
			return
		}
		if math.IsNaN(amount) {
			logger.Debug("payment amount unparseable, defaulting to zero",
				slog.String("line", text),
			)
			amount = 0
		}

		txns = append(txns, providers.OrderTransaction{
			Date:   date,
			Amount: amount,
			Refund: strings.Contains(strings.ToLower(text), "refund"),
		})
	})
	return txns
}
