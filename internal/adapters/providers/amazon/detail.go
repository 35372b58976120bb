package amazon

import (
	"log/slog"
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Nowaker/monarch-amazon-sync/internal/adapters/providers"
	"github.com/Nowaker/monarch-amazon-sync/internal/adapters/scrape"
)

// parseDetail extracts items and transaction blocks from an order
// detail page and partitions the items into the transactions by refund
// status.
func parseDetail(doc *goquery.Document, orderID string, logger *slog.Logger) []providers.OrderTransaction {
	items := parseItems(doc, logger)
	txns := parseTransactions(doc, logger)
	return providers.PartitionItems(orderID, items, txns)
}

// parseItems walks the shipment sections. Each section's status label
// decides whether its items count as refunded.
func parseItems(doc *goquery.Document, logger *slog.Logger) []providers.Item {
	var items []providers.Item
	doc.Find("div.shipment").Each(func(_ int, section *goquery.Selection) {
		refunded := refundedSection(section)
		section.Find("div.yohtmlc-item").Each(func(_ int, node *goquery.Selection) {
			title := strings.TrimSpace(node.Find("a.a-link-normal").First().Text())
			if title == "" {
				logger.Debug("skipping item without title",
					slog.String("snippet", snippet(node)),
				)
				return
			}

			price := scrape.ParseAmount(node.Find("span.a-color-price").First().Text())
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

// refundedSection reads the shipment status label. "Refunded" and
// "Return complete" sections hold returned items; anything else is a
// regular shipment.
func refundedSection(section *goquery.Selection) bool {
	status := strings.ToLower(section.Find("span.shipment-status").First().Text())
	return strings.Contains(status, "refund") || strings.Contains(status, "return complete")
}

// parseTransactions scans the payment rows under #transactions. A row
// counts as a transaction when it carries a date or a dollar figure;
// everything else is section chrome. A transaction row whose amount
// will not parse keeps a zero amount rather than being dropped, its
// refund flag still matters for partitioning.
func parseTransactions(doc *goquery.Document, logger *slog.Logger) []providers.OrderTransaction {
	var txns []providers.OrderTransaction
	doc.Find("#transactions div.a-row").Each(func(_ int, row *goquery.Selection) {
		text := strings.Join(strings.Fields(row.Text()), " ")
		date := orderDatePattern.FindString(text)
		amount := scrape.AmountIn(text)

		if date == "" && math.IsNaN(amount) {
			return
		}
		if math.IsNaN(amount) {
			logger.Debug("transaction amount unparseable, defaulting to zero",
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
