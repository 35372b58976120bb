package costco

import (
	"log/slog"
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Nowaker/monarch-amazon-sync/internal/adapters/providers"
	"github.com/Nowaker/monarch-amazon-sync/internal/adapters/scrape"
)

// parseDetail extracts items and payment rows from an order detail
// page and partitions the items into the transactions by refund
// status.
func parseDetail(doc *goquery.Document, orderID string, logger *slog.Logger) []providers.OrderTransaction {
	items := parseItems(doc, logger)
	txns := parseTransactions(doc, logger)
	return providers.PartitionItems(orderID, items, txns)
}

// parseItems walks the order sections. The section title decides
// whether its items count as refunded; Costco labels returned
// merchandise "Items Returned".
func parseItems(doc *goquery.Document, logger *slog.Logger) []providers.Item {
	var items []providers.Item
	doc.Find("div.order-section").Each(func(_ int, section *goquery.Selection) {
		refunded := refundedSection(section)
		section.Find("tr.order-item").Each(func(_ int, row *goquery.Selection) {
			title := strings.TrimSpace(row.Find("td.item-description a").First().Text())
			if title == "" {
				title = strings.TrimSpace(row.Find("td.item-description").First().Text())
			}
			if title == "" {
				logger.Debug("skipping item without description",
					slog.String("snippet", snippet(row)),
				)
				return
			}

			price := scrape.ParseAmount(row.Find("td.item-price").First().Text())
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

func refundedSection(section *goquery.Selection) bool {
	title := strings.ToLower(section.Find("h3.section-title").First().Text())
	return strings.Contains(title, "return") || strings.Contains(title, "refund")
}

// parseTransactions scans the payment summary rows. A row counts as a
// transaction when it carries a date or a dollar figure; a parseable
// date with a broken amount keeps the row at zero.
func parseTransactions(doc *goquery.Document, logger *slog.Logger) []providers.OrderTransaction {
	var txns []providers.OrderTransaction
	doc.Find("div.payment-summary div.payment-row").Each(func(_ int, row *goquery.Selection) {
		text := strings.Join(strings.Fields(row.Text()), " ")
		date := orderDatePattern.FindString(text)
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
