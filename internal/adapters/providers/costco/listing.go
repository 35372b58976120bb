package costco

import (
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Nowaker/monarch-amazon-sync/internal/adapters/providers"
)

const (
	// listingURLTemplate addresses the order status listing for one
	// year. Costco keeps the start index parameter even though the
	// whole year renders on one page.
	listingURLTemplate = "https://www.costco.com/OrderStatusCmd?orderYear=%d&startIndex=%d"

	// detailURLTemplate is the detail page for a single order. The
	// warehouse flag selects the in-store receipt rendering.
	detailURLTemplate = "https://www.costco.com/OrderDetailsCmd?orderNumber={orderID}&warehouse={storePurchase}"

	// yearOptionSelector matches the entries of the order year filter.
	yearOptionSelector = "select#orderYear option"
)

func listingURL(year, startIndex int) string {
	return fmt.Sprintf(listingURLTemplate, year, startIndex)
}

func detailURL(order providers.Order) string {
	u := strings.Replace(detailURLTemplate, "{orderID}", url.QueryEscape(order.ID), 1)
	return strings.Replace(u, "{storePurchase}", strconv.FormatBool(order.StorePurchase), 1)
}

// signedOut reports whether the document is Costco's login page rather
// than the order status listing.
func signedOut(doc *goquery.Document) bool {
	if doc.Find("#signInPageTitle").Length() > 0 {
		return true
	}

	found := false
	doc.Find("h1, h2").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if strings.EqualFold(strings.TrimSpace(h.Text()), "sign in") {
			found = true
			return false
		}
		return true
	})
	return found
}

// orderDatePattern matches Costco's numeric order dates, MM/DD/YYYY.
var orderDatePattern = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)

// parseListing extracts the order records from the order status table.
// Rows without a decodable order number are skipped with a diagnostic.
func parseListing(doc *goquery.Document, logger *slog.Logger) []providers.Order {
	var orders []providers.Order
	doc.Find("table.order-history tr.order-row").Each(func(_ int, row *goquery.Selection) {
		id, warehouse := orderRef(row)
		if id == "" {
			logger.Debug("skipping listing row without order number",
				slog.String("snippet", snippet(row)),
			)
			return
		}

		orders = append(orders, providers.Order{
			ID:            id,
			Date:          orderDate(row),
			StorePurchase: warehouse,
		})
	})
	return orders
}

// orderRef decodes the order number and the warehouse flag from the
// first detail link in the row. In-warehouse receipts carry
// warehouse=true in the same link.
func orderRef(row *goquery.Selection) (string, bool) {
	var id string
	var warehouse bool
	row.Find(`a[href*="orderNumber="]`).EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, ok := link.Attr("href")
		if !ok {
			return true
		}
		u, err := url.Parse(href)
		if err != nil {
			return true
		}
		if v := u.Query().Get("orderNumber"); v != "" {
			id = v
			warehouse = u.Query().Get("warehouse") == "true"
			return false
		}
		return true
	})
	return id, warehouse
}

func orderDate(row *goquery.Selection) string {
	text := row.Find("td.order-date").Text()
	if text == "" {
		text = row.Text()
	}
	return orderDatePattern.FindString(text)
}

// snippet trims a selection's text down to something loggable.
func snippet(sel *goquery.Selection) string {
	text := strings.Join(strings.Fields(sel.Text()), " ")
	if len(text) > 80 {
		text = text[:80]
	}
	return text
}
