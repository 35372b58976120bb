package amazon

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
	// listingURLTemplate addresses one page of the order history. The
	// year filter and the record offset are the only moving parts.
	listingURLTemplate = "https://www.amazon.com/gp/css/order-history?orderFilter=year-%d&startIndex=%d"

	// detailURLTemplate is the detail page for a single order.
	detailURLTemplate = "https://www.amazon.com/gp/your-account/order-details?orderID={orderID}"

	// yearOptionSelector matches the entries of the order history time
	// filter. Year entries carry values like "year-2019".
	yearOptionSelector = "select#time-filter option"
)

func listingURL(year, startIndex int) string {
	return fmt.Sprintf(listingURLTemplate, year, startIndex)
}

func detailURL(order providers.Order) string {
	return strings.Replace(detailURLTemplate, "{orderID}", url.QueryEscape(order.ID), 1)
}

// signedOut reports whether the document is Amazon's login page rather
// than the order history. The marker is a "Sign in" heading.
func signedOut(doc *goquery.Document) bool {
	found := false
	doc.Find("h1, h2, h3, h4").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if strings.EqualFold(strings.TrimSpace(h.Text()), "sign in") {
			found = true
			return false
		}
		return true
	})
	return found
}

// orderDatePattern matches the "Month DD, YYYY" fragment shown in an
// order card's header.
var orderDatePattern = regexp.MustCompile(`[A-Z][a-z]+ \d{1,2}, \d{4}`)

// parseListing extracts the order records from one order history page.
// Cards without a decodable order ID are skipped with a diagnostic.
func parseListing(doc *goquery.Document, logger *slog.Logger) []providers.Order {
	var orders []providers.Order
	doc.Find("div.order-card").Each(func(_ int, card *goquery.Selection) {
		id := orderID(card)
		if id == "" {
			logger.Debug("skipping listing entry without order id",
				slog.String("snippet", snippet(card)),
			)
			return
		}

		orders = append(orders, providers.Order{
			ID:   id,
			Date: orderDate(card),
		})
	})
	return orders
}

// orderID decodes the order identifier from the first link in the card
// that carries an orderID query parameter. Amazon never renders the ID
// as plain text on the listing.
func orderID(card *goquery.Selection) string {
	var id string
	card.Find(`a[href*="orderID="]`).EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, ok := link.Attr("href")
		if !ok {
			return true
		}
		u, err := url.Parse(href)
		if err != nil {
			return true
		}
		if v := u.Query().Get("orderID"); v != "" {
			id = v
			return false
		}
		return true
	})
	return id
}

func orderDate(card *goquery.Selection) string {
	text := card.Find("div.order-info").Text()
	if text == "" {
		text = card.Text()
	}
	return orderDatePattern.FindString(text)
}

// pageCount reads the pagination control under the listing. The page
// numbers render as plain link text, the highest number wins; a
// missing control means a single page.
func pageCount(doc *goquery.Document) int {
	count := 1
	doc.Find("ul.a-pagination li").Each(func(_ int, li *goquery.Selection) {
		if n, err := strconv.Atoi(strings.TrimSpace(li.Text())); err == nil && n > count {
			count = n
		}
	})
	return count
}

// snippet trims a selection's text down to something loggable.
func snippet(sel *goquery.Selection) string {
	text := strings.Join(strings.Fields(sel.Text()), " ")
	if len(text) > 80 {
		text = text[:80]
	}
	return text
}
