package walmart

import (
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Nowaker/monarch-amazon-sync/internal/adapters/providers"
)

const (
	// listingURLTemplate addresses the purchase history for one year.
	// Walmart keeps the start index parameter even though the whole
	// year renders on one page.
	listingURLTemplate = "https://www.walmart.com/orders?year=%d&startIndex=%d"

	// detailURLTemplate is the detail page for a single order. The
	// order identifier is a path segment, not a query parameter.
	detailURLTemplate = "https://www.walmart.com/orders/{orderID}"

	// yearOptionSelector matches the entries of the purchase history
	// year picker.
	yearOptionSelector = `select[data-testid="year-selector"] option`
)

func listingURL(year, startIndex int) string {
	return fmt.Sprintf(listingURLTemplate, year, startIndex)
}

func detailURL(order providers.Order) string {
	return strings.Replace(detailURLTemplate, "{orderID}", url.PathEscape(order.ID), 1)
}

// signedOut reports whether the document is Walmart's login page. The
// heading there opens with "Sign in", e.g. "Sign in to your Walmart
// account".
func signedOut(doc *goquery.Document) bool {
	found := false
	doc.Find("h1, h2").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		text := strings.ToLower(strings.TrimSpace(h.Text()))
		if strings.HasPrefix(text, "sign in") {
			found = true
			return false
		}
		return true
	})
	return found
}

var (
	// purchaseDatePattern matches the "Month DD, YYYY purchase" label
	// on an order group; the date alone is the capture.
	purchaseDatePattern = regexp.MustCompile(`([A-Z][a-z]+ \d{1,2}, \d{4}) purchase`)

	// bareDatePattern is the fallback when the purchase label is
	// missing, e.g. on detail page payment events.
	bareDatePattern = regexp.MustCompile(`[A-Z][a-z]+ \d{1,2}, \d{4}`)
)

// parseListing extracts the order records from one purchase history
// page. Groups without a decodable order link are skipped with a
// diagnostic.
func parseListing(doc *goquery.Document, logger *slog.Logger) []providers.Order {
	var orders []providers.Order
	doc.Find(`div[data-testid="order-group"]`).Each(func(_ int, group *goquery.Selection) {
		id := orderID(group)
		if id == "" {
			logger.Debug("skipping order group without order link",
				slog.String("snippet", snippet(group)),
			)
			return
		}

		orders = append(orders, providers.Order{
			ID:   id,
			Date: orderDate(group),
		})
	})
	return orders
}

// orderID pulls the order identifier out of the first detail link's
// path. Walmart's links look like /orders/200012345678901.
func orderID(group *goquery.Selection) string {
	var id string
	group.Find(`a[href*="/orders/"]`).EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, ok := link.Attr("href")
		if !ok {
			return true
		}
		u, err := url.Parse(href)
		if err != nil {
			return true
		}
		rest := strings.TrimPrefix(u.Path, "/orders/")
		if rest == "" || rest == u.Path {
			return true
		}
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			rest = rest[:i]
		}
		if rest != "" {
			id = rest
			return false
		}
		return true
	})
	return id
}

func orderDate(group *goquery.Selection) string {
	text := strings.Join(strings.Fields(group.Find(`span[data-testid="order-date"]`).Text()), " ")
	if text == "" {
		text = strings.Join(strings.Fields(group.Text()), " ")
	}
	if m := purchaseDatePattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return bareDatePattern.FindString(text)
}

// snippet trims a selection's text down to something loggable.
func snippet(sel *goquery.Selection) string {
	text := strings.Join(strings.Fields(sel.Text()), " ")
	if len(text) > 80 {
		text = text[:80]
	}
	return text
}
