package scrape

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nowaker/monarch-amazon-sync/internal/adapters/providers"
)

func listingPage(pages int, ids ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, id := range ids {
		fmt.Fprintf(&b, `<div class="order" data-id=%q></div>`, id)
	}
	if pages > 1 {
		b.WriteString(`<ul class="pagination">`)
		for i := 1; i <= pages; i++ {
			fmt.Fprintf(&b, "<li>%d</li>", i)
		}
		b.WriteString("</ul>")
	}
	b.WriteString("</body></html>")
	return b.String()
}

func seqIDs(prefix string, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s-%02d", prefix, i+1)
	}
	return ids
}

func testListingSource() ListingSource {
	return ListingSource{
		PageURL: func(startIndex int) string {
			return fmt.Sprintf("https://shop.test/orders?startIndex=%d", startIndex)
		},
		Parse: func(doc *goquery.Document) []providers.Order {
			var orders []providers.Order
			doc.Find("div.order").Each(func(_ int, sel *goquery.Selection) {
				orders = append(orders, providers.Order{ID: sel.AttrOr("data-id", "")})
			})
			return orders
		},
		PageCount: func(doc *goquery.Document) int {
			count := 0
			doc.Find("ul.pagination li").Each(func(_ int, sel *goquery.Selection) {
				if n, err := strconv.Atoi(strings.TrimSpace(sel.Text())); err == nil && n > count {
					count = n
				}
			})
			return count
		},
	}
}

func TestCollectOrdersMultiPage(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.pages["https://shop.test/orders?startIndex=0"] = listingPage(2, seqIDs("A", 10)...)
	fetcher.pages["https://shop.test/orders?startIndex=10"] = listingPage(2, "B-01", "B-02", "B-03")

	var pageCalls [][2]int
	orders, err := CollectOrders(context.Background(), fetcher, testListingSource(), 0, func(page, totalPages int) {
		pageCalls = append(pageCalls, [2]int{page, totalPages})
	})
	require.NoError(t, err)
	require.Len(t, orders, 13)

	// Records concatenate in strict page order.
	assert.Equal(t, "A-01", orders[0].ID)
	assert.Equal(t, "A-10", orders[9].ID)
	assert.Equal(t, "B-01", orders[10].ID)
	assert.Equal(t, "B-03", orders[12].ID)

	assert.Equal(t, []string{
		"https://shop.test/orders?startIndex=0",
		"https://shop.test/orders?startIndex=10",
	}, fetcher.calledURLs())

	assert.Equal(t, [][2]int{{1, 2}, {2, 2}}, pageCalls)
}

func TestCollectOrdersSinglePage(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.pages["https://shop.test/orders?startIndex=0"] = listingPage(1, "A-01", "A-02")

	orders, err := CollectOrders(context.Background(), fetcher, testListingSource(), 0, nil)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
	assert.Len(t, fetcher.calledURLs(), 1)
}

func TestCollectOrdersMaxPagesCap(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.pages["https://shop.test/orders?startIndex=0"] = listingPage(3, seqIDs("A", 10)...)
	fetcher.pages["https://shop.test/orders?startIndex=10"] = listingPage(3, seqIDs("B", 10)...)
	fetcher.pages["https://shop.test/orders?startIndex=20"] = listingPage(3, seqIDs("C", 10)...)

	orders, err := CollectOrders(context.Background(), fetcher, testListingSource(), 2, nil)
	require.NoError(t, err)
	assert.Len(t, orders, 20)
	assert.Equal(t, []string{
		"https://shop.test/orders?startIndex=0",
		"https://shop.test/orders?startIndex=10",
	}, fetcher.calledURLs())
}

func TestCollectOrdersPageFailureFatal(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.pages["https://shop.test/orders?startIndex=0"] = listingPage(2, seqIDs("A", 10)...)
	fetcher.fail["https://shop.test/orders?startIndex=10"] = errors.New("connection reset")

	orders, err := CollectOrders(context.Background(), fetcher, testListingSource(), 0, nil)
	require.Error(t, err)
	assert.Nil(t, orders)
	assert.Contains(t, err.Error(), "listing page 2")
}

func TestCollectOrdersFirstPageFailureFatal(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.fail["https://shop.test/orders?startIndex=0"] = errors.New("503 service unavailable")

	_, err := CollectOrders(context.Background(), fetcher, testListingSource(), 0, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing page 1")
}
