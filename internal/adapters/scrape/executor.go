package scrape

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Nowaker/monarch-amazon-sync/internal/adapters/providers"
)

// DetailFunc fetches and parses the detail page for one listing
// record, returning the enriched order.
type DetailFunc func(ctx context.Context, order providers.Order) (providers.Order, error)

// FetchDetails runs fn over every order with at most limit fetches in
// flight at once. Each task is fault isolated: a failure drops that
// order from the result with a log entry while the siblings keep
// going. done fires after every completion, success or failure, under
// the bookkeeping lock, so consecutive calls always observe the
// complete count growing by exactly one. Result order is completion
// order, not input order.
func FetchDetails(ctx context.Context, orders []providers.Order, limit int, fn DetailFunc, logger *slog.Logger, done func(total, complete int)) []providers.Order {
	if len(orders) == 0 {
		return []providers.Order{}
	}
	if limit <= 0 {
		limit = 1
	}
	if limit > len(orders) {
		limit = len(orders)
	}

	var (
		mu       sync.Mutex
		results  = make([]providers.Order, 0, len(orders))
		complete int
	)

	tasks := make(chan providers.Order)
	var wg sync.WaitGroup

	for i := 0; i < limit; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for order := range tasks {
				enriched, err := fn(ctx, order)

				mu.Lock()
				complete++
				if err != nil {
					logger.Warn("dropping order, detail fetch failed",
						slog.String("order_id", order.ID),
						slog.String("error", err.Error()),
					)
				} else {
					results = append(results, enriched)
				}
				if done != nil {
					done(len(orders), complete)
				}
				mu.Unlock()
			}
		}()
	}

	for _, order := range orders {
		tasks <- order
	}
	close(tasks)
	wg.Wait()

	return results
}
