package storage

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// MockRepository is an in-memory implementation of Repository for testing.
// It stores all data in maps, making tests fast and isolated. All methods
// are safe for concurrent use since sync jobs write from worker goroutines.
type MockRepository struct {
	mu        sync.Mutex
	orders    map[string]*OrderRecord // Keyed by provider + "/" + order_id
	syncRuns  map[int64]*SyncRun
	nextRunID int64

	// Hooks for test assertions
	SaveOrderCalled    bool
	LastSavedOrder     *OrderRecord
	GetOrderCalled     bool
	StartSyncRunCalled bool
	FailSyncRunCalled  bool

	// Error injection for testing error paths
	SaveOrderErr       error
	GetOrderErr        error
	ListOrdersErr      error
	SearchItemsErr     error
	GetStatsErr        error
	StartSyncRunErr    error
	CompleteSyncRunErr error
	FailSyncRunErr     error
	ListSyncRunsErr    error
	GetSyncRunErr      error
}

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		orders:    make(map[string]*OrderRecord),
		syncRuns:  make(map[int64]*SyncRun),
		nextRunID: 1,
	}
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// Close does nothing for mock
func (m *MockRepository) Close() error {
	return nil
}

func orderKey(provider, orderID string) string {
	return provider + "/" + orderID
}

// SaveOrder saves an order to the in-memory map
func (m *MockRepository) SaveOrder(record *OrderRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveOrderCalled = true
	m.LastSavedOrder = record
	if m.SaveOrderErr != nil {
		return m.SaveOrderErr
	}
	if record.SyncedAt.IsZero() {
		record.SyncedAt = time.Now().UTC()
	}
	// Deep copy to avoid test mutations
	copied := *record
	m.orders[orderKey(record.Provider, record.OrderID)] = &copied
	return nil
}

// GetOrder retrieves an order from the in-memory map
func (m *MockRepository) GetOrder(provider, orderID string) (*OrderRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetOrderCalled = true
	if m.GetOrderErr != nil {
		return nil, m.GetOrderErr
	}
	record, ok := m.orders[orderKey(provider, orderID)]
	if !ok {
		return nil, nil
	}
	return record, nil
}

// ListOrders returns orders matching the given filters with pagination
func (m *MockRepository) ListOrders(filters OrderFilters) (*OrderListResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListOrdersErr != nil {
		return nil, m.ListOrdersErr
	}

	var matching []*OrderRecord
	for _, r := range m.orders {
		if filters.Provider != "" && r.Provider != filters.Provider {
			continue
		}
		if filters.Year != 0 && r.OrderYear != filters.Year {
			continue
		}
		if filters.HasRefunds && !r.HasRefunds {
			continue
		}
		matching = append(matching, r)
	}

	sortOrders(matching, filters)

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}

	total := len(matching)
	start := filters.Offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &OrderListResult{
		Orders:     matching[start:end],
		TotalCount: total,
		Limit:      limit,
		Offset:     filters.Offset,
	}, nil
}

// sortOrders sorts in place, breaking ties on (provider, order_id) so
// results are deterministic across map iteration order
func sortOrders(orders []*OrderRecord, filters OrderFilters) {
	less := func(a, b *OrderRecord) bool {
		switch filters.OrderBy {
		case "total":
			if a.OrderTotal != b.OrderTotal {
				return a.OrderTotal < b.OrderTotal
			}
		case "year":
			if a.OrderYear != b.OrderYear {
				return a.OrderYear < b.OrderYear
			}
		default:
			if !a.SyncedAt.Equal(b.SyncedAt) {
				return a.SyncedAt.Before(b.SyncedAt)
			}
		}
		if a.Provider != b.Provider {
			return a.Provider < b.Provider
		}
		return a.OrderID < b.OrderID
	}

	sort.Slice(orders, func(i, j int) bool {
		if filters.OrderDesc {
			return less(orders[j], orders[i])
		}
		return less(orders[i], orders[j])
	})
}

// SearchItems searches line items across all stored orders
func (m *MockRepository) SearchItems(query string, limit int) ([]ItemSearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SearchItemsErr != nil {
		return nil, m.SearchItemsErr
	}
	if limit <= 0 {
		limit = 50
	}

	lowered := strings.ToLower(query)
	var results []ItemSearchResult
	for _, r := range m.orders {
		for _, txn := range r.Transactions {
			for _, item := range txn.Items {
				if !strings.Contains(strings.ToLower(item.Title), lowered) {
					continue
				}
				results = append(results, ItemSearchResult{
					Provider:      r.Provider,
					OrderID:       r.OrderID,
					OrderDate:     r.OrderDate,
					TransactionID: txn.ID,
					Title:         item.Title,
					Price:         item.Price,
					Refunded:      item.Refunded,
				})
				if len(results) >= limit {
					return results, nil
				}
			}
		}
	}
	return results, nil
}

// GetStats returns statistics computed from the stored orders
func (m *MockRepository) GetStats() (*Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetStatsErr != nil {
		return nil, m.GetStatsErr
	}

	stats := &Stats{
		ProviderStats: make(map[string]ProviderStats),
	}

	for _, r := range m.orders {
		stats.TotalOrders++
		stats.TotalTransactions += r.TransactionCount
		stats.TotalItems += r.ItemCount
		stats.TotalSpent += r.OrderTotal
		stats.TotalRefunded += r.RefundTotal
		if r.HasRefunds {
			stats.RefundedOrders++
		}
		if r.StorePurchase {
			stats.StorePurchases++
		}

		ps := stats.ProviderStats[r.Provider]
		ps.Count++
		ps.TotalSpent += r.OrderTotal
		ps.ItemCount += r.ItemCount
		stats.ProviderStats[r.Provider] = ps
	}

	if stats.TotalOrders > 0 {
		stats.AverageOrderTotal = stats.TotalSpent / float64(stats.TotalOrders)
	}

	return stats, nil
}

// StartSyncRun creates a new sync run and returns its ID
func (m *MockRepository) StartSyncRun(provider string, year int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StartSyncRunCalled = true
	if m.StartSyncRunErr != nil {
		return 0, m.StartSyncRunErr
	}

	id := m.nextRunID
	m.nextRunID++

	m.syncRuns[id] = &SyncRun{
		ID:        id,
		Provider:  provider,
		Year:      year,
		StartedAt: time.Now().UTC().Format(time.RFC3339),
		Status:    "running",
	}

	return id, nil
}

// CompleteSyncRun marks a sync run as complete
func (m *MockRepository) CompleteSyncRun(runID int64, ordersFound, ordersSynced, ordersDropped int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CompleteSyncRunErr != nil {
		return m.CompleteSyncRunErr
	}

	run, ok := m.syncRuns[runID]
	if !ok {
		return nil
	}

	run.CompletedAt = time.Now().UTC().Format(time.RFC3339)
	run.OrdersFound = ordersFound
	run.OrdersSynced = ordersSynced
	run.OrdersDropped = ordersDropped
	run.Status = "completed"
	if ordersDropped > 0 {
		run.Status = "completed_with_drops"
	}

	return nil
}

// FailSyncRun marks a sync run as failed
func (m *MockRepository) FailSyncRun(runID int64, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FailSyncRunCalled = true
	if m.FailSyncRunErr != nil {
		return m.FailSyncRunErr
	}

	run, ok := m.syncRuns[runID]
	if !ok {
		return nil
	}

	run.CompletedAt = time.Now().UTC().Format(time.RFC3339)
	run.Status = "failed"
	run.ErrorMessage = message

	return nil
}

// ListSyncRuns returns stored sync runs, newest first
func (m *MockRepository) ListSyncRuns(limit int) ([]SyncRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListSyncRunsErr != nil {
		return nil, m.ListSyncRunsErr
	}
	if limit <= 0 {
		limit = 20
	}

	ids := make([]int64, 0, len(m.syncRuns))
	for id := range m.syncRuns {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	var runs []SyncRun
	for _, id := range ids {
		runs = append(runs, *m.syncRuns[id])
		if len(runs) >= limit {
			break
		}
	}
	return runs, nil
}

// GetSyncRun retrieves a sync run by ID
func (m *MockRepository) GetSyncRun(runID int64) (*SyncRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetSyncRunErr != nil {
		return nil, m.GetSyncRunErr
	}
	run, ok := m.syncRuns[runID]
	if !ok {
		return nil, nil
	}
	copied := *run
	return &copied, nil
}

// Helper methods for test setup

// AddOrder adds an order directly (for test setup)
func (m *MockRepository) AddOrder(record *OrderRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if record.SyncedAt.IsZero() {
		record.SyncedAt = time.Now().UTC()
	}
	m.orders[orderKey(record.Provider, record.OrderID)] = record
}

// GetAllOrders returns all stored orders (for assertions)
func (m *MockRepository) GetAllOrders() []*OrderRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*OrderRecord, 0, len(m.orders))
	for _, r := range m.orders {
		result = append(result, r)
	}
	return result
}

// Reset clears all data and flags (for reuse between tests)
func (m *MockRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = make(map[string]*OrderRecord)
	m.syncRuns = make(map[int64]*SyncRun)
	m.nextRunID = 1
	m.SaveOrderCalled = false
	m.LastSavedOrder = nil
	m.GetOrderCalled = false
	m.StartSyncRunCalled = false
	m.FailSyncRunCalled = false
	m.SaveOrderErr = nil
	m.GetOrderErr = nil
	m.ListOrdersErr = nil
	m.SearchItemsErr = nil
	m.GetStatsErr = nil
	m.StartSyncRunErr = nil
	m.CompleteSyncRunErr = nil
	m.FailSyncRunErr = nil
	m.ListSyncRunsErr = nil
	m.GetSyncRunErr = nil
}
