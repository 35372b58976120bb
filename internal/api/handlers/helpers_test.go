package handlers_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Nowaker/monarch-amazon-sync/internal/adapters/providers"
	"github.com/Nowaker/monarch-amazon-sync/internal/application/service"
	"github.com/Nowaker/monarch-amazon-sync/internal/infrastructure/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubProvider returns canned data so handler tests never touch a
// storefront. With block set, FetchOrders holds the provider lock
// until the job context is cancelled.
type stubProvider struct {
	name   string
	probe  providers.AuthProbe
	orders []providers.Order
	block  bool
}

func (s *stubProvider) Name() string        { return s.name }
func (s *stubProvider) DisplayName() string { return s.name }

func (s *stubProvider) ProbeAuth(_ context.Context) providers.AuthProbe {
	return s.probe
}

func (s *stubProvider) FetchOrders(ctx context.Context, opts providers.FetchOptions) ([]providers.Order, error) {
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	if opts.OnProgress != nil {
		opts.OnProgress(providers.Progress{
			Provider: s.name,
			Stage:    providers.StageComplete,
			Total:    len(s.orders),
			Complete: len(s.orders),
		})
	}
	return s.orders, nil
}

func (s *stubProvider) FetchOrderTransactions(_ context.Context, order providers.Order) (providers.Order, error) {
	return order, nil
}

// newSyncService builds a service over stub providers and a fresh mock
// repository.
func newSyncService(t *testing.T, stubs ...*stubProvider) (*service.SyncService, *storage.MockRepository) {
	t.Helper()

	registry := providers.NewRegistry(testLogger())
	for _, stub := range stubs {
		require.NoError(t, registry.Register(stub))
	}

	repo := storage.NewMockRepository()
	return service.NewSyncService(registry, repo, testLogger()), repo
}

// makeOrderRecord builds a seeded order with one charge and one refund
// transaction.
func makeOrderRecord(provider, orderID string, year int) *storage.OrderRecord {
	record := &storage.OrderRecord{
		Provider:  provider,
		OrderID:   orderID,
		OrderDate: "January 5, 2023",
		OrderYear: year,
	}
	record.SetTransactions([]storage.Transaction{
		{
			ID:     orderID + "-charge",
			Date:   "January 5, 2023",
			Amount: 42.50,
			Items: []storage.TransactionItem{
				{Title: "USB-C Cable", Price: 12.50},
				{Title: "Laptop Stand", Price: 30.00},
			},
		},
		{
			ID:     orderID + "-refund",
			Date:   "January 9, 2023",
			Amount: 12.50,
			Refund: true,
			Items: []storage.TransactionItem{
				{Title: "USB-C Cable", Price: 12.50, Refunded: true},
			},
		},
	})
	return record
}
