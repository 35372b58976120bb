package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nowaker/monarch-amazon-sync/internal/api/dto"
	"github.com/Nowaker/monarch-amazon-sync/internal/api/handlers"
	"github.com/Nowaker/monarch-amazon-sync/internal/infrastructure/storage"
)

func newStatsRouter(repo storage.Repository) *gin.Engine {
	router := gin.New()
	handler := handlers.NewStatsHandler(repo)
	router.GET("/api/stats", handler.Get)
	return router
}

func TestStatsHandler_Get(t *testing.T) {
	t.Run("aggregates across providers", func(t *testing.T) {
		repo := storage.NewMockRepository()
		repo.AddOrder(makeOrderRecord("amazon", "114-0001", 2023))
		repo.AddOrder(makeOrderRecord("amazon", "114-0002", 2023))
		repo.AddOrder(makeOrderRecord("costco", "77788899", 2023))
		router := newStatsRouter(repo)

		req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var response dto.StatsResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))

		assert.Equal(t, 3, response.TotalOrders)
		assert.Equal(t, 6, response.TotalTransactions)
		assert.Equal(t, 9, response.TotalItems)
		assert.InDelta(t, 127.50, response.TotalSpent, 0.001)
		assert.InDelta(t, 37.50, response.TotalRefunded, 0.001)
		assert.Equal(t, 3, response.RefundedOrders)

		// Alphabetical provider order regardless of map iteration.
		require.Len(t, response.Providers, 2)
		assert.Equal(t, "amazon", response.Providers[0].Provider)
		assert.Equal(t, 2, response.Providers[0].Count)
		assert.Equal(t, "costco", response.Providers[1].Provider)
		assert.Equal(t, 1, response.Providers[1].Count)
	})

	t.Run("returns zeros for empty repository", func(t *testing.T) {
		repo := storage.NewMockRepository()
		router := newStatsRouter(repo)

		req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var response dto.StatsResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, 0, response.TotalOrders)
		assert.Empty(t, response.Providers)
	})

	t.Run("returns 500 on repository error", func(t *testing.T) {
		repo := storage.NewMockRepository()
		repo.GetStatsErr = assert.AnError
		router := newStatsRouter(repo)

		req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
