package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nowaker/monarch-amazon-sync/internal/adapters/providers"
	"github.com/Nowaker/monarch-amazon-sync/internal/api/dto"
	"github.com/Nowaker/monarch-amazon-sync/internal/api/handlers"
	"github.com/Nowaker/monarch-amazon-sync/internal/application/service"
)

func newAuthRouter(svc *service.SyncService) *gin.Engine {
	router := gin.New()
	handler := handlers.NewAuthHandler(svc)
	router.GET("/api/auth", handler.List)
	router.GET("/api/auth/:provider", handler.Get)
	return router
}

func TestAuthHandler_List(t *testing.T) {
	t.Run("reports pending before any probe", func(t *testing.T) {
		svc, _ := newSyncService(t,
			authedStub("amazon"),
			&stubProvider{name: "walmart", probe: providers.AuthProbe{Status: providers.AuthNotLoggedIn}},
		)
		router := newAuthRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/api/auth", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var response dto.AuthStatusListResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))

		assert.Equal(t, 2, response.Count)
		require.Len(t, response.Providers, 2)
		assert.Equal(t, "amazon", response.Providers[0].Provider)
		assert.Equal(t, "pending", response.Providers[0].Status)
		assert.Equal(t, "walmart", response.Providers[1].Provider)
		assert.Equal(t, "pending", response.Providers[1].Status)
	})

	t.Run("refresh probes every provider", func(t *testing.T) {
		svc, _ := newSyncService(t,
			authedStub("amazon"),
			&stubProvider{name: "walmart", probe: providers.AuthProbe{Status: providers.AuthNotLoggedIn}},
		)
		router := newAuthRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/api/auth?refresh=true", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var response dto.AuthStatusListResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))

		require.Len(t, response.Providers, 2)
		assert.Equal(t, "success", response.Providers[0].Status)
		assert.Equal(t, 2015, response.Providers[0].StartingYear)
		assert.Equal(t, "not_logged_in", response.Providers[1].Status)
		assert.Equal(t, 0, response.Providers[1].StartingYear)

		// The refresh result is now served from cache.
		req = httptest.NewRequest(http.MethodGet, "/api/auth", nil)
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		var cached dto.AuthStatusListResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&cached))
		assert.Equal(t, "success", cached.Providers[0].Status)
	})
}

func TestAuthHandler_Get(t *testing.T) {
	t.Run("refresh probes one provider", func(t *testing.T) {
		svc, _ := newSyncService(t, authedStub("costco"))
		router := newAuthRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/api/auth/costco?refresh=true", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var response dto.AuthStatusResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, "costco", response.Provider)
		assert.Equal(t, "success", response.Status)
		assert.Equal(t, 2015, response.StartingYear)
	})

	t.Run("serves cached state without refresh", func(t *testing.T) {
		svc, _ := newSyncService(t, authedStub("costco"))
		router := newAuthRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/api/auth/costco", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var response dto.AuthStatusResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, "pending", response.Status)
	})

	t.Run("returns 404 for unknown provider", func(t *testing.T) {
		svc, _ := newSyncService(t, authedStub("costco"))
		router := newAuthRouter(svc)

		for _, url := range []string{"/api/auth/target", "/api/auth/target?refresh=true"} {
			req := httptest.NewRequest(http.MethodGet, url, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusNotFound, rec.Code, url)
		}
	})
}
