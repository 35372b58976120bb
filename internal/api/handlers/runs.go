package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Nowaker/monarch-amazon-sync/internal/api/dto"
	"github.com/Nowaker/monarch-amazon-sync/internal/infrastructure/storage"
)

// RunsHandler handles sync run-related HTTP requests.
type RunsHandler struct {
	*Base
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(repo storage.Repository) *RunsHandler {
	return &RunsHandler{
		Base: NewBase(repo),
	}
}

// List handles GET /api/runs - returns recent sync runs, newest first.
func (h *RunsHandler) List(c *gin.Context) {
	limit := QueryInt(c, "limit", 20)

	runs, err := h.repo.ListSyncRuns(limit)
	if err != nil {
		Error(c, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.SyncRunListResponse{
		Runs:  make([]dto.SyncRunResponse, 0, len(runs)),
		Count: len(runs),
	}

	for _, run := range runs {
		response.Runs = append(response.Runs, toSyncRunResponse(run))
	}

	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/runs/:id - returns a single sync run by ID.
func (h *RunsHandler) Get(c *gin.Context) {
	idStr := c.Param("id")

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		Error(c, http.StatusBadRequest, dto.BadRequestError("invalid run ID"))
		return
	}

	run, err := h.repo.GetSyncRun(id)
	if err != nil {
		Error(c, http.StatusInternalServerError, dto.InternalError())
		return
	}

	if run == nil {
		Error(c, http.StatusNotFound, dto.NotFoundError("sync run"))
		return
	}

	c.JSON(http.StatusOK, toSyncRunResponse(*run))
}

// toSyncRunResponse converts a storage SyncRun to an API response.
func toSyncRunResponse(run storage.SyncRun) dto.SyncRunResponse {
	return dto.SyncRunResponse{
		ID:            run.ID,
		Provider:      run.Provider,
		Year:          run.Year,
		StartedAt:     run.StartedAt,
		CompletedAt:   run.CompletedAt,
		OrdersFound:   run.OrdersFound,
		OrdersSynced:  run.OrdersSynced,
		OrdersDropped: run.OrdersDropped,
		Status:        run.Status,
		ErrorMessage:  run.ErrorMessage,
	}
}
