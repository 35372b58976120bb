package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Nowaker/monarch-amazon-sync/internal/api/dto"
	"github.com/Nowaker/monarch-amazon-sync/internal/application/service"
)

// SyncHandler handles sync-related HTTP requests.
type SyncHandler struct {
	syncService *service.SyncService
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(syncService *service.SyncService) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
	}
}

// StartSync handles POST /api/sync - starts a new sync job.
func (h *SyncHandler) StartSync(c *gin.Context) {
	var req dto.StartSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}

	if req.Provider == "" {
		Error(c, http.StatusBadRequest, dto.ValidationError("provider is required"))
		return
	}
	if req.Year < 0 || req.MaxPages < 0 {
		Error(c, http.StatusBadRequest, dto.ValidationError("year and max_pages must not be negative"))
		return
	}

	serviceReq := service.SyncRequest{
		Provider: req.Provider,
		Year:     req.Year,
		MaxPages: req.MaxPages,
	}

	jobID, err := h.syncService.StartSync(c.Request.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownProvider):
			Error(c, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		case errors.Is(err, service.ErrProviderBusy):
			Error(c, http.StatusConflict, dto.ConflictError(err.Error()))
		default:
			Error(c, http.StatusInternalServerError, dto.InternalError())
		}
		return
	}

	c.JSON(http.StatusAccepted, dto.StartSyncResponse{
		JobID:    jobID,
		Provider: req.Provider,
		Status:   string(service.StatusPending),
	})
}

// GetSyncStatus handles GET /api/sync/:jobId - gets sync job status.
func (h *SyncHandler) GetSyncStatus(c *gin.Context) {
	jobID := c.Param("jobId")

	job, err := h.syncService.GetSyncJob(jobID)
	if err != nil {
		Error(c, http.StatusNotFound, dto.NotFoundError("sync job"))
		return
	}

	c.JSON(http.StatusOK, toSyncJobResponse(job))
}

// ListActiveSyncs handles GET /api/sync/active - lists active sync jobs.
func (h *SyncHandler) ListActiveSyncs(c *gin.Context) {
	jobs := h.syncService.ListActiveSyncJobs()

	response := dto.ActiveSyncsResponse{
		Jobs:  make([]dto.SyncJobResponse, 0, len(jobs)),
		Count: len(jobs),
	}

	for _, job := range jobs {
		response.Jobs = append(response.Jobs, toSyncJobResponse(job))
	}

	c.JSON(http.StatusOK, response)
}

// ListAllSyncs handles GET /api/sync - lists all sync jobs.
func (h *SyncHandler) ListAllSyncs(c *gin.Context) {
	jobs := h.syncService.ListAllSyncJobs()

	response := dto.AllSyncsResponse{
		Jobs:  make([]dto.SyncJobResponse, 0, len(jobs)),
		Count: len(jobs),
	}

	for _, job := range jobs {
		response.Jobs = append(response.Jobs, toSyncJobResponse(job))
	}

	c.JSON(http.StatusOK, response)
}

// CancelSync handles DELETE /api/sync/:jobId - cancels a sync job.
func (h *SyncHandler) CancelSync(c *gin.Context) {
	jobID := c.Param("jobId")

	if err := h.syncService.CancelSync(jobID); err != nil {
		Error(c, http.StatusConflict, dto.ConflictError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{
		Message: "Sync job cancelled successfully",
	})
}

// toSyncJobResponse converts a service model to an API response.
func toSyncJobResponse(job *service.SyncJob) dto.SyncJobResponse {
	response := dto.SyncJobResponse{
		JobID:     job.ID,
		Provider:  job.Provider,
		Status:    string(job.Status),
		Year:      job.Request.Year,
		MaxPages:  job.Request.MaxPages,
		StartedAt: job.StartedAt.Format(time.RFC3339),
		Progress:  toProgressResponse(job.Progress),
	}

	if job.CompletedAt != nil {
		completedAt := job.CompletedAt.Format(time.RFC3339)
		response.CompletedAt = &completedAt
	}

	if job.Result != nil {
		response.Result = &dto.SyncResultResponse{
			RunID:         job.Result.RunID,
			OrdersFound:   job.Result.OrdersFound,
			OrdersSynced:  job.Result.OrdersSynced,
			OrdersDropped: job.Result.OrdersDropped,
			FindingCount:  len(job.Result.Findings),
			ErrorCount:    len(job.Result.Errors),
		}
	}

	if job.Error != nil {
		errMsg := job.Error.Error()
		response.Error = &errMsg
	}

	return response
}

// toProgressResponse converts progress to an API response.
func toProgressResponse(progress service.SyncProgress) dto.SyncProgressResponse {
	return dto.SyncProgressResponse{
		CurrentPhase: progress.CurrentPhase,
		Total:        progress.Total,
		Complete:     progress.Complete,
		LastUpdate:   progress.LastUpdate.Format(time.RFC3339),
	}
}
