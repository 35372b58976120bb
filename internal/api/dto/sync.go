package dto

// StartSyncRequest is the request body for starting a sync.
type StartSyncRequest struct {
	Provider string `json:"provider"`  // "amazon", "costco", "walmart"
	Year     int    `json:"year"`      // Order-history year to scan (0 = provider default view)
	MaxPages int    `json:"max_pages"` // Max listing pages to scan (0 = no cap)
}

// StartSyncResponse is returned when a sync is started.
type StartSyncResponse struct {
	JobID    string `json:"job_id"`
	Provider string `json:"provider"`
	Status   string `json:"status"`
}

// SyncJobResponse represents a sync job's status.
type SyncJobResponse struct {
	JobID       string               `json:"job_id"`
	Provider    string               `json:"provider"`
	Status      string               `json:"status"`
	Year        int                  `json:"year,omitempty"`
	MaxPages    int                  `json:"max_pages,omitempty"`
	StartedAt   string               `json:"started_at"`
	CompletedAt *string              `json:"completed_at,omitempty"`
	Progress    SyncProgressResponse `json:"progress"`
	Result      *SyncResultResponse  `json:"result,omitempty"`
	Error       *string              `json:"error,omitempty"`
}

// SyncProgressResponse represents real-time progress.
type SyncProgressResponse struct {
	CurrentPhase string `json:"current_phase"`
	Total        int    `json:"total"`
	Complete     int    `json:"complete"`
	LastUpdate   string `json:"last_update"`
}

// SyncResultResponse represents the final result of a finished job.
type SyncResultResponse struct {
	RunID         int64 `json:"run_id,omitempty"`
	OrdersFound   int   `json:"orders_found"`
	OrdersSynced  int   `json:"orders_synced"`
	OrdersDropped int   `json:"orders_dropped"`
	FindingCount  int   `json:"finding_count,omitempty"`
	ErrorCount    int   `json:"error_count,omitempty"`
}

// ActiveSyncsResponse lists active sync jobs.
type ActiveSyncsResponse struct {
	Jobs  []SyncJobResponse `json:"jobs"`
	Count int               `json:"count"`
}

// AllSyncsResponse lists all sync jobs (including completed).
type AllSyncsResponse struct {
	Jobs  []SyncJobResponse `json:"jobs"`
	Count int               `json:"count"`
}

// MessageResponse is a generic message response.
type MessageResponse struct {
	Message string `json:"message"`
}
