package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nowaker/monarch-amazon-sync/internal/adapters/providers"
	appsync "github.com/Nowaker/monarch-amazon-sync/internal/application/sync"
	"github.com/Nowaker/monarch-amazon-sync/internal/infrastructure/storage"
)

// Helper to create a test logger
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubProvider is a controllable provider for job lifecycle tests.
// With block set, FetchOrders parks until the job context ends, which
// is how cancellation and timeout paths are exercised.
type stubProvider struct {
	name     string
	probe    providers.AuthProbe
	orders   []providers.Order
	fetchErr error
	block    bool
}

func (s *stubProvider) Name() string        { return s.name }
func (s *stubProvider) DisplayName() string { return s.name }

func (s *stubProvider) ProbeAuth(context.Context) providers.AuthProbe { return s.probe }

func (s *stubProvider) FetchOrders(ctx context.Context, opts providers.FetchOptions) ([]providers.Order, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if opts.OnProgress != nil {
		n := len(s.orders)
		opts.OnProgress(providers.Progress{Provider: s.name, Stage: providers.StagePageScan, Total: 1, Complete: 1})
		opts.OnProgress(providers.Progress{Provider: s.name, Stage: providers.StageDownload, Total: n, Complete: n})
		opts.OnProgress(providers.Progress{Provider: s.name, Stage: providers.StageComplete, Total: n, Complete: n})
	}
	return s.orders, nil
}

func (s *stubProvider) FetchOrderTransactions(_ context.Context, o providers.Order) (providers.Order, error) {
	return o, nil
}

func newTestService(t *testing.T, stubs ...*stubProvider) (*SyncService, *storage.MockRepository) {
	t.Helper()

	registry := providers.NewRegistry(testLogger())
	for _, stub := range stubs {
		require.NoError(t, registry.Register(stub))
	}

	repo := storage.NewMockRepository()
	return NewSyncService(registry, repo, testLogger()), repo
}

func authedProvider(name string, orders ...providers.Order) *stubProvider {
	return &stubProvider{
		name:   name,
		probe:  providers.AuthProbe{Status: providers.AuthSuccess, StartingYear: 2015},
		orders: orders,
	}
}

func waitForStatus(t *testing.T, svc *SyncService, jobID string, status SyncStatus) *SyncJob {
	t.Helper()

	require.Eventually(t, func() bool {
		job, err := svc.GetSyncJob(jobID)
		return err == nil && job.Status == status
	}, 2*time.Second, 5*time.Millisecond, "job never reached status %s", status)

	job, err := svc.GetSyncJob(jobID)
	require.NoError(t, err)
	return job
}

func TestSyncService_StartSync_UnknownProvider(t *testing.T) {
	svc, _ := newTestService(t, authedProvider("walmart"))

	_, err := svc.StartSync(context.Background(), SyncRequest{Provider: "unknown"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid provider")
}

func TestSyncService_StartSync_RunsJobToCompletion(t *testing.T) {
	provider := authedProvider("amazon",
		providers.Order{ID: "112-1", Date: "July 4, 2023"},
		providers.Order{ID: "112-2", Date: "July 9, 2023"},
	)
	svc, repo := newTestService(t, provider)

	jobID, err := svc.StartSync(context.Background(), SyncRequest{Provider: "amazon", Year: 2023})
	require.NoError(t, err)
	require.NotEmpty(t, jobID)

	job := waitForStatus(t, svc, jobID, StatusCompleted)

	require.NotNil(t, job.Result)
	assert.Equal(t, 2, job.Result.OrdersFound)
	assert.Equal(t, 2, job.Result.OrdersSynced)
	assert.NotNil(t, job.CompletedAt)
	assert.Equal(t, "completed", job.Progress.CurrentPhase)
	assert.Equal(t, 2, job.Progress.Total)
	assert.Equal(t, 2, job.Progress.Complete)
	assert.Nil(t, job.Error)

	// Orders actually landed in storage.
	saved, err := repo.GetOrder("amazon", "112-1")
	require.NoError(t, err)
	assert.NotNil(t, saved)
}

func TestSyncService_StartSync_ProviderAlreadyRunning(t *testing.T) {
	blocked := &stubProvider{
		name:  "costco",
		probe: providers.AuthProbe{Status: providers.AuthSuccess},
		block: true,
	}
	svc, _ := newTestService(t, blocked)

	jobID, err := svc.StartSync(context.Background(), SyncRequest{Provider: "costco"})
	require.NoError(t, err)

	_, err = svc.StartSync(context.Background(), SyncRequest{Provider: "costco"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")

	// Cancelling the first job releases the provider for new syncs.
	require.NoError(t, svc.CancelSync(jobID))
	require.Eventually(t, func() bool {
		_, err := svc.StartSync(context.Background(), SyncRequest{Provider: "costco"})
		return err == nil
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSyncService_StartSync_AuthFailureFailsJob(t *testing.T) {
	svc, repo := newTestService(t, &stubProvider{
		name:  "walmart",
		probe: providers.AuthProbe{Status: providers.AuthNotLoggedIn},
	})

	jobID, err := svc.StartSync(context.Background(), SyncRequest{Provider: "walmart"})
	require.NoError(t, err)

	job := waitForStatus(t, svc, jobID, StatusFailed)

	require.NotNil(t, job.Error)
	assert.ErrorIs(t, job.Error, appsync.ErrAuthRequired)
	assert.Equal(t, "failed", job.Progress.CurrentPhase)
	assert.False(t, repo.SaveOrderCalled)
}

func TestSyncService_StartSync_FetchFailureFailsJob(t *testing.T) {
	svc, _ := newTestService(t, &stubProvider{
		name:     "amazon",
		probe:    providers.AuthProbe{Status: providers.AuthSuccess},
		fetchErr: errors.New("listing page 1: unexpected status 503"),
	})

	jobID, err := svc.StartSync(context.Background(), SyncRequest{Provider: "amazon"})
	require.NoError(t, err)

	job := waitForStatus(t, svc, jobID, StatusFailed)
	assert.Contains(t, job.Error.Error(), "unexpected status 503")
}

func TestSyncService_CancelSync(t *testing.T) {
	blocked := &stubProvider{
		name:  "amazon",
		probe: providers.AuthProbe{Status: providers.AuthSuccess},
		block: true,
	}
	svc, _ := newTestService(t, blocked)

	jobID, err := svc.StartSync(context.Background(), SyncRequest{Provider: "amazon"})
	require.NoError(t, err)

	require.NoError(t, svc.CancelSync(jobID))

	job, err := svc.GetSyncJob(jobID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, job.Status)
	assert.NotNil(t, job.CompletedAt)
	assert.Equal(t, "cancelled", job.Progress.CurrentPhase)

	// A second cancel is rejected.
	err = svc.CancelSync(jobID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be cancelled")
}

func TestSyncService_JobTimeout(t *testing.T) {
	blocked := &stubProvider{
		name:  "walmart",
		probe: providers.AuthProbe{Status: providers.AuthSuccess},
		block: true,
	}
	svc, _ := newTestService(t, blocked)
	svc.jobTimeout = 25 * time.Millisecond

	jobID, err := svc.StartSync(context.Background(), SyncRequest{Provider: "walmart"})
	require.NoError(t, err)

	job := waitForStatus(t, svc, jobID, StatusFailed)
	assert.Contains(t, job.Error.Error(), "context deadline exceeded")
}

func TestSyncService_GetSyncJob_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetSyncJob("non-existent")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSyncService_ListJobs(t *testing.T) {
	svc, _ := newTestService(t, authedProvider("amazon", providers.Order{ID: "A-1", Date: "May 1, 2024"}))

	assert.Empty(t, svc.ListActiveSyncJobs())
	assert.Empty(t, svc.ListAllSyncJobs())

	jobID, err := svc.StartSync(context.Background(), SyncRequest{Provider: "amazon"})
	require.NoError(t, err)
	waitForStatus(t, svc, jobID, StatusCompleted)

	assert.Empty(t, svc.ListActiveSyncJobs())
	assert.Len(t, svc.ListAllSyncJobs(), 1)
}

func TestSyncService_CancelSync_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.CancelSync("non-existent")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSyncStatus_String(t *testing.T) {
	assert.Equal(t, "pending", string(StatusPending))
	assert.Equal(t, "running", string(StatusRunning))
	assert.Equal(t, "completed", string(StatusCompleted))
	assert.Equal(t, "failed", string(StatusFailed))
	assert.Equal(t, "cancelled", string(StatusCancelled))
}

func TestSyncService_JobIDsAreUnique(t *testing.T) {
	svc, _ := newTestService(t,
		authedProvider("amazon"),
		authedProvider("costco"),
	)

	id1, err := svc.StartSync(context.Background(), SyncRequest{Provider: "amazon"})
	require.NoError(t, err)
	id2, err := svc.StartSync(context.Background(), SyncRequest{Provider: "costco"})
	require.NoError(t, err)

	assert.NotEqual(t, id1, id2)
	waitForStatus(t, svc, id1, StatusCompleted)
	waitForStatus(t, svc, id2, StatusCompleted)
}

func TestSyncService_IsJobStale_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	isStale := svc.IsJobStale("non-existent", 30*time.Minute, 2*time.Hour)

	assert.False(t, isStale)
}

func TestSyncService_IsJobStale_CompletedJobNotStale(t *testing.T) {
	svc, _ := newTestService(t)

	// Manually add a completed job
	svc.jobsMutex.Lock()
	svc.jobs["completed-job"] = &SyncJob{
		ID:        "completed-job",
		Provider:  "walmart",
		Status:    StatusCompleted,
		StartedAt: time.Now().Add(-3 * time.Hour), // Old but completed
		Progress:  SyncProgress{LastUpdate: time.Now().Add(-2 * time.Hour)},
	}
	svc.jobsMutex.Unlock()

	// Completed jobs should never be considered stale
	isStale := svc.IsJobStale("completed-job", 30*time.Minute, 2*time.Hour)

	assert.False(t, isStale)
}

func TestSyncService_IsJobStale_RunningJob_StaleByProgress(t *testing.T) {
	svc, _ := newTestService(t)

	// Add a running job with old progress update
	svc.jobsMutex.Lock()
	svc.jobs["stale-job"] = &SyncJob{
		ID:        "stale-job",
		Provider:  "walmart",
		Status:    StatusRunning,
		StartedAt: time.Now().Add(-10 * time.Minute),
		Progress:  SyncProgress{LastUpdate: time.Now().Add(-35 * time.Minute)}, // No update for 35 min
	}
	svc.jobsMutex.Unlock()

	// Stale because progress hasn't updated in 35 minutes (> 30 min threshold)
	isStale := svc.IsJobStale("stale-job", 30*time.Minute, 2*time.Hour)

	assert.True(t, isStale)
}

func TestSyncService_IsJobStale_RunningJob_StaleByDuration(t *testing.T) {
	svc, _ := newTestService(t)

	// Add a running job that's been running too long
	svc.jobsMutex.Lock()
	svc.jobs["long-job"] = &SyncJob{
		ID:        "long-job",
		Provider:  "walmart",
		Status:    StatusRunning,
		StartedAt: time.Now().Add(-3 * time.Hour),
		Progress:  SyncProgress{LastUpdate: time.Now()}, // Recent progress
	}
	svc.jobsMutex.Unlock()

	// Stale because it's been running longer than the 2 hour max
	isStale := svc.IsJobStale("long-job", 30*time.Minute, 2*time.Hour)

	assert.True(t, isStale)
}

func TestSyncService_MarkStaleJobsAsFailed_MarksStaleJobs(t *testing.T) {
	svc, _ := newTestService(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc.jobsMutex.Lock()
	svc.jobs["stale-job"] = &SyncJob{
		ID:         "stale-job",
		Provider:   "walmart",
		Status:     StatusRunning,
		StartedAt:  time.Now().Add(-3 * time.Hour),
		Progress:   SyncProgress{LastUpdate: time.Now().Add(-35 * time.Minute)},
		cancelFunc: cancel,
	}
	svc.jobsMutex.Unlock()

	marked := svc.MarkStaleJobsAsFailed(30*time.Minute, 2*time.Hour)

	assert.Equal(t, 1, marked)

	job, err := svc.GetSyncJob("stale-job")
	assert.NoError(t, err)
	assert.Equal(t, StatusFailed, job.Status)
	assert.NotNil(t, job.CompletedAt)
	assert.NotNil(t, job.Error)
	assert.Contains(t, job.Error.Error(), "stale")

	// Verify context was cancelled
	select {
	case <-ctx.Done():
		// Expected
	default:
		t.Error("context should have been cancelled")
	}
}

func TestSyncService_MarkStaleJobsAsFailed_SkipsHealthyJobs(t *testing.T) {
	svc, _ := newTestService(t)

	svc.jobsMutex.Lock()
	svc.jobs["healthy-job"] = &SyncJob{
		ID:        "healthy-job",
		Provider:  "walmart",
		Status:    StatusRunning,
		StartedAt: time.Now().Add(-10 * time.Minute),
		Progress:  SyncProgress{LastUpdate: time.Now().Add(-5 * time.Minute)},
	}
	svc.jobsMutex.Unlock()

	marked := svc.MarkStaleJobsAsFailed(30*time.Minute, 2*time.Hour)

	assert.Equal(t, 0, marked)

	job, err := svc.GetSyncJob("healthy-job")
	assert.NoError(t, err)
	assert.Equal(t, StatusRunning, job.Status)
}

func TestSyncService_MarkStaleJobsAsFailed_SkipsCompletedJobs(t *testing.T) {
	svc, _ := newTestService(t)

	// A completed job that would appear "stale" if it were checked
	completedTime := time.Now().Add(-1 * time.Hour)
	svc.jobsMutex.Lock()
	svc.jobs["completed-job"] = &SyncJob{
		ID:          "completed-job",
		Provider:    "walmart",
		Status:      StatusCompleted,
		StartedAt:   time.Now().Add(-3 * time.Hour),
		CompletedAt: &completedTime,
		Progress:    SyncProgress{LastUpdate: completedTime},
	}
	svc.jobsMutex.Unlock()

	marked := svc.MarkStaleJobsAsFailed(30*time.Minute, 2*time.Hour)

	assert.Equal(t, 0, marked)

	job, err := svc.GetSyncJob("completed-job")
	assert.NoError(t, err)
	assert.Equal(t, StatusCompleted, job.Status)
}

func TestSyncService_CleanupOldJobs_RemovesOldCompletedJobs(t *testing.T) {
	svc, _ := newTestService(t)

	oldTime := time.Now().Add(-25 * time.Hour)
	svc.jobsMutex.Lock()
	svc.jobs["old-job"] = &SyncJob{
		ID:          "old-job",
		Provider:    "walmart",
		Status:      StatusCompleted,
		CompletedAt: &oldTime,
	}
	svc.jobsMutex.Unlock()

	removed := svc.CleanupOldJobs(24 * time.Hour)

	assert.Equal(t, 1, removed)

	_, err := svc.GetSyncJob("old-job")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSyncService_CleanupOldJobs_KeepsRecentCompletedJobs(t *testing.T) {
	svc, _ := newTestService(t)

	recentTime := time.Now().Add(-1 * time.Hour)
	svc.jobsMutex.Lock()
	svc.jobs["recent-job"] = &SyncJob{
		ID:          "recent-job",
		Provider:    "walmart",
		Status:      StatusCompleted,
		CompletedAt: &recentTime,
	}
	svc.jobsMutex.Unlock()

	removed := svc.CleanupOldJobs(24 * time.Hour)

	assert.Equal(t, 0, removed)

	_, err := svc.GetSyncJob("recent-job")
	assert.NoError(t, err)
}

func TestSyncService_CleanupOldJobs_KeepsRunningJobs(t *testing.T) {
	svc, _ := newTestService(t)

	svc.jobsMutex.Lock()
	svc.jobs["running-job"] = &SyncJob{
		ID:        "running-job",
		Provider:  "walmart",
		Status:    StatusRunning,
		StartedAt: time.Now().Add(-25 * time.Hour),
	}
	svc.jobsMutex.Unlock()

	removed := svc.CleanupOldJobs(24 * time.Hour)

	// Running jobs are never removed by cleanup
	assert.Equal(t, 0, removed)

	_, err := svc.GetSyncJob("running-job")
	assert.NoError(t, err)
}

func TestSyncService_BackgroundCleanup_StartStop(t *testing.T) {
	svc, _ := newTestService(t)

	svc.StartBackgroundCleanup(10 * time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	svc.StopBackgroundCleanup()

	// Stopping twice is a no-op rather than a panic.
	svc.cleanupStop = nil
	svc.StopBackgroundCleanup()
}
