package domain

import "time"

// RunStatus represents the status of an ingestion run.
// Values include RunStatusPending, RunStatusRunning, RunStatusCompleted, and RunStatusFailed.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// StopReason names the condition that ended an ingestion run.
type StopReason string

const (
	// StopCompleted means the run walked every known page.
	StopCompleted StopReason = "completed"
	// StopEmptyPage means upstream returned a page with zero records.
	StopEmptyPage StopReason = "empty_page"
	// StopStale means the leading record of a page was older than the
	// staleness threshold, so all later pages are assumed older still.
	StopStale StopReason = "stale_page"
	// StopPlateau means enough consecutive full-update pages were seen to
	// assume the feed looped back into already-ingested data.
	StopPlateau StopReason = "update_plateau"
	// StopFetchFailed means a page fetch exhausted its retry budget.
	StopFetchFailed StopReason = "fetch_failed"
)

// RunStats aggregates the counters of one ingestion run. The counters are
// observational; only the plateau gate feeds back into control flow.
type RunStats struct {
	Pages      int        `json:"pages"`
	Created    int        `json:"created"`
	Updated    int        `json:"updated"`
	Skipped    int        `json:"skipped"`
	Processed  int        `json:"processed"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    time.Time  `json:"end_time"`
	StopReason StopReason `json:"stop_reason"`
}

// SyncRun records one ingestion run in the database. Runs are fire-and-forget
// from the caller's perspective; this row and the logs are the only
// observable outcome.
type SyncRun struct {
	ID          string     `gorm:"type:text;primaryKey" json:"id"`
	Status      RunStatus  `gorm:"default:pending;index" json:"status"`
	FirstRun    bool       `json:"first_run"`
	Pages       int        `gorm:"default:0" json:"pages"`
	Created     int        `gorm:"default:0" json:"created"`
	Updated     int        `gorm:"default:0" json:"updated"`
	Skipped     int        `gorm:"default:0" json:"skipped"`
	StopReason  string     `json:"stop_reason,omitempty"`
	ErrorLog    string     `json:"error_log,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName returns the database table name for SyncRun.
func (SyncRun) TableName() string {
	return "sync_runs"
}
