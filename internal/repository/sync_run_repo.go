package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/aplika/jobboard/internal/domain"
)

// SyncRunRepository persists ingestion run records.
type SyncRunRepository struct {
	db *gorm.DB
}

// NewSyncRunRepository creates a new SyncRunRepository.
func NewSyncRunRepository(db *gorm.DB) *SyncRunRepository {
	return &SyncRunRepository{db: db}
}

// Start records a new run in running state.
func (r *SyncRunRepository) Start(ctx context.Context, id string, firstRun bool) error {
	now := time.Now().UTC()
	run := &domain.SyncRun{
		ID:        id,
		Status:    domain.RunStatusRunning,
		FirstRun:  firstRun,
		StartedAt: &now,
	}
	return r.db.WithContext(ctx).Create(run).Error
}

// Finish stores the final counters and status of a run.
func (r *SyncRunRepository) Finish(ctx context.Context, id string, status domain.RunStatus, stats *domain.RunStats, errLog string) error {
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":       status,
		"completed_at": &now,
	}
	if stats != nil {
		updates["pages"] = stats.Pages
		updates["created"] = stats.Created
		updates["updated"] = stats.Updated
		updates["skipped"] = stats.Skipped
		updates["stop_reason"] = string(stats.StopReason)
	}
	if errLog != "" {
		updates["error_log"] = errLog
	}
	return r.db.WithContext(ctx).
		Model(&domain.SyncRun{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// Get retrieves one run by id.
func (r *SyncRunRepository) Get(ctx context.Context, id string) (*domain.SyncRun, error) {
	var run domain.SyncRun
	if err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}
