package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"

	"github.com/mrlokans/berthplan/internal/entities"
)

const defaultScheduleRetentionDays = 365

// ScheduleCleaner deletes schedule rows before a YYYY-MM-DD date.
type ScheduleCleaner interface {
	DeleteBefore(date string) (int64, error)
}

// CleanupSchedulesTask removes schedule rows whose day lies more than
// RetentionDays in the past.
type CleanupSchedulesTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for schedule cleanup tasks.
func (t CleanupSchedulesTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_schedules",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ScheduleCutoff returns the first day that is kept when rows older than
// retentionDays are removed, as seen from now in loc.
func ScheduleCutoff(now time.Time, loc *time.Location, retentionDays int) string {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return day.AddDate(0, 0, -retentionDays).Format(entities.DateLayout)
}

// CleanupSchedulesProcessor creates a processor function for CleanupSchedulesTask.
func CleanupSchedulesProcessor(cleaner ScheduleCleaner, loc *time.Location, rep Reporter, logger *zap.Logger) backlite.QueueProcessor[CleanupSchedulesTask] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, task CleanupSchedulesTask) error {
		if cleaner == nil {
			return fmt.Errorf("schedule cleaner not configured")
		}

		retentionDays := task.RetentionDays
		if retentionDays <= 0 {
			retentionDays = defaultScheduleRetentionDays
		}
		cutoff := ScheduleCutoff(time.Now(), loc, retentionDays)

		deleted, err := cleaner.DeleteBefore(cutoff)
		rep.cleanup("schedule_cleanup", "schedules", deleted, err)
		if err != nil {
			return fmt.Errorf("cleanup schedules: %w", err)
		}

		logger.Info("Cleaned up schedule rows",
			zap.Int64("deleted", deleted),
			zap.String("before", cutoff))
		return nil
	}
}

// NewCleanupSchedulesQueue creates a backlite queue for schedule cleanup tasks.
func NewCleanupSchedulesQueue(cleaner ScheduleCleaner, loc *time.Location, rep Reporter, logger *zap.Logger) backlite.Queue {
	return backlite.NewQueue(CleanupSchedulesProcessor(cleaner, loc, rep, logger))
}
