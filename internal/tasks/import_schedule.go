package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"

	"github.com/mrlokans/berthplan/internal/services"
)

// ScheduleImporter runs an import accepted earlier by ImportService.Begin.
type ScheduleImporter interface {
	Run(ctx context.Context, req services.ImportRequest) (services.ImportReport, error)
}

// ImportScheduleTask carries one pasted bulletin to a background worker.
type ImportScheduleTask struct {
	ImportID  string `json:"import_id"`
	Year      int    `json:"year"`
	Text      string `json:"text"`
	IPAddress string `json:"ip_address,omitempty"`
}

// Config returns the queue configuration for schedule imports. A failed run
// leaves its batch marked failed, so it is not retried.
func (t ImportScheduleTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "import_schedule",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// NewImportScheduleTask builds a task from an accepted request.
func NewImportScheduleTask(req services.ImportRequest) ImportScheduleTask {
	return ImportScheduleTask{
		ImportID:  req.ImportID,
		Year:      req.Year,
		Text:      req.Text,
		IPAddress: req.IPAddress,
	}
}

// ImportScheduleProcessor creates a processor function for ImportScheduleTask.
func ImportScheduleProcessor(importer ScheduleImporter, logger *zap.Logger) backlite.QueueProcessor[ImportScheduleTask] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, task ImportScheduleTask) error {
		if importer == nil {
			return fmt.Errorf("schedule importer not configured")
		}
		if task.ImportID == "" {
			return fmt.Errorf("import task without import id")
		}

		report, err := importer.Run(ctx, services.ImportRequest{
			ImportID:  task.ImportID,
			Year:      task.Year,
			Text:      task.Text,
			IPAddress: task.IPAddress,
		})
		if err != nil {
			return fmt.Errorf("import %s: %w", task.ImportID, err)
		}

		logger.Info("Background schedule import finished",
			zap.String("import_id", report.ImportID),
			zap.Int("created", report.RecordsCreated),
			zap.Int("updated", report.RecordsUpdated))
		return nil
	}
}

// NewImportScheduleQueue creates a backlite queue for schedule imports.
func NewImportScheduleQueue(importer ScheduleImporter, logger *zap.Logger) backlite.Queue {
	return backlite.NewQueue(ImportScheduleProcessor(importer, logger))
}
