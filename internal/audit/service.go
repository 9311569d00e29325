package audit

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/berthplan/internal/database/audit"
	"github.com/mrlokans/berthplan/internal/entities"
)

// ImportSummary is the part of an import result recorded in the audit trail.
type ImportSummary struct {
	ImportID         string
	Year             int
	BlocksTotal      int
	BlocksParsed     int
	BlocksSkipped    int
	BlocksErrored    int
	RecordsCreated   int
	RecordsUpdated   int
	RecordsUnchanged int
}

// Service provides high-level audit logging functionality.
type Service struct {
	repo   *audit.Repository
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.repo.LogEvent(event); err != nil {
			s.logger.Error("Failed to log audit event",
				zap.String("action", event.Action),
				zap.Error(err))
		}
	}()
}

// Wait blocks until every pending LogAsync write has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// LogImport records a schedule import. The status is partial when any block
// was skipped or errored, failed when err is set.
func (s *Service) LogImport(summary ImportSummary, ipAddr string, err error) {
	event := &entities.AuditEvent{
		EventType: entities.AuditEventImport,
		Action:    "schedule_import",
		Description: fmt.Sprintf("Imported %d of %d blocks for %d: %d created, %d updated, %d unchanged",
			summary.BlocksParsed, summary.BlocksTotal, summary.Year,
			summary.RecordsCreated, summary.RecordsUpdated, summary.RecordsUnchanged),
		ImportID:  summary.ImportID,
		IPAddress: ipAddr,
		Status:    entities.AuditStatusSuccess,
	}

	metadata := map[string]any{
		"year":              summary.Year,
		"blocks_total":      summary.BlocksTotal,
		"blocks_parsed":     summary.BlocksParsed,
		"blocks_skipped":    summary.BlocksSkipped,
		"blocks_errored":    summary.BlocksErrored,
		"records_created":   summary.RecordsCreated,
		"records_updated":   summary.RecordsUpdated,
		"records_unchanged": summary.RecordsUnchanged,
	}
	if mdBytes, e := json.Marshal(metadata); e == nil {
		event.Metadata = string(mdBytes)
	}

	if summary.BlocksSkipped > 0 || summary.BlocksErrored > 0 {
		event.Status = entities.AuditStatusPartial
	}
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// LogCleanup records a retention cleanup run.
func (s *Service) LogCleanup(action string, deleted int64, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventCleanup,
		Action:      action,
		Description: fmt.Sprintf("Deleted %d rows", deleted),
		Status:      entities.AuditStatusSuccess,
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(limit, offset)
}

// GetEventsByType retrieves audit events filtered by type.
func (s *Service) GetEventsByType(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEventsByType(eventType, limit, offset)
}

// GetEventsByImport retrieves the events of one import batch.
func (s *Service) GetEventsByImport(importID string) ([]entities.AuditEvent, error) {
	return s.repo.GetEventsByImport(importID)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
