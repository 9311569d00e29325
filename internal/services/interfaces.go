package services

import (
	"github.com/mrlokans/berthplan/internal/audit"
	"github.com/mrlokans/berthplan/internal/database/schedules"
	"github.com/mrlokans/berthplan/internal/entities"
)

// ScheduleStore persists parsed schedule rows.
type ScheduleStore interface {
	Upsert(records []entities.ScheduleRecord) (schedules.UpsertResult, error)
}

// BatchStore tracks import batches.
type BatchStore interface {
	Create(batch *entities.ImportBatch) error
	MarkRunning(id string) error
	Complete(batch *entities.ImportBatch) error
	Fail(id string, msg string) error
}

// AuditLogger records import events in the audit trail.
type AuditLogger interface {
	LogImport(summary audit.ImportSummary, ipAddr string, err error)
}

// Archive keeps a copy of each pasted bulletin.
type Archive interface {
	SaveJSON(name string, data any) (string, error)
}
