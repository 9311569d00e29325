package http

import (
	"context"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/berthplan/internal/entities"
	"github.com/mrlokans/berthplan/internal/services"
)

// This file consolidates the store interfaces used by HTTP controllers.
// Each controller depends only on the methods it calls.

// ScheduleImporter runs bulletin imports.
type ScheduleImporter interface {
	Validate(req services.ImportRequest) error
	Import(ctx context.Context, req services.ImportRequest) (services.ImportReport, error)
	Begin(req services.ImportRequest) (services.ImportRequest, error)
	Abandon(importID string, cause error)
	Preview(req services.ImportRequest) (services.ImportReport, error)
}

// ScheduleReader provides read access to stored schedule rows.
type ScheduleReader interface {
	ListByDate(date string) ([]entities.ScheduleRecord, error)
	ListRange(from, to string) ([]entities.ScheduleRecord, error)
	ClearUpdateFlag(id uint) error
}

// BatchReader provides read access to import batches.
type BatchReader interface {
	Get(id string) (*entities.ImportBatch, error)
	List(limit int) ([]entities.ImportBatch, error)
}

// AuditReader provides read access to the audit trail.
type AuditReader interface {
	GetEvents(limit, offset int) ([]entities.AuditEvent, int64, error)
	GetEventsByType(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error)
	GetEventsByImport(importID string) ([]entities.AuditEvent, error)
}

// TaskQueue enqueues background work and reports task status.
type TaskQueue interface {
	Enqueue(ctx context.Context, tasks ...backlite.Task) ([]string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// Pinger checks storage connectivity.
type Pinger interface {
	Ping() error
}
