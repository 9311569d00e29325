package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/berthplan/internal/audit"
	"github.com/mrlokans/berthplan/internal/database"
	"github.com/mrlokans/berthplan/internal/database/batches"
	"github.com/mrlokans/berthplan/internal/database/schedules"
	"github.com/mrlokans/berthplan/internal/http"
	"github.com/mrlokans/berthplan/internal/metrics"
	"github.com/mrlokans/berthplan/internal/scheduler"
	"github.com/mrlokans/berthplan/internal/services"
	"github.com/mrlokans/berthplan/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// ScheduleStore implementations
var _ services.ScheduleStore = (*schedules.Repository)(nil)
var _ http.ScheduleReader = (*schedules.Repository)(nil)
var _ tasks.ScheduleCleaner = (*schedules.Repository)(nil)

// BatchStore implementations
var _ services.BatchStore = (*batches.Repository)(nil)
var _ http.BatchReader = (*batches.Repository)(nil)

var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Audit Trail
// =============================================================================

var _ services.AuditLogger = (*audit.Service)(nil)
var _ services.Archive = (*audit.Archiver)(nil)
var _ http.AuditReader = (*audit.Service)(nil)
var _ tasks.CleanupAuditor = (*audit.Service)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)

// =============================================================================
// Import Pipeline
// =============================================================================

var _ http.ScheduleImporter = (*services.ImportService)(nil)
var _ tasks.ScheduleImporter = (*services.ImportService)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ http.TaskQueue = (*tasks.Client)(nil)
var _ scheduler.Enqueuer = (*tasks.Client)(nil)

var _ metrics.Recorder = (*metrics.PromSink)(nil)
var _ metrics.Recorder = metrics.NopRecorder{}
