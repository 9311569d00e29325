package http

import "net/http"

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Importer  ScheduleImporter
	Schedules ScheduleReader
	Batches   BatchReader
	Audit     AuditReader
	Database  Pinger

	// Task queue (optional); async imports and manual cleanups need it
	TaskQueue TaskQueue

	// Retention settings passed to manually triggered cleanups
	ScheduleRetentionDays int
	AuditRetentionDays    int

	// Request body limit for import and preview
	MaxBodyBytes int64

	// Metrics handler mounted at /metrics (optional)
	MetricsHandler http.Handler

	// Application info
	Version string
}
