package tasks

import (
	"github.com/mrlokans/berthplan/internal/metrics"
)

// CleanupAuditor records cleanup runs in the audit trail.
type CleanupAuditor interface {
	LogCleanup(action string, deleted int64, err error)
}

// Reporter fans cleanup results out to the audit trail and metrics.
// Both sinks are optional.
type Reporter struct {
	Audit   CleanupAuditor
	Metrics metrics.Recorder
}

func (r Reporter) cleanup(action, target string, deleted int64, err error) {
	if r.Audit != nil {
		r.Audit.LogCleanup(action, deleted, err)
	}
	if r.Metrics != nil && err == nil {
		r.Metrics.RecordCleanup(target, deleted)
	}
}
