// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - ScheduleStore: Upsert parsed schedule rows (internal/services/interfaces.go)
//   - BatchStore: Track import batches (internal/services/interfaces.go)
//   - ScheduleReader, BatchReader, AuditReader: Read access for the API (internal/http/stores.go)
//   - ScheduleCleaner, AuditEventCleaner: Retention deletes (internal/tasks)
//
// ## Background Work Interfaces
//
//   - TaskQueue: Enqueue tasks and read their status (internal/http/stores.go)
//   - Enqueuer: Used by the retention scheduler (internal/scheduler/retention.go)
//   - Recorder: Import and cleanup metrics (internal/metrics/prom.go)
//
// # Adding a New Background Task
//
//  1. Define the task and its queue in internal/tasks/
//
//     type RecomputeBerthsTask struct {
//         Date string `json:"date"`
//     }
//
//     func (t RecomputeBerthsTask) Config() backlite.QueueConfig {
//         return backlite.QueueConfig{Name: "recompute_berths", MaxAttempts: 3}
//     }
//
//  2. Register the queue in entrypoint.Run
//
//  3. Expose it in internal/http/tasks.go if it should be triggered manually
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the checks in this codebase.
package interfaces
