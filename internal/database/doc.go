// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── schedules/       # Schedule rows, upsert keyed by ship and day
//	├── batches/         # Import batch tracking
//	└── audit/           # Audit trail
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase("./berthplan.db", logger)
//
//	schedulesRepo := schedules.NewRepository(db.DB)
//	batchesRepo := batches.NewRepository(db.DB)
//
//	result, err := schedulesRepo.Upsert(records)
//	rows, err := schedulesRepo.ListByDate("2024-03-01")
//
// # Interface Implementations
//
//   - schedules.Repository: implements services.ScheduleStore and http.ScheduleReader
//   - batches.Repository: implements services.BatchStore and http.BatchReader
//
// Compile-time checks live in internal/interfaces.
package database
