package audit

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	auditRepo "github.com/mrlokans/berthplan/internal/database/audit"
	"github.com/mrlokans/berthplan/internal/entities"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// every :memory: connection is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&entities.AuditEvent{})
	require.NoError(t, err)

	repo := auditRepo.NewRepository(db)
	svc := NewService(repo, nil)

	return svc, db
}

func TestService_Log(t *testing.T) {
	svc, db := setupTestService(t)

	event := &entities.AuditEvent{
		EventType:   entities.AuditEventImport,
		Action:      "test_import",
		Description: "Test import event",
		Status:      entities.AuditStatusSuccess,
	}

	err := svc.Log(event)
	require.NoError(t, err)

	var saved entities.AuditEvent
	err = db.First(&saved, event.ID).Error
	require.NoError(t, err)
	assert.Equal(t, "test_import", saved.Action)
}

func TestService_LogImport(t *testing.T) {
	svc, db := setupTestService(t)

	t.Run("clean import", func(t *testing.T) {
		svc.LogImport(ImportSummary{
			ImportID:       "imp-ok",
			Year:           2024,
			BlocksTotal:    2,
			BlocksParsed:   2,
			RecordsCreated: 5,
		}, "192.168.1.1", nil)
		svc.Wait()

		var event entities.AuditEvent
		err := db.Where("import_id = ?", "imp-ok").First(&event).Error
		require.NoError(t, err)
		assert.Equal(t, "schedule_import", event.Action)
		assert.Equal(t, entities.AuditStatusSuccess, event.Status)
		assert.Equal(t, "192.168.1.1", event.IPAddress)
		assert.Contains(t, event.Description, "2 of 2 blocks")
		assert.Contains(t, event.Metadata, `"records_created":5`)
	})

	t.Run("partial import", func(t *testing.T) {
		svc.LogImport(ImportSummary{
			ImportID:      "imp-partial",
			Year:          2024,
			BlocksTotal:   3,
			BlocksParsed:  1,
			BlocksSkipped: 1,
			BlocksErrored: 1,
		}, "", nil)
		svc.Wait()

		var event entities.AuditEvent
		err := db.Where("import_id = ?", "imp-partial").First(&event).Error
		require.NoError(t, err)
		assert.Equal(t, entities.AuditStatusPartial, event.Status)
	})

	t.Run("failed import", func(t *testing.T) {
		svc.LogImport(ImportSummary{ImportID: "imp-failed", Year: 2024}, "", errors.New("database is locked"))
		svc.Wait()

		var event entities.AuditEvent
		err := db.Where("import_id = ?", "imp-failed").First(&event).Error
		require.NoError(t, err)
		assert.Equal(t, entities.AuditStatusFailed, event.Status)
		assert.Contains(t, event.ErrorMsg, "database is locked")
	})
}

func TestService_LogCleanup(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogCleanup("schedule_cleanup", 12, nil)
	svc.LogCleanup("audit_cleanup", 0, errors.New("disk full"))
	svc.Wait()

	var ok entities.AuditEvent
	require.NoError(t, db.Where("action = ?", "schedule_cleanup").First(&ok).Error)
	assert.Equal(t, entities.AuditEventCleanup, ok.EventType)
	assert.Equal(t, "Deleted 12 rows", ok.Description)
	assert.Equal(t, entities.AuditStatusSuccess, ok.Status)

	var failed entities.AuditEvent
	require.NoError(t, db.Where("action = ?", "audit_cleanup").First(&failed).Error)
	assert.Equal(t, entities.AuditStatusFailed, failed.Status)
	assert.Equal(t, "disk full", failed.ErrorMsg)
}

func TestService_GetEvents(t *testing.T) {
	svc, _ := setupTestService(t)

	for i := 0; i < 5; i++ {
		err := svc.Log(&entities.AuditEvent{
			EventType: entities.AuditEventImport,
			Action:    "test",
			Status:    entities.AuditStatusSuccess,
		})
		require.NoError(t, err)
	}
	require.NoError(t, svc.Log(&entities.AuditEvent{
		EventType: entities.AuditEventCleanup,
		Action:    "cleanup",
		Status:    entities.AuditStatusSuccess,
	}))

	events, total, err := svc.GetEvents(10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
	assert.Len(t, events, 6)

	events, total, err = svc.GetEventsByType(entities.AuditEventCleanup, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, events, 1)
}

func TestService_DeleteOldEvents(t *testing.T) {
	svc, db := setupTestService(t)

	oldEvent := &entities.AuditEvent{
		EventType: entities.AuditEventImport,
		Action:    "old",
		Status:    entities.AuditStatusSuccess,
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}
	require.NoError(t, db.Create(oldEvent).Error)

	newEvent := &entities.AuditEvent{
		EventType: entities.AuditEventCleanup,
		Action:    "new",
		Status:    entities.AuditStatusSuccess,
		CreatedAt: time.Now(),
	}
	require.NoError(t, db.Create(newEvent).Error)

	deleted, err := svc.DeleteOldEvents(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining []entities.AuditEvent
	db.Find(&remaining)
	assert.Len(t, remaining, 1)
	assert.Equal(t, "new", remaining[0].Action)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10c", 10, "exactly10c"},
		{"this is a very long string", 10, "this is..."},
		{"", 5, ""},
	}

	for _, tc := range tests {
		result := truncate(tc.input, tc.maxLen)
		assert.Equal(t, tc.expected, result)
	}
}
