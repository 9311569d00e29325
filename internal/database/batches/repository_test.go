package batches

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mrlokans/berthplan/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.ImportBatch{})
	require.NoError(t, err)

	return db
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	batch := &entities.ImportBatch{ID: "imp-1", Year: 2024}
	require.NoError(t, repo.Create(batch))
	assert.Equal(t, entities.ImportStatusPending, batch.Status)
	assert.False(t, batch.StartedAt.IsZero())

	found, err := repo.Get("imp-1")
	require.NoError(t, err)
	assert.Equal(t, 2024, found.Year)
	assert.Equal(t, entities.ImportStatusPending, found.Status)
	assert.Nil(t, found.CompletedAt)

	_, err = repo.Get("missing")
	assert.ErrorIs(t, err, ErrBatchNotFound)
}

func TestRepository_Complete(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	batch := &entities.ImportBatch{ID: "imp-1", Year: 2024}
	require.NoError(t, repo.Create(batch))
	require.NoError(t, repo.MarkRunning("imp-1"))

	batch.BlocksTotal = 3
	batch.BlocksParsed = 2
	batch.BlocksSkipped = 1
	batch.RecordsCreated = 4
	batch.Errors = `[{"index":2,"status":"skipped"}]`
	require.NoError(t, repo.Complete(batch))
	assert.Equal(t, entities.ImportStatusCompleted, batch.Status)

	found, err := repo.Get("imp-1")
	require.NoError(t, err)
	assert.Equal(t, entities.ImportStatusCompleted, found.Status)
	assert.Equal(t, 3, found.BlocksTotal)
	assert.Equal(t, 2, found.BlocksParsed)
	assert.Equal(t, 1, found.BlocksSkipped)
	assert.Equal(t, 4, found.RecordsCreated)
	assert.Contains(t, found.Errors, "skipped")
	require.NotNil(t, found.CompletedAt)

	assert.ErrorIs(t, repo.Complete(&entities.ImportBatch{ID: "missing"}), ErrBatchNotFound)
}

func TestRepository_Fail(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.Create(&entities.ImportBatch{ID: "imp-1", Year: 2024}))
	require.NoError(t, repo.Fail("imp-1", "database is locked"))

	found, err := repo.Get("imp-1")
	require.NoError(t, err)
	assert.Equal(t, entities.ImportStatusFailed, found.Status)
	assert.Equal(t, "database is locked", found.Errors)
	assert.NotNil(t, found.CompletedAt)

	assert.ErrorIs(t, repo.Fail("missing", "x"), ErrBatchNotFound)
	assert.ErrorIs(t, repo.MarkRunning("missing"), ErrBatchNotFound)
}

func TestRepository_List(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	base := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Create(&entities.ImportBatch{
			ID:        id,
			Year:      2024,
			StartedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	batches, err := repo.List(2)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, "c", batches[0].ID)
	assert.Equal(t, "b", batches[1].ID)

	batches, err = repo.List(0)
	require.NoError(t, err)
	assert.Len(t, batches, 3)
}
