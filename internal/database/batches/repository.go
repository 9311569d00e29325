package batches

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/berthplan/internal/entities"
)

var ErrBatchNotFound = errors.New("import batch not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new batch. Status defaults to pending and StartedAt to now.
func (r *Repository) Create(batch *entities.ImportBatch) error {
	if batch.Status == "" {
		batch.Status = entities.ImportStatusPending
	}
	if batch.StartedAt.IsZero() {
		batch.StartedAt = time.Now()
	}
	return r.db.Create(batch).Error
}

// MarkRunning flips a pending batch to running.
func (r *Repository) MarkRunning(id string) error {
	return r.setStatus(id, entities.ImportStatusRunning)
}

// Complete stores the final counters of a batch and stamps CompletedAt.
func (r *Repository) Complete(batch *entities.ImportBatch) error {
	now := time.Now()
	batch.CompletedAt = &now
	if batch.Status == "" || batch.Status == entities.ImportStatusPending || batch.Status == entities.ImportStatusRunning {
		batch.Status = entities.ImportStatusCompleted
	}

	result := r.db.Model(&entities.ImportBatch{}).Where("id = ?", batch.ID).Updates(map[string]any{
		"status":            batch.Status,
		"blocks_total":      batch.BlocksTotal,
		"blocks_parsed":     batch.BlocksParsed,
		"blocks_skipped":    batch.BlocksSkipped,
		"blocks_errored":    batch.BlocksErrored,
		"records_created":   batch.RecordsCreated,
		"records_updated":   batch.RecordsUpdated,
		"records_unchanged": batch.RecordsUnchanged,
		"errors":            batch.Errors,
		"completed_at":      batch.CompletedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBatchNotFound
	}
	return nil
}

// Fail marks a batch as failed with the given message.
func (r *Repository) Fail(id string, msg string) error {
	now := time.Now()
	result := r.db.Model(&entities.ImportBatch{}).Where("id = ?", id).Updates(map[string]any{
		"status":       entities.ImportStatusFailed,
		"errors":       msg,
		"completed_at": &now,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBatchNotFound
	}
	return nil
}

func (r *Repository) Get(id string) (*entities.ImportBatch, error) {
	var batch entities.ImportBatch
	err := r.db.Where("id = ?", id).First(&batch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBatchNotFound
	}
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

// List returns the most recent batches first.
func (r *Repository) List(limit int) ([]entities.ImportBatch, error) {
	if limit <= 0 {
		limit = 50
	}
	var batches []entities.ImportBatch
	err := r.db.Order("started_at DESC").Limit(limit).Find(&batches).Error
	return batches, err
}

func (r *Repository) setStatus(id string, status entities.ImportStatus) error {
	result := r.db.Model(&entities.ImportBatch{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBatchNotFound
	}
	return nil
}
