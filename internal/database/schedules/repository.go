package schedules

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/berthplan/internal/entities"
)

// UpsertResult counts what an upsert did to each incoming record.
type UpsertResult struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	// Conflicts counts records that collided with an earlier record of the
	// same call on ship name and schedule date but carried a different hash.
	Conflicts int `json:"conflicts"`
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert stores records keyed by ship name and schedule date in a single
// transaction. A row whose data hash matches is left as is apart from its
// last import id; a row whose hash differs is overwritten and flagged with
// update_flg. When two records of the same call share a key, the later one
// is stored, update_flg keeps its earlier value and the pair counts as a
// conflict. IDs of the passed records are filled in.
func (r *Repository) Upsert(records []entities.ScheduleRecord) (UpsertResult, error) {
	var result UpsertResult

	err := r.db.Transaction(func(tx *gorm.DB) error {
		seen := make(map[string]bool, len(records))
		for i := range records {
			rec := &records[i]
			key := rec.ShipName + "\x1f" + rec.ScheduleDate
			inBatch := seen[key]
			seen[key] = true

			var existing entities.ScheduleRecord
			err := tx.Where("ship_name = ? AND schedule_date = ?", rec.ShipName, rec.ScheduleDate).First(&existing).Error

			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				rec.ID = 0
				if err := tx.Create(rec).Error; err != nil {
					return fmt.Errorf("create %s on %s: %w", rec.ShipName, rec.ScheduleDate, err)
				}
				result.Created++

			case err != nil:
				return fmt.Errorf("lookup %s on %s: %w", rec.ShipName, rec.ScheduleDate, err)

			case existing.DataHash == rec.DataHash:
				if existing.LastImportID != rec.LastImportID {
					if err := tx.Model(&existing).Update("last_import_id", rec.LastImportID).Error; err != nil {
						return fmt.Errorf("touch %s on %s: %w", rec.ShipName, rec.ScheduleDate, err)
					}
				}
				rec.ID = existing.ID
				rec.UpdateFlg = existing.UpdateFlg
				rec.CreatedAt = existing.CreatedAt
				result.Unchanged++

			default:
				rec.ID = existing.ID
				rec.CreatedAt = existing.CreatedAt
				rec.UpdateFlg = true
				if inBatch {
					rec.UpdateFlg = existing.UpdateFlg
				}
				if err := tx.Save(rec).Error; err != nil {
					return fmt.Errorf("update %s on %s: %w", rec.ShipName, rec.ScheduleDate, err)
				}
				if inBatch {
					result.Conflicts++
				} else {
					result.Updated++
				}
			}
		}
		return nil
	})
	if err != nil {
		return UpsertResult{}, err
	}
	return result, nil
}

// ListByDate returns the schedule of one day (YYYY-MM-DD) ordered by berth and
// arrival.
func (r *Repository) ListByDate(date string) ([]entities.ScheduleRecord, error) {
	var records []entities.ScheduleRecord
	err := r.db.Where("schedule_date = ?", date).
		Order("berth_number ASC, arrival_time ASC, ship_name ASC").
		Find(&records).Error
	return records, err
}

// ListRange returns every row with from <= schedule_date <= to.
func (r *Repository) ListRange(from, to string) ([]entities.ScheduleRecord, error) {
	var records []entities.ScheduleRecord
	err := r.db.Where("schedule_date BETWEEN ? AND ?", from, to).
		Order("schedule_date ASC, berth_number ASC, arrival_time ASC").
		Find(&records).Error
	return records, err
}

// ListByImport returns the rows last touched by an import batch.
func (r *Repository) ListByImport(importID string) ([]entities.ScheduleRecord, error) {
	var records []entities.ScheduleRecord
	err := r.db.Where("last_import_id = ?", importID).
		Order("schedule_date ASC, ship_name ASC").
		Find(&records).Error
	return records, err
}

// DeleteBefore removes rows scheduled before date (YYYY-MM-DD).
// Returns the number of deleted rows.
func (r *Repository) DeleteBefore(date string) (int64, error) {
	result := r.db.Where("schedule_date < ?", date).Delete(&entities.ScheduleRecord{})
	return result.RowsAffected, result.Error
}

// ClearUpdateFlag resets update_flg on the given row.
func (r *Repository) ClearUpdateFlag(id uint) error {
	result := r.db.Model(&entities.ScheduleRecord{}).Where("id = ?", id).Update("update_flg", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
