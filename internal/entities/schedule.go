package entities

import "time"

// DateLayout is the format of ScheduleRecord.ScheduleDate.
const DateLayout = "2006-01-02"

// Arrival sides as printed in port bulletins.
const (
	ArrivalSidePort      = "左舷"
	ArrivalSideStarboard = "右舷"
)

type ImportStatus string

const (
	ImportStatusPending   ImportStatus = "pending"
	ImportStatusRunning   ImportStatus = "running"
	ImportStatusCompleted ImportStatus = "completed"
	ImportStatusFailed    ImportStatus = "failed"
)

// ScheduleRecord is one vessel's presence at the quay on one calendar day.
// Every record expanded from the same bulletin block shares DataHash.
type ScheduleRecord struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ShipName       string    `gorm:"uniqueIndex:idx_ship_date;size:256" json:"ship_name"`
	BerthNumber    int       `gorm:"index" json:"berth_number"`
	ArrivalTime    time.Time `json:"arrival_time"`
	DepartureTime  time.Time `json:"departure_time"`
	ArrivalSide    string    `gorm:"size:16" json:"arrival_side"`
	BowPositionM   int       `json:"bow_position_m"`
	SternPositionM int       `json:"stern_position_m"`
	PlannerCompany string    `gorm:"size:256" json:"planner_company,omitempty"`
	ScheduleDate   string    `gorm:"uniqueIndex:idx_ship_date;size:10" json:"schedule_date"` // YYYY-MM-DD
	DataHash       string    `gorm:"index;size:64" json:"data_hash"`
	LastImportID   string    `gorm:"index;size:64" json:"last_import_id"`
	UpdateFlg      bool      `gorm:"default:false" json:"update_flg"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (ScheduleRecord) TableName() string {
	return "schedules"
}

// ImportBatch tracks one execution of the import pipeline over one pasted text.
type ImportBatch struct {
	ID               string       `gorm:"primaryKey;size:64" json:"id"`
	Year             int          `json:"year"`
	Status           ImportStatus `gorm:"size:20;default:'pending'" json:"status"`
	BlocksTotal      int          `json:"blocks_total"`
	BlocksParsed     int          `json:"blocks_parsed"`
	BlocksSkipped    int          `json:"blocks_skipped"`
	BlocksErrored    int          `json:"blocks_errored"`
	RecordsCreated   int          `json:"records_created"`
	RecordsUpdated   int          `json:"records_updated"`
	RecordsUnchanged int          `json:"records_unchanged"`
	Errors           string       `gorm:"type:text" json:"errors,omitempty"` // JSON array of block diagnostics
	StartedAt        time.Time    `json:"started_at"`
	CompletedAt      *time.Time   `json:"completed_at,omitempty"`
}

func (ImportBatch) TableName() string {
	return "import_batches"
}
