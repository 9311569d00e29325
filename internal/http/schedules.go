package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/berthplan/internal/entities"
	"github.com/mrlokans/berthplan/internal/services"
	"github.com/mrlokans/berthplan/internal/tasks"
)

const enqueueTimeout = 5 * time.Second

// ImportRequest is the JSON body of the import and preview endpoints.
// Year defaults to the current year.
type ImportRequest struct {
	Text     string `json:"text" binding:"required"`
	Year     int    `json:"year"`
	ImportID string `json:"import_id"`
	Async    bool   `json:"async"`
}

// ScheduleListResponse is returned by GET /api/schedules.
type ScheduleListResponse struct {
	From      string                    `json:"from"`
	To        string                    `json:"to"`
	Count     int                       `json:"count"`
	Schedules []entities.ScheduleRecord `json:"schedules"`
}

type ScheduleController struct {
	importer  ScheduleImporter
	schedules ScheduleReader
	taskQueue TaskQueue
	now       func() time.Time
}

func NewScheduleController(importer ScheduleImporter, schedules ScheduleReader, taskQueue TaskQueue) *ScheduleController {
	return &ScheduleController{
		importer:  importer,
		schedules: schedules,
		taskQueue: taskQueue,
		now:       time.Now,
	}
}

func (sc *ScheduleController) bindImport(c *gin.Context) (ImportRequest, services.ImportRequest, bool) {
	var body ImportRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, "request body too large", "text_too_large")
			return body, services.ImportRequest{}, false
		}
		respondBadRequest(c, "invalid request body: "+err.Error())
		return body, services.ImportRequest{}, false
	}
	year := body.Year
	if year == 0 {
		year = sc.now().Year()
	}
	return body, services.ImportRequest{
		Text:      body.Text,
		Year:      year,
		ImportID:  body.ImportID,
		IPAddress: c.ClientIP(),
	}, true
}

// Import handles POST /api/schedules/import.
// Synchronous imports return the full report. Async imports return 202 with
// the batch and task ids.
func (sc *ScheduleController) Import(c *gin.Context) {
	body, req, ok := sc.bindImport(c)
	if !ok {
		return
	}

	if !body.Async {
		report, err := sc.importer.Import(c.Request.Context(), req)
		if err != nil {
			respondImportError(c, err)
			return
		}
		report.Records = nil
		c.JSON(http.StatusOK, report)
		return
	}

	if sc.taskQueue == nil {
		respondError(c, http.StatusServiceUnavailable, "task queue is disabled", "tasks_disabled")
		return
	}

	req, err := sc.importer.Begin(req)
	if err != nil {
		respondImportError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), enqueueTimeout)
	defer cancel()

	ids, err := sc.taskQueue.Enqueue(ctx, tasks.NewImportScheduleTask(req))
	if err != nil {
		sc.importer.Abandon(req.ImportID, err)
		respondInternalError(c, err, "enqueue schedule import")
		return
	}

	respondAccepted(c, "import enqueued", gin.H{
		"import_id": req.ImportID,
		"task_id":   ids[0],
		"year":      req.Year,
	})
}

// Preview handles POST /api/schedules/preview.
// It parses the text and returns the records without storing them.
func (sc *ScheduleController) Preview(c *gin.Context) {
	_, req, ok := sc.bindImport(c)
	if !ok {
		return
	}

	report, err := sc.importer.Preview(req)
	if err != nil {
		respondImportError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// List handles GET /api/schedules?date=YYYY-MM-DD or ?from=&to=.
func (sc *ScheduleController) List(c *gin.Context) {
	from, to := c.Query("from"), c.Query("to")
	if date := c.Query("date"); date != "" {
		from, to = date, date
	}
	if from == "" && to == "" {
		from = sc.now().Format(entities.DateLayout)
		to = from
	}
	if from == "" {
		from = to
	}
	if to == "" {
		to = from
	}

	fromDate, err := time.Parse(entities.DateLayout, from)
	if err != nil {
		respondBadRequest(c, "invalid date: "+from)
		return
	}
	toDate, err := time.Parse(entities.DateLayout, to)
	if err != nil {
		respondBadRequest(c, "invalid date: "+to)
		return
	}
	if toDate.Before(fromDate) {
		respondBadRequest(c, "from must not be after to")
		return
	}

	var records []entities.ScheduleRecord
	if from == to {
		records, err = sc.schedules.ListByDate(from)
	} else {
		records, err = sc.schedules.ListRange(from, to)
	}
	if err != nil {
		respondInternalError(c, err, "list schedules")
		return
	}
	if records == nil {
		records = []entities.ScheduleRecord{}
	}

	c.JSON(http.StatusOK, ScheduleListResponse{
		From:      from,
		To:        to,
		Count:     len(records),
		Schedules: records,
	})
}

// Acknowledge handles POST /api/schedules/:id/acknowledge.
// It clears the update flag raised when a re-import changed the row.
func (sc *ScheduleController) Acknowledge(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondBadRequest(c, "invalid id")
		return
	}

	err = sc.schedules.ClearUpdateFlag(uint(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "schedule")
		return
	}
	if err != nil {
		respondInternalError(c, err, "acknowledge schedule")
		return
	}
	c.Status(http.StatusNoContent)
}

// respondImportError maps validation failures to client errors.
func respondImportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyText):
		respondError(c, http.StatusBadRequest, err.Error(), "empty_text")
	case errors.Is(err, services.ErrInvalidYear):
		respondError(c, http.StatusBadRequest, err.Error(), "invalid_year")
	case errors.Is(err, services.ErrTextTooLarge):
		respondError(c, http.StatusRequestEntityTooLarge, err.Error(), "text_too_large")
	default:
		respondInternalError(c, err, "schedule import")
	}
}
