package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/berthplan/internal/database/batches"
	"github.com/mrlokans/berthplan/internal/entities"
)

const (
	defaultBatchLimit = 50
	maxBatchLimit     = 200
)

// ImportDetailResponse is an import batch with its audit trail.
type ImportDetailResponse struct {
	Batch  *entities.ImportBatch `json:"batch"`
	Events []entities.AuditEvent `json:"events"`
}

type ImportsController struct {
	batches BatchReader
	audit   AuditReader
}

func NewImportsController(batches BatchReader, audit AuditReader) *ImportsController {
	return &ImportsController{batches: batches, audit: audit}
}

// List handles GET /api/imports?limit=N, newest first.
func (ic *ImportsController) List(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultBatchLimit)))
	if err != nil || limit < 1 || limit > maxBatchLimit {
		limit = defaultBatchLimit
	}

	list, err := ic.batches.List(limit)
	if err != nil {
		respondInternalError(c, err, "list import batches")
		return
	}
	if list == nil {
		list = []entities.ImportBatch{}
	}
	c.JSON(http.StatusOK, gin.H{"imports": list})
}

// Get handles GET /api/imports/:id.
func (ic *ImportsController) Get(c *gin.Context) {
	id := c.Param("id")

	batch, err := ic.batches.Get(id)
	if errors.Is(err, batches.ErrBatchNotFound) {
		respondNotFound(c, "import")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get import batch")
		return
	}

	resp := ImportDetailResponse{Batch: batch, Events: []entities.AuditEvent{}}
	if ic.audit != nil {
		events, err := ic.audit.GetEventsByImport(id)
		if err != nil {
			respondInternalError(c, err, "get import events")
			return
		}
		if events != nil {
			resp.Events = events
		}
	}
	c.JSON(http.StatusOK, resp)
}
