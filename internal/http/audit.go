package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/berthplan/internal/entities"
)

type AuditController struct {
	audit AuditReader
}

func NewAuditController(audit AuditReader) *AuditController {
	return &AuditController{audit: audit}
}

// GetAuditEvents returns paginated audit events as JSON
// GET /api/audit?type=import&limit=25&offset=0
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	limit, offset := parsePagination(c, 25, 100)
	eventType := c.Query("type")

	var (
		events []entities.AuditEvent
		total  int64
		err    error
	)
	if eventType != "" {
		events, total, err = ac.audit.GetEventsByType(entities.AuditEventType(eventType), limit, offset)
	} else {
		events, total, err = ac.audit.GetEvents(limit, offset)
	}
	if err != nil {
		respondInternalError(c, err, "get audit events")
		return
	}
	if events == nil {
		events = []entities.AuditEvent{}
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       events,
		Total:      total,
		Limit:      limit,
		Offset:     offset,
		HasMore:    int64(offset+len(events)) < total,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	})
}
