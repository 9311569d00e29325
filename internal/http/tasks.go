package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/berthplan/internal/tasks"
)

// TasksController handles task queue management endpoints.
type TasksController struct {
	queue                 TaskQueue
	scheduleRetentionDays int
	auditRetentionDays    int
}

// NewTasksController creates a new TasksController.
func NewTasksController(queue TaskQueue, scheduleRetentionDays, auditRetentionDays int) *TasksController {
	return &TasksController{
		queue:                 queue,
		scheduleRetentionDays: scheduleRetentionDays,
		auditRetentionDays:    auditRetentionDays,
	}
}

// TaskTypeInfo describes an available task type.
type TaskTypeInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Queue       string `json:"queue"`
}

// ListTaskTypes handles GET /api/tasks/types
// Returns the list of task types that can be triggered manually.
func (tc *TasksController) ListTaskTypes(c *gin.Context) {
	types := []TaskTypeInfo{
		{
			Type:        "cleanup_schedules",
			Description: "Delete schedule rows past the retention window",
			Queue:       "cleanup_schedules",
		},
		{
			Type:        "cleanup_audit_events",
			Description: "Delete audit events past the retention window",
			Queue:       "cleanup_audit_events",
		},
	}

	c.JSON(http.StatusOK, gin.H{
		"task_types": types,
	})
}

// GetTaskStatus handles GET /api/tasks/:id
// Returns the status of a specific task.
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.queue.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": taskStatusToString(status),
	})
}

// RunTask handles POST /api/tasks/:type/run
// Manually triggers a cleanup using the configured retention.
func (tc *TasksController) RunTask(c *gin.Context) {
	taskType := c.Param("type")

	var task backlite.Task
	switch taskType {
	case "cleanup_schedules":
		task = tasks.CleanupSchedulesTask{RetentionDays: tc.scheduleRetentionDays}
	case "cleanup_audit_events":
		task = tasks.CleanupAuditEventsTask{RetentionDays: tc.auditRetentionDays}
	default:
		respondBadRequest(c, fmt.Sprintf("unknown task type: %s", taskType))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), enqueueTimeout)
	defer cancel()

	ids, err := tc.queue.Enqueue(ctx, task)
	if err != nil {
		respondInternalError(c, err, "enqueue "+taskType)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"task_id": ids[0],
		"type":    taskType,
		"message": "task enqueued",
	})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
