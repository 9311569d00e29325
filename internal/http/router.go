package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	healthController := NewHealthController(cfg.Database, cfg.TaskQueue, cfg.Version)
	router.GET("/health", healthController.Status)

	if cfg.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	api := router.Group("/api")

	scheduleController := NewScheduleController(cfg.Importer, cfg.Schedules, cfg.TaskQueue)
	schedules := api.Group("/schedules")
	{
		limited := schedules.Group("", maxBodyBytes(cfg.MaxBodyBytes))
		limited.POST("/import", scheduleController.Import)
		limited.POST("/preview", scheduleController.Preview)
		schedules.GET("", scheduleController.List)
		schedules.POST("/:id/acknowledge", scheduleController.Acknowledge)
	}

	importsController := NewImportsController(cfg.Batches, cfg.Audit)
	api.GET("/imports", importsController.List)
	api.GET("/imports/:id", importsController.Get)

	quayController := NewQuayController()
	api.GET("/quay/convert", quayController.Convert)
	api.GET("/quay/berth", quayController.Berth)

	if cfg.Audit != nil {
		auditController := NewAuditController(cfg.Audit)
		api.GET("/audit", auditController.GetAuditEvents)
	}

	if cfg.TaskQueue != nil {
		tasksController := NewTasksController(cfg.TaskQueue, cfg.ScheduleRetentionDays, cfg.AuditRetentionDays)
		api.GET("/tasks/types", tasksController.ListTaskTypes)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
		api.POST("/tasks/:type/run", tasksController.RunTask)
	}

	return router
}

// maxBodyBytes caps request bodies. Zero disables the limit.
func maxBodyBytes(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
