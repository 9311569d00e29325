package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/berthplan/internal/config"
	http_controllers "github.com/mrlokans/berthplan/internal/http"
	"github.com/mrlokans/berthplan/internal/metrics"
	"github.com/mrlokans/berthplan/internal/scheduler"
	"github.com/mrlokans/berthplan/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, logger *zap.Logger, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	}
	logger.Info("Shutting down server", zap.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown", zap.Error(err))
	}

	// Stop background work after in-flight requests have drained
	if onShutdown != nil {
		onShutdown(ctx)
	}

	logger.Info("Server exiting")
	return nil
}

func Run(cfg *config.Config, logger *zap.Logger, version string) error {
	logger.Info("Starting berthplan", zap.String("version", version))

	app, err := NewApp(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("Error closing database", zap.Error(err))
		}
	}()

	routerCfg := http_controllers.RouterConfig{
		Importer:              app.Importer,
		Schedules:             app.Schedules,
		Batches:               app.Batches,
		Audit:                 app.Audit,
		Database:              app.DB,
		ScheduleRetentionDays: cfg.Retention.Days,
		AuditRetentionDays:    cfg.Audit.RetentionDays,
		MaxBodyBytes:          int64(cfg.Import.MaxTextBytes) * 2,
		Version:               version,
	}
	if app.Registry != nil {
		routerCfg.MetricsHandler = metrics.Handler(app.Registry)
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var retention *scheduler.RetentionScheduler
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.FromConfig(cfg.Tasks), logger.Named("tasks"))
		if err != nil {
			return fmt.Errorf("failed to initialize task queue: %w", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				logger.Error("Error closing task client", zap.Error(err))
			}
		}()

		reporter := tasks.Reporter{Audit: app.Audit, Metrics: app.Metrics}
		taskClient.Register(
			tasks.NewImportScheduleQueue(app.Importer, logger.Named("tasks")),
			tasks.NewCleanupSchedulesQueue(app.Schedules, app.Location, reporter, logger.Named("tasks")),
			tasks.NewCleanupAuditEventsQueue(app.Audit, reporter, logger.Named("tasks")),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
		routerCfg.TaskQueue = taskClient

		if cfg.Retention.Enabled {
			retention = scheduler.NewRetentionScheduler(taskClient, scheduler.RetentionConfig{
				Schedule:       cfg.Retention.Schedule,
				ScheduleDays:   cfg.Retention.Days,
				AuditEventDays: cfg.Audit.RetentionDays,
			}, logger.Named("retention"))
			if err := retention.Start(taskCtx); err != nil {
				taskCtxCancel()
				return err
			}
		}
	} else {
		logger.Info("Task queue disabled; async imports and retention cleanup are unavailable")
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if retention != nil {
			retention.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	return Serve(router, cfg, logger, onShutdown)
}
