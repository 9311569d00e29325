package entrypoint

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/mrlokans/berthplan/internal/audit"
	"github.com/mrlokans/berthplan/internal/config"
	"github.com/mrlokans/berthplan/internal/database"
	auditRepo "github.com/mrlokans/berthplan/internal/database/audit"
	"github.com/mrlokans/berthplan/internal/database/batches"
	"github.com/mrlokans/berthplan/internal/database/schedules"
	"github.com/mrlokans/berthplan/internal/metrics"
	"github.com/mrlokans/berthplan/internal/schedule"
	"github.com/mrlokans/berthplan/internal/services"
)

// App holds the components shared by the server and the CLI.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Location *time.Location

	DB        *database.Database
	Schedules *schedules.Repository
	Batches   *batches.Repository
	Audit     *audit.Service
	Importer  *services.ImportService

	Registry *prometheus.Registry
	Metrics  metrics.Recorder
}

// NewApp opens the database and wires the import pipeline.
func NewApp(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := cfg.Quay.Location()
	if err != nil {
		return nil, err
	}

	agentCodes, err := config.LoadAgentCodes(cfg.Import.AgentCodesFile, schedule.DefaultAgentCodes)
	if err != nil {
		return nil, err
	}

	db, err := database.NewDatabase(cfg.Database.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	app := &App{
		Config:    cfg,
		Logger:    logger,
		Location:  loc,
		DB:        db,
		Schedules: schedules.NewRepository(db.DB),
		Batches:   batches.NewRepository(db.DB),
		Audit:     audit.NewService(auditRepo.NewRepository(db.DB), logger.Named("audit")),
		Metrics:   metrics.NopRecorder{},
	}

	if cfg.Metrics.Enabled {
		app.Registry = prometheus.NewRegistry()
		sink, err := metrics.NewPromSink(app.Registry)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		app.Metrics = sink
	}

	parser := schedule.NewParser(schedule.Options{
		MinSternBit: cfg.Quay.MinSternBit,
		Marker:      cfg.Import.Marker,
		Location:    loc,
		AgentCodes:  agentCodes,
	})

	importCfg := services.ImportServiceConfig{
		Pipeline:     schedule.NewPipeline(parser, logger.Named("pipeline")),
		Store:        app.Schedules,
		Batches:      app.Batches,
		Audit:        app.Audit,
		Metrics:      app.Metrics,
		Logger:       logger.Named("import"),
		MaxTextBytes: cfg.Import.MaxTextBytes,
	}
	if cfg.Import.ArchiveDir != "" {
		importCfg.Archive = audit.NewArchiver(cfg.Import.ArchiveDir)
	}
	app.Importer = services.NewImportService(importCfg)

	return app, nil
}

// Close flushes pending audit writes and closes the database.
func (a *App) Close() error {
	a.Audit.Wait()
	return a.DB.Close()
}
