package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mrlokans/berthplan/internal/audit"
	"github.com/mrlokans/berthplan/internal/entities"
	"github.com/mrlokans/berthplan/internal/metrics"
	"github.com/mrlokans/berthplan/internal/schedule"
)

const (
	MinYear = 2000
	MaxYear = 2100

	previewImportID = "preview"
)

var (
	ErrEmptyText    = errors.New("schedule text is empty")
	ErrTextTooLarge = errors.New("schedule text exceeds the size limit")
	ErrInvalidYear  = errors.New("year is out of range")
)

// ImportRequest is one pasted bulletin to import.
type ImportRequest struct {
	Text      string
	Year      int
	ImportID  string // generated when empty
	IPAddress string
}

// ImportReport summarises an import or preview.
type ImportReport struct {
	ImportID         string                `json:"import_id"`
	Year             int                   `json:"year"`
	Status           entities.ImportStatus `json:"status,omitempty"`
	BlocksTotal      int                   `json:"blocks_total"`
	BlocksParsed     int                   `json:"blocks_parsed"`
	BlocksSkipped    int                   `json:"blocks_skipped"`
	BlocksErrored    int                   `json:"blocks_errored"`
	RecordsCreated   int                   `json:"records_created"`
	RecordsUpdated   int                   `json:"records_updated"`
	RecordsUnchanged int                   `json:"records_unchanged"`
	// RecordsConflicted counts records that replaced an earlier block of the
	// same paste for the same ship and day.
	RecordsConflicted int                       `json:"records_conflicted"`
	Outcomes          []schedule.BlockOutcome   `json:"outcomes"`
	Records           []entities.ScheduleRecord `json:"records,omitempty"`
}

// Summary converts the report to its audit form.
func (r ImportReport) Summary() audit.ImportSummary {
	return audit.ImportSummary{
		ImportID:         r.ImportID,
		Year:             r.Year,
		BlocksTotal:      r.BlocksTotal,
		BlocksParsed:     r.BlocksParsed,
		BlocksSkipped:    r.BlocksSkipped,
		BlocksErrored:    r.BlocksErrored,
		RecordsCreated:   r.RecordsCreated,
		RecordsUpdated:   r.RecordsUpdated,
		RecordsUnchanged: r.RecordsUnchanged,
	}
}

// ImportServiceConfig wires an ImportService. Audit, Archive and Metrics are
// optional.
type ImportServiceConfig struct {
	Pipeline     *schedule.Pipeline
	Store        ScheduleStore
	Batches      BatchStore
	Audit        AuditLogger
	Archive      Archive
	Metrics      metrics.Recorder
	Logger       *zap.Logger
	MaxTextBytes int
}

// ImportService runs the parse pipeline over pasted text and stores the
// result, tracking each run as an import batch.
type ImportService struct {
	pipeline     *schedule.Pipeline
	store        ScheduleStore
	batches      BatchStore
	audit        AuditLogger
	archive      Archive
	metrics      metrics.Recorder
	logger       *zap.Logger
	maxTextBytes int
}

func NewImportService(cfg ImportServiceConfig) *ImportService {
	s := &ImportService{
		pipeline:     cfg.Pipeline,
		store:        cfg.Store,
		batches:      cfg.Batches,
		audit:        cfg.Audit,
		archive:      cfg.Archive,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger,
		maxTextBytes: cfg.MaxTextBytes,
	}
	if s.metrics == nil {
		s.metrics = metrics.NopRecorder{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Validate checks the request without touching storage.
func (s *ImportService) Validate(req ImportRequest) error {
	if strings.TrimSpace(req.Text) == "" {
		return ErrEmptyText
	}
	if s.maxTextBytes > 0 && len(req.Text) > s.maxTextBytes {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrTextTooLarge, len(req.Text), s.maxTextBytes)
	}
	if req.Year < MinYear || req.Year > MaxYear {
		return fmt.Errorf("%w: %d", ErrInvalidYear, req.Year)
	}
	return nil
}

// Import validates, parses and stores req in one call.
func (s *ImportService) Import(ctx context.Context, req ImportRequest) (ImportReport, error) {
	req, err := s.Begin(req)
	if err != nil {
		return ImportReport{}, err
	}
	return s.Run(ctx, req)
}

// Begin validates req, assigns an import id when missing and records a
// pending batch. The returned request is ready for Run, possibly on another
// goroutine or process.
func (s *ImportService) Begin(req ImportRequest) (ImportRequest, error) {
	if err := s.Validate(req); err != nil {
		return req, err
	}
	if req.ImportID == "" {
		req.ImportID = uuid.NewString()
	}

	batch := &entities.ImportBatch{
		ID:     req.ImportID,
		Year:   req.Year,
		Status: entities.ImportStatusPending,
	}
	if err := s.batches.Create(batch); err != nil {
		return req, fmt.Errorf("failed to create import batch %s: %w", req.ImportID, err)
	}
	return req, nil
}

// Abandon marks a batch accepted by Begin as failed when it could not be
// handed over to Run.
func (s *ImportService) Abandon(importID string, cause error) {
	if err := s.batches.Fail(importID, cause.Error()); err != nil {
		s.logger.Warn("Failed to mark import batch as failed",
			zap.String("import_id", importID),
			zap.Error(err))
	}
}

// Run parses and stores a request previously accepted by Begin.
func (s *ImportService) Run(ctx context.Context, req ImportRequest) (ImportReport, error) {
	start := time.Now()
	log := s.logger.With(zap.String("import_id", req.ImportID), zap.Int("year", req.Year))

	if err := s.batches.MarkRunning(req.ImportID); err != nil {
		return ImportReport{}, fmt.Errorf("failed to start import batch %s: %w", req.ImportID, err)
	}

	report := s.parse(req)

	if err := ctx.Err(); err != nil {
		return report, s.fail(req, report, start, err)
	}

	upsert, err := s.store.Upsert(report.Records)
	if err != nil {
		return report, s.fail(req, report, start, fmt.Errorf("failed to store schedule: %w", err))
	}
	report.RecordsCreated = upsert.Created
	report.RecordsUpdated = upsert.Updated
	report.RecordsUnchanged = upsert.Unchanged
	report.RecordsConflicted = upsert.Conflicts
	report.Status = entities.ImportStatusCompleted

	batch := &entities.ImportBatch{
		ID:               req.ImportID,
		Year:             req.Year,
		Status:           entities.ImportStatusCompleted,
		BlocksTotal:      report.BlocksTotal,
		BlocksParsed:     report.BlocksParsed,
		BlocksSkipped:    report.BlocksSkipped,
		BlocksErrored:    report.BlocksErrored,
		RecordsCreated:   report.RecordsCreated,
		RecordsUpdated:   report.RecordsUpdated,
		RecordsUnchanged: report.RecordsUnchanged,
		Errors:           diagnostics(report.Outcomes),
	}
	if err := s.batches.Complete(batch); err != nil {
		log.Warn("Failed to complete import batch", zap.Error(err))
	}

	s.archiveText(req, report, log)
	if s.audit != nil {
		s.audit.LogImport(report.Summary(), req.IPAddress, nil)
	}
	s.metrics.RecordImport(string(entities.ImportStatusCompleted), time.Since(start))
	s.metrics.RecordBlocks(report.BlocksParsed, report.BlocksSkipped, report.BlocksErrored)
	s.metrics.RecordRecords(report.RecordsCreated, report.RecordsUpdated, report.RecordsUnchanged)

	log.Info("Schedule import completed",
		zap.Int("blocks", report.BlocksTotal),
		zap.Int("skipped", report.BlocksSkipped),
		zap.Int("errored", report.BlocksErrored),
		zap.Int("created", report.RecordsCreated),
		zap.Int("updated", report.RecordsUpdated),
		zap.Int("unchanged", report.RecordsUnchanged),
		zap.Int("conflicted", report.RecordsConflicted),
		zap.Duration("took", time.Since(start)),
	)

	return report, nil
}

// Preview parses req without storing anything. Records are included in the
// report.
func (s *ImportService) Preview(req ImportRequest) (ImportReport, error) {
	if err := s.Validate(req); err != nil {
		return ImportReport{}, err
	}
	if req.ImportID == "" {
		req.ImportID = previewImportID
	}
	return s.parse(req), nil
}

func (s *ImportService) parse(req ImportRequest) ImportReport {
	result := s.pipeline.Run(req.Text, req.Year, req.ImportID)
	parsed, skipped, errored := result.Counts()

	return ImportReport{
		ImportID:      req.ImportID,
		Year:          req.Year,
		BlocksTotal:   len(result.Outcomes),
		BlocksParsed:  parsed,
		BlocksSkipped: skipped,
		BlocksErrored: errored,
		Outcomes:      result.Outcomes,
		Records:       result.Records,
	}
}

func (s *ImportService) fail(req ImportRequest, report ImportReport, start time.Time, cause error) error {
	s.logger.Error("Schedule import failed",
		zap.String("import_id", req.ImportID),
		zap.Error(cause))

	s.Abandon(req.ImportID, cause)
	if s.audit != nil {
		s.audit.LogImport(report.Summary(), req.IPAddress, cause)
	}
	s.metrics.RecordImport(string(entities.ImportStatusFailed), time.Since(start))
	return cause
}

func (s *ImportService) archiveText(req ImportRequest, report ImportReport, log *zap.Logger) {
	if s.archive == nil {
		return
	}
	payload := map[string]any{
		"import_id": req.ImportID,
		"year":      req.Year,
		"text":      req.Text,
		"outcomes":  report.Outcomes,
	}
	if _, err := s.archive.SaveJSON(req.ImportID, payload); err != nil {
		log.Warn("Failed to archive schedule text", zap.Error(err))
	}
}

// diagnostics encodes the skipped and errored outcomes as a JSON array.
func diagnostics(outcomes []schedule.BlockOutcome) string {
	var failed []schedule.BlockOutcome
	for _, o := range outcomes {
		if o.Status != schedule.StatusParsed {
			failed = append(failed, o)
		}
	}
	if len(failed) == 0 {
		return ""
	}
	data, err := json.Marshal(failed)
	if err != nil {
		return ""
	}
	return string(data)
}
