package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mrlokans/berthplan/internal/tasks"
)

// Enqueuer saves tasks on the background queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, tasks ...backlite.Task) ([]string, error)
}

// RetentionConfig controls the periodic cleanup.
type RetentionConfig struct {
	Schedule          string
	ScheduleDays      int
	AuditEventDays    int
	EnqueueTimeoutSec int
}

// RetentionScheduler periodically enqueues cleanup of old schedule rows and
// audit events. The deletion itself runs on the task queue.
type RetentionScheduler struct {
	enqueuer Enqueuer
	config   RetentionConfig
	logger   *zap.Logger

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
}

func NewRetentionScheduler(enqueuer Enqueuer, cfg RetentionConfig, logger *zap.Logger) *RetentionScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.EnqueueTimeoutSec <= 0 {
		cfg.EnqueueTimeoutSec = 30
	}
	return &RetentionScheduler{
		enqueuer: enqueuer,
		config:   cfg,
		logger:   logger,
		cron:     cron.New(cron.WithParser(cronParser)),
	}
}

// Start registers the cleanup job and starts the cron loop. The scheduler
// stops when ctx is cancelled.
func (s *RetentionScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateCronSchedule(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.config.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		if err := s.RunNow(context.Background()); err != nil {
			s.logger.Error("Retention cleanup could not be enqueued", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule retention job: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := NextRunTime(s.config.Schedule, time.Now())
	s.logger.Info("Retention scheduler started",
		zap.String("schedule", s.config.Schedule),
		zap.String("description", CronDescription(s.config.Schedule)),
		zap.Time("next_run", nextRun),
		zap.Int("schedule_days", s.config.ScheduleDays),
		zap.Int("audit_event_days", s.config.AuditEventDays))

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler.
func (s *RetentionScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	done := s.cron.Stop()
	<-done.Done()

	s.cron.Remove(s.entryID)
	s.isRunning = false

	s.logger.Info("Retention scheduler stopped")
}

// RunNow enqueues both cleanup tasks immediately.
func (s *RetentionScheduler) RunNow(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.config.EnqueueTimeoutSec)*time.Second)
	defer cancel()

	ids, err := s.enqueuer.Enqueue(ctx,
		tasks.CleanupSchedulesTask{RetentionDays: s.config.ScheduleDays},
		tasks.CleanupAuditEventsTask{RetentionDays: s.config.AuditEventDays},
	)
	if err != nil {
		return fmt.Errorf("enqueue cleanup tasks: %w", err)
	}

	s.logger.Info("Retention cleanup enqueued", zap.Strings("task_ids", ids))
	return nil
}

// IsRunning returns whether the scheduler is active.
func (s *RetentionScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the cleanup will next be enqueued.
func (s *RetentionScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}
