package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder receives import and cleanup observations.
type Recorder interface {
	RecordImport(status string, duration time.Duration)
	RecordBlocks(parsed, skipped, errored int)
	RecordRecords(created, updated, unchanged int)
	RecordCleanup(target string, deleted int64)
}

// NopRecorder discards every observation.
type NopRecorder struct{}

func (NopRecorder) RecordImport(string, time.Duration) {}
func (NopRecorder) RecordBlocks(int, int, int)         {}
func (NopRecorder) RecordRecords(int, int, int)        {}
func (NopRecorder) RecordCleanup(string, int64)        {}

// PromSink records import activity in Prometheus metrics.
type PromSink struct {
	imports  *prometheus.CounterVec
	duration prometheus.Histogram
	blocks   *prometheus.CounterVec
	records  *prometheus.CounterVec
	cleanup  *prometheus.CounterVec
}

// NewPromSink registers the import metrics on reg. If reg is nil, the default
// registerer is used. Collectors that are already registered are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	imports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "berthplan_imports_total",
		Help: "Total number of schedule imports by final status",
	}, []string{"status"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "berthplan_import_duration_seconds",
		Help:    "Time spent parsing and storing one pasted bulletin",
		Buckets: prometheus.DefBuckets,
	})
	blocks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "berthplan_import_blocks_total",
		Help: "Total number of bulletin blocks by parse outcome",
	}, []string{"status"})
	records := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "berthplan_import_records_total",
		Help: "Total number of schedule rows by upsert result",
	}, []string{"result"})
	cleanup := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "berthplan_cleanup_deleted_total",
		Help: "Total number of rows removed by retention cleanup",
	}, []string{"target"})

	var err error
	if imports, err = register(reg, imports); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if blocks, err = register(reg, blocks); err != nil {
		return nil, err
	}
	if records, err = register(reg, records); err != nil {
		return nil, err
	}
	if cleanup, err = register(reg, cleanup); err != nil {
		return nil, err
	}

	return &PromSink{
		imports:  imports,
		duration: duration,
		blocks:   blocks,
		records:  records,
		cleanup:  cleanup,
	}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (s *PromSink) RecordImport(status string, duration time.Duration) {
	s.imports.WithLabelValues(status).Inc()
	s.duration.Observe(duration.Seconds())
}

func (s *PromSink) RecordBlocks(parsed, skipped, errored int) {
	s.blocks.WithLabelValues("parsed").Add(float64(parsed))
	s.blocks.WithLabelValues("skipped").Add(float64(skipped))
	s.blocks.WithLabelValues("errored").Add(float64(errored))
}

func (s *PromSink) RecordRecords(created, updated, unchanged int) {
	s.records.WithLabelValues("created").Add(float64(created))
	s.records.WithLabelValues("updated").Add(float64(updated))
	s.records.WithLabelValues("unchanged").Add(float64(unchanged))
}

func (s *PromSink) RecordCleanup(target string, deleted int64) {
	s.cleanup.WithLabelValues(target).Add(float64(deleted))
}
