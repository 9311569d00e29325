package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Log
		Quay
		Import
		Tasks
		Audit
		Retention
		Metrics
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Log struct {
		Level string // debug, info, warn, error
	}
	Quay struct {
		MinSternBit int    // Vessels whose stern lies before this bit are ignored
		Timezone    string // IANA zone bulletin times are expressed in
	}
	Import struct {
		Marker         string // Token opening each vessel entry in a bulletin
		MaxTextBytes   int
		AgentCodesFile string // Optional YAML/JSON file of agent name -> planner code
		ArchiveDir     string // Keeps a JSON copy of every imported bulletin when set
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Audit struct {
		RetentionDays int // Days to keep audit events (default: 30)
	}
	Retention struct {
		Enabled  bool
		Schedule string // Cron format: "0 3 * * *" = daily at 03:00
		Days     int    // Schedule rows older than this many days are removed
	}
	Metrics struct {
		Enabled bool
	}
)

// Location resolves the configured bulletin time zone.
func (q Quay) Location() (*time.Location, error) {
	if q.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(q.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", q.Timezone, err)
	}
	return loc, nil
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("log_level", "info")

	// Quay geometry defaults
	v.SetDefault("quay_min_stern_bit", DefaultMinSternBit)
	v.SetDefault("quay_timezone", DefaultTimezone)

	// Import defaults
	v.SetDefault("import_marker", DefaultMarker)
	v.SetDefault("import_max_text_bytes", DefaultMaxTextBytes)
	v.SetDefault("import_agent_codes_file", "")
	v.SetDefault("import_archive_dir", "")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	v.SetDefault("audit_retention_days", 30)

	// Schedule retention defaults
	v.SetDefault("retention_enabled", false)
	v.SetDefault("retention_schedule", "0 3 * * *")
	v.SetDefault("retention_days", 365)

	v.SetDefault("metrics_enabled", true)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Log: Log{
			Level: v.GetString("LOG_LEVEL"),
		},
		Quay: Quay{
			MinSternBit: v.GetInt("QUAY_MIN_STERN_BIT"),
			Timezone:    v.GetString("QUAY_TIMEZONE"),
		},
		Import: Import{
			Marker:         v.GetString("IMPORT_MARKER"),
			MaxTextBytes:   v.GetInt("IMPORT_MAX_TEXT_BYTES"),
			AgentCodesFile: v.GetString("IMPORT_AGENT_CODES_FILE"),
			ArchiveDir:     v.GetString("IMPORT_ARCHIVE_DIR"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Audit: Audit{
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Retention: Retention{
			Enabled:  v.GetBool("RETENTION_ENABLED"),
			Schedule: v.GetString("RETENTION_SCHEDULE"),
			Days:     v.GetInt("RETENTION_DAYS"),
		},
		Metrics: Metrics{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
	}
}
