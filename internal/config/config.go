package config

import (
	"fmt"
	"time"

	"github.com/openvehicle/canagent/internal/domain"
)

// Config is the canonical, fully-resolved agent configuration. It is the
// target of both the current and legacy YAML schemas.
type Config struct {
	VehicleID string `yaml:"vehicle_id"`

	CAN        CANConfig        `yaml:"can"`
	DBC        DBCConfig        `yaml:"dbc"`
	Batch      BatchConfig      `yaml:"batch"`
	Storage    StorageConfig    `yaml:"storage"`
	S3         S3Config         `yaml:"s3"`
	Upload     UploadConfig     `yaml:"upload"`
	Offline    OfflineConfig    `yaml:"offline"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type CANConfig struct {
	Interface          string   `yaml:"interface"`
	Channel            string   `yaml:"channel"`
	BitrateKbps        int      `yaml:"bitrate"`
	FD                 bool     `yaml:"fd"`
	ReceiveOwnMessages bool     `yaml:"receive_own_messages"`
	Filters            []string `yaml:"filters"`
}

type DBCConfig struct {
	Path string `yaml:"path"`
}

type BatchConfig struct {
	IntervalSec float64 `yaml:"interval_sec"`
	MaxFrames   int     `yaml:"max_frames"`
}

// Window returns the batch interval as a time.Duration.
func (b BatchConfig) Window() time.Duration {
	return time.Duration(b.IntervalSec * float64(time.Second))
}

type StorageConfig struct {
	DataDir    string  `yaml:"data_dir"`
	ArchiveDir string  `yaml:"archive_dir"`
	PendingDir string  `yaml:"pending_dir"`
	MaxDiskGB  float64 `yaml:"max_disk_gb"`
}

type S3Config struct {
	Bucket string `yaml:"bucket"`
	Region string `yaml:"region"`
	Prefix string `yaml:"prefix"`
}

type UploadConfig struct {
	Enabled           bool    `yaml:"enabled"`
	MaxRetries        int     `yaml:"max_retries"`
	InitialBackoffSec float64 `yaml:"initial_backoff_sec"`
	MaxBackoffSec     float64 `yaml:"max_backoff_sec"`
}

func (u UploadConfig) InitialBackoff() time.Duration {
	return time.Duration(u.InitialBackoffSec * float64(time.Second))
}

func (u UploadConfig) MaxBackoff() time.Duration {
	return time.Duration(u.MaxBackoffSec * float64(time.Second))
}

type OfflineConfig struct {
	CheckIntervalSec float64 `yaml:"check_interval_sec"`
	MaxQueueSize     int     `yaml:"max_queue_size"`
}

func (o OfflineConfig) CheckInterval() time.Duration {
	return time.Duration(o.CheckIntervalSec * float64(time.Second))
}

type MonitoringConfig struct {
	HeartbeatIntervalSeconds float64 `yaml:"heartbeat_interval_seconds"`
}

func (m MonitoringConfig) HeartbeatInterval() time.Duration {
	return time.Duration(m.HeartbeatIntervalSeconds * float64(time.Second))
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	File        string `yaml:"file"`
	MaxBytes    int64  `yaml:"max_bytes"`
	BackupCount int    `yaml:"backup_count"`
}

// Default returns a Config with every field set to the agent's documented
// defaults. Callers overlay a loaded file on top of this.
func Default() Config {
	return Config{
		CAN: CANConfig{
			Interface:   "socketcan",
			Channel:     "can0",
			BitrateKbps: 500,
		},
		Batch: BatchConfig{
			IntervalSec: 60,
			MaxFrames:   500000,
		},
		Storage: StorageConfig{
			DataDir:    "/var/lib/canagent/data",
			ArchiveDir: "/var/lib/canagent/archive",
			PendingDir: "/var/lib/canagent/pending",
			MaxDiskGB:  5,
		},
		S3: S3Config{
			Region: "us-east-1",
		},
		Upload: UploadConfig{
			Enabled:           true,
			MaxRetries:        5,
			InitialBackoffSec: 0.5,
			MaxBackoffSec:     300,
		},
		Offline: OfflineConfig{
			CheckIntervalSec: 60,
			MaxQueueSize:     1000,
		},
		Monitoring: MonitoringConfig{
			HeartbeatIntervalSeconds: 60,
		},
		Logging: LoggingConfig{
			Level:       "info",
			Format:      "console",
			MaxBytes:    10 * 1024 * 1024,
			BackupCount: 3,
		},
	}
}

// Validate checks the required fields and sane ranges, returning
// domain.ErrInvalidConfig wrapped with detail on the first failure found.
func (c Config) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, fmt.Sprintf(format, args...))
	}
	if c.VehicleID == "" {
		return invalid("vehicle_id is required")
	}
	if c.CAN.Interface == "" {
		return invalid("can.interface is required")
	}
	if c.Batch.IntervalSec <= 0 {
		return invalid("batch.interval_sec must be > 0")
	}
	if c.Batch.MaxFrames <= 0 {
		return invalid("batch.max_frames must be > 0")
	}
	if c.Storage.DataDir == "" || c.Storage.ArchiveDir == "" || c.Storage.PendingDir == "" {
		return invalid("storage.{data_dir,archive_dir,pending_dir} are required")
	}
	if c.Storage.MaxDiskGB <= 0 {
		return invalid("storage.max_disk_gb must be > 0")
	}
	if c.Upload.Enabled {
		if c.S3.Bucket == "" {
			return invalid("s3.bucket is required when upload.enabled is true")
		}
		if c.Upload.MaxRetries < 0 {
			return invalid("upload.max_retries must be >= 0")
		}
		if c.Upload.InitialBackoffSec <= 0 {
			return invalid("upload.initial_backoff_sec must be > 0")
		}
		if c.Upload.MaxBackoffSec < c.Upload.InitialBackoffSec {
			return invalid("upload.max_backoff_sec must be >= initial_backoff_sec")
		}
	}
	if c.Offline.MaxQueueSize <= 0 {
		return invalid("offline.max_queue_size must be > 0")
	}
	if c.Offline.CheckIntervalSec <= 0 {
		return invalid("offline.check_interval_sec must be > 0")
	}
	if c.Monitoring.HeartbeatIntervalSeconds <= 0 {
		return invalid("monitoring.heartbeat_interval_seconds must be > 0")
	}
	return nil
}
