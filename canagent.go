// Package canagent captures CAN bus traffic, batches it into
// time-windowed columnar files under a Hive-style partition layout, and
// ships the result to a remote object store with durable retry across
// network outages.
//
// Example usage:
//
//	cfg, err := canagent.LoadConfig("/etc/canagent/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	logger := canagent.NewConsoleLogger(cfg.Logging.Level)
//	if err := canagent.Run(context.Background(), cfg, canagent.ModeNormal, logger); err != nil {
//	    log.Fatal(err)
//	}
package canagent

import (
	"context"
	"fmt"

	"github.com/openvehicle/canagent/internal/adapters/canbus"
	"github.com/openvehicle/canagent/internal/adapters/log"
	"github.com/openvehicle/canagent/internal/adapters/s3uploader"
	"github.com/openvehicle/canagent/internal/batch"
	"github.com/openvehicle/canagent/internal/config"
	"github.com/openvehicle/canagent/internal/dbc"
	"github.com/openvehicle/canagent/internal/domain"
	"github.com/openvehicle/canagent/internal/health"
	"github.com/openvehicle/canagent/internal/offline"
	"github.com/openvehicle/canagent/internal/ports"
	"github.com/openvehicle/canagent/internal/retry"
	"github.com/openvehicle/canagent/internal/supervisor"
)

// Config is the agent's fully-resolved configuration.
type Config = config.Config

// Mode selects one of the four mutually exclusive operating modes.
type Mode = supervisor.Mode

const (
	ModeNormal     = supervisor.ModeNormal
	ModeSimulate   = supervisor.ModeSimulate
	ModeDryRun     = supervisor.ModeDryRun
	ModeDecodeLive = supervisor.ModeDecodeLive
)

// LoadConfig reads and validates a YAML configuration file, accepting
// both the canonical and legacy key layouts.
func LoadConfig(path string) (Config, error) {
	return config.Load(path)
}

// DefaultConfig returns a Config with every field at its documented
// default. Callers still need to set VehicleID, and S3.Bucket while
// Upload.Enabled is true (the default).
func DefaultConfig() Config {
	return config.Default()
}

// NewConsoleLogger returns a human-readable logger writing to stderr.
func NewConsoleLogger(level string) ports.Logger {
	return log.NewConsole(level)
}

// Logger is the structured logging interface every component writes
// through; implementations wrap zerolog or discard output entirely.
type Logger = ports.Logger

// Run wires every component for the given mode and blocks until ctx is
// cancelled or a fatal error occurs. A non-nil error means the agent did
// not shut down cleanly.
func Run(ctx context.Context, cfg Config, mode Mode, logger Logger) error {
	deps, err := build(ctx, cfg, mode, logger)
	if err != nil {
		return err
	}

	return supervisor.New(deps).Run(ctx)
}

type healthSource struct {
	reader  ports.CANReader
	offline ports.OfflineBuffer
}

func (h healthSource) ReaderStats() domain.ReaderStats { return h.reader.Stats() }

func (h healthSource) OfflineStats() (domain.OfflineStats, error) { return h.offline.Stats() }

func build(ctx context.Context, cfg Config, mode Mode, logger Logger) (supervisor.Deps, error) {
	var db *dbc.Database
	if cfg.DBC.Path != "" {
		loaded, err := dbc.LoadFile(cfg.DBC.Path)
		if err != nil {
			return supervisor.Deps{}, fmt.Errorf("canagent: load message database: %w", err)
		}
		db = loaded
	}
	if mode == ModeDecodeLive && db == nil {
		return supervisor.Deps{}, fmt.Errorf("canagent: decode-live mode requires dbc.path to be set")
	}

	var reader ports.CANReader
	if mode == ModeSimulate {
		if db == nil {
			return supervisor.Deps{}, fmt.Errorf("canagent: simulate mode requires dbc.path to be set")
		}
		reader = canbus.NewSimulatedReader(db, 100, 0, logger)
	} else {
		reader = canbus.NewHardwareReader(cfg.CAN, logger)
	}

	offlineBuf := offline.New(cfg.Storage.PendingDir, cfg.Offline.MaxQueueSize, cfg.Storage.MaxDiskGB, logger)

	deps := supervisor.Deps{
		Mode:    mode,
		Reader:  reader,
		Offline: offlineBuf,
		DB:      db,
		Log:     logger,
	}

	pipelineMode := mode == ModeNormal || mode == ModeSimulate
	if pipelineMode {
		deps.Batcher = batch.New(cfg.Storage.DataDir, cfg.VehicleID, cfg.Batch.Window(), cfg.Batch.MaxFrames, logger)

		if cfg.Upload.Enabled {
			client, err := s3uploader.NewClient(ctx, cfg.S3.Region)
			if err != nil {
				return supervisor.Deps{}, fmt.Errorf("canagent: build s3 client: %w", err)
			}
			uploader := s3uploader.New(client, cfg.S3, cfg.Upload, cfg.Storage.DataDir, cfg.Storage.ArchiveDir, cfg.Storage.PendingDir, logger)
			deps.Uploader = uploader
			deps.UploadEnabled = true
			deps.ArchiveDir = cfg.Storage.ArchiveDir
			deps.RetryWorker = retry.New(uploader, cfg.Offline.CheckInterval(), logger)
		}
	}

	if mode != ModeSimulate {
		deps.HealthMonitor = health.New(healthSource{reader: reader, offline: offlineBuf}, cfg.Storage.DataDir, cfg.Monitoring.HeartbeatInterval(), logger)
	}

	return deps, nil
}
