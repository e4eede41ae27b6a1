package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadCanonicalSchema(t *testing.T) {
	path := writeTemp(t, `
vehicle_id: VIN12345
can:
  interface: socketcan
  channel: can0
storage:
  data_dir: /tmp/data
  archive_dir: /tmp/archive
  pending_dir: /tmp/pending
  max_disk_gb: 2
s3:
  bucket: my-bucket
batch:
  interval_sec: 30
  max_frames: 10000
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "VIN12345", cfg.VehicleID)
	require.Equal(t, "my-bucket", cfg.S3.Bucket)
	require.Equal(t, 30.0, cfg.Batch.IntervalSec)
	require.Equal(t, 10000, cfg.Batch.MaxFrames)
	// defaults survive for untouched sections
	require.Equal(t, 5, cfg.Upload.MaxRetries)
}

func TestLoadLegacySchema(t *testing.T) {
	path := writeTemp(t, `
vehicle_id: VIN12345
can:
  interface: socketcan
storage:
  data_dir: /tmp/data
  archive_dir: /tmp/archive
  pending_dir: /tmp/pending
  max_disk_gb: 2
batching:
  interval_sec: 45
  max_frames: 5000
upload:
  s3_bucket: legacy-bucket
offline_buffer:
  check_interval_sec: 90
  max_queue_size: 250
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 45.0, cfg.Batch.IntervalSec)
	require.Equal(t, 5000, cfg.Batch.MaxFrames)
	require.Equal(t, "legacy-bucket", cfg.S3.Bucket)
	require.Equal(t, 250, cfg.Offline.MaxQueueSize)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeTemp(t, `
vehicle_id: VIN12345
can:
  interface: socketcan
storage:
  data_dir: /tmp/data
  archive_dir: /tmp/archive
  pending_dir: /tmp/pending
  max_disk_gb: 2
typo_section:
  foo: bar
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsMissingVehicleID(t *testing.T) {
	path := writeTemp(t, `
can:
  interface: socketcan
storage:
  data_dir: /tmp/data
  archive_dir: /tmp/archive
  pending_dir: /tmp/pending
  max_disk_gb: 2
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsUploadEnabledWithoutBucket(t *testing.T) {
	path := writeTemp(t, `
vehicle_id: VIN12345
can:
  interface: socketcan
storage:
  data_dir: /tmp/data
  archive_dir: /tmp/archive
  pending_dir: /tmp/pending
  max_disk_gb: 2
upload:
  enabled: true
`)
	_, err := Load(path)
	require.Error(t, err)
}
