package offline

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openvehicle/canagent/internal/adapters/log"
	"github.com/openvehicle/canagent/internal/domain"
)

func writePendingFile(t *testing.T, dir, name string, size int, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
	mtime := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

func TestEnforceLimitsEvictsOldestOverQueueSize(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 5; i++ {
		writePendingFile(t, dir, filepathName(i), 10, time.Duration(5-i)*time.Minute)
	}
	b := New(dir, 3, 1000, log.NewNoopLogger())
	require.NoError(t, b.EnforceLimits())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	// the two oldest (largest age) must be gone
	_, err = os.Stat(filepath.Join(dir, filepathName(0)))
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, filepathName(1)))
	require.True(t, os.IsNotExist(err))
}

func TestEnforceLimitsUnderDiskPressureStaysWithinBudget(t *testing.T) {
	dir := t.TempDir()
	// 20 files of 20 KiB each, limit ~100 KiB
	for i := 0; i < 20; i++ {
		writePendingFile(t, dir, filepathName(i), 20*1024, time.Duration(20-i)*time.Second)
	}
	b := New(dir, 100, 100.0/(1024*1024), log.NewNoopLogger())
	require.NoError(t, b.EnforceLimits())

	stats, err := b.Stats()
	require.NoError(t, err)
	require.LessOrEqual(t, stats.DiskUsageB, int64(100*1024))
}

func TestEnforceLimitsStalledWhenEmpty(t *testing.T) {
	dir := t.TempDir()
	b := New(dir, 100, 0.00000001, log.NewNoopLogger())
	writePendingFile(t, dir, "a.parquet", 10, time.Second)
	err := b.EnforceLimits()
	require.ErrorIs(t, err, domain.ErrEvictionStalled)
}

func TestAddToPendingEnforcesAfterMove(t *testing.T) {
	root := t.TempDir()
	pendingDir := filepath.Join(root, "pending")
	require.NoError(t, os.MkdirAll(pendingDir, 0o755))
	b := New(pendingDir, 1, 1000, log.NewNoopLogger())

	existing := writePendingFile(t, pendingDir, "old.parquet", 10, time.Minute)
	_ = existing

	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "new.parquet")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

	require.NoError(t, b.AddToPending(src))

	entries, err := os.ReadDir(pendingDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "new.parquet", entries[0].Name())
}

func filepathName(i int) string {
	return "file" + string(rune('a'+i)) + ".parquet"
}
