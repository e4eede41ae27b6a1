package batch

import (
	"os"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/require"

	"github.com/openvehicle/canagent/internal/adapters/log"
	"github.com/openvehicle/canagent/internal/domain"
)

func readRows(t *testing.T, path string) []row {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	reader := parquet.NewGenericReader[row](f)
	defer reader.Close()

	rows := make([]row, reader.NumRows())
	n, err := reader.Read(rows)
	require.True(t, err == nil || n == len(rows))
	return rows[:n]
}

func mkFrame(t time.Time, arbID uint32) domain.Frame {
	return domain.Frame{Timestamp: t, ArbID: arbID, DLC: 2, Data: []byte{0x01, 0x02}}
}

func TestBatcherEmptyFlushIsNoop(t *testing.T) {
	dir := t.TempDir()
	b := New(dir, "VIN1", time.Second, 100, log.NewNoopLogger())
	path, err := b.Flush()
	require.NoError(t, err)
	require.Empty(t, path)
}

func TestBatcherFlushesAtMaxFrames(t *testing.T) {
	dir := t.TempDir()
	b := New(dir, "VIN1", time.Hour, 3, log.NewNoopLogger())
	base := time.Date(2025, 2, 12, 3, 4, 5, 0, time.UTC)

	p1, err := b.AddFrame(mkFrame(base, 1))
	require.NoError(t, err)
	require.Empty(t, p1)

	p2, err := b.AddFrame(mkFrame(base.Add(time.Millisecond), 2))
	require.NoError(t, err)
	require.Empty(t, p2)

	p3, err := b.AddFrame(mkFrame(base.Add(2*time.Millisecond), 3))
	require.NoError(t, err)
	require.NotEmpty(t, p3, "third add should trigger flush at max_frames")

	_, err = os.Stat(p3)
	require.NoError(t, err)
}

func TestBatcherFlushesAtWindowBoundaryInclusive(t *testing.T) {
	dir := t.TempDir()
	window := time.Second
	b := New(dir, "VIN1", window, 100000, log.NewNoopLogger())
	base := time.Date(2025, 2, 12, 3, 4, 5, 0, time.UTC)

	_, err := b.AddFrame(mkFrame(base, 1))
	require.NoError(t, err)

	// exactly at the boundary: must trigger a flush that includes the
	// boundary frame itself, not just the one before it
	path, err := b.AddFrame(mkFrame(base.Add(window), 2))
	require.NoError(t, err)
	require.NotEmpty(t, path)

	rows := readRows(t, path)
	require.Len(t, rows, 2)
	require.EqualValues(t, 1, rows[0].ArbID)
	require.EqualValues(t, 2, rows[1].ArbID)
}

func TestOutputPathMatchesPartitionLayout(t *testing.T) {
	start := time.Date(2025, 2, 12, 3, 4, 5, 0, time.UTC)
	path := OutputPath("/data", "VIN12345", start)
	require.Equal(t, "/data/vehicle_id=VIN12345/year=2025/month=02/day=12/20250212T030405Z_raw.parquet", path)
}
