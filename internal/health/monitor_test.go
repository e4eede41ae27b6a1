package health

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openvehicle/canagent/internal/adapters/log"
	"github.com/openvehicle/canagent/internal/domain"
)

type fakeSource struct {
	calls int32
}

func (f *fakeSource) ReaderStats() domain.ReaderStats {
	atomic.AddInt32(&f.calls, 1)
	return domain.ReaderStats{Frames: 42, Errors: 1, BusOff: 0, FramesPerSec: 12.3}
}

func (f *fakeSource) OfflineStats() (domain.OfflineStats, error) {
	return domain.OfflineStats{PendingCount: 3}, nil
}

func TestMonitorEmitsOnEachTick(t *testing.T) {
	src := &fakeSource{}
	m := New(src, t.TempDir(), 10*time.Millisecond, log.NewNoopLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 55*time.Millisecond)
	defer cancel()
	m.Run(ctx)

	require.GreaterOrEqual(t, atomic.LoadInt32(&src.calls), int32(3))
}

func TestMonitorExitsPromptlyOnCancel(t *testing.T) {
	src := &fakeSource{}
	m := New(src, t.TempDir(), time.Hour, log.NewNoopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not exit within 1s of cancellation")
	}
}

func TestReadBoardTempMissingIsElided(t *testing.T) {
	// The sandboxed test host is not a Raspberry Pi, so the real thermal
	// zone path should be absent and reading it must fail silently.
	_, ok := readBoardTemp()
	require.False(t, ok)
}

func TestDiskUsageReportsNonNegativeValues(t *testing.T) {
	used, free, err := diskUsage(t.TempDir())
	require.NoError(t, err)
	require.GreaterOrEqual(t, used, 0.0)
	require.Greater(t, free, 0.0)
}
