package retry

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openvehicle/canagent/internal/adapters/log"
)

type fakeUploader struct {
	calls  int32
	ok     int
	failed int
}

func (f *fakeUploader) Upload(ctx context.Context, localPath string) error { return nil }

func (f *fakeUploader) RetryPending(ctx context.Context) (int, int, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.ok, f.failed, nil
}

func TestWorkerRetriesOnEachTick(t *testing.T) {
	u := &fakeUploader{}
	w := New(u, 10*time.Millisecond, log.NewNoopLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 55*time.Millisecond)
	defer cancel()
	w.Run(ctx)

	require.GreaterOrEqual(t, atomic.LoadInt32(&u.calls), int32(3))
}

func TestWorkerExitsPromptlyOnCancel(t *testing.T) {
	u := &fakeUploader{}
	w := New(u, time.Hour, log.NewNoopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not exit within 1s of cancellation")
	}
}
