package retry

import (
	"context"
	"time"

	"github.com/openvehicle/canagent/internal/ports"
)

// Worker wakes every interval (or immediately on context cancellation)
// and retries pending uploads. It is a single cooperative task: Run
// blocks and must not be called concurrently with itself.
type Worker struct {
	uploader ports.Uploader
	interval time.Duration
	log      ports.Logger
}

// New constructs a retry Worker.
func New(uploader ports.Uploader, interval time.Duration, log ports.Logger) *Worker {
	return &Worker{uploader: uploader, interval: interval, log: log}
}

// Run blocks, retrying pending uploads every interval, until ctx is
// cancelled. Between passes cancellation is observed at once; a
// RetryPending pass already in progress is not interrupted by Run.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ok, failed, err := w.uploader.RetryPending(ctx)
			if err != nil {
				w.log.Error("retry pending failed", ports.Err(err))
				continue
			}
			if ok != 0 || failed != 0 {
				w.log.Info("retry pending complete", ports.Int("ok", ok), ports.Int("failed", failed))
			}
		}
	}
}
