package batch

import (
	"time"

	"github.com/openvehicle/canagent/internal/domain"
	"github.com/openvehicle/canagent/internal/ports"
)

// Batcher implements ports.FrameBatcher: it groups frames into
// time/count-bounded windows and flushes each window to a columnar file
// under dataDir. Only the main run loop touches a Batcher; it is not
// safe for concurrent use.
type Batcher struct {
	dataDir   string
	vehicleID string
	window    time.Duration
	maxFrames int
	log       ports.Logger

	current *domain.Batch
}

var _ ports.FrameBatcher = (*Batcher)(nil)

// New constructs a Batcher writing under dataDir for vehicleID, flushing
// every window or maxFrames frames, whichever comes first.
func New(dataDir, vehicleID string, window time.Duration, maxFrames int, log ports.Logger) *Batcher {
	return &Batcher{
		dataDir:   dataDir,
		vehicleID: vehicleID,
		window:    window,
		maxFrames: maxFrames,
		log:       log,
		current:   domain.NewBatch(),
	}
}

// AddFrame appends frame to the in-progress batch, then flushes it if the
// append just reached the window or count boundary. The triggering frame
// is therefore part of the batch it closes, not the next one.
func (b *Batcher) AddFrame(frame domain.Frame) (string, error) {
	b.current.Add(frame)
	if b.current.ShouldFlush(frame.Timestamp, b.window, b.maxFrames) {
		return b.Flush()
	}
	return "", nil
}

// Flush force-closes the in-progress batch, writing it to disk if
// non-empty, and starts a new empty batch. Returns "" if the batch was
// empty.
func (b *Batcher) Flush() (string, error) {
	if b.current.Empty() {
		return "", nil
	}
	path := OutputPath(b.dataDir, b.vehicleID, b.current.StartTime)
	if err := writeFile(path, b.vehicleID, b.current); err != nil {
		return "", err
	}
	n := b.current.Size()
	b.current.Reset()
	b.log.Info("batch flushed",
		ports.String("path", path),
		ports.Int("frames", n),
	)
	return path, nil
}
