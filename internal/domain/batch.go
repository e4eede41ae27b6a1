package domain

import "time"

// Batch is an ordered sequence of frames belonging to one time window.
// It starts with the first frame added and closes when either the window
// duration or the frame-count limit is reached.
type Batch struct {
	// Frames holds the frames in arrival order.
	Frames []Frame

	// StartTime is the timestamp of the first frame added, or the zero
	// value if the batch is empty.
	StartTime time.Time
}

// NewBatch creates a new empty batch.
func NewBatch() *Batch {
	return &Batch{Frames: make([]Frame, 0)}
}

// Add appends a frame to the batch, setting StartTime if this is the first.
func (b *Batch) Add(frame Frame) {
	if len(b.Frames) == 0 {
		b.StartTime = frame.Timestamp
	}
	b.Frames = append(b.Frames, frame)
}

// Size returns the number of frames in the batch.
func (b *Batch) Size() int {
	return len(b.Frames)
}

// Empty returns true if the batch has no frames.
func (b *Batch) Empty() bool {
	return len(b.Frames) == 0
}

// Reset clears the batch for reuse.
func (b *Batch) Reset() {
	b.Frames = b.Frames[:0]
	b.StartTime = time.Time{}
}

// ShouldFlush reports whether the batch should close now that the frame
// timestamped t has just been added. A batch never flushes while empty;
// otherwise it flushes when the window has elapsed or the frame count has
// reached maxFrames. The window boundary is inclusive: a frame whose
// timestamp equals StartTime+windowSec triggers a flush, and since the
// frame is already appended before this check runs, it is part of the
// batch it closes.
func (b *Batch) ShouldFlush(t time.Time, windowSec time.Duration, maxFrames int) bool {
	if b.Empty() {
		return false
	}
	if !t.Before(b.StartTime.Add(windowSec)) {
		return true
	}
	return maxFrames > 0 && len(b.Frames) >= maxFrames
}
