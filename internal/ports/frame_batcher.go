package ports

import "github.com/openvehicle/canagent/internal/domain"

// FrameBatcher accumulates frames into time/count-bounded windows and
// flushes each window to a columnar file on disk.
type FrameBatcher interface {
	// AddFrame appends a frame to the current batch, then flushes that
	// batch if the frame reached its window or count boundary, so the
	// triggering frame belongs to the batch it closes. Returns the path of
	// the file just flushed, or "" if no flush occurred.
	AddFrame(frame domain.Frame) (flushedPath string, err error)

	// Flush force-closes the current batch regardless of window state,
	// returning the output path, or "" if the batch was empty.
	Flush() (flushedPath string, err error)
}
