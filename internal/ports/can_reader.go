package ports

import (
	"context"

	"github.com/openvehicle/canagent/internal/domain"
)

// CANReader captures frames from a CAN interface, physical or simulated.
// Implementations own the underlying socket or signal generator and are
// responsible for reconnecting after a transient bus error without
// propagating it to the caller.
type CANReader interface {
	// Open establishes the connection (binds the socket, or starts the
	// simulator's clock). It must be safe to call Next immediately after
	// Open returns nil.
	Open(ctx context.Context) error

	// Next blocks until a frame is available or the context is done.
	// Transient read errors (bus-off, timeout) are handled internally and
	// the reader keeps reconnecting, so Next returns an error only once
	// ctx is done.
	Next(ctx context.Context) (domain.Frame, error)

	// Stats returns a point-in-time snapshot of reader counters.
	Stats() domain.ReaderStats

	// Close releases the underlying socket or generator state.
	Close() error
}
