package domain

import "time"

// Frame represents a single CAN bus frame captured by the reader.
// Only valid frames reach this type — the reader counts and drops error
// frames before they enter the pipeline.
type Frame struct {
	// Timestamp is the frame arrival instant, read from the local clock
	// when the reader dequeues the frame. Socket-layer hardware
	// timestamps are not used.
	Timestamp time.Time

	// ArbID is the 11- or 29-bit CAN arbitration ID.
	ArbID uint32

	// DLC is the data-length code: 0..8 for classic frames, 0..64 for FD.
	DLC uint8

	// Data is the raw payload, exactly DLC bytes long.
	Data []byte

	// FD is true if this was captured on a CAN FD bus.
	FD bool

	// Channel identifies the source interface (e.g. "can0").
	Channel string
}

// ReaderStats is a point-in-time snapshot of reader counters.
type ReaderStats struct {
	Frames        uint64
	Errors        uint64
	BusOff        uint64
	FramesPerSec  float64
}
