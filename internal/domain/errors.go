package domain

import "errors"

// Domain errors represent error conditions in the edge agent domain.
// These errors are returned by the public API and can be checked with
// errors.Is.
var (
	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("canagent: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("canagent: invalid configuration")

	// ErrBusOpen is returned when the CAN interface cannot be opened.
	ErrBusOpen = errors.New("canagent: bus open failed")

	// ErrEvictionStalled is returned when the offline buffer cannot free
	// space because the pending directory is already empty.
	ErrEvictionStalled = errors.New("canagent: eviction stalled, pending directory empty")
)
