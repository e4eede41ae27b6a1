// Package domain contains the core domain entities and value objects for the
// CAN telemetry edge agent.
//
// This package represents the innermost layer of the hexagonal architecture.
// It has no dependencies on infrastructure concerns (CAN sockets, the
// filesystem, object storage, logging) and contains only pure business
// logic.
//
// # Entities
//
//   - [Frame]: a single CAN frame with arbitration ID, DLC, and payload
//   - [Batch]: a time-bounded, count-bounded window of frames
//   - [ReaderStats]: cumulative reader counters and a rolling FPS window
//   - [PendingEntry]: a file awaiting upload, tracked by the offline buffer
//
// Domain entities are free of infrastructure dependencies, focused on
// business rules and invariants, and testable without mocks.
package domain
