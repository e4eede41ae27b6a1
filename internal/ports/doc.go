// Package ports defines the interfaces (ports) that connect the supervisor
// and application logic to infrastructure adapters.
//
// In Clean Architecture / Hexagonal Architecture, ports are the boundaries
// between the application core and the outside world. They define what the
// application needs from external systems without specifying how those needs
// are fulfilled.
//
// # Port Interfaces
//
//   - [CANReader]: Captures frames from a physical or simulated CAN bus
//   - [FrameBatcher]: Accumulates frames into time/count-bounded batches and
//     flushes them to columnar files
//   - [Uploader]: Ships finished files to the remote object store and
//     retries anything left pending
//   - [OfflineBuffer]: Bounds the pending directory by disk usage and count
//   - [Logger]: Structured logging abstraction
//   - [HealthSource]: Exposes point-in-time counters for the health monitor
//
// Logger and Field live here rather than in a separate package so every
// adapter depends on one logging abstraction, not two.
//
// # Usage
//
// The supervisor depends only on these interfaces. Infrastructure adapters
// (internal/adapters/...) implement them with concrete technology: SocketCAN
// or a signal simulator, parquet-go, aws-sdk-go-v2, zerolog. This separation
// enables testing the run loop with fakes and swapping infrastructure
// without touching supervisor logic.
package ports
