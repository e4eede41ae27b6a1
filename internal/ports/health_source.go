package ports

import "github.com/openvehicle/canagent/internal/domain"

// HealthSource exposes the counters the health monitor reports on its
// periodic heartbeat. The canagent package implements this by composing
// the reader and the offline buffer (the monitor tracks uptime itself);
// it is a port so the health monitor can be tested against a fake.
type HealthSource interface {
	ReaderStats() domain.ReaderStats
	OfflineStats() (domain.OfflineStats, error)
}
