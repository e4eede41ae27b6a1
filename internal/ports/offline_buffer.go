package ports

import "github.com/openvehicle/canagent/internal/domain"

// OfflineBuffer bounds the pending directory by total bytes and file count,
// evicting the oldest files first when a limit is exceeded.
type OfflineBuffer interface {
	// AddToPending moves srcPath into the pending directory and enforces
	// limits afterward, evicting oldest files if either bound is now
	// exceeded.
	AddToPending(srcPath string) error

	// EnforceLimits evicts oldest-first until the pending directory is
	// within both the count and disk-usage limits. Returns
	// domain.ErrEvictionStalled if it cannot free any more space because
	// the directory is already empty.
	EnforceLimits() error

	// Stats reports the current pending directory state.
	Stats() (domain.OfflineStats, error)
}
