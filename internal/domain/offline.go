package domain

// PendingEntry describes one file waiting in the pending directory.
type PendingEntry struct {
	Path    string
	Size    int64
	ModTime int64 // unix nanoseconds; defines eviction order (oldest first)
}

// OfflineStats summarizes the offline buffer's current state.
type OfflineStats struct {
	PendingCount  int
	DiskUsageB    int64
	DiskUsageGB   float64
	DiskLimitGB   float64
	QueueLimit    int
	OldestFile    string
	NewestFile    string
}
