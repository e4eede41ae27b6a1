package offline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/openvehicle/canagent/internal/domain"
	"github.com/openvehicle/canagent/internal/ports"
)

// Buffer implements ports.OfflineBuffer over a flat pending directory.
// The filesystem is the only source of truth — no in-memory index is
// kept, so the supervisor, the retry worker, and the buffer itself can
// all mutate the directory concurrently as long as renames and deletes
// are atomic/idempotent.
type Buffer struct {
	pendingDir   string
	maxQueueSize int
	maxDiskBytes int64
	log          ports.Logger
}

var _ ports.OfflineBuffer = (*Buffer)(nil)

// New constructs a Buffer bounding pendingDir to maxQueueSize files and
// maxDiskGB gigabytes.
func New(pendingDir string, maxQueueSize int, maxDiskGB float64, log ports.Logger) *Buffer {
	return &Buffer{
		pendingDir:   pendingDir,
		maxQueueSize: maxQueueSize,
		maxDiskBytes: int64(maxDiskGB * 1024 * 1024 * 1024),
		log:          log,
	}
}

// AddToPending moves srcPath into the pending directory, then enforces
// limits so the move itself can never leave the directory over budget.
func (b *Buffer) AddToPending(srcPath string) error {
	if err := os.MkdirAll(b.pendingDir, 0o755); err != nil {
		return fmt.Errorf("offline: create pending dir: %w", err)
	}
	dest := filepath.Join(b.pendingDir, filepath.Base(srcPath))
	if err := os.Rename(srcPath, dest); err != nil {
		return fmt.Errorf("offline: move %s to pending: %w", srcPath, err)
	}
	return b.EnforceLimits()
}

// EnforceLimits evicts oldest-first while the pending directory exceeds
// either maxQueueSize or maxDiskBytes. Each disk-pressure pass evicts
// max(1, len(files)/10) files at a time, matching the reference
// implementation. Returns domain.ErrEvictionStalled if a limit is still
// exceeded and the directory has nothing left to evict.
func (b *Buffer) EnforceLimits() error {
	entries, err := b.listOldestFirst()
	if err != nil {
		return fmt.Errorf("offline: list pending: %w", err)
	}

	for len(entries) > b.maxQueueSize {
		victim := entries[0]
		if err := b.evict(victim); err != nil {
			return err
		}
		entries = entries[1:]
	}

	for totalBytes(entries) > b.maxDiskBytes {
		if len(entries) == 0 {
			return domain.ErrEvictionStalled
		}
		batch := len(entries) / 10
		if batch < 1 {
			batch = 1
		}
		if batch > len(entries) {
			batch = len(entries)
		}
		for i := 0; i < batch; i++ {
			if err := b.evict(entries[i]); err != nil {
				return err
			}
		}
		entries = entries[batch:]
	}
	return nil
}

func (b *Buffer) evict(e domain.PendingEntry) error {
	if err := os.Remove(e.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("offline: evict %s: %w", e.Path, err)
	}
	os.Remove(e.Path + ".partition") // best-effort: drop the uploader's sidecar too
	b.log.Warn("evicted pending file under disk pressure",
		ports.String("path", e.Path),
		ports.Int64("size_bytes", e.Size),
	)
	return nil
}

// Stats reports the current pending directory state.
func (b *Buffer) Stats() (domain.OfflineStats, error) {
	entries, err := b.listOldestFirst()
	if err != nil {
		return domain.OfflineStats{}, fmt.Errorf("offline: list pending: %w", err)
	}

	stats := domain.OfflineStats{
		PendingCount: len(entries),
		DiskUsageB:   totalBytes(entries),
		DiskLimitGB:  float64(b.maxDiskBytes) / (1024 * 1024 * 1024),
		QueueLimit:   b.maxQueueSize,
	}
	stats.DiskUsageGB = float64(stats.DiskUsageB) / (1024 * 1024 * 1024)
	if len(entries) > 0 {
		stats.OldestFile = entries[0].Path
		stats.NewestFile = entries[len(entries)-1].Path
	}
	return stats, nil
}

func (b *Buffer) listOldestFirst() ([]domain.PendingEntry, error) {
	dirEntries, err := os.ReadDir(b.pendingDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []domain.PendingEntry
	for _, de := range dirEntries {
		if de.IsDir() || filepath.Ext(de.Name()) != ".parquet" {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		out = append(out, domain.PendingEntry{
			Path:    filepath.Join(b.pendingDir, de.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime().UnixNano(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModTime < out[j].ModTime })
	return out, nil
}

func totalBytes(entries []domain.PendingEntry) int64 {
	var sum int64
	for _, e := range entries {
		sum += e.Size
	}
	return sum
}
