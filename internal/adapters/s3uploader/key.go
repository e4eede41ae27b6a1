package s3uploader

import (
	"os"
	"path/filepath"
	"strings"
)

// sidecarExt is appended to a pending file's name to store the relative
// Hive-partitioned path it was moved out of, so a later retry does not
// lose the partition segments (see the open question this resolves,
// recorded in DESIGN.md).
const sidecarExt = ".partition"

// remoteKey builds "<prefix>/<each k=v partition>/<filename>" from a
// local path produced by the batcher, e.g.
// ".../vehicle_id=X/year=2025/month=02/day=12/20250212T030405Z_raw.parquet".
func remoteKey(prefix, localPath string) string {
	parts := strings.Split(filepath.ToSlash(localPath), "/")
	var partitions []string
	for _, p := range parts {
		if strings.Contains(p, "=") {
			partitions = append(partitions, p)
		}
	}
	segments := append([]string{prefix}, partitions...)
	segments = append(segments, filepath.Base(localPath))
	return strings.Join(segments, "/")
}

// writeSidecar records relPath (the partitioned path under dataDir) next
// to pendingPath so a later retry can recover it.
func writeSidecar(pendingPath, relPath string) error {
	return os.WriteFile(pendingPath+sidecarExt, []byte(relPath), 0o644)
}

// readSidecar returns the recorded relative path for pendingPath, or ""
// if no sidecar exists (files moved to pending before a sidecar was
// introduced, or never carried partition segments to begin with).
func readSidecar(pendingPath string) string {
	b, err := os.ReadFile(pendingPath + sidecarExt)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func removeSidecar(pendingPath string) {
	os.Remove(pendingPath + sidecarExt)
}
