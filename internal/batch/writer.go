package batch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/openvehicle/canagent/internal/domain"
)

// writeFile renders b's frames as a zstd-level-3 columnar file at
// finalPath, using a write-to-temp-then-rename sequence so a reader never
// observes a partially written file under its final name.
func writeFile(finalPath, vehicleID string, b *domain.Batch) error {
	if b.Empty() {
		return nil
	}

	dir := filepath.Dir(finalPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("batch: create partition dir %s: %w", dir, err)
	}

	tmpPath := finalPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("batch: create %s: %w", tmpPath, err)
	}

	writer := parquet.NewGenericWriter[row](f, parquet.Compression(&zstd.Codec{Level: zstd.SpeedDefault}))

	rows := make([]row, len(b.Frames))
	for i, frame := range b.Frames {
		rows[i] = row{
			Timestamp: frame.Timestamp.UTC().UnixNano(),
			ArbID:     frame.ArbID,
			DLC:       frame.DLC,
			Data:      frame.Data,
			VehicleID: vehicleID,
		}
	}

	if _, err := writer.Write(rows); err != nil {
		writer.Close()
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("batch: write rows to %s: %w", tmpPath, err)
	}
	if err := writer.Close(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("batch: close writer for %s: %w", tmpPath, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("batch: close file %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("batch: rename %s to %s: %w", tmpPath, finalPath, err)
	}
	return nil
}
