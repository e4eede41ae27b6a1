package batch

import (
	"fmt"
	"path/filepath"
	"time"
)

const fileExt = "parquet"

// OutputPath returns the local Hive-style partition path for a batch
// starting at startTime for vehicleID, rooted at dataDir:
//
//	<dataDir>/vehicle_id=<id>/year=<YYYY>/month=<MM>/day=<DD>/<YYYYMMDDThhmmssZ>_raw.parquet
func OutputPath(dataDir, vehicleID string, startTime time.Time) string {
	t := startTime.UTC()
	dir := filepath.Join(
		dataDir,
		fmt.Sprintf("vehicle_id=%s", vehicleID),
		fmt.Sprintf("year=%04d", t.Year()),
		fmt.Sprintf("month=%02d", t.Month()),
		fmt.Sprintf("day=%02d", t.Day()),
	)
	filename := fmt.Sprintf("%sZ_raw.%s", t.Format("20060102T150405"), fileExt)
	return filepath.Join(dir, filename)
}
