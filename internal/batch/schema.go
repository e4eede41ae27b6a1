package batch

// row is the on-disk columnar schema, in the fixed column order required
// by the output format: timestamp, arb_id, dlc, data, vehicle_id.
// vehicle_id carries the `dict` tag because it is constant for the whole
// file and dictionary-encodes to almost nothing.
type row struct {
	Timestamp int64  `parquet:"timestamp,timestamp(nanosecond,utc)"`
	ArbID     uint32 `parquet:"arb_id"`
	DLC       uint8  `parquet:"dlc"`
	Data      []byte `parquet:"data"`
	VehicleID string `parquet:"vehicle_id,dict"`
}
