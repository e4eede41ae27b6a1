package s3uploader

import "testing"

func TestRemoteKeyExtractsPartitions(t *testing.T) {
	got := remoteKey("raw", "/data/vehicle_id=VIN12345/year=2025/month=02/day=12/20250212T030405Z_raw.parquet")
	want := "raw/vehicle_id=VIN12345/year=2025/month=02/day=12/20250212T030405Z_raw.parquet"
	if got != want {
		t.Fatalf("remoteKey() = %q, want %q", got, want)
	}
}

func TestRemoteKeyNoPartitions(t *testing.T) {
	got := remoteKey("raw", "myfile.parquet")
	want := "raw/myfile.parquet"
	if got != want {
		t.Fatalf("remoteKey() = %q, want %q", got, want)
	}
}
