// Package batch accumulates CAN frames into time/count-bounded windows and
// flushes each window to a Hive-partitioned, zstd-compressed columnar file
// on disk.
package batch
