// Package offline bounds the pending-upload directory by disk usage and
// file count, evicting the oldest files first when either limit is
// exceeded.
package offline
