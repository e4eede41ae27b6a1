// Package retry runs the background task that periodically retries
// uploads sitting in the pending directory.
package retry
