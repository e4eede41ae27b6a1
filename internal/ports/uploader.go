package ports

import "context"

// Uploader ships finished batch files to the remote object store and
// retries anything that previously failed.
type Uploader interface {
	// Upload sends the file at localPath, keyed by its Hive-style
	// partition path, to the remote store. On success the caller's file
	// is moved to the archive directory; on failure it is moved to the
	// pending directory for a later RetryPending pass. A nil error means
	// the file was moved to one of the two, except when the pending
	// directory already holds a file of the same name: then the pending
	// entry is kept and the file stays where it was.
	Upload(ctx context.Context, localPath string) error

	// RetryPending scans the pending directory oldest-first and attempts
	// to upload each file again. It returns the count of files that
	// succeeded and failed in this pass, plus the first unrecoverable
	// error encountered (if any) — a single failed file does not abort
	// the rest of the pass.
	RetryPending(ctx context.Context) (ok, failed int, err error)
}
