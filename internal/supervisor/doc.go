// Package supervisor wires the reader, batcher, uploader, offline buffer,
// retry worker, and health monitor into the four operating modes and owns
// the process's shutdown sequence.
package supervisor
