package s3uploader

import "time"

// backoff implements plain exponential backoff without jitter, doubling
// each call up to a cap, so the sequence of retry waits is deterministic.
type backoff struct {
	initial time.Duration
	max     time.Duration
	current time.Duration
}

func newBackoff(initial, max time.Duration) *backoff {
	return &backoff{initial: initial, max: max, current: initial}
}

func (b *backoff) Current() time.Duration {
	return b.current
}

func (b *backoff) Advance() {
	b.current *= 2
	if b.current > b.max {
		b.current = b.max
	}
}

func (b *backoff) Reset() {
	b.current = b.initial
}
