package wsclient

import "time"

const (
	// DefaultMinDelay is the first reconnect delay after a failure.
	DefaultMinDelay = time.Second
	// DefaultMaxDelay caps the reconnect delay.
	DefaultMaxDelay = 30 * time.Second
)

// Backoff yields reconnect delays that start at Min and double on each
// consecutive failure up to Max. Not safe for concurrent use; Client
// guards it with its own mutex.
type Backoff struct {
	Min  time.Duration
	Max  time.Duration
	next time.Duration
}

func NewBackoff(minDelay, maxDelay time.Duration) *Backoff {
	return &Backoff{Min: minDelay, Max: maxDelay, next: minDelay}
}

// Next returns the delay to wait now and advances the sequence.
func (b *Backoff) Next() time.Duration {
	if b.next < b.Min {
		b.next = b.Min
	}
	d := b.next
	b.next = min(b.next*2, b.Max)
	return d
}

// Reset starts the sequence over after a successful connection.
func (b *Backoff) Reset() {
	b.next = b.Min
}
