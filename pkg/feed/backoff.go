package feed

import (
	"math/rand"
	"sync"
	"time"
)

// schedule bounds; every computed interval lands inside them
const (
	MinInterval = time.Minute
	MaxInterval = 7 * 24 * time.Hour
)

// Backoff computes the next poll interval after every attempt. Success
// follows the origin's advisory max-age (or the default), failure doubles
// the base interval per consecutive failure, both clamped to
// [MinInterval, MaxInterval].
type Backoff struct {
	DefaultInterval time.Duration // success interval when origin gives no max-age
	BaseInterval    time.Duration // failure doubling base
	Jitter          float64       // fraction of the interval, e.g. 0.1 for +/-10%

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewBackoff creates a policy with the given defaults; zero values fall back
// to 1h default interval, 5m base and 10% jitter
func NewBackoff(defaultInterval, baseInterval time.Duration, jitter float64) *Backoff {
	if defaultInterval <= 0 {
		defaultInterval = time.Hour
	}
	if baseInterval <= 0 {
		baseInterval = 5 * time.Minute
	}
	return &Backoff{
		DefaultInterval: defaultInterval,
		BaseInterval:    baseInterval,
		Jitter:          jitter,
		rnd:             rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // jitter, not crypto
	}
}

// NextOnSuccess returns the interval until the next poll after a successful
// attempt (Fetched or NotModified). maxAgeSeconds is the origin's advisory
// Cache-Control value, 0 when not provided.
func (b *Backoff) NextOnSuccess(maxAgeSeconds int) time.Duration {
	interval := b.DefaultInterval
	if maxAgeSeconds > 0 {
		interval = time.Duration(maxAgeSeconds) * time.Second
	}
	return clampInterval(b.jittered(interval))
}

// NextOnFailure returns the interval after a failed attempt;
// consecutiveFailures is the already-incremented counter
func (b *Backoff) NextOnFailure(consecutiveFailures int) time.Duration {
	if consecutiveFailures < 1 {
		consecutiveFailures = 1
	}
	// double per failure, stopping at the cap; the counter itself is unbounded
	interval := b.BaseInterval
	for i := 0; i < consecutiveFailures && interval < MaxInterval; i++ {
		interval *= 2
	}
	return clampInterval(b.jittered(interval))
}

// jittered spreads the interval by +/-Jitter to avoid herd polling
func (b *Backoff) jittered(d time.Duration) time.Duration {
	if b.Jitter <= 0 || b.rnd == nil {
		return d
	}
	b.mu.Lock()
	f := b.rnd.Float64()
	b.mu.Unlock()
	return d + time.Duration(float64(d)*b.Jitter*(2*f-1))
}

func clampInterval(d time.Duration) time.Duration {
	if d < MinInterval {
		return MinInterval
	}
	if d > MaxInterval {
		return MaxInterval
	}
	return d
}
