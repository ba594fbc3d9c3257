package gateway

import (
	"sync"
	"time"
)

// Breaker states reported on /services.
const (
	BreakerClosed   = "closed"
	BreakerOpen     = "open"
	BreakerHalfOpen = "half-open"
)

// Breaker is a per-backend circuit breaker. After threshold consecutive
// failures it rejects calls for openFor, then lets traffic through again and
// closes on the first success.
type Breaker struct {
	mu         sync.Mutex
	failures   int
	threshold  int
	openFor    time.Duration
	openedTill time.Time
	tripped    bool
	now        func() time.Time
}

// NewBreaker creates a closed breaker. A threshold below 1 disables it.
func NewBreaker(threshold int, openFor time.Duration) *Breaker {
	return &Breaker{threshold: threshold, openFor: openFor, now: time.Now}
}

// Allow reports whether a call may proceed.
func (b *Breaker) Allow() bool {
	if b == nil || b.threshold < 1 {
		return true
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.now().Before(b.openedTill)
}

// Success resets the failure count and closes the breaker.
func (b *Breaker) Success() {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.failures = 0
	b.tripped = false
	b.openedTill = time.Time{}
	b.mu.Unlock()
}

// Failure records a failed call and opens the breaker at the threshold. A
// failure while half-open reopens it at once.
func (b *Breaker) Failure() {
	if b == nil || b.threshold < 1 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	if b.failures >= b.threshold || b.tripped {
		b.openedTill = b.now().Add(b.openFor)
		b.failures = 0
		b.tripped = true
	}
}

// RetryAfter returns the time left until an open breaker lets calls through,
// rounded up to whole seconds.
func (b *Breaker) RetryAfter() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	left := b.openedTill.Sub(b.now())
	b.mu.Unlock()
	if left <= 0 {
		return 0
	}
	return int((left + time.Second - 1) / time.Second)
}

// State returns closed, open or half-open.
func (b *Breaker) State() string {
	if b == nil {
		return BreakerClosed
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	switch {
	case b.now().Before(b.openedTill):
		return BreakerOpen
	case b.tripped:
		return BreakerHalfOpen
	default:
		return BreakerClosed
	}
}
