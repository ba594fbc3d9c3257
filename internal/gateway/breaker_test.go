package gateway

import (
	"testing"
	"time"
)

func TestBreaker(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	b := NewBreaker(3, 30*time.Second)
	b.now = func() time.Time { return now }

	b.Failure()
	b.Failure()
	if !b.Allow() || b.State() != BreakerClosed {
		t.Fatal("breaker opened before threshold")
	}

	b.Failure()
	if b.Allow() || b.State() != BreakerOpen {
		t.Fatalf("expected open, state=%s", b.State())
	}
	now = now.Add(500 * time.Millisecond)
	if got := b.RetryAfter(); got != 30 {
		t.Fatalf("RetryAfter = %d, want 30", got)
	}
	now = now.Add(-500 * time.Millisecond)

	now = now.Add(31 * time.Second)
	if !b.Allow() || b.State() != BreakerHalfOpen {
		t.Fatalf("expected half-open, state=%s", b.State())
	}

	b.Failure()
	if b.Allow() {
		t.Fatal("failure while half-open should reopen")
	}

	now = now.Add(31 * time.Second)
	b.Success()
	if !b.Allow() || b.State() != BreakerClosed {
		t.Fatalf("expected closed, state=%s", b.State())
	}
}

func TestBreaker_Disabled(t *testing.T) {
	b := NewBreaker(0, time.Minute)
	for i := 0; i < 10; i++ {
		b.Failure()
	}
	if !b.Allow() {
		t.Fatal("disabled breaker must always allow")
	}

	var nilBreaker *Breaker
	nilBreaker.Failure()
	if !nilBreaker.Allow() || nilBreaker.State() != BreakerClosed {
		t.Fatal("nil breaker must behave as closed")
	}
}
