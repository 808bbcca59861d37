package hypixel

import (
	"context"
	"time"
)

// replenishPeriod splits the per-minute budget into six refills so load
// is a steady trickle instead of a once-per-minute burst.
const replenishPeriod = 10 * time.Second

// TokenBucket gates outbound Hypixel calls. Capacity is the per-minute
// request budget divided by the number of refill periods per minute; the
// bucket is topped back up to capacity every period. Acquire blocks until
// a token is available; callers needing bounded latency must bring their
// own context deadline.
type TokenBucket struct {
	tokens chan struct{}
	done   chan struct{}
}

// NewTokenBucket sizes the bucket from a requests-per-minute budget and
// starts the refill goroutine. Stop the bucket with Close.
func NewTokenBucket(requestsPerMinute int) *TokenBucket {
	capacity := requestsPerMinute / 6
	if capacity < 1 {
		capacity = 1
	}

	b := &TokenBucket{
		tokens: make(chan struct{}, capacity),
		done:   make(chan struct{}),
	}
	for i := 0; i < capacity; i++ {
		b.tokens <- struct{}{}
	}

	go b.refill()

	return b
}

func (b *TokenBucket) refill() {
	ticker := time.NewTicker(replenishPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.topUp()
		case <-b.done:
			return
		}
	}
}

// topUp fills the bucket back to capacity; excess refill is discarded.
func (b *TokenBucket) topUp() {
	for {
		select {
		case b.tokens <- struct{}{}:
		default:
			return
		}
	}
}

// Acquire takes one token, blocking until one is available or the context
// is cancelled.
func (b *TokenBucket) Acquire(ctx context.Context) error {
	select {
	case <-b.tokens:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the refill goroutine. Pending Acquire calls still drain
// remaining tokens or fail on context cancellation.
func (b *TokenBucket) Close() {
	close(b.done)
}
