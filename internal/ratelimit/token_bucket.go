package ratelimit

import (
	"sync/atomic"
	"time"
)

// TokenBucket 單一 bucket，在 Allow 時依經過時間補充 token
type TokenBucket struct {
	capacity     int64
	rate         float64
	current      atomic.Int64
	lastRefilled atomic.Int64
	lastSeen     atomic.Int64
	now          func() time.Time
}

func NewTokenBucket(capacity int, rate float64) *TokenBucket {
	return newTokenBucket(capacity, rate, time.Now)
}

func newTokenBucket(capacity int, rate float64, now func() time.Time) *TokenBucket {
	t := &TokenBucket{
		capacity: int64(capacity),
		rate:     rate,
		now:      now,
	}
	ts := now().UnixNano()
	t.current.Store(int64(capacity))
	t.lastRefilled.Store(ts)
	t.lastSeen.Store(ts)
	return t
}

func (t *TokenBucket) Allow() bool {
	now := t.now().UnixNano()
	t.lastSeen.Store(now)
	t.refill(now)
	for {
		current := t.current.Load()
		if current <= 0 {
			return false
		}
		if t.current.CompareAndSwap(current, current-1) {
			return true
		}
	}
}

func (t *TokenBucket) Tokens() int64 {
	t.refill(t.now().UnixNano())
	return t.current.Load()
}

func (t *TokenBucket) refill(now int64) {
	for {
		last := t.lastRefilled.Load()
		elapsed := time.Duration(now - last)
		tokenToAdd := int64(elapsed.Seconds() * t.rate)
		if tokenToAdd <= 0 {
			return
		}
		// 只推進已換成 token 的時間，餘數留到下一次
		consumed := int64(float64(tokenToAdd) / t.rate * float64(time.Second))
		if !t.lastRefilled.CompareAndSwap(last, last+consumed) {
			continue
		}
		for {
			current := t.current.Load()
			newTokens := current + tokenToAdd
			if newTokens > t.capacity {
				newTokens = t.capacity
			}
			if t.current.CompareAndSwap(current, newTokens) {
				return
			}
		}
	}
}

func (t *TokenBucket) idleSince(now int64) time.Duration {
	return time.Duration(now - t.lastSeen.Load())
}
