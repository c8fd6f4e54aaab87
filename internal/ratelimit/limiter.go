package ratelimit

import (
	"context"
	"sync"
	"time"
)

type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

/*
請使用 defer 呼叫 Stop()
*/
type KeyedLimiter struct {
	cfg     Config
	now     func() time.Time
	mu      sync.Mutex
	buckets map[string]*TokenBucket
	cancel  chan struct{}
	once    sync.Once
}

var _ Limiter = (*KeyedLimiter)(nil)

/*
請使用 defer 呼叫 Stop()
*/
func NewKeyedLimiter(cfg Config) *KeyedLimiter {
	l := newKeyedLimiter(cfg, time.Now)
	go l.background()
	return l
}

func newKeyedLimiter(cfg Config, now func() time.Time) *KeyedLimiter {
	return &KeyedLimiter{
		cfg:     cfg.withDefaults(),
		now:     now,
		buckets: make(map[string]*TokenBucket),
		cancel:  make(chan struct{}),
	}
}

func (l *KeyedLimiter) bucket(key string) *TokenBucket {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[key]
	if !ok {
		b = newTokenBucket(l.cfg.Capacity, l.cfg.Rate, l.now)
		l.buckets[key] = b
	}
	return b
}

func (l *KeyedLimiter) Allow(ctx context.Context, key string) bool {
	return l.bucket(key).Allow()
}

func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *KeyedLimiter) sweep() {
	now := l.now().UnixNano()
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if b.idleSince(now) >= l.cfg.IdleTTL {
			delete(l.buckets, key)
		}
	}
}

func (l *KeyedLimiter) background() {
	ticker := time.NewTicker(l.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.cancel:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

func (l *KeyedLimiter) Stop() {
	l.once.Do(func() {
		close(l.cancel)
	})
}
