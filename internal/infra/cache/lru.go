package cache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

var _ Cache = (*LRUCache)(nil)

type lruEntry struct {
	value     []byte
	expiresAt time.Time
}

// LRUCache 程序內快取，超過容量淘汰最久未使用的 key
type LRUCache struct {
	cache *lru.Cache
	now   func() time.Time
}

func NewLRUCache(size int) (*LRUCache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &LRUCache{cache: c, now: time.Now}, nil
}

func (l *LRUCache) Get(ctx context.Context, key string) ([]byte, error) {
	v, ok := l.cache.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	entry := v.(lruEntry)
	if !entry.expiresAt.IsZero() && !l.now().Before(entry.expiresAt) {
		l.cache.Remove(key)
		return nil, ErrCacheMiss
	}
	return entry.value, nil
}

// Set ttl <= 0 代表不過期
func (l *LRUCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	entry := lruEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = l.now().Add(ttl)
	}
	l.cache.Add(key, entry)
	return nil
}

func (l *LRUCache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		l.cache.Remove(key)
	}
	return nil
}

func (l *LRUCache) Clear(ctx context.Context) error {
	l.cache.Purge()
	return nil
}

func (l *LRUCache) Len() int {
	return l.cache.Len()
}
