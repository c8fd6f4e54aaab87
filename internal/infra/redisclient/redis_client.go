// Package redisclient 依位址共用 redis client
package redisclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	mu         sync.Mutex
	_instances = map[string]*redis.Client{}
)

// GetRedisClient 同一個位址 + DB 只建立一次
func GetRedisClient(address string, options ...Option) *redis.Client {
	opts := &redis.Options{
		Addr: address,
	}
	for _, option := range options {
		option(opts)
	}

	key := fmt.Sprintf("%s/%d", address, opts.DB)
	mu.Lock()
	defer mu.Unlock()
	client, ok := _instances[key]
	if !ok {
		client = redis.NewClient(opts)
		_instances[key] = client
	}
	return client
}

type Option func(*redis.Options)

func WithPassword(password string) Option {
	return func(o *redis.Options) {
		o.Password = password
	}
}

func WithDB(db int) Option {
	return func(o *redis.Options) {
		o.DB = db
	}
}

func WithPoolSize(poolSize int) Option {
	return func(o *redis.Options) {
		if poolSize > 0 {
			o.PoolSize = poolSize
		}
	}
}

// Ping 啟動時確認連線
func Ping(ctx context.Context, client *redis.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", client.Options().Addr, err)
	}
	return nil
}
