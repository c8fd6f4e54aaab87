package kv

import (
	"fmt"

	"github.com/redis/go-redis/v9"
)

type Options struct {
	Backend     Backend
	RedisClient *redis.Client
	RedisPrefix string
	SQLitePath  string
	PostgresDSN string
}

// New 依設定建立對應後端，未指定時使用 memory
func New(opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendRedis:
		if opts.RedisClient == nil {
			return nil, fmt.Errorf("kv backend %s requires a redis client", opts.Backend)
		}
		return NewRedisStore(opts.RedisClient, opts.RedisPrefix), nil
	case BackendSQLite:
		return OpenSQLite(opts.SQLitePath)
	case BackendPostgres:
		return OpenPostgres(opts.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown kv backend %q", opts.Backend)
	}
}
