package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const tokenBucketScript = `
	local key = KEYS[1]
	local capacity = tonumber(ARGV[1])
	local rate = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local ttl = tonumber(ARGV[4])

	local bucket = redis.call('HMGET', key, 'tokens', 'last_refill')
	local currentTokens = tonumber(bucket[1])
	local lastRefill = tonumber(bucket[2])

	-- key 不存在時以滿容量初始化
	if currentTokens == nil then
		currentTokens = capacity
		lastRefill = now
	end

	local elapsedSeconds = (now - lastRefill) / 1000000000
	currentTokens = math.min(capacity, currentTokens + elapsedSeconds * rate)

	local allowed = 0
	if currentTokens >= 1 then
		currentTokens = currentTokens - 1
		allowed = 1
	end

	redis.call('HSET', key, 'tokens', currentTokens, 'last_refill', now)
	redis.call('EXPIRE', key, ttl)
	return allowed
`

// RedisClient 介面定義
type RedisClient interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// RedisLimiter 多個實例共用 bucket
type RedisLimiter struct {
	cfg    Config
	client RedisClient
	prefix string
	logger *zerolog.Logger
	now    func() time.Time
}

var _ Limiter = (*RedisLimiter)(nil)

func NewRedisLimiter(client RedisClient, cfg Config, prefix string, logger *zerolog.Logger) *RedisLimiter {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &RedisLimiter{
		cfg:    cfg.withDefaults(),
		client: client,
		prefix: prefix,
		logger: logger,
		now:    time.Now,
	}
}

func (r *RedisLimiter) setPrefixKey(key string) string {
	return fmt.Sprintf("%s:%s", r.prefix, key)
}

// Allow redis 無法使用時放行，並記錄錯誤
func (r *RedisLimiter) Allow(ctx context.Context, key string) bool {
	result, err := r.client.Eval(
		ctx,
		tokenBucketScript,
		[]string{r.setPrefixKey(key)},
		r.cfg.Capacity,
		r.cfg.Rate,
		r.now().UnixNano(),
		int64(r.cfg.IdleTTL.Seconds()),
	).Int64()
	if err != nil {
		r.logger.Error().Err(err).Str("key", key).Msg("rate limiter unavailable")
		return true
	}
	return result == 1
}
