// Package ratelimit 以 token bucket 對每個購物 session 限流
package ratelimit

import "time"

type Config struct {
	Capacity int
	// tokens/秒
	Rate float64
	// 閒置多久後回收 bucket
	IdleTTL time.Duration
	// 清理間隔
	SweepInterval time.Duration
}

func GetDefaultConfig() Config {
	return Config{
		Capacity:      100,
		Rate:          10,
		IdleTTL:       10 * time.Minute,
		SweepInterval: time.Minute,
	}
}

func (c Config) withDefaults() Config {
	def := GetDefaultConfig()
	if c.Capacity <= 0 {
		c.Capacity = def.Capacity
	}
	if c.Rate <= 0 {
		c.Rate = def.Rate
	}
	if c.IdleTTL <= 0 {
		c.IdleTTL = def.IdleTTL
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = def.SweepInterval
	}
	return c
}
