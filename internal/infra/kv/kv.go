// Package kv 簡單的 key-value 儲存介面
//
// 瀏覽器 localStorage 的替代品，profile 等資料透過此介面保存，
// 後端可替換為 memory / redis / sqlite / postgres。
package kv

import (
	"context"
	"errors"
)

//go:generate mockgen -source=kv.go -destination=mock/mock_store.go -package=mock

var ErrNotFound = errors.New("kv: key not found")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendRedis    Backend = "redis"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)
