package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/redis/go-redis/v9"
)

var ErrCartNotFound = errors.New("cart not found")

// Repository 購物車狀態的保存位置，以購物 session 為單位
type Repository interface {
	Get(ctx context.Context, sessionID string) (model.CartState, error)
	Save(ctx context.Context, sessionID string, state model.CartState) error
	Delete(ctx context.Context, sessionID string) error
}

var (
	_ Repository = (*MemoryRepo)(nil)
	_ Repository = (*RedisRepo)(nil)
)

type MemoryRepo struct {
	mu    sync.RWMutex
	carts map[string]model.CartState
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{carts: make(map[string]model.CartState)}
}

func (r *MemoryRepo) Get(ctx context.Context, sessionID string) (model.CartState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.carts[sessionID]
	if !ok {
		return model.CartState{}, ErrCartNotFound
	}
	state.Lines = state.CloneLines()
	return state, nil
}

func (r *MemoryRepo) Save(ctx context.Context, sessionID string, state model.CartState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	state.Lines = state.CloneLines()
	r.carts[sessionID] = state
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, sessionID)
	return nil
}

// RedisRepo 整個購物車狀態以 JSON 存成單一 key
type RedisRepo struct {
	client *redis.Client
	ttl    time.Duration
}

// ttl <= 0 代表不過期
func NewRedisRepo(client *redis.Client, ttl time.Duration) *RedisRepo {
	return &RedisRepo{client: client, ttl: ttl}
}

func generateCartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s:state", sessionID)
}

func (r *RedisRepo) Get(ctx context.Context, sessionID string) (model.CartState, error) {
	raw, err := r.client.Get(ctx, generateCartKey(sessionID)).Bytes()
	if err == redis.Nil {
		return model.CartState{}, ErrCartNotFound
	}
	if err != nil {
		return model.CartState{}, fmt.Errorf("failed to get cart: %w", err)
	}

	var state model.CartState
	if err := json.Unmarshal(raw, &state); err != nil {
		return model.CartState{}, fmt.Errorf("failed to decode cart: %w", err)
	}
	return state, nil
}

func (r *RedisRepo) Save(ctx context.Context, sessionID string, state model.CartState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	ttl := r.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, generateCartKey(sessionID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (r *RedisRepo) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, generateCartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
