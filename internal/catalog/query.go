package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/cache"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const TagProduct = "Product"

func ProductTag(id int) string {
	return TagProduct + ":" + strconv.Itoa(id)
}

func listKey(filter model.ProductFilter) string {
	filter = NormalizeFilter(filter)
	return fmt.Sprintf("products?category=%s&limit=%d", filter.Category, filter.Limit)
}

func productKey(id int) string {
	return "products/" + strconv.Itoa(id)
}

const categoriesKey = "products/categories"

type IQueryLayer interface {
	ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)
	GetProduct(ctx context.Context, id int) (*model.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
	RelatedProducts(ctx context.Context, product model.Product, n int) ([]model.Product, error)
	Invalidate(ctx context.Context, tags ...string) error
}

var _ IQueryLayer = (*QueryLayer)(nil)

// QueryLayer 以查詢條件為 key 的 read-through 快取
// 每筆快取帶 tag，Invalidate 任一 tag 即移除；錯誤結果不快取，也不重試
type QueryLayer struct {
	source Source
	cache  cache.Cache
	ttl    time.Duration
	logger *zerolog.Logger
	group  singleflight.Group

	mu   sync.Mutex
	tags map[string]map[string]struct{} // tag -> keys
}

func NewQueryLayer(source Source, c cache.Cache, ttl time.Duration, logger *zerolog.Logger) *QueryLayer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &QueryLayer{
		source: source,
		cache:  c,
		ttl:    ttl,
		logger: logger,
		tags:   make(map[string]map[string]struct{}),
	}
}

func (q *QueryLayer) remember(key string, tags ...string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, tag := range tags {
		keys, ok := q.tags[tag]
		if !ok {
			keys = make(map[string]struct{})
			q.tags[tag] = keys
		}
		keys[key] = struct{}{}
	}
}

// fetch 先查快取，miss 時同一個 key 只會有一個請求打到 source
func fetch[T any](ctx context.Context, q *QueryLayer, key string, tags []string, load func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	if raw, err := q.cache.Get(ctx, key); err == nil {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		q.logger.Warn().Str("key", key).Msg("drop undecodable catalog cache entry")
		_ = q.cache.Delete(ctx, key)
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		q.logger.Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
	}

	// 共用的請求不跟隨任何單一呼叫者取消，逾時由 source 的 http client 控制
	shared := context.WithoutCancel(ctx)
	ch := q.group.DoChan(key, func() (interface{}, error) {
		v, err := load(shared)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		if err := q.cache.Set(shared, key, raw, q.ttl); err != nil {
			q.logger.Warn().Err(err).Str("key", key).Msg("catalog cache write failed")
		} else {
			q.remember(key, tags...)
		}
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		q.logger.Debug().Str("key", key).Bool("shared", res.Shared).Msg("catalog fetched")
		return res.Val.(T), nil
	}
}

func (q *QueryLayer) ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	filter = NormalizeFilter(filter)
	return fetch(ctx, q, listKey(filter), []string{TagProduct}, func(ctx context.Context) ([]model.Product, error) {
		return q.source.ListProducts(ctx, filter)
	})
}

func (q *QueryLayer) GetProduct(ctx context.Context, id int) (*model.Product, error) {
	return fetch(ctx, q, productKey(id), []string{TagProduct, ProductTag(id)}, func(ctx context.Context) (*model.Product, error) {
		return q.source.GetProduct(ctx, id)
	})
}

func (q *QueryLayer) ListCategories(ctx context.Context) ([]string, error) {
	return fetch(ctx, q, categoriesKey, []string{TagProduct}, func(ctx context.Context) ([]string, error) {
		return q.source.ListCategories(ctx)
	})
}

// RelatedProducts 以商品分類查詢 (走快取) 再過濾
func (q *QueryLayer) RelatedProducts(ctx context.Context, product model.Product, n int) ([]model.Product, error) {
	if product.Category == "" {
		return []model.Product{}, nil
	}
	candidates, err := q.ListProducts(ctx, model.ProductFilter{Category: product.Category})
	if err != nil {
		return nil, err
	}
	return RelatedProducts(product, candidates, n), nil
}

// Invalidate 移除帶有任一 tag 的快取；未指定 tag 時全部清除
func (q *QueryLayer) Invalidate(ctx context.Context, tags ...string) error {
	if len(tags) == 0 {
		q.mu.Lock()
		q.tags = make(map[string]map[string]struct{})
		q.mu.Unlock()
		return q.cache.Clear(ctx)
	}

	q.mu.Lock()
	keys := map[string]struct{}{}
	for _, tag := range tags {
		for key := range q.tags[tag] {
			keys[key] = struct{}{}
		}
	}
	for tag, tagged := range q.tags {
		for key := range keys {
			delete(tagged, key)
		}
		if len(tagged) == 0 {
			delete(q.tags, tag)
		}
	}
	q.mu.Unlock()

	if len(keys) == 0 {
		return nil
	}
	list := make([]string, 0, len(keys))
	for key := range keys {
		list = append(list, key)
	}
	if err := q.cache.Delete(ctx, list...); err != nil {
		return fmt.Errorf("invalidate %v: %w", tags, err)
	}
	q.logger.Info().Strs("tags", tags).Int("entries", len(list)).Msg("catalog cache invalidated")
	return nil
}
