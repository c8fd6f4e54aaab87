package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSource 記錄實際打到 source 的次數，可注入錯誤與延遲
type countingSource struct {
	Source
	lists      atomic.Int64
	gets       atomic.Int64
	categories atomic.Int64
	err        error
	delay      time.Duration
}

func (c *countingSource) ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	c.lists.Add(1)
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	if c.err != nil {
		return nil, c.err
	}
	return c.Source.ListProducts(ctx, filter)
}

func (c *countingSource) GetProduct(ctx context.Context, id int) (*model.Product, error) {
	c.gets.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return c.Source.GetProduct(ctx, id)
}

func (c *countingSource) ListCategories(ctx context.Context) ([]string, error) {
	c.categories.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return c.Source.ListCategories(ctx)
}

func newTestQueryLayer(t *testing.T) (*QueryLayer, *countingSource) {
	t.Helper()
	src := &countingSource{Source: loadFixture(t)}
	c, err := cache.NewLRUCache(64)
	require.NoError(t, err)
	return NewQueryLayer(src, c, time.Minute, nil), src
}

func TestQueryLayerCachesByRequestShape(t *testing.T) {
	ctx := context.Background()
	q, src := newTestQueryLayer(t)

	for i := 0; i < 3; i++ {
		products, err := q.ListProducts(ctx, model.ProductFilter{Limit: 20})
		require.NoError(t, err)
		assert.Len(t, products, 8)
	}
	assert.Equal(t, int64(1), src.lists.Load())

	// "all" 與空分類是同一個查詢
	_, err := q.ListProducts(ctx, model.ProductFilter{Category: "all", Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), src.lists.Load())

	_, err = q.ListProducts(ctx, model.ProductFilter{Category: "jewelery"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), src.lists.Load())

	for i := 0; i < 2; i++ {
		p, err := q.GetProduct(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, "Mens Cotton Jacket", p.Title)
		assert.True(t, p.Price.Equal(dec("55.99")))
	}
	assert.Equal(t, int64(1), src.gets.Load())

	for i := 0; i < 2; i++ {
		_, err := q.ListCategories(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), src.categories.Load())
}

func TestQueryLayerErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	q, src := newTestQueryLayer(t)

	src.err = ErrCatalogUnavailable
	_, err := q.ListProducts(ctx, model.ProductFilter{})
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
	_, err = q.ListProducts(ctx, model.ProductFilter{})
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
	assert.Equal(t, int64(2), src.lists.Load())

	src.err = nil
	products, err := q.ListProducts(ctx, model.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, products, 8)

	_, err = q.GetProduct(ctx, 404)
	assert.ErrorIs(t, err, ErrProductNotFound)
	_, err = q.GetProduct(ctx, 404)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Equal(t, int64(2), src.gets.Load())
}

func TestQueryLayerInvalidateByTag(t *testing.T) {
	ctx := context.Background()
	q, src := newTestQueryLayer(t)

	_, err := q.GetProduct(ctx, 1)
	require.NoError(t, err)
	_, err = q.GetProduct(ctx, 2)
	require.NoError(t, err)
	_, err = q.ListProducts(ctx, model.ProductFilter{})
	require.NoError(t, err)

	// 只移除單一商品
	require.NoError(t, q.Invalidate(ctx, ProductTag(1)))
	_, _ = q.GetProduct(ctx, 1)
	_, _ = q.GetProduct(ctx, 2)
	_, _ = q.ListProducts(ctx, model.ProductFilter{})
	assert.Equal(t, int64(3), src.gets.Load())
	assert.Equal(t, int64(1), src.lists.Load())

	// Product tag 涵蓋所有查詢
	require.NoError(t, q.Invalidate(ctx, TagProduct))
	_, _ = q.GetProduct(ctx, 2)
	_, _ = q.ListProducts(ctx, model.ProductFilter{})
	assert.Equal(t, int64(4), src.gets.Load())
	assert.Equal(t, int64(2), src.lists.Load())

	// 未知的 tag 不影響
	require.NoError(t, q.Invalidate(ctx, "Order"))
	_, _ = q.ListProducts(ctx, model.ProductFilter{})
	assert.Equal(t, int64(2), src.lists.Load())

	// 不帶 tag 全部清除
	require.NoError(t, q.Invalidate(ctx))
	_, _ = q.ListProducts(ctx, model.ProductFilter{})
	assert.Equal(t, int64(3), src.lists.Load())
}

func TestQueryLayerCollapsesConcurrentMisses(t *testing.T) {
	ctx := context.Background()
	q, src := newTestQueryLayer(t)
	src.delay = 100 * time.Millisecond

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			products, err := q.ListProducts(ctx, model.ProductFilter{Limit: 5})
			assert.NoError(t, err)
			assert.Len(t, products, 5)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1), src.lists.Load())
}

func TestQueryLayerRelatedProducts(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueryLayer(t)

	p, err := q.GetProduct(ctx, 1)
	require.NoError(t, err)

	related, err := q.RelatedProducts(ctx, *p, 4)
	require.NoError(t, err)
	require.Len(t, related, 3)
	for _, r := range related {
		assert.NotEqual(t, 1, r.ID)
		assert.Equal(t, "men's clothing", r.Category)
	}

	empty, err := q.RelatedProducts(ctx, model.Product{ID: 99}, 4)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

type failingCache struct {
	cache.Cache
}

func (failingCache) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("cache down")
}

func (failingCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errors.New("cache down")
}

// 快取故障時仍直接回傳 source 結果
func TestQueryLayerCacheFailureFallsThrough(t *testing.T) {
	src := &countingSource{Source: loadFixture(t)}
	q := NewQueryLayer(src, failingCache{}, time.Minute, nil)

	for i := 0; i < 2; i++ {
		products, err := q.ListProducts(context.Background(), model.ProductFilter{})
		require.NoError(t, err)
		assert.Len(t, products, 8)
	}
	assert.Equal(t, int64(2), src.lists.Load())
}

// gatedSource 在 release 關閉前不回應，並尊重 ctx 取消
type gatedSource struct {
	Source
	calls   atomic.Int64
	entered chan struct{}
	release chan struct{}
}

func (g *gatedSource) ListCategories(ctx context.Context) ([]string, error) {
	if g.calls.Add(1) == 1 {
		close(g.entered)
	}
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return g.Source.ListCategories(ctx)
}

// 第一個呼叫者取消不影響共用同一次請求的其他呼叫者
func TestQueryLayerSharedFetchSurvivesCallerCancel(t *testing.T) {
	src := &gatedSource{Source: loadFixture(t), entered: make(chan struct{}), release: make(chan struct{})}
	c, err := cache.NewLRUCache(64)
	require.NoError(t, err)
	q := NewQueryLayer(src, c, time.Minute, nil)

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := q.ListCategories(firstCtx)
		firstErr <- err
	}()
	<-src.entered

	type result struct {
		categories []string
		err        error
	}
	second := make(chan result, 1)
	go func() {
		categories, err := q.ListCategories(context.Background())
		second <- result{categories, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(src.release)
	res := <-second
	require.NoError(t, res.err)
	assert.Len(t, res.categories, 4)
	assert.Equal(t, int64(1), src.calls.Load())

	// 結果已寫入快取
	_, err = q.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), src.calls.Load())
}
