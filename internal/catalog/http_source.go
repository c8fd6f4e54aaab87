package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
)

const DefaultBaseURL = "https://fakestoreapi.com/"

var _ Source = (*HTTPSource)(nil)

// HTTPSource fakestoreapi 相容的商品 API
type HTTPSource struct {
	baseURL *url.URL
	client  *http.Client
}

func NewHTTPSource(baseURL string, timeout time.Duration) (*HTTPSource, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog base url %q: %w", baseURL, err)
	}
	return &HTTPSource{
		baseURL: u,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// ProductsPath 依篩選條件組出相對路徑
func ProductsPath(filter model.ProductFilter) string {
	filter = NormalizeFilter(filter)
	if filter.Category != "" {
		return "products/category/" + url.PathEscape(filter.Category)
	}
	if filter.Limit > 0 {
		return "products?limit=" + strconv.Itoa(filter.Limit)
	}
	return "products"
}

// get 回傳 body；404 回傳 notFound，其餘非 2xx 視為目錄不可用
func (h *HTTPSource) get(ctx context.Context, path string, notFound error) ([]byte, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog path %q: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL.ResolveReference(ref).String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrCatalogUnavailable, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, notFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: GET %s returned %d", ErrCatalogUnavailable, path, resp.StatusCode)
	}
	return body, nil
}

func (h *HTTPSource) ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	body, err := h.get(ctx, ProductsPath(filter), ErrCatalogUnavailable)
	if err != nil {
		return nil, err
	}
	var products []model.Product
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("%w: decode products: %v", ErrCatalogUnavailable, err)
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}

// GetProduct 不存在的 id 上游可能回傳 200 + 空內容
func (h *HTTPSource) GetProduct(ctx context.Context, id int) (*model.Product, error) {
	body, err := h.get(ctx, "products/"+strconv.Itoa(id), ErrProductNotFound)
	if err != nil {
		return nil, err
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, ErrProductNotFound
	}
	var p model.Product
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%w: decode product: %v", ErrCatalogUnavailable, err)
	}
	if p.ID == 0 {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

func (h *HTTPSource) ListCategories(ctx context.Context) ([]string, error) {
	body, err := h.get(ctx, "products/categories", ErrCatalogUnavailable)
	if err != nil {
		return nil, err
	}
	var categories []string
	if err := json.Unmarshal(body, &categories); err != nil {
		return nil, fmt.Errorf("%w: decode categories: %v", ErrCatalogUnavailable, err)
	}
	return categories, nil
}
