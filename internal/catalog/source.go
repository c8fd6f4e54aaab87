// Package catalog 商品目錄查詢
//
// Source 負責實際取得資料 (外部 API 或本地 fixture)，
// QueryLayer 在其上提供依查詢條件分 key 的 read-through 快取。
package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
)

var (
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrProductNotFound    = errors.New("product not found")
)

const (
	AllCategories = "all"
	DefaultLimit  = 20
)

type Source interface {
	ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)
	GetProduct(ctx context.Context, id int) (*model.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
}

// NormalizeFilter "all" 視為不限分類；limit 只在不限分類時有意義
func NormalizeFilter(filter model.ProductFilter) model.ProductFilter {
	category := strings.TrimSpace(filter.Category)
	if strings.EqualFold(category, AllCategories) {
		category = ""
	}
	limit := filter.Limit
	if limit < 0 {
		limit = 0
	}
	if category != "" {
		limit = 0
	}
	return model.ProductFilter{Category: category, Limit: limit}
}
