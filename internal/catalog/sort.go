package catalog

import (
	"sort"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
)

type SortOption string

const (
	SortDefault   SortOption = "default"
	SortPriceLow  SortOption = "price-low"
	SortPriceHigh SortOption = "price-high"
	SortRating    SortOption = "rating"
)

func ParseSortOption(s string) SortOption {
	switch SortOption(strings.ToLower(strings.TrimSpace(s))) {
	case SortPriceLow:
		return SortPriceLow
	case SortPriceHigh:
		return SortPriceHigh
	case SortRating:
		return SortRating
	default:
		return SortDefault
	}
}

// SortProducts 回傳排序後的新 slice，default 保持原順序
func SortProducts(products []model.Product, option SortOption) []model.Product {
	out := make([]model.Product, len(products))
	copy(out, products)

	var less func(a, b model.Product) bool
	switch option {
	case SortPriceLow:
		less = func(a, b model.Product) bool { return a.Price.LessThan(b.Price) }
	case SortPriceHigh:
		less = func(a, b model.Product) bool { return a.Price.GreaterThan(b.Price) }
	case SortRating:
		less = func(a, b model.Product) bool { return a.Rating.Rate.GreaterThan(b.Rating.Rate) }
	default:
		return out
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

const MaxRelated = 4

// RelatedProducts 同分類、排除自己，最多 n 筆
func RelatedProducts(product model.Product, candidates []model.Product, n int) []model.Product {
	if n <= 0 || n > MaxRelated {
		n = MaxRelated
	}
	out := []model.Product{}
	for _, c := range candidates {
		if c.ID == product.ID || c.Category != product.Category {
			continue
		}
		out = append(out, c)
		if len(out) == n {
			break
		}
	}
	return out
}
