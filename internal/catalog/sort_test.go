package catalog

import (
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/stretchr/testify/assert"
)

func sample() []model.Product {
	return []model.Product{
		{ID: 1, Price: dec("109.95"), Category: "a", Rating: model.Rating{Rate: dec("3.9")}},
		{ID: 2, Price: dec("22.3"), Category: "a", Rating: model.Rating{Rate: dec("4.1")}},
		{ID: 3, Price: dec("55.99"), Category: "b", Rating: model.Rating{Rate: dec("4.7")}},
		{ID: 4, Price: dec("22.3"), Category: "a", Rating: model.Rating{Rate: dec("2.1")}},
	}
}

func ids(products []model.Product) []int {
	out := make([]int, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestSortProducts(t *testing.T) {
	in := sample()
	assert.Equal(t, []int{1, 2, 3, 4}, ids(SortProducts(in, SortDefault)))
	assert.Equal(t, []int{2, 4, 3, 1}, ids(SortProducts(in, SortPriceLow)))
	assert.Equal(t, []int{1, 3, 2, 4}, ids(SortProducts(in, SortPriceHigh)))
	assert.Equal(t, []int{3, 2, 1, 4}, ids(SortProducts(in, SortRating)))
	// 不修改輸入
	assert.Equal(t, []int{1, 2, 3, 4}, ids(in))
}

func TestParseSortOption(t *testing.T) {
	assert.Equal(t, SortPriceLow, ParseSortOption("price-low"))
	assert.Equal(t, SortPriceHigh, ParseSortOption(" PRICE-HIGH "))
	assert.Equal(t, SortRating, ParseSortOption("rating"))
	assert.Equal(t, SortDefault, ParseSortOption(""))
	assert.Equal(t, SortDefault, ParseSortOption("newest"))
}

func TestRelatedProducts(t *testing.T) {
	in := sample()
	assert.Equal(t, []int{2, 4}, ids(RelatedProducts(in[0], in, 4)))
	assert.Equal(t, []int{2}, ids(RelatedProducts(in[0], in, 1)))
	assert.Empty(t, RelatedProducts(in[2], in, 4))

	many := []model.Product{}
	for i := 10; i < 20; i++ {
		many = append(many, model.Product{ID: i, Category: "a"})
	}
	assert.Len(t, RelatedProducts(in[0], many, 10), MaxRelated)
	assert.Len(t, RelatedProducts(in[0], many, 0), MaxRelated)
}
