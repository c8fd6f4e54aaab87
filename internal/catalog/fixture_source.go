package catalog

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

var _ Source = (*FixtureSource)(nil)

type fixtureFile struct {
	Products []fixtureProduct `yaml:"products"`
}

type fixtureProduct struct {
	ID          int    `yaml:"id"`
	Title       string `yaml:"title"`
	Price       string `yaml:"price"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	Image       string `yaml:"image"`
	Rating      struct {
		Rate  string `yaml:"rate"`
		Count int    `yaml:"count"`
	} `yaml:"rating"`
}

// FixtureSource 離線用的商品目錄，資料來自 yaml 檔
type FixtureSource struct {
	products   []model.Product
	categories []string
}

func LoadFixtureSource(path string) (*FixtureSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog fixture: %w", err)
	}
	return ParseFixture(raw)
}

func ParseFixture(raw []byte) (*FixtureSource, error) {
	var f fixtureFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse catalog fixture: %w", err)
	}

	src := &FixtureSource{}
	seen := map[string]bool{}
	for _, fp := range f.Products {
		price, err := decimal.NewFromString(fp.Price)
		if err != nil {
			return nil, fmt.Errorf("product %d price %q: %w", fp.ID, fp.Price, err)
		}
		rate := decimal.Zero
		if fp.Rating.Rate != "" {
			if rate, err = decimal.NewFromString(fp.Rating.Rate); err != nil {
				return nil, fmt.Errorf("product %d rating %q: %w", fp.ID, fp.Rating.Rate, err)
			}
		}
		src.products = append(src.products, model.Product{
			ID:          fp.ID,
			Title:       fp.Title,
			Price:       price,
			Description: fp.Description,
			Category:    fp.Category,
			Image:       fp.Image,
			Rating:      model.Rating{Rate: rate, Count: fp.Rating.Count},
		})
		if !seen[fp.Category] {
			seen[fp.Category] = true
			src.categories = append(src.categories, fp.Category)
		}
	}
	return src, nil
}

func (f *FixtureSource) ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	filter = NormalizeFilter(filter)
	out := []model.Product{}
	for _, p := range f.products {
		if filter.Category != "" && !strings.EqualFold(p.Category, filter.Category) {
			continue
		}
		out = append(out, p)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (f *FixtureSource) GetProduct(ctx context.Context, id int) (*model.Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			out := p
			return &out, nil
		}
	}
	return nil, ErrProductNotFound
}

func (f *FixtureSource) ListCategories(ctx context.Context) ([]string, error) {
	out := make([]string, len(f.categories))
	copy(out, f.categories)
	return out, nil
}
