package model

import "github.com/shopspring/decimal"

// Rating 商品評分，rate 介於 0~5
type Rating struct {
	Rate  decimal.Decimal `json:"rate" yaml:"rate"`
	Count int             `json:"count" yaml:"count"`
}

// Product 外部商品目錄的商品資料
type Product struct {
	ID          int             `json:"id" yaml:"id"`
	Title       string          `json:"title" yaml:"title"`
	Price       decimal.Decimal `json:"price" yaml:"price"`
	Description string          `json:"description,omitempty" yaml:"description"`
	Category    string          `json:"category" yaml:"category"`
	Image       string          `json:"image" yaml:"image"`
	Rating      Rating          `json:"rating" yaml:"rating"`
}

// ProductFilter 商品列表查詢條件
// Category 為空或 "all" 代表不限分類
type ProductFilter struct {
	Category string `json:"category,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}
