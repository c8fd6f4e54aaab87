package model

import "github.com/shopspring/decimal"

// LineKey 購物車明細的唯一識別 (商品, 尺寸, 顏色)
type LineKey struct {
	ProductID int    `json:"product_id"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type CartLine struct {
	LineKey
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Image     string          `json:"image"`
	Category  string          `json:"category,omitempty"`
	Quantity  int             `json:"quantity"`
}

func (l CartLine) Key() LineKey {
	return l.LineKey
}

// Amount 單價 * 數量
func (l CartLine) Amount() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartState 購物車狀態
// Lines 依加入順序排列，其餘金額欄位皆由 Lines 推導，不可單獨修改
type CartState struct {
	Lines        []CartLine      `json:"lines"`
	PromoCode    string          `json:"promo_code,omitempty"`
	DiscountRate decimal.Decimal `json:"discount_rate"`

	TotalQuantity  int             `json:"total_quantity"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	DeliveryFee    decimal.Decimal `json:"delivery_fee"`
	Total          decimal.Decimal `json:"total"`
}

func (s CartState) IsEmpty() bool {
	return len(s.Lines) == 0
}

// IndexOf 回傳明細位置，找不到回傳 -1
func (s CartState) IndexOf(key LineKey) int {
	for i, line := range s.Lines {
		if line.LineKey == key {
			return i
		}
	}
	return -1
}

// CloneLines 複製明細，避免 reducer 修改到舊狀態的底層陣列
func (s CartState) CloneLines() []CartLine {
	if len(s.Lines) == 0 {
		return []CartLine{}
	}
	out := make([]CartLine, len(s.Lines))
	copy(out, s.Lines)
	return out
}
